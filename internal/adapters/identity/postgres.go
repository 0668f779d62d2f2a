package identity

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dkeye/Call/internal/domain"
)

// PostgresDirectory reads the users table owned by the account service.
type PostgresDirectory struct {
	db *sql.DB
}

func NewPostgresDirectory(db *sql.DB) *PostgresDirectory {
	return &PostgresDirectory{db: db}
}

func (d *PostgresDirectory) ByAccountID(ctx context.Context, accountID string) (*domain.User, error) {
	var (
		uid  string
		name sql.NullString
	)
	err := d.db.QueryRowContext(ctx,
		`SELECT uid, display_name FROM users WHERE id = $1`, accountID,
	).Scan(&uid, &name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUnknownAccount
	}
	if err != nil {
		return nil, fmt.Errorf("select user: %w", err)
	}
	return domain.NewUser(domain.UID(uid), name.String)
}

func (d *PostgresDirectory) Exists(ctx context.Context, uid domain.UID) (bool, error) {
	var one int
	err := d.db.QueryRowContext(ctx, `SELECT 1 FROM users WHERE uid = $1`, string(uid)).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("select uid: %w", err)
	}
	return true, nil
}

func (d *PostgresDirectory) Touch(ctx context.Context, uid domain.UID) error {
	if _, err := d.db.ExecContext(ctx, `UPDATE users SET last_seen = NOW() WHERE uid = $1`, string(uid)); err != nil {
		return fmt.Errorf("update last_seen: %w", err)
	}
	return nil
}
