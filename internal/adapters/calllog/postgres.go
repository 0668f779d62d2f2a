package calllog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dkeye/Call/internal/domain"
)

var ErrUnknownParty = errors.New("caller or callee not registered")

const insertCallLog = `
INSERT INTO call_logs (caller_id, callee_id, caller_uid, callee_uid, status, duration_seconds, end_time)
SELECT caller.id, callee.id, caller.uid, callee.uid, $3, $4, $5
FROM users caller, users callee
WHERE caller.uid = $1 AND callee.uid = $2`

// Postgres appends to the call_logs table, resolving both parties by uid.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (p *Postgres) Append(ctx context.Context, rec domain.CallRecord) error {
	// end_time is only meaningful for calls that were connected.
	var endTime sql.NullTime
	if rec.Duration > 0 {
		endTime = sql.NullTime{Time: rec.EndedAt, Valid: true}
	}
	res, err := p.db.ExecContext(ctx, insertCallLog,
		string(rec.Caller), string(rec.Callee), string(rec.Status), rec.Duration, endTime)
	if err != nil {
		return fmt.Errorf("insert call log: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("insert call log: %w", err)
	}
	if n == 0 {
		return ErrUnknownParty
	}
	return nil
}
