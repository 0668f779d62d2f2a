// Package calllog records terminal call outcomes.
package calllog

import (
	"context"
	"errors"

	"github.com/dkeye/Call/internal/core"
	"github.com/dkeye/Call/internal/domain"
	"github.com/rs/zerolog/log"
)

// LogSink writes outcomes to the process log only.
type LogSink struct{}

func (LogSink) Append(_ context.Context, rec domain.CallRecord) error {
	log.Info().Str("module", "calllog").
		Str("call_id", string(rec.CallID)).
		Str("caller", string(rec.Caller)).
		Str("callee", string(rec.Callee)).
		Str("status", string(rec.Status)).
		Int64("duration", rec.Duration).
		Msg("call outcome")
	return nil
}

// Multi appends to every sink and joins their errors.
type Multi []core.CallLog

func (m Multi) Append(ctx context.Context, rec domain.CallRecord) error {
	var errs []error
	for _, sink := range m {
		if err := sink.Append(ctx, rec); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
