package calllog

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/dkeye/Call/internal/domain"
	"github.com/redis/go-redis/v9"
)

const defaultStreamLen = 100000

// RedisStream appends outcomes to a capped Redis stream for downstream
// consumers (history service, analytics).
type RedisStream struct {
	client *redis.Client
	stream string
	maxLen int64
}

func NewRedisStream(client *redis.Client, prefix string) *RedisStream {
	if prefix == "" {
		prefix = "call"
	}
	return &RedisStream{
		client: client,
		stream: fmt.Sprintf("%s:call_logs", prefix),
		maxLen: defaultStreamLen,
	}
}

func (r *RedisStream) Stream() string { return r.stream }

func (r *RedisStream) Append(ctx context.Context, rec domain.CallRecord) error {
	err := r.client.XAdd(ctx, &redis.XAddArgs{
		Stream: r.stream,
		MaxLen: r.maxLen,
		Approx: true,
		Values: map[string]any{
			"call_id":          string(rec.CallID),
			"caller_uid":       string(rec.Caller),
			"callee_uid":       string(rec.Callee),
			"status":           string(rec.Status),
			"duration_seconds": strconv.FormatInt(rec.Duration, 10),
			"media":            string(rec.Media),
			"end_time":         rec.EndedAt.UTC().Format(time.RFC3339),
		},
	}).Err()
	if err != nil {
		return fmt.Errorf("xadd %s: %w", r.stream, err)
	}
	return nil
}
