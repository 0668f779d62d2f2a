package calllog

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dkeye/Call/internal/core/mocks"
	"github.com/dkeye/Call/internal/domain"
	"github.com/redis/go-redis/v9"
	"go.uber.org/mock/gomock"
)

var rec = domain.CallRecord{
	CallID:   "c1",
	Caller:   "1111111111",
	Callee:   "2222222222",
	Status:   domain.LogAccepted,
	Duration: 12,
	Media:    domain.MediaAudio,
	EndedAt:  time.Now(),
}

func TestMultiAppendsToAll(t *testing.T) {
	ctrl := gomock.NewController(t)
	first, second := mocks.NewMockCallLog(ctrl), mocks.NewMockCallLog(ctrl)
	boom := errors.New("boom")
	first.EXPECT().Append(gomock.Any(), rec).Return(boom)
	second.EXPECT().Append(gomock.Any(), rec).Return(nil)

	err := Multi{first, LogSink{}, second}.Append(context.Background(), rec)
	if !errors.Is(err, boom) {
		t.Fatalf("expected joined error, got %v", err)
	}
}

func TestMultiEmpty(t *testing.T) {
	if err := (Multi{}).Append(context.Background(), rec); err != nil {
		t.Fatal(err)
	}
}

func TestRedisStreamName(t *testing.T) {
	if got := NewRedisStream(nil, "").Stream(); got != "call:call_logs" {
		t.Fatalf("stream %q", got)
	}
	if got := NewRedisStream(nil, "prod").Stream(); got != "prod:call_logs" {
		t.Fatalf("stream %q", got)
	}
}

func TestRedisStreamUnreachable(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()
	s := NewRedisStream(client, "test")
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	err := s.Append(ctx, rec)
	if err == nil || !strings.Contains(err.Error(), "xadd test:call_logs") {
		t.Fatalf("expected wrapped xadd error, got %v", err)
	}
}
