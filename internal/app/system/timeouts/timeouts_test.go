package timeouts_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dalemusser/coachhub/internal/app/system/timeouts"
	"go.uber.org/zap"
)

func TestConfigure_KeepsZeroFields(t *testing.T) {
	t.Cleanup(timeouts.Reset)

	timeouts.Configure(timeouts.Config{Short: 7 * time.Second})

	if got := timeouts.Short(); got != 7*time.Second {
		t.Errorf("Short() = %v, want 7s", got)
	}
	if got := timeouts.Medium(); got != timeouts.DefaultMedium {
		t.Errorf("Medium() = %v, want default", got)
	}
}

func TestConfigureFromEnv(t *testing.T) {
	t.Cleanup(timeouts.Reset)
	t.Setenv("COACHHUB_TIMEOUT_LONG", "45s")
	t.Setenv("COACHHUB_TIMEOUT_PING", "nonsense")
	t.Setenv("COACHHUB_TIMEOUT_SHORT", "-1s")

	if n := timeouts.ConfigureFromEnv(); n != 1 {
		t.Errorf("ConfigureFromEnv() = %d, want 1", n)
	}
	cur := timeouts.Current()
	if cur.Long != 45*time.Second {
		t.Errorf("Long = %v, want 45s", cur.Long)
	}
	if cur.Ping != timeouts.DefaultPing || cur.Short != timeouts.DefaultShort {
		t.Errorf("invalid values applied: %+v", cur)
	}
}

func TestWithTimeout(t *testing.T) {
	ctx, cancel := timeouts.WithTimeout(context.Background(), time.Millisecond, zap.NewNop(), "test")
	defer cancel()

	<-ctx.Done()
	if !errors.Is(ctx.Err(), context.DeadlineExceeded) {
		t.Errorf("ctx.Err() = %v, want DeadlineExceeded", ctx.Err())
	}
}
