package cron

import (
	"context"
	"time"

	"github.com/linskybing/grant-review/pkg/logger"
)

// CallCloser closes every published call whose submission window has
// ended and reports how many it closed.
type CallCloser interface {
	CloseDueCalls(ctx context.Context) (int, error)
}

// StartAutoClose runs closer once at startup and then every interval until
// ctx is cancelled. A non-positive interval disables the task.
func StartAutoClose(ctx context.Context, closer CallCloser, interval time.Duration, log *logger.Logger) {
	if interval <= 0 {
		log.Info("auto-close task disabled")
		return
	}
	go func() {
		log.Info("starting auto-close task", "interval", interval.String())
		runAutoClose(ctx, closer, log)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				log.Info("auto-close task stopped")
				return
			case <-ticker.C:
				runAutoClose(ctx, closer, log)
			}
		}
	}()
}

func runAutoClose(ctx context.Context, closer CallCloser, log *logger.Logger) {
	n, err := closer.CloseDueCalls(ctx)
	if err != nil {
		log.Error("auto-close failed", "error", err)
		return
	}
	if n > 0 {
		log.Info("closed calls past their deadline", "count", n)
	}
}
