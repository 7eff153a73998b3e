// Package service contains long running background jobs.
package service

import (
	"context"
	"time"

	"go.uber.org/zap"
)

type expiredCodes interface {
	DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error)
}

// CodeCleanup periodically deletes one-time codes that expired more than
// retention ago. Expired codes are already unusable, this only keeps the
// table small. It returns when ctx is done.
func CodeCleanup(ctx context.Context, every, retention time.Duration, codes expiredCodes) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	zap.L().Debug("Code cleanup attached", zap.Duration("tick_every", every))

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cleanCodes(ctx, retention, codes)
		}
	}
}

func cleanCodes(ctx context.Context, retention time.Duration, codes expiredCodes) {
	n, err := codes.DeleteExpired(ctx, time.Now().UTC().Add(-retention))
	if err != nil {
		zap.L().Error("Failed to cleanup expired codes", zap.Error(err))
		return
	}

	if n > 0 {
		zap.L().Debug("Cleaned up expired codes", zap.Int64("count", n))
	}
}
