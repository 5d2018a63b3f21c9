package database

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var storageErrors atomic.Int64

// StorageErrorCount reports how many storage-layer errors GORM has observed
// since startup. Exposed on the health endpoint.
func StorageErrorCount() int64 {
	return storageErrors.Load()
}

// errorCountingLogger wraps a GORM logger and counts real storage errors.
// Record-not-found is an expected outcome for single-key lookups and is not
// counted.
type errorCountingLogger struct {
	inner logger.Interface
}

func (l errorCountingLogger) LogMode(level logger.LogLevel) logger.Interface {
	return errorCountingLogger{inner: l.inner.LogMode(level)}
}

func (l errorCountingLogger) Info(ctx context.Context, s string, args ...interface{}) {
	l.inner.Info(ctx, s, args...)
}

func (l errorCountingLogger) Warn(ctx context.Context, s string, args ...interface{}) {
	l.inner.Warn(ctx, s, args...)
}

func (l errorCountingLogger) Error(ctx context.Context, s string, args ...interface{}) {
	l.inner.Error(ctx, s, args...)
}

func (l errorCountingLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		storageErrors.Add(1)
	}
	l.inner.Trace(ctx, begin, fc, err)
}
