package services

import (
	"context"
	"time"

	"multipark/backoffice/internal/metrics"
)

// CallWithTimeout runs fn under its own deadline and records its latency when m is set.
// A zero timeout leaves ctx as is.
func CallWithTimeout(ctx context.Context, timeout time.Duration, m *metrics.MetricsRegistry, store, operation string, fn func(ctx context.Context) error) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	start := time.Now()
	err := fn(ctx)
	if m != nil {
		m.StoreCallSeconds.WithLabelValues(store, operation).Observe(time.Since(start).Seconds())
	}
	return err
}

func strPtr(s string) *string {
	return &s
}
