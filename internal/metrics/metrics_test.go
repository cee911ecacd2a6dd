package metrics

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type failingMetrics struct {
	*LogMetrics
}

func (f *failingMetrics) IncrementCounter(ctx context.Context, name string, value uint64) error {
	return errors.New("sink unavailable")
}

func TestLogMetricsCounters(t *testing.T) {
	ctx := context.Background()
	m := NewLogMetrics(nil)

	for i := 0; i < 3; i++ {
		require.NoError(t, m.IncrementCounter(ctx, MetricSwapsRequested, 1))
	}
	require.NoError(t, m.RecordHistogram(ctx, MetricSwapDurationMicroseconds, 120))

	require.Equal(t, uint64(3), m.Counter(MetricSwapsRequested))
	require.Zero(t, m.Counter(MetricSwapsSucceeded))
	require.Equal(t, 1, m.Samples(MetricSwapDurationMicroseconds))
	require.NoError(t, m.Flush(ctx))
}

func TestEmptyCollection(t *testing.T) {
	c := NewCollection()
	require.NoError(t, c.IncrementCounter(context.Background(), MetricSwapsRequested, 1))
	require.Zero(t, c.Len())
}

func TestCollection(t *testing.T) {
	ctx := context.Background()
	a, b := NewLogMetrics(nil), NewLogMetrics(nil)
	c := NewCollection(a)
	c.Add(b)

	require.Equal(t, 2, c.Len())
	require.NoError(t, c.IncrementCounter(ctx, MetricSwapsRejectedLocal, 2))
	require.Equal(t, uint64(2), a.Counter(MetricSwapsRejectedLocal))
	require.Equal(t, uint64(2), b.Counter(MetricSwapsRejectedLocal))

	c.Add(&failingMetrics{NewLogMetrics(nil)})
	require.Error(t, c.IncrementCounter(ctx, MetricSwapsRejectedLocal, 1))
}
