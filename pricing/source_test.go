package pricing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rustyeddy/investflow/accounting"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errDown = errors.New("down")

func failing() Source {
	return SourceFunc(func(context.Context, string) (float64, error) {
		return 0, unavailable("X", errDown)
	})
}

func TestStatic(t *testing.T) {
	t.Parallel()

	s := Static{"AAPL": 187.25, "BAD": -1}

	p, err := s.Price(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, 187.25, p)

	_, err = s.Price(context.Background(), "MSFT")
	assert.ErrorIs(t, err, accounting.ErrPriceUnavailable)

	_, err = s.Price(context.Background(), "BAD")
	assert.ErrorIs(t, err, accounting.ErrPriceUnavailable)
}

func TestChain(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	p, err := Chain{failing(), Static{"GC=F": 2400}}.Price(ctx, "GC=F")
	require.NoError(t, err)
	assert.Equal(t, 2400.0, p)

	p, err = Chain{Static{"GC=F": 1}, Static{"GC=F": 2}}.Price(ctx, "GC=F")
	require.NoError(t, err)
	assert.Equal(t, 1.0, p, "first source wins")

	_, err = Chain{failing(), failing()}.Price(ctx, "GC=F")
	assert.ErrorIs(t, err, accounting.ErrPriceUnavailable)
	assert.ErrorIs(t, err, errDown)

	_, err = Chain{}.Price(ctx, "GC=F")
	assert.ErrorIs(t, err, accounting.ErrPriceUnavailable)
}

func TestWithDefault(t *testing.T) {
	t.Parallel()

	p, err := WithDefault(failing(), 4197.38, nil).Price(context.Background(), "GC=F")
	require.NoError(t, err)
	assert.Equal(t, 4197.38, p)

	p, err = WithDefault(Static{"GC=F": 2000}, 4197.38, nil).Price(context.Background(), "GC=F")
	require.NoError(t, err)
	assert.Equal(t, 2000.0, p)
}

func TestWithDefaultHonoursCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := WithDefault(failing(), 1, nil).Price(ctx, "GC=F")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWithTimeout(t *testing.T) {
	t.Parallel()

	slow := SourceFunc(func(ctx context.Context, symbol string) (float64, error) {
		select {
		case <-ctx.Done():
			return 0, unavailable(symbol, ctx.Err())
		case <-time.After(5 * time.Second):
			return 1, nil
		}
	})

	start := time.Now()
	_, err := WithTimeout(slow, 20*time.Millisecond).Price(context.Background(), "AAPL")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 2*time.Second)
}
