package maintenance

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakePurger struct {
	calls  int
	purged int64
	err    error
}

func (f *fakePurger) PurgeExpiredResets(time.Time) (int64, error) {
	f.calls++
	return f.purged, f.err
}

func TestNewSweeper_InvalidCronExpression(t *testing.T) {
	t.Parallel()

	_, err := NewSweeper(&fakePurger{}, "not a cron expr")
	require.Error(t, err)
}

func TestNewSweeper_AcceptsDescriptors(t *testing.T) {
	t.Parallel()

	s, err := NewSweeper(&fakePurger{}, "@hourly")
	require.NoError(t, err)
	require.NotNil(t, s)
}

func TestSweeper_PurgeInvokesPurger(t *testing.T) {
	t.Parallel()

	purger := &fakePurger{purged: 3}
	s, err := NewSweeper(purger, "@hourly")
	require.NoError(t, err)

	s.purge(time.Now())
	require.Equal(t, 1, purger.calls)

	purger.err = errors.New("db gone")
	s.purge(time.Now())
	require.Equal(t, 2, purger.calls)
}
