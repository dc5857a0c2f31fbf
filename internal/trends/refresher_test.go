package trends_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// TestRun verifies that Run refreshes immediately, keeps refreshing on its
// interval and returns once the context is cancelled.
func TestRun(t *testing.T) {
	src := &fakeSource{rows: testRows()}
	svc := newService(t, src)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		svc.Run(ctx, 10*time.Millisecond)
	}()

	require.Eventually(t, func() bool { return src.Calls() >= 3 }, 2*time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}

	d, err := svc.Current()
	require.NoError(t, err)
	assert.False(t, d.Stale)
}

// TestRun_NoInterval verifies that a zero interval refreshes once and
// returns.
func TestRun_NoInterval(t *testing.T) {
	src := &fakeSource{err: errFeedDown}
	svc := newService(t, src)

	svc.Run(context.Background(), 0)
	assert.Equal(t, 1, src.Calls())
}
