package frameextract

import (
	"context"
	"errors"
	"image"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/sync/semaphore"
)

type mockSession struct {
	mu          sync.Mutex
	inFlight    int32
	maxInFlight int32
	failAt      map[float64]bool
}

func (m *mockSession) Duration(ctx context.Context) (float64, error) { return 60, nil }

func (m *mockSession) ExtractAt(ctx context.Context, timestamp float64, tol Tolerance, maxSize int) (Frame, error) {
	n := atomic.AddInt32(&m.inFlight, 1)
	defer atomic.AddInt32(&m.inFlight, -1)

	m.mu.Lock()
	if n > m.maxInFlight {
		m.maxInFlight = n
	}
	fail := m.failAt[timestamp]
	m.mu.Unlock()

	time.Sleep(5 * time.Millisecond)

	if fail {
		return Frame{}, errors.New("mock extraction failure")
	}
	return Frame{Image: image.NewRGBA(image.Rect(0, 0, 4, 4)), Timestamp: timestamp}, nil
}

func (m *mockSession) Close() error { return nil }

func TestExtract_DeliversAllResults(t *testing.T) {
	session := &mockSession{}
	timestamps := []float64{1, 2, 3, 4, 5}

	results := Extract(context.Background(), session, timestamps, AccurateTolerance(), 0, nil, nil)

	var got []Result
	for r := range results {
		got = append(got, r)
	}
	require.Len(t, got, 5)
	for _, r := range got {
		require.NoError(t, r.Err)
	}
}

func TestExtract_ReportsPerTimestampFailure(t *testing.T) {
	session := &mockSession{failAt: map[float64]bool{2: true}}
	results := Extract(context.Background(), session, []float64{1, 2, 3}, AccurateTolerance(), 0, nil, nil)

	var failed, succeeded int
	for r := range results {
		if r.Err != nil {
			failed++
		} else {
			succeeded++
		}
	}
	require.Equal(t, 1, failed)
	require.Equal(t, 2, succeeded)
}

func TestExtract_RespectsSemaphoreBound(t *testing.T) {
	session := &mockSession{}
	sem := semaphore.NewWeighted(2)
	timestamps := []float64{1, 2, 3, 4, 5, 6, 7, 8}

	for r := range Extract(context.Background(), session, timestamps, FastTolerance(), 0, sem, nil) {
		require.NoError(t, r.Err)
	}

	require.LessOrEqual(t, session.maxInFlight, int32(2))
}

func TestExtract_StopsOnCancel(t *testing.T) {
	session := &mockSession{}
	cancel := make(chan struct{})
	close(cancel)

	results := Extract(context.Background(), session, []float64{1, 2, 3}, AccurateTolerance(), 0, nil, cancel)

	count := 0
	for range results {
		count++
	}
	require.Equal(t, 0, count)
}

func TestNewSemaphore_DefaultsToEight(t *testing.T) {
	sem := NewSemaphore(0)
	require.NotNil(t, sem)
	require.True(t, sem.TryAcquire(8))
}

func TestAccurateTolerance_IsZero(t *testing.T) {
	tol := AccurateTolerance()
	require.Zero(t, tol.Before)
	require.Zero(t, tol.After)
}

func TestFastTolerance_IsWithinSpecRange(t *testing.T) {
	tol := FastTolerance()
	require.GreaterOrEqual(t, tol.Before, 500*time.Millisecond)
	require.LessOrEqual(t, tol.After, 2*time.Second)
}
