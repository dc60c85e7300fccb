package search

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tj/assert"
)

func TestDebouncerRunsLastOfBurst(t *testing.T) {
	d := NewDebouncer(30 * time.Millisecond)

	var ran int32
	var wg sync.WaitGroup
	results := make([]error, 5)

	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = d.Do(context.Background(), func() { atomic.AddInt32(&ran, 1) })
		}(i)
		time.Sleep(2 * time.Millisecond)
	}
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&ran))
	superseded := 0
	for _, err := range results {
		if errors.Is(err, ErrSuperseded) {
			superseded++
		}
	}
	assert.Equal(t, 4, superseded)
	assert.NoError(t, results[4])
}

func TestDebouncerSeparateQuietPeriods(t *testing.T) {
	d := NewDebouncer(5 * time.Millisecond)

	var ran int32
	assert.NoError(t, d.Do(context.Background(), func() { atomic.AddInt32(&ran, 1) }))
	assert.NoError(t, d.Do(context.Background(), func() { atomic.AddInt32(&ran, 1) }))
	assert.Equal(t, int32(2), ran)
}

func TestDebouncerCanceled(t *testing.T) {
	d := NewDebouncer(time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := d.Do(ctx, func() { t.Error("must not run") })
	assert.True(t, errors.Is(err, context.Canceled))
}
