package queue

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ─── test jobs ───

type countingJob struct {
	Name string `json:"name"`
}

var (
	mu      sync.Mutex
	handled []string
)

func (j *countingJob) Handle() error {
	mu.Lock()
	defer mu.Unlock()
	handled = append(handled, j.Name)
	return nil
}

// ─── tests ───

func TestDispatchAndProcess(t *testing.T) {
	mu.Lock()
	handled = nil
	mu.Unlock()

	SetDriver(NewMemoryDriver())
	Register("*queue.countingJob", func() Job { return &countingJob{} })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	StartWorkers(ctx, 2)

	require.NoError(t, Dispatch(&countingJob{Name: "a"}))
	require.NoError(t, Dispatch(&countingJob{Name: "b"}))

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(handled) == 2
	}, 2*time.Second, 10*time.Millisecond)
}

type failingJob struct{}

func (failingJob) Handle() error { return assert.AnError }

func TestRunWithRetryRecordsFailedJob(t *testing.T) {
	m := &Manager{registry: map[string]func() Job{}, maxRetry: 1}

	m.runWithRetry(failingJob{}, "queue.failingJob")

	require.Len(t, m.failed, 1)
	assert.Equal(t, "queue.failingJob", m.failed[0].Type)
	assert.Equal(t, 1, m.failed[0].Attempts)
	assert.ErrorIs(t, m.failed[0].Err, assert.AnError)
}

func TestMemoryDriverPopRespectsContext(t *testing.T) {
	d := NewMemoryDriver()
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := d.Pop(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
