package queue

import "context"

// MemoryDriver is a channel-backed in-process queue. It is the default
// driver and the one used by tests.
type MemoryDriver struct {
	ch chan []byte
}

// NewMemoryDriver returns an in-memory driver with a bounded buffer.
func NewMemoryDriver() *MemoryDriver {
	return &MemoryDriver{ch: make(chan []byte, 1024)}
}

func (d *MemoryDriver) Push(payload []byte) error {
	d.ch <- payload
	return nil
}

func (d *MemoryDriver) Pop(ctx context.Context) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case raw := <-d.ch:
		return raw, nil
	}
}
