package testutil

import (
	"context"
	"sync"
)

// CountingBuilder returns a scripted sequence of outputs and records how
// often it ran. Once the script is exhausted the last output repeats.
type CountingBuilder struct {
	mu      sync.Mutex
	outputs []string
	err     error
	calls   int
}

// NewCountingBuilder creates a builder yielding outputs in order.
func NewCountingBuilder(outputs ...string) *CountingBuilder {
	return &CountingBuilder{outputs: outputs}
}

// FailingBuilder creates a builder that always returns err.
func FailingBuilder(err error) *CountingBuilder {
	return &CountingBuilder{err: err}
}

// Build has the shape of fragment.Builder.
func (b *CountingBuilder) Build(_ context.Context) (any, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls++
	if b.err != nil {
		return nil, b.err
	}
	if len(b.outputs) == 0 {
		return "", nil
	}
	i := b.calls - 1
	if i >= len(b.outputs) {
		i = len(b.outputs) - 1
	}
	return b.outputs[i], nil
}

// Calls returns how many times Build ran.
func (b *CountingBuilder) Calls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls
}
