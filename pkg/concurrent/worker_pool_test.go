package concurrent

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolProcessesDisjointChunks(t *testing.T) {
	out := make([]int, 100)

	type span struct{ start, end int }
	pool := NewPool[span](4, 10)
	pool.Start(func(s span) error {
		for i := s.start; i < s.end; i++ {
			out[i] = i * i
		}
		return nil
	})
	for start := 0; start < len(out); start += 10 {
		pool.Submit(span{start, start + 10})
	}
	pool.Close()

	for err := range pool.Wait() {
		require.NoError(t, err)
	}
	for i, v := range out {
		assert.Equal(t, i*i, v)
	}
}

func TestPoolCollectsErrors(t *testing.T) {
	pool := NewPool[int](2, 8)
	pool.Start(func(job int) error {
		if job%2 == 0 {
			return fmt.Errorf("job %d failed", job)
		}
		return nil
	})
	for i := 0; i < 8; i++ {
		pool.Submit(i)
	}
	pool.Close()

	var failed int
	for err := range pool.Wait() {
		require.Error(t, err)
		failed++
	}
	assert.Equal(t, 4, failed)
}
