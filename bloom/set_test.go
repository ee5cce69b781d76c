package bloom_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/fwojciec/shopscrape/bloom"
	"github.com/stretchr/testify/assert"
)

func TestSet_Add(t *testing.T) {
	t.Parallel()

	t.Run("reports whether a URL is new", func(t *testing.T) {
		t.Parallel()

		s := bloom.NewSet(1000, 0.01)

		assert.True(t, s.Add("https://shop.test/p/1"))
		assert.False(t, s.Add("https://shop.test/p/1"))
		assert.True(t, s.Add("https://shop.test/p/2"))
		assert.Equal(t, 2, s.Len())
	})

	t.Run("never reports unseen URLs even when the filter saturates", func(t *testing.T) {
		t.Parallel()

		s := bloom.NewSet(1, 0.5)
		for i := range 200 {
			s.Add(fmt.Sprintf("https://shop.test/p/%d", i))
		}

		for i := 200; i < 400; i++ {
			assert.False(t, s.Contains(fmt.Sprintf("https://shop.test/p/%d", i)))
		}
		assert.Equal(t, 200, s.Len())
	})

	t.Run("is safe for concurrent use", func(t *testing.T) {
		t.Parallel()

		s := bloom.NewSet(1000, 0.01)
		var wg sync.WaitGroup
		var mu sync.Mutex
		added := 0
		for range 8 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := range 50 {
					if s.Add(fmt.Sprintf("https://shop.test/p/%d", i)) {
						mu.Lock()
						added++
						mu.Unlock()
					}
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, 50, added)
		assert.Equal(t, 50, s.Len())
	})
}

func TestSet_EstimatedCount(t *testing.T) {
	t.Parallel()

	s := bloom.NewSet(1000, 0.01)
	assert.Equal(t, uint(0), s.EstimatedCount())

	s.Add("https://shop.test/p/1")
	s.Add("https://shop.test/p/2")
	s.Add("https://shop.test/p/3")

	count := s.EstimatedCount()
	assert.True(t, count >= 2 && count <= 4, "expected count near 3, got %d", count)
}
