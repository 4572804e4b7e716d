package app

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/dkeye/lanhub/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestPresenterTransitions(t *testing.T) {
	p := NewPresenter()
	assert.Equal(t, PresenterIdle, p.State())

	holder, changed := p.Acquire("alice")
	assert.True(t, changed)
	assert.Equal(t, domain.Identity("alice"), holder)

	holder, changed = p.Acquire("bob")
	assert.False(t, changed)
	assert.Equal(t, domain.Identity("alice"), holder)

	assert.False(t, p.Release("bob"))
	assert.True(t, p.IsHolder("alice"))

	assert.True(t, p.Release("alice"))
	assert.False(t, p.Release("alice"))
	_, ok := p.Holder()
	assert.False(t, ok)
}

func TestPresenterRevoke(t *testing.T) {
	p := NewPresenter()
	p.Acquire("alice")

	assert.False(t, p.Revoke("bob"))
	assert.True(t, p.Revoke("alice"))
	assert.False(t, p.Revoke("alice"))
	assert.Equal(t, PresenterIdle, p.State())
}

func TestPresenterConcurrentAcquire(t *testing.T) {
	p := NewPresenter()
	var granted atomic.Int32
	var wg sync.WaitGroup
	for i := range 32 {
		wg.Add(1)
		go func(id domain.Identity) {
			defer wg.Done()
			if h, changed := p.Acquire(id); changed && h == id {
				granted.Add(1)
			}
		}(domain.Identity(fmt.Sprintf("user-%d", i)))
	}
	wg.Wait()
	assert.Equal(t, int32(1), granted.Load())
}

func TestPresenterReleaseAndRevokeRace(t *testing.T) {
	for range 50 {
		p := NewPresenter()
		p.Acquire("alice")
		var stops atomic.Int32
		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			if p.Release("alice") {
				stops.Add(1)
			}
		}()
		go func() {
			defer wg.Done()
			if p.Revoke("alice") {
				stops.Add(1)
			}
		}()
		wg.Wait()
		assert.Equal(t, int32(1), stops.Load())
	}
}
