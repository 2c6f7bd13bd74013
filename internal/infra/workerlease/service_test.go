package workerlease

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runoshun/confcache/internal/domain"
)

func TestService_SharedLease(t *testing.T) {
	s := New("t1")

	assert.Same(t, s.CurrentWorkerLease(), s.CurrentWorkerLease())
	assert.Equal(t, "lease-t1", s.CurrentWorkerLease().ID())
}

func TestLease_MutualExclusion(t *testing.T) {
	lease := New("t1").CurrentWorkerLease()

	var (
		wg      sync.WaitGroup
		inside  int
		maxSeen int
	)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = lease.WithLease(func() error {
				inside++
				if inside > maxSeen {
					maxSeen = inside
				}
				inside--
				return nil
			})
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxSeen)
}

func TestLease_Released(t *testing.T) {
	s := New("t1")
	s.Release()

	called := false
	err := s.CurrentWorkerLease().WithLease(func() error {
		called = true
		return nil
	})

	require.ErrorIs(t, err, domain.ErrLeaseReleased)
	assert.False(t, called)
}
