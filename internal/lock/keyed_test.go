package lock

import (
	"sync"
	"time"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKeyed_SerializesSameKey(t *testing.T) {
	k := New()
	counter := 0

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := k.Lock("/data/proj")
			defer unlock()
			v := counter
			v++
			counter = v
		}()
	}
	wg.Wait()

	require.Equal(t, 50, counter)
	require.Equal(t, 0, k.Len())
}

func TestKeyed_IndependentKeys(t *testing.T) {
	k := New()
	unlockA := k.Lock("a")
	unlockB := k.Lock("b")
	require.Equal(t, 2, k.Len())

	unlockA()
	unlockA()
	unlockB()
	require.Equal(t, 0, k.Len())
}

func TestKeyed_ProjectKeyNeverCollidesWithRegistry(t *testing.T) {
	k := New()
	unlockRegistry := k.Lock(RegistryKey)
	defer unlockRegistry()

	done := make(chan struct{})
	go func() {
		unlock := k.Lock(ProjectKey("registry"))
		unlock()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("project key blocked on the registry key")
	}
	require.NotEqual(t, ProjectKey("a"), FlipKey("a", ""))
}
