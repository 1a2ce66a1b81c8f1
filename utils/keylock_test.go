package utils

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyedMutexSerializesSameKey(t *testing.T) {
	km := NewKeyedMutex()
	counter := 0

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := km.Lock("1/2")
			defer unlock()
			v := counter
			counter = v + 1
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, counter)
	assert.Equal(t, 0, km.Len())
}

func TestKeyedMutexIndependentKeys(t *testing.T) {
	km := NewKeyedMutex()
	unlockA := km.Lock("a")
	done := make(chan struct{})
	go func() {
		unlock := km.Lock("b")
		unlock()
		close(done)
	}()
	<-done

	assert.Equal(t, 1, km.Len())
	unlockA()
	assert.Equal(t, 0, km.Len())
}
