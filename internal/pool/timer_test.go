package pool

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetTimer_Fires(t *testing.T) {
	timer := GetTimer(20 * time.Millisecond)
	require.NotNil(t, timer)

	select {
	case <-timer.C:
	case <-time.After(time.Second):
		t.Fatal("timer did not fire")
	}
	PutTimer(timer)
}

func TestPutTimer_ActiveTimerDoesNotLeak(t *testing.T) {
	assert := assert.New(t)

	first := GetTimer(30 * time.Millisecond)
	PutTimer(first)

	begin := time.Now()
	second := GetTimer(150 * time.Millisecond)
	defer PutTimer(second)

	select {
	case fired := <-second.C:
		assert.GreaterOrEqual(fired.Sub(begin), 120*time.Millisecond)
	case <-time.After(time.Second):
		t.Fatal("timer did not fire")
	}
}

func TestSleep(t *testing.T) {
	assert := assert.New(t)

	begin := time.Now()
	Sleep(0)
	Sleep(-time.Second)
	assert.Less(time.Since(begin), 10*time.Millisecond)

	begin = time.Now()
	Sleep(30 * time.Millisecond)
	assert.GreaterOrEqual(time.Since(begin), 30*time.Millisecond)
}

func TestSleep_Concurrent(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			Sleep(5 * time.Millisecond)
		}()
	}
	wg.Wait()
}
