package view

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimerSchedulerRearmCancelsPrevious(t *testing.T) {
	s := NewTimerScheduler()
	defer s.Stop()

	var fired atomic.Int32
	var lastToken atomic.Uint64

	var tokens []Token
	for i := 0; i < 5; i++ {
		tokens = append(tokens, s.Arm("search", 30*time.Millisecond, func(tok Token) {
			fired.Add(1)
			lastToken.Store(uint64(tok))
		}))
	}

	require.Eventually(t, func() bool { return fired.Load() == 1 }, time.Second, 2*time.Millisecond)
	require.Never(t, func() bool { return fired.Load() > 1 }, 100*time.Millisecond, 5*time.Millisecond)
	assert.Equal(t, uint64(tokens[len(tokens)-1]), lastToken.Load())
	assert.False(t, s.Pending("search"))
}

func TestTimerSchedulerCancel(t *testing.T) {
	s := NewTimerScheduler()
	defer s.Stop()

	var fired atomic.Bool
	s.Arm("search", 20*time.Millisecond, func(Token) { fired.Store(true) })
	require.True(t, s.Pending("search"))

	s.Cancel("search")
	assert.False(t, s.Pending("search"))
	require.Never(t, fired.Load, 80*time.Millisecond, 5*time.Millisecond)
}

func TestTimerSchedulerKeysAreIndependent(t *testing.T) {
	s := NewTimerScheduler()
	defer s.Stop()

	var a, b atomic.Int32
	s.Arm("a", 10*time.Millisecond, func(Token) { a.Add(1) })
	s.Arm("b", 10*time.Millisecond, func(Token) { b.Add(1) })

	require.Eventually(t, func() bool { return a.Load() == 1 && b.Load() == 1 }, time.Second, 2*time.Millisecond)
}

func TestFences(t *testing.T) {
	var f fences

	first := f.issue(familyListing)
	second := f.issue(familyListing)
	assert.True(t, f.inFlight(familyListing))

	assert.False(t, f.settle(familyListing, first))
	assert.True(t, f.inFlight(familyListing))
	assert.True(t, f.settle(familyListing, second))
	assert.False(t, f.inFlight(familyListing))

	search := f.issue(familySearch)
	f.invalidate(familySearch)
	assert.False(t, f.inFlight(familySearch))
	assert.False(t, f.settle(familySearch, search))
	assert.False(t, f.inFlight(familyListing))
}
