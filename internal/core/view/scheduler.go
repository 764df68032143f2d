package view

import (
	"sync"
	"time"
)

// Token identifies one arming of a scheduled action. Re-arming a key
// invalidates the previous token.
type Token uint64

// Scheduler runs delayed actions keyed by control. At most one action is
// armed per key; arming again cancels the previous one.
type Scheduler interface {
	Arm(key string, delay time.Duration, action func(Token)) Token
	Cancel(key string)
	Stop()
}

type armedTimer struct {
	token Token
	timer *time.Timer
}

// TimerScheduler is the Scheduler backed by time.AfterFunc.
type TimerScheduler struct {
	mu     sync.Mutex
	next   Token
	timers map[string]*armedTimer
}

func NewTimerScheduler() *TimerScheduler {
	return &TimerScheduler{timers: make(map[string]*armedTimer)}
}

func (s *TimerScheduler) Arm(key string, delay time.Duration, action func(Token)) Token {
	s.mu.Lock()
	defer s.mu.Unlock()

	if prev, ok := s.timers[key]; ok {
		prev.timer.Stop()
	}

	s.next++
	token := s.next
	armed := &armedTimer{token: token}
	armed.timer = time.AfterFunc(delay, func() { s.fire(key, token, action) })
	s.timers[key] = armed
	return token
}

// fire runs action only if token is still the armed one. A timer whose Stop
// lost the race against its own expiry ends up here and is dropped.
func (s *TimerScheduler) fire(key string, token Token, action func(Token)) {
	s.mu.Lock()
	armed, ok := s.timers[key]
	if !ok || armed.token != token {
		s.mu.Unlock()
		return
	}
	delete(s.timers, key)
	s.mu.Unlock()

	action(token)
}

func (s *TimerScheduler) Cancel(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if armed, ok := s.timers[key]; ok {
		armed.timer.Stop()
		delete(s.timers, key)
	}
}

// Pending reports whether an action is armed for key.
func (s *TimerScheduler) Pending(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.timers[key]
	return ok
}

func (s *TimerScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, armed := range s.timers {
		armed.timer.Stop()
		delete(s.timers, key)
	}
}
