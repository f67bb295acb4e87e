package main

import "time"

type timerKind int

const (
	timerCountdownTick timerKind = iota
	timerQuestionDeadline
	timerRoundPause
)

// timerFire is delivered to the session's run loop when a scheduled phase
// timer elapses. The epoch is captured at schedule time; the loop discards
// fires whose epoch no longer matches, so a timer armed for an earlier phase
// can never corrupt a later one.
type timerFire struct {
	epoch uint64
	kind  timerKind
}

// scheduleAfter arms a one-shot timer tied to the current phase epoch.
// Delivery races against shutdown so the goroutine never outlives the run
// loop it feeds.
func (s *session) scheduleAfter(d time.Duration, kind timerKind) {
	fire := timerFire{
		epoch: s.epoch,
		kind:  kind,
	}
	ch := s.clock.After(d)

	go func() {
		select {
		case <-ch:
			select {
			case s.timers <- fire:
			case <-s.ctx.Done():
			}
		case <-s.ctx.Done():
		}
	}()
}
