package session

import (
	"github.com/tphakala/keyclip/internal/logger"
	"github.com/tphakala/keyclip/internal/timeline"
)

// Post appends msg to the inbox. It never blocks and may be called from any
// goroutine. Messages are applied in the order they were posted.
func (s *Session) Post(msg Msg) {
	if msg == nil {
		return
	}
	s.inboxMu.Lock()
	s.inbox = append(s.inbox, msg)
	s.inboxMu.Unlock()

	select {
	case s.notify <- struct{}{}:
	default:
	}
}

// Notify returns a channel that receives a value whenever the inbox goes
// from empty to non-empty. Hosts select on it and call Drain.
func (s *Session) Notify() <-chan struct{} {
	return s.notify
}

// Pending returns the number of undrained messages.
func (s *Session) Pending() int {
	s.inboxMu.Lock()
	defer s.inboxMu.Unlock()
	return len(s.inbox)
}

// Drain applies every queued message and returns how many were handled.
func (s *Session) Drain() int {
	s.inboxMu.Lock()
	batch := s.inbox
	s.inbox = nil
	s.inboxMu.Unlock()

	if len(batch) == 0 {
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, msg := range batch {
		s.handle(msg)
	}
	return len(batch)
}

func (s *Session) clearInbox() {
	s.inboxMu.Lock()
	s.inbox = nil
	s.inboxMu.Unlock()
}

// purgePlaybackMessages drops queued playhead messages so a stopped player
// cannot move the playhead afterwards.
func (s *Session) purgePlaybackMessages() {
	s.inboxMu.Lock()
	defer s.inboxMu.Unlock()

	kept := s.inbox[:0]
	for _, msg := range s.inbox {
		switch msg.(type) {
		case PlayheadTick, PlaybackEnded:
			continue
		}
		kept = append(kept, msg)
	}
	clear(s.inbox[len(kept):])
	s.inbox = kept
}

// handle applies one message. Callers hold s.mu.
func (s *Session) handle(msg Msg) {
	switch m := msg.(type) {
	case KeyDown:
		s.handleKeyDown(m)
	case KeyUp:
		delete(s.activeKeys, keyCode(m.Code))
	case PlayheadTick:
		if s.playing {
			s.playhead = m.Position
			s.touch()
		}
	case PlaybackEnded:
		s.playing = false
		s.touch()
	}
}

func (s *Session) handleKeyDown(m KeyDown) {
	if s.state != StateRecording || m.Repeat {
		return
	}
	code := keyCode(m.Code)
	if _, held := s.activeKeys[code]; held {
		return
	}

	evt, err := s.timeline.Append(code, m.Label, m.At)
	if err != nil {
		s.log.Warn("key press rejected",
			logger.String("code", code),
			logger.Float64("at", m.At),
			logger.Error(err))
		return
	}
	s.activeKeys[code] = struct{}{}
	s.touch()
	s.metrics.RecordEvent(string(evt.Group))
	s.log.Trace("key press recorded",
		logger.String("code", evt.Code),
		logger.String("label", evt.Display),
		logger.Float64("at", evt.Time))
}

func keyCode(code string) string {
	if code == "" {
		return timeline.CodeUnidentified
	}
	return code
}
