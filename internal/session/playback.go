package session

import (
	"context"
	"time"

	"github.com/tphakala/keyclip/internal/logger"
)

const defaultPollInterval = 50 * time.Millisecond

type playbackLoop struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// StartPlayback polls src on the configured interval and posts PlayheadTick
// messages until src reports it finished, ctx is canceled or StopPlayback is
// called. A running loop is stopped first.
func (s *Session) StartPlayback(ctx context.Context, src PositionSource) error {
	s.stopPlayback()

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireBuffer("playback"); err != nil {
		return err
	}

	interval := s.cfg.PollInterval
	if interval <= 0 {
		interval = defaultPollInterval
	}

	loopCtx, cancel := context.WithCancel(ctx)
	loop := &playbackLoop{cancel: cancel, done: make(chan struct{})}
	s.playback = loop
	s.playing = true
	s.touch()

	go s.pollPlayhead(loopCtx, src, interval, loop.done)

	s.log.Debug("playback started", logger.Duration("interval", interval))
	return nil
}

// StopPlayback cancels the playhead loop and waits for it to exit. No tick
// is applied after it returns. Stopping with no loop running is a no-op.
func (s *Session) StopPlayback() {
	s.stopPlayback()
}

func (s *Session) stopPlayback() {
	s.mu.Lock()
	loop := s.playback
	s.playback = nil
	if s.playing {
		s.playing = false
		s.touch()
	}
	s.mu.Unlock()

	if loop == nil {
		return
	}
	loop.cancel()
	<-loop.done
	s.purgePlaybackMessages()
	s.log.Debug("playback stopped")
}

func (s *Session) pollPlayhead(ctx context.Context, src PositionSource, interval time.Duration, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			pos, finished := src.Position()
			s.Post(PlayheadTick{Position: pos})
			if finished {
				s.Post(PlaybackEnded{})
				return
			}
		}
	}
}
