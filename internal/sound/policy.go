package sound

import (
	"context"
	"io"
	"log"
	"sync"

	"github.com/JamesPrial/todo-engagement/internal/pathutil"
	"github.com/JamesPrial/todo-engagement/internal/settings"
)

// Policy plays the user's chosen alert sound when settings allow it.
//
// Play never blocks on audio and never fails: playback runs on its own
// goroutine and every error is logged and dropped.
type Policy struct {
	settings settings.Source
	player   Player
	dir      string
	logger   *log.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewPolicy creates a Policy that resolves assets inside dir.
// A nil logger discards output.
func NewPolicy(src settings.Source, player Player, dir string, logger *log.Logger) *Policy {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if player == nil {
		player = NopPlayer{}
	}
	return &Policy{settings: src, player: player, dir: dir, logger: logger}
}

// Play starts the configured sound, stopping any sound already playing. It is
// a no-op when notifications or sounds are disabled or the chosen sound id is
// not in the library.
func (p *Policy) Play() {
	s := p.settings.Current()
	if !s.EnableNotifications || !s.SoundEnabled {
		return
	}
	name, ok := Asset(s.DefaultSound)
	if !ok {
		return
	}
	path, err := pathutil.ResolveAsset(p.dir, name)
	if err != nil {
		p.logger.Printf("sound %q unavailable: %v", s.DefaultSound, err)
		return
	}

	p.mu.Lock()
	if p.cancel != nil {
		p.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.wg.Add(1)
	p.mu.Unlock()

	go func() {
		defer p.wg.Done()
		defer cancel()
		defer func() {
			if r := recover(); r != nil {
				p.logger.Printf("sound playback panicked: %v", r)
			}
		}()
		if err := p.player.Play(ctx, path); err != nil {
			p.logger.Printf("sound playback failed: %v", err)
		}
	}()
}

// Stop stops any sound that is playing and waits for playback to end.
func (p *Policy) Stop() {
	p.mu.Lock()
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	p.mu.Unlock()
	p.wg.Wait()
}

// Wait blocks until every started playback has finished.
func (p *Policy) Wait() {
	p.wg.Wait()
}
