package feed

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"pagechat/internal/models"
)

const (
	// DefaultPollInterval is used when no override is configured.
	DefaultPollInterval = 4 * time.Second
	// MinPollInterval and MaxPollInterval clamp external overrides.
	MinPollInterval = 2 * time.Second
	MaxPollInterval = 15 * time.Second
)

// MessageSource lists messages with id > afterID for a page scope,
// ascending by id.
type MessageSource interface {
	ListMessages(ctx context.Context, pageUniqueID string, afterID int64) ([]models.ChatMessage, error)
}

// ClampPollInterval normalizes a configured interval: zero means the
// default, anything else is clamped to [MinPollInterval, MaxPollInterval].
func ClampPollInterval(d time.Duration) time.Duration {
	if d == 0 {
		return DefaultPollInterval
	}
	if d < MinPollInterval {
		return MinPollInterval
	}
	if d > MaxPollInterval {
		return MaxPollInterval
	}
	return d
}

// Poller runs the background poll cycle for one feed. Polling starts
// only after the initial load succeeds and stops when Stop is called
// or the context is cancelled. Poll failures are logged and swallowed;
// they never clear the sequence or halt future cycles.
type Poller struct {
	source   MessageSource
	feed     *Feed
	interval time.Duration

	cancel context.CancelFunc
	done   chan struct{}
}

func NewPoller(source MessageSource, f *Feed, interval time.Duration) *Poller {
	return &Poller{
		source:   source,
		feed:     f,
		interval: ClampPollInterval(interval),
	}
}

// Start performs the initial load and, on success, launches the poll
// loop. A failed load returns the error and schedules nothing.
func (p *Poller) Start(ctx context.Context) error {
	items, err := p.source.ListMessages(ctx, p.feed.PageUniqueID(), 0)
	if err != nil {
		return fmt.Errorf("loading messages: %w", err)
	}
	p.feed.Load(items)

	loopCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})
	go p.run(loopCtx)
	return nil
}

// Stop cancels the poll loop and waits for the current cycle, if any,
// to finish. Safe to call when Start never succeeded.
func (p *Poller) Stop() {
	if p.cancel == nil {
		return
	}
	p.cancel()
	<-p.done
}

func (p *Poller) run(ctx context.Context) {
	defer close(p.done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.pollOnce(ctx)
		}
	}
}

func (p *Poller) pollOnce(ctx context.Context) {
	items, err := p.source.ListMessages(ctx, p.feed.PageUniqueID(), p.feed.LastMessageID())
	if err != nil {
		slog.Warn("message poll failed", "component", "feed", "page", p.feed.PageUniqueID(), "error", err)
		return
	}
	if len(items) == 0 {
		return
	}
	p.feed.Merge(items)
}
