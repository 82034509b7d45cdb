// Package host sequences everything which happens to the navigation
// toolbars: index rebuilds, active document changes and container resizes
// are processed one at a time on a single goroutine.
package host

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"booknav/index"
	"booknav/layout"
	"booknav/toolbar"
)

// Builder produces index snapshots.
type Builder interface {
	Build(ctx context.Context) (*index.Novel, error)
	Last() *index.Novel
}

// RenderFunc receives every toolbar refresh.
type RenderFunc func(view string, v toolbar.View)

// Options control layout retries.
type Options struct {
	Layout     layout.Options
	RetryDelay time.Duration
	// Deferred layout of a view is attempted at most this many times in a
	// row, 0 means no limit.
	MaxRetries int
}

// ErrStopped is returned when event is sent to host which is not running.
var ErrStopped = errors.New("host is not running")

type view struct {
	mount   *toolbar.Mount
	path    string
	retry   *time.Timer
	seq     uint64
	retries int
}

// Host owns index builder, current snapshot and mounted toolbars.
type Host struct {
	builder Builder
	widths  layout.Measurer
	opts    Options
	render  RenderFunc
	log     *zap.Logger

	events chan Event
	done   chan struct{}
	views  map[string]*view
	seq    uint64
}

// New creates host. Label widths are measured through widths shared by all
// views.
func New(builder Builder, widths layout.Measurer, opts Options, render RenderFunc, log *zap.Logger) *Host {
	if render == nil {
		render = func(string, toolbar.View) {}
	}
	return &Host{
		builder: builder,
		widths:  widths,
		opts:    opts,
		render:  render,
		log:     log.Named("host"),
		events:  make(chan Event, 64),
		done:    make(chan struct{}),
		views:   make(map[string]*view),
	}
}

// Send queues event for processing, blocking while the queue is full.
func (h *Host) Send(ctx context.Context, ev Event) error {
	select {
	case <-h.done:
		return ErrStopped
	default:
	}
	select {
	case h.events <- ev:
		return nil
	case <-h.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// post is used by timers, it never blocks after host stopped.
func (h *Host) post(ev Event) {
	select {
	case h.events <- ev:
	case <-h.done:
	}
}

// Run processes events until context is cancelled. Views are closed on exit.
func (h *Host) Run(ctx context.Context) error {
	defer func() {
		close(h.done)
		for name := range h.views {
			h.closeView(name)
		}
	}()

	h.log.Debug("Event loop started")
	for {
		select {
		case <-ctx.Done():
			h.log.Debug("Event loop stopped", zap.Error(ctx.Err()))
			return ctx.Err()
		case ev := <-h.events:
			h.handle(ctx, ev)
		}
	}
}

func (h *Host) handle(ctx context.Context, ev Event) {
	h.log.Debug("Processing event", zap.Stringer("event", ev.Kind), zap.String("view", ev.View))

	switch ev.Kind {
	case EventMetadataResolved:
		// refresh always follows completed rebuild
		if _, err := h.builder.Build(ctx); err != nil {
			h.log.Warn("Unable to rebuild index, keeping previous one", zap.Error(err))
		}
		h.refreshAll()
	case EventActiveViewChanged:
		v := h.view(ev.View)
		v.path = ev.Path
		h.refresh(ev.View, v)
	case EventLayoutChanged:
		h.refreshAll()
	case EventResized:
		v := h.view(ev.View)
		h.supersede(v)
		v.retries = 0
		h.show(ev.View, v, v.mount.Resize(ev.Width))
	case EventRetry:
		v, ok := h.views[ev.View]
		if !ok || ev.seq != v.seq {
			h.log.Debug("Dropping stale retry", zap.String("view", ev.View))
			return
		}
		v.retry = nil
		// latest known width
		h.show(ev.View, v, v.mount.Resize(v.mount.Width()))
	case EventClosed:
		h.closeView(ev.View)
	default:
		h.log.Warn("Unknown event ignored", zap.Stringer("event", ev.Kind))
	}
}

func (h *Host) view(name string) *view {
	v, ok := h.views[name]
	if !ok {
		v = &view{mount: toolbar.NewMount(h.widths, h.opts.Layout, h.log.With(zap.String("view", name)))}
		h.views[name] = v
	}
	return v
}

func (h *Host) refreshAll() {
	for name, v := range h.views {
		h.refresh(name, v)
	}
}

func (h *Host) refresh(name string, v *view) {
	h.show(name, v, v.mount.Update(h.builder.Last(), v.path))
}

func (h *Host) show(name string, v *view, tb toolbar.View) {
	h.render(name, tb)
	if !tb.Deferred {
		v.retries = 0
		return
	}
	if v.retry != nil {
		return
	}
	if h.opts.MaxRetries > 0 && v.retries >= h.opts.MaxRetries {
		h.log.Debug("Giving up on deferred layout", zap.String("view", name), zap.Int("retries", v.retries))
		return
	}
	v.retries++
	h.seq++
	v.seq = h.seq
	ev := Event{Kind: EventRetry, View: name, seq: v.seq}
	v.retry = time.AfterFunc(h.opts.RetryDelay, func() { h.post(ev) })
}

// supersede cancels pending retry, newer width is coming.
func (h *Host) supersede(v *view) {
	if v.retry != nil {
		v.retry.Stop()
		v.retry = nil
	}
	h.seq++
	v.seq = h.seq
}

func (h *Host) closeView(name string) {
	v, ok := h.views[name]
	if !ok {
		return
	}
	h.supersede(v)
	v.mount.Close()
	delete(h.views, name)
}
