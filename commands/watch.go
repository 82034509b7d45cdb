package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"booknav/host"
	"booknav/layout"
	"booknav/toolbar"
	"booknav/vault"
)

// single view is driven from command line
const mainView = "main"

// Watch keeps index current while vault changes and prints toolbar of the
// open document after every refresh. Runs until interrupted.
func Watch(ctx context.Context, cmd *cli.Command) error {
	s, err := openSession(ctx, cmd, "watch")
	if err != nil {
		return err
	}
	s.tooManyArgs(cmd, 1)

	widths, err := s.env.Measurer()
	if err != nil {
		return fmt.Errorf("unable to prepare label measurer: %w", err)
	}

	w, err := vault.NewWatcher(s.src, s.filter, s.env.Cfg.Vault.Debounce, s.log)
	if err != nil {
		return err
	}
	defer w.Close()

	var mu sync.Mutex
	render := func(name string, v toolbar.View) {
		mu.Lock()
		defer mu.Unlock()
		if v.Deferred {
			return
		}
		fmt.Fprintf(os.Stdout, "--- %s\n%s", name, v.String())
	}

	opts := host.Options{
		Layout:     layout.OptionsFromConfig(&s.env.Cfg.Toolbar),
		RetryDelay: s.env.Cfg.Toolbar.RetryDelay,
		MaxRetries: 10,
	}
	h := host.New(s, widths, opts, render, s.log)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return h.Run(gctx)
	})
	g.Go(func() error {
		return w.Run(gctx, func() {
			s.log.Info("Vault changed, rebuilding index")
			if err := h.Send(gctx, host.MetadataResolved()); err != nil {
				s.log.Debug("Change notification lost", zap.Error(err))
			}
		})
	})
	g.Go(func() error {
		events := []host.Event{host.MetadataResolved()}
		if doc := cmd.String("open"); len(doc) > 0 {
			events = append(events,
				host.ActiveViewChanged(mainView, s.document(doc)),
				host.Resized(mainView, cmd.Float("width")))
		}
		for _, ev := range events {
			if err := h.Send(gctx, ev); err != nil {
				if errors.Is(err, host.ErrStopped) {
					return nil
				}
				return err
			}
		}
		return nil
	})

	s.log.Info("Watching vault, interrupt to stop", zap.String("location", s.src.Location()))
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
