package commands

import (
	"context"
	"errors"
	"fmt"
	"os"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"booknav/layout"
	"booknav/utils/debug"
)

// Layout prints how chapter strip of a book fits into given width.
func Layout(ctx context.Context, cmd *cli.Command) error {
	s, err := openSession(ctx, cmd, "layout")
	if err != nil {
		return err
	}
	if cmd.Args().Len() < 2 {
		return errors.New("no book has been specified")
	}
	s.tooManyArgs(cmd, 2)
	doc := s.document(cmd.Args().Get(1))

	novel, err := s.Build(ctx)
	if err != nil {
		return err
	}
	book := novel.Book(doc)
	if book == nil {
		return fmt.Errorf("document '%s' is not a book", doc)
	}

	widths, err := s.env.Measurer()
	if err != nil {
		return fmt.Errorf("unable to prepare label measurer: %w", err)
	}
	labels := make([]string, 0, len(book.Chapters))
	for _, ch := range book.Chapters {
		labels = append(labels, ch.Label)
	}
	width := cmd.Float("width")
	engine := layout.NewEngine(labels, widths, layout.OptionsFromConfig(&s.env.Cfg.Toolbar))
	res := engine.Layout(width)

	s.log.Debug("Layout computed", zap.Float64("width", width), zap.Int("start", res.Start), zap.Int("end", res.End), zap.Bool("deferred", res.Deferred))

	tw := debug.NewTreeWriter()
	tw.Line(0, "Book[%q] width[%g] chapters[%d]", book.Title, width, len(labels))
	if res.Deferred {
		tw.Line(1, "deferred: container is not sized")
	} else {
		tw.Line(1, "hidden [%d, %d) overflow[%t]", res.Start, res.End, res.OverflowVisible)
	}
	for i, label := range labels {
		mark := "visible"
		if engine.IsHidden(i) {
			mark = "hidden"
		}
		tw.Line(2, "[%d] %q %s width[%.1f]", i, label, mark, widths.Measure(label))
	}
	menu := make([]string, 0, len(labels))
	for _, item := range engine.Menu() {
		menu = append(menu, item.Label)
	}
	tw.List(1, "Menu", menu)

	if _, err := fmt.Fprint(os.Stdout, tw.String()); err != nil {
		return fmt.Errorf("unable to write layout: %w", err)
	}
	return nil
}
