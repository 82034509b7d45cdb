package commands

import (
	"context"
	"errors"
	"fmt"
	"os"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"booknav/layout"
	"booknav/nav"
	"booknav/toolbar"
)

// Nav prints toolbar of a single document.
func Nav(ctx context.Context, cmd *cli.Command) error {
	s, err := openSession(ctx, cmd, "nav")
	if err != nil {
		return err
	}
	if cmd.Args().Len() < 2 {
		return errors.New("no document has been specified")
	}
	s.tooManyArgs(cmd, 2)
	doc := s.document(cmd.Args().Get(1))

	novel, err := s.Build(ctx)
	if err != nil {
		return err
	}

	widths, err := s.env.Measurer()
	if err != nil {
		return fmt.Errorf("unable to prepare label measurer: %w", err)
	}
	mount := toolbar.NewMount(widths, layout.OptionsFromConfig(&s.env.Cfg.Toolbar), s.log)
	defer mount.Close()

	mode := nav.ResolveMode(novel, doc)
	s.log.Debug("Mode resolved", zap.String("document", doc), zap.Stringer("mode", mode.Kind))

	mount.Resize(cmd.Float("width"))
	view := mount.Update(novel, doc)
	if _, err := fmt.Fprint(os.Stdout, view.String()); err != nil {
		return fmt.Errorf("unable to write toolbar: %w", err)
	}
	return nil
}
