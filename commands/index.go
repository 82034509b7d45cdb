package commands

import (
	"context"
	"fmt"
	"os"

	cli "github.com/urfave/cli/v3"
)

// Index builds vault index and prints it.
func Index(ctx context.Context, cmd *cli.Command) error {
	s, err := openSession(ctx, cmd, "index")
	if err != nil {
		return err
	}
	s.tooManyArgs(cmd, 1)

	novel, err := s.Build(ctx)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprint(os.Stdout, novel.String()); err != nil {
		return fmt.Errorf("unable to write index: %w", err)
	}
	return nil
}
