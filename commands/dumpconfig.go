package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"booknav/config"
	"booknav/state"
)

// DumpConfig writes either embedded default configuration or the effective
// one to a file or STDOUT.
func DumpConfig(ctx context.Context, cmd *cli.Command) (err error) {
	env := state.EnvFromContext(ctx)
	if cmd.Args().Len() > 1 {
		env.Log.Warn("Malformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[1:]))
	}

	var data []byte
	kind := "actual"
	switch {
	case cmd.Bool("default"):
		kind = "default"
		data, err = config.Prepare()
	case env.Cfg != nil:
		data, err = config.Dump(env.Cfg)
	default:
		err = errors.New("configuration is not loaded")
	}
	if err != nil {
		return fmt.Errorf("unable to get configuration: %w", err)
	}

	var out io.Writer = os.Stdout
	fname := cmd.Args().Get(0)
	if len(fname) > 0 {
		f, er := os.Create(fname)
		if er != nil {
			return fmt.Errorf("unable to create destination file '%s': %w", fname, er)
		}
		defer func() {
			err = multierr.Append(err, f.Close())
		}()
		out = f
	} else {
		fname = "STDOUT"
	}

	env.Log.Info("Writing configuration", zap.String("state", kind), zap.String("file", fname))
	if _, err := out.Write(data); err != nil {
		return fmt.Errorf("unable to write configuration: %w", err)
	}
	return nil
}
