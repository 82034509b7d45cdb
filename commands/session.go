// Package commands implements program subcommands.
package commands

import (
	"context"
	"errors"
	"fmt"
	"path"
	"path/filepath"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"booknav/common"
	"booknav/index"
	"booknav/links"
	"booknav/meta"
	"booknav/state"
	"booknav/vault"
)

// session is everything needed to index a single vault.
type session struct {
	env     *state.LocalEnv
	log     *zap.Logger
	filter  vault.Filter
	src     vault.Source
	catalog *vault.Catalog
	builder *index.Builder
}

func openSession(ctx context.Context, cmd *cli.Command, name string) (*session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named(name)

	location := cmd.Args().Get(0)
	if len(location) == 0 {
		return nil, errors.New("no vault has been specified")
	}
	location, err := filepath.Abs(location)
	if err != nil {
		return nil, err
	}

	cfg := &env.Cfg.Vault
	filter := vault.Filter{Extensions: cfg.Extensions, Ignore: cfg.Ignore}
	src, err := vault.Open(location, filter, log)
	if err != nil {
		return nil, fmt.Errorf("unable to open vault: %w", err)
	}

	labeler, err := index.NewLabeler(&env.Cfg.Labels)
	if err != nil {
		return nil, fmt.Errorf("unable to prepare chapter labels: %w", err)
	}

	catalog := vault.NewCatalog(src, cfg.Extensions[0], log)
	opts := index.Options{Keys: meta.KeysFromConfig(cfg), Labels: labeler}

	log.Debug("Vault opened", zap.Stringer("kind", src.Kind()), zap.String("location", src.Location()))
	return &session{
		env:     env,
		log:     log,
		filter:  filter,
		src:     src,
		catalog: catalog,
		builder: index.NewBuilder(catalog, links.NewResolver(catalog, log), opts, log),
	}, nil
}

// Build produces index snapshot and stores its dumps in debug report.
func (s *session) Build(ctx context.Context) (*index.Novel, error) {
	novel, err := s.builder.Build(ctx)
	if err != nil {
		return nil, err
	}
	s.log.Info("Index built",
		zap.Int("documents", s.catalog.Vault().Len()),
		zap.Int("books", len(novel.Books)),
		zap.Int("chapters", len(novel.Chapters)),
		zap.Int("problems", len(novel.Diagnostics)))

	if s.env.Rpt != nil {
		s.env.Rpt.StoreData("index/novel.txt", []byte(novel.String()))
		for _, b := range novel.SortedBooks() {
			s.env.Rpt.StoreData(b.ReportName(), []byte(b.String()))
		}
	}
	return novel, nil
}

// Last returns latest snapshot.
func (s *session) Last() *index.Novel {
	return s.builder.Last()
}

// tooManyArgs warns about ignored arguments.
func (s *session) tooManyArgs(cmd *cli.Command, expected int) {
	if cmd.Args().Len() > expected {
		s.log.Warn("Malformed command line, too many arguments", zap.Strings("ignoring", cmd.Args().Slice()[expected:]))
	}
}

// document converts command line argument into vault relative path.
func (s *session) document(arg string) string {
	if s.src.Kind() == common.SourceKindDirectory && filepath.IsAbs(arg) {
		if rel, err := filepath.Rel(s.src.Location(), arg); err == nil {
			return filepath.ToSlash(rel)
		}
	}
	return path.Clean(filepath.ToSlash(arg))
}
