// Package state defines shared program state.
package state

import (
	"context"
	"time"

	"go.uber.org/zap"

	"booknav/config"
	"booknav/layout"
)

type envKey struct{}

// LocalEnv keeps everything program needs in a single place.
type LocalEnv struct {
	Cfg *config.Config
	Rpt *config.Report
	Log *zap.Logger

	// Label widths depend on font metrics only, all toolbars share them.
	Widths *layout.Memo

	start         time.Time
	restoreStdLog func()
}

func EnvFromContext(ctx context.Context) *LocalEnv {
	if env, ok := ctx.Value(envKey{}).(*LocalEnv); ok {
		return env
	}
	// this should never happen
	panic("localenv not found in context")
}

func ContextWithEnv(ctx context.Context) context.Context {
	return context.WithValue(ctx, envKey{}, newLocalEnv())
}

func (e *LocalEnv) Uptime() time.Duration {
	return time.Since(e.start)
}

// Measurer returns shared label measurer configured from toolbar settings,
// creating it on first use.
func (e *LocalEnv) Measurer() (*layout.Memo, error) {
	if e.Widths != nil {
		return e.Widths, nil
	}
	face, err := layout.NewFontMeasurer(e.Cfg.Toolbar.FontSize, e.Cfg.Toolbar.DPI)
	if err != nil {
		return nil, err
	}
	e.Widths = layout.NewMemo(face)
	return e.Widths, nil
}

func (e *LocalEnv) RedirectStdLog() {
	if e.Log == nil {
		return
	}
	e.restoreStdLog = zap.RedirectStdLog(e.Log)
}

func (e *LocalEnv) RestoreStdLog() {
	if e.Log != nil {
		_ = e.Log.Sync()
	}
	if e.restoreStdLog != nil {
		e.restoreStdLog()
	}
}
