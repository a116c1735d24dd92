package format

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"partfmt/config"
	"partfmt/state"
)

// Run is the format subcommand action.
func Run(ctx context.Context, cmd *cli.Command) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("format").With(zap.Stringer("run", env.RunID))

	src := cmd.Args().Get(0)
	if len(src) == 0 {
		return errors.New("no input source has been specified")
	}
	if src, err = filepath.Abs(src); err != nil {
		return err
	}

	dst := cmd.Args().Get(1)
	if len(dst) == 0 {
		if dst, err = os.Getwd(); err != nil {
			return fmt.Errorf("unable to get working directory: %w", err)
		}
	}
	if dst, err = filepath.Abs(dst); err != nil {
		return err
	}
	if cmd.Args().Len() > 2 {
		log.Warn("Malformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[2:]))
	}

	if err := applyOverrides(cmd, &env.Cfg.Layout); err != nil {
		return err
	}
	if err := env.Cfg.Validate(); err != nil {
		return fmt.Errorf("invalid layout request: %w", err)
	}
	env.Overwrite = cmd.Bool("overwrite")

	if env.Rpt != nil {
		if data, err := config.Dump(env.Cfg); err == nil {
			env.Rpt.StoreData("config/effective.yaml", data)
		}
	}

	f, err := New(env.Cfg, env.Rpt, env.RunID, env.Overwrite, log)
	if err != nil {
		return err
	}

	log.Info("Formatting starting",
		zap.String("source", src), zap.String("destination", dst), zap.Stringer("style", env.Cfg.Layout.Style))
	start := time.Now()

	sum, err := f.Process(ctx, src, dst)
	if err != nil {
		return err
	}
	log.Info("Formatting completed",
		zap.String("to", sum.Output),
		zap.Int("movements", sum.Movements),
		zap.Int("parts", sum.Parts),
		zap.Int("styles", sum.Styles),
		zap.Int("copied", sum.Copied),
		zap.Duration("elapsed", time.Since(start)))
	return nil
}

// applyOverrides puts command line values on top of configured layout.
func applyOverrides(cmd *cli.Command, l *config.LayoutConfig) error {
	if cmd.IsSet("style") {
		s, err := config.ParseStyle(cmd.String("style"))
		if err != nil {
			return err
		}
		l.Style = s
	}
	if cmd.IsSet("measures-per-line") {
		l.MeasuresPerLine = int(cmd.Int("measures-per-line"))
	}
	if cmd.IsSet("measures-per-line-part") {
		l.MeasuresPerLinePart = int(cmd.Int("measures-per-line-part"))
	}
	if cmd.IsSet("title") {
		l.ShowTitle = cmd.String("title")
	}
	if cmd.IsSet("number") {
		l.ShowNumber = cmd.String("number")
	}
	if cmd.IsSet("part") {
		l.PartName = cmd.String("part")
	}
	if cmd.IsSet("composer") {
		l.Composer = cmd.String("composer")
	}
	if cmd.IsSet("arranger") {
		l.Arranger = cmd.String("arranger")
	}
	if cmd.Bool("no-page-breaks") {
		l.PageBreaks = false
	}
	return nil
}
