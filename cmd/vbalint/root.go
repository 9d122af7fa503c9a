package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/bep/debounce"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/kestrelcode/vbalint/internal/config"
	"github.com/kestrelcode/vbalint/internal/logging"
	"github.com/kestrelcode/vbalint/internal/objectmodel"
	"github.com/kestrelcode/vbalint/internal/preprocessor"
	"github.com/kestrelcode/vbalint/internal/project"
	"github.com/kestrelcode/vbalint/internal/report"
	"github.com/kestrelcode/vbalint/internal/runner"
)

var (
	flagVerbose int
	flagDefine  string
	flagModel   []string
	flagOutput  string
	flagCache   string
	flagConfig  string
	flagWatch   bool
)

var rootCmd = &cobra.Command{
	Use:           "vbalint INPUT_DIR",
	Short:         "vbalint statically analyzes a directory of VBA source files",
	Args:          cobra.ExactArgs(1),
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.SetVerbose(flagVerbose >= 1)
	},
	RunE: runRoot,
}

func init() {
	rootCmd.PersistentFlags().CountVarP(&flagVerbose, "verbose", "v", "verbose output")
	rootCmd.Flags().StringVar(&flagDefine, "define", "", "comma-separated KEY=VALUE conditional-compilation constants")
	rootCmd.Flags().StringArrayVar(&flagModel, "model", nil, "path to an additional object model JSON file (repeatable)")
	rootCmd.Flags().StringVar(&flagOutput, "output", "", "path to write a JSON report to (console output always happens)")
	rootCmd.Flags().StringVar(&flagCache, "cache", "", "path to a fingerprint cache database; unset disables caching")
	rootCmd.Flags().StringVar(&flagConfig, "config", ".vbalint.yaml", "path to a project configuration file")
	rootCmd.Flags().BoolVar(&flagWatch, "watch", false, "re-run the analysis whenever a watched file changes")
}

func runRoot(cmd *cobra.Command, args []string) error {
	root := args[0]
	if info, statErr := os.Stat(root); statErr != nil || !info.IsDir() {
		return fmt.Errorf("vbalint: input directory %s not found", root)
	}

	cfg, err := config.Load(flagConfig)
	if err != nil {
		return err
	}

	defines, err := mergeDefines(cfg)
	if err != nil {
		return err
	}

	modelPaths := flagModel
	if cfg.Model != "" {
		modelPaths = append([]string{cfg.Model}, modelPaths...)
	}
	for _, p := range modelPaths {
		if loadErr := objectmodel.New().LoadFile(p); loadErr != nil {
			return loadErr
		}
	}

	cachePath := flagCache
	if cachePath == "" {
		cachePath = cfg.Cache
	}

	opts := runner.Options{
		Root:       root,
		ModelPaths: modelPaths,
		Defines:    defines,
		CachePath:  cachePath,
	}

	if !flagWatch {
		return runOnce(cmd.Context(), opts)
	}
	return runWatch(cmd.Context(), opts)
}

func mergeDefines(cfg *config.File) (map[string]preprocessor.Value, error) {
	defines := map[string]preprocessor.Value{}
	for k, v := range cfg.Defines {
		parsed, err := config.ParseDefines(k + "=" + v)
		if err != nil {
			return nil, err
		}
		for pk, pv := range parsed {
			defines[pk] = pv
		}
	}
	fromFlag, err := config.ParseDefines(flagDefine)
	if err != nil {
		return nil, err
	}
	for k, v := range fromFlag {
		defines[k] = v
	}
	return defines, nil
}

func runOnce(ctx context.Context, opts runner.Options) error {
	items, filesScanned, err := runner.Run(ctx, opts)
	if err != nil {
		logging.Logger().Warn().Err(err).Msg("scan completed with errors")
	}

	report.WriteConsole(os.Stdout, items)

	if flagOutput != "" {
		proj, projErr := project.Detect(opts.Root)
		if projErr != nil {
			logging.Logger().Warn().Err(projErr).Msg("could not detect project info")
		}
		if writeErr := report.New(proj.Name, filesScanned, items).WriteJSON(flagOutput); writeErr != nil {
			return writeErr
		}
	}

	return nil
}

// errExitWithIssues is a sentinel that signals a nonzero exit without
// printing an additional error line - the diagnostics themselves are
// the output.
var errExitWithIssues = &silentError{}

type silentError struct{}

func (e *silentError) Error() string { return "" }

func runWatch(ctx context.Context, opts runner.Options) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("vbalint: create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(opts.Root); err != nil {
		return fmt.Errorf("vbalint: watch %s: %w", opts.Root, err)
	}

	rescan := func() {
		if err := runOnce(ctx, opts); err != nil && err != errExitWithIssues {
			logging.Logger().Error().Err(err).Msg("scan failed")
		}
	}
	rescan()

	signalDebounce := debounce.New(200 * time.Millisecond)
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Remove) {
				signalDebounce(rescan)
			}
		case watchErr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logging.Logger().Warn().Err(watchErr).Msg("watcher error")
		}
	}
}
