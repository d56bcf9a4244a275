package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

// newWatchCmd creates the "watch" subcommand for re-synthesizing on context changes.
func newWatchCmd(g *globalFlags) *cobra.Command {
	var (
		debounce     time.Duration
		outputFormat string
		outputFile   string
		policyDir    string
		skipPolicy   bool
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-synthesize when the context files change",
		Long: `Watch monitors the context and cache files and re-runs synth on change.

The watch command:
- Watches the directories holding --context-file and --cache-file
- Debounces rapid changes to avoid excessive rebuilds
- Keeps running after a failed synth

Examples:
    webfocus-db watch -o template.json
    webfocus-db watch --debounce 1s`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, g, watchOptions{
				debounce: debounce,
				synth: synthOptions{
					format:     outputFormat,
					outputFile: outputFile,
					policyDir:  policyDir,
					skipPolicy: skipPolicy,
				},
			})
		},
	}

	cmd.Flags().DurationVar(&debounce, "debounce", 500*time.Millisecond, "Debounce duration for rapid changes")
	cmd.Flags().StringVarP(&outputFormat, "format", "f", "json", "Output format: json or yaml")
	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")
	cmd.Flags().StringVar(&policyDir, "policy-dir", "", "Directory of additional .rego guardrails")
	cmd.Flags().BoolVar(&skipPolicy, "skip-policy", false, "Do not fail on guardrail violations")

	return cmd
}

type watchOptions struct {
	debounce time.Duration
	synth    synthOptions
}

// runWatch monitors the context files and re-synthesizes on changes.
func runWatch(cmd *cobra.Command, g *globalFlags, opts watchOptions) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() {
		_ = watcher.Close()
	}()

	targets, err := watchTargets(g.contextFile, g.cacheFile)
	if err != nil {
		return err
	}

	// Watch directories rather than files so editors that replace files are seen.
	for dir := range dirsOf(targets) {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
		g.logger.Info().Str("dir", dir).Msg("watching")
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	resynth := func() {
		if err := runSynth(cmd, g, opts.synth); err != nil {
			g.logger.Error().Err(err).Msg("synth failed")
		}
	}

	resynth()

	var debounceTimer *time.Timer
	rebuildChan := make(chan struct{}, 1)

	g.logger.Info().Msg("watching for changes (Ctrl+C to stop)")

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if !isWatchedEvent(event, targets) {
				continue
			}

			// Debounce: reset timer on each change
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(opts.debounce, func() {
				select {
				case rebuildChan <- struct{}{}:
				default:
				}
			})

		case <-rebuildChan:
			g.logger.Info().Msg("change detected, re-synthesizing")
			resynth()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			g.logger.Warn().Err(err).Msg("watch error")

		case <-cmd.Context().Done():
			return nil

		case <-sigChan:
			g.logger.Info().Msg("stopping watch")
			return nil
		}
	}
}

// watchTargets returns the absolute paths of the files that trigger a rebuild.
func watchTargets(paths ...string) (map[string]bool, error) {
	targets := make(map[string]bool)
	for _, p := range paths {
		if p == "" {
			continue
		}
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, err
		}
		targets[abs] = true
	}
	return targets, nil
}

func dirsOf(targets map[string]bool) map[string]bool {
	dirs := make(map[string]bool)
	for t := range targets {
		dirs[filepath.Dir(t)] = true
	}
	return dirs
}

// isWatchedEvent reports whether event writes or creates one of the targets.
func isWatchedEvent(event fsnotify.Event, targets map[string]bool) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return false
	}
	abs, err := filepath.Abs(event.Name)
	if err != nil {
		return false
	}
	return targets[abs]
}
