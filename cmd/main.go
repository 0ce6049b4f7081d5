package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/brettbedarf/questsh"
	"github.com/brettbedarf/questsh/config"
	"github.com/brettbedarf/questsh/filesystem"
	"github.com/brettbedarf/questsh/internal/util"
	"github.com/brettbedarf/questsh/metrics"
	"github.com/brettbedarf/questsh/requests"
	"github.com/brettbedarf/questsh/shell"
	"github.com/spf13/cobra"
)

// errCommandFailed signals a failed -c command whose message was already shown.
var errCommandFailed = errors.New("command failed")

type flags struct {
	configPath  string
	verbose     int
	user        string
	hostname    string
	seedFile    string
	sessionFile string
	command     string
	metrics     bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if !errors.Is(err, errCommandFailed) {
			fmt.Fprintln(os.Stderr, "questsh:", err)
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	f := &flags{}
	root := &cobra.Command{
		Use:           "questsh",
		Short:         "A safe, in-memory Linux shell for learning the command line",
		Version:       questsh.Version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, f)
		},
	}

	pf := root.Flags()
	pf.StringVar(&f.configPath, "config", "", "Path to a YAML or JSON config file")
	pf.IntVarP(&f.verbose, "verbose", "v", config.WarnVerbose, "Log verbosity level between 1 (error) and 5 (trace)")
	pf.StringVar(&f.user, "user", "", "Simulated user name")
	pf.StringVar(&f.hostname, "hostname", "", "Simulated host name")
	pf.StringVarP(&f.seedFile, "nodes", "n", "", "Path to a node definition file replacing the default skeleton")
	pf.StringVarP(&f.sessionFile, "session", "s", "", "Session file restored on start and saved on exit")
	pf.StringVarP(&f.command, "command", "c", "", "Run a single command line and exit")
	pf.BoolVar(&f.metrics, "metrics", false, "Print command metrics to stderr on exit")
	return root
}

// loadConfig merges the config file and any explicitly set flags.
func loadConfig(cmd *cobra.Command, f *flags) (*config.Config, error) {
	cfg := config.NewDefaultConfig()
	if f.configPath != "" {
		override, err := config.LoadConfigOverrideFile(f.configPath)
		if err != nil {
			return nil, err
		}
		cfg.Merge(override)
	}

	override := &config.ConfigOverride{}
	set := cmd.Flags().Changed
	if set("verbose") || f.configPath == "" {
		override.LogLvl = util.Pointer(f.verbose)
	}
	if set("user") {
		override.User = util.Pointer(f.user)
	}
	if set("hostname") {
		override.Hostname = util.Pointer(f.hostname)
	}
	if set("nodes") {
		override.SeedFile = util.Pointer(f.seedFile)
	}
	if set("session") {
		override.SessionFile = util.Pointer(f.sessionFile)
	}
	cfg.Merge(override)
	return cfg, nil
}

func loadSeed(cfg *config.Config) ([]questsh.NodeRequest, error) {
	vars := requests.Vars{User: cfg.User, Home: cfg.Home(), Hostname: cfg.Hostname}
	if cfg.SeedFile == "" {
		return requests.Default(vars)
	}
	return requests.LoadFile(cfg.SeedFile, vars)
}

func run(cmd *cobra.Command, f *flags) error {
	cfg, err := loadConfig(cmd, f)
	if err != nil {
		return err
	}
	util.InitializeLogger(cfg.LogLvl)
	logger := util.GetLogger("main")
	logger.Info().Str("user", cfg.User).Str("host", cfg.Hostname).Str("nodes", cfg.SeedFile).Msg("Shell initializing")

	seed, err := loadSeed(cfg)
	if err != nil {
		return fmt.Errorf("failed to load node definitions: %w", err)
	}

	collector := metrics.NewCollector()
	sess, err := shell.NewSession(cfg, seed, shell.WithSubscribers(collector))
	if err != nil {
		return fmt.Errorf("failed to build filesystem: %w", err)
	}
	logger.Debug().Int("nodes", sess.FS().NodeCount()).Msg("Filesystem seeded")

	if cfg.SessionFile != "" {
		if err := restoreSession(sess, cfg.SessionFile); err != nil {
			return err
		}
	}
	defer func() {
		if f.metrics {
			if err := collector.WriteText(os.Stderr); err != nil {
				logger.Error().Err(err).Msg("Failed to write metrics")
			}
		}
	}()

	if cmd.Flags().Changed("command") {
		res := sess.Execute(f.command)
		printResult(res)
		if err := saveSession(sess, cfg.SessionFile); err != nil {
			return err
		}
		if !res.Succeeded() {
			return errCommandFailed
		}
		return nil
	}

	repl(sess, cfg)
	return saveSession(sess, cfg.SessionFile)
}

func restoreSession(sess *shell.Session, path string) error {
	logger := util.GetLogger("main")
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		logger.Info().Str("session", path).Msg("No saved session, starting fresh")
		return nil
	}
	if err != nil {
		return err
	}
	format, err := filesystem.FormatFromPath(path)
	if err != nil {
		return err
	}
	st, err := shell.UnmarshalState(data, format)
	if err != nil {
		return err
	}
	if err := sess.Load(st); err != nil {
		return fmt.Errorf("failed to restore session %s: %w", path, err)
	}
	logger.Info().Str("session", path).Str("cwd", sess.Cwd()).Msg("Session restored")
	return nil
}

func saveSession(sess *shell.Session, path string) error {
	if path == "" {
		return nil
	}
	format, err := filesystem.FormatFromPath(path)
	if err != nil {
		return err
	}
	data, err := shell.MarshalState(sess.Save(), format)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	logger := util.GetLogger("main")
	logger.Info().Str("session", path).Msg("Session saved")
	return nil
}
