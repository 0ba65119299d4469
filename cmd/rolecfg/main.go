package main

import (
	"fmt"
	"os"
	"sync"

	"github.com/cuemby/rolecfg/pkg/cache"
	"github.com/cuemby/rolecfg/pkg/config"
	"github.com/cuemby/rolecfg/pkg/configure"
	"github.com/cuemby/rolecfg/pkg/events"
	"github.com/cuemby/rolecfg/pkg/kerberos"
	"github.com/cuemby/rolecfg/pkg/log"
	"github.com/cuemby/rolecfg/pkg/metrics"
	"github.com/cuemby/rolecfg/pkg/paths"
	"github.com/cuemby/rolecfg/pkg/render"
	"github.com/cuemby/rolecfg/pkg/shell"
	"github.com/cuemby/rolecfg/pkg/strategy"
	"github.com/spf13/cobra"
)

var (
	// Version information (set via ldflags during build)
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "rolecfg",
	Short: "rolecfg - node agent that configures and starts service roles",
	Long: `rolecfg renders the configuration files of a service role on this node,
prepares its directories and credentials, and starts it with the scripts
shipped in its package.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("metrics-textfile")
		if path == "" {
			return nil
		}
		if err := metrics.WriteTextfile(path); err != nil {
			return fmt.Errorf("failed to write metrics: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"rolecfg version %s\nCommit: %s\nBuilt: %s\n",
		Version, Commit, BuildTime,
	))

	rootCmd.PersistentFlags().String("config", "", "Agent configuration file")
	rootCmd.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("log-json", false, "Output logs in JSON format")
	rootCmd.PersistentFlags().String("state-db", "", "Node state database (overrides stateDB)")
	rootCmd.PersistentFlags().String("metrics-textfile", "", "Write run metrics to this file on exit")

	rootCmd.AddCommand(configureCmd)
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(cacheCmd)
}

// agent holds the collaborators shared by the commands
type agent struct {
	cfg        *config.Config
	pipeline   *configure.Pipeline
	dispatcher *strategy.Dispatcher
	close      func() error
}

// loadConfig reads the config file and applies the global flag overrides
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.Log.Level = level
	}
	if cmd.Flags().Changed("log-json") {
		cfg.Log.JSON, _ = cmd.Flags().GetBool("log-json")
	}
	if stateDB, _ := cmd.Flags().GetString("state-db"); stateDB != "" {
		cfg.StateDB = stateDB
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log.Init(log.Config{
		Level:      log.Level(cfg.Log.Level),
		JSONOutput: cfg.Log.JSON,
	})
	return cfg, nil
}

// openCache returns the node cache: bbolt when a state database is set,
// the process memory cache otherwise
func openCache(cfg *config.Config) (cache.Cache, func() error, error) {
	if cfg.StateDB == "" {
		return cache.Default(), func() error { return nil }, nil
	}
	db, err := cache.NewBoltCache(cfg.StateDB)
	if err != nil {
		return nil, nil, err
	}
	return db, db.Close, nil
}

func newAgent(cmd *cobra.Command) (*agent, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	c, closeCache, err := openCache(cfg)
	if err != nil {
		return nil, err
	}
	if err := cache.Bootstrap(c); err != nil {
		closeCache()
		return nil, fmt.Errorf("failed to bootstrap node cache: %w", err)
	}

	executor := shell.NewLocalExecutor()
	pipeline := configure.New(configure.Config{
		InstallRoot:   cfg.InstallRoot,
		Renderer:      render.NewRenderer(cfg.InstallRoot, cfg.TemplateDir, log.WithComponent("render")),
		Paths:         paths.NewManager(log.WithComponent("paths")),
		Cache:         c,
		Shell:         executor,
		ScriptTimeout: cfg.ScriptTimeout,
	})

	starter := strategy.NewShellStarter(executor, cfg.InstallRoot).
		WithPolling(cfg.Start.StatusAttempts, cfg.Start.StatusInterval)

	broker, wait := stageLogger()

	dispatcher := strategy.New(strategy.Config{
		Pipeline: pipeline,
		Starter:  starter,
		Keytabs:  kerberos.NewHTTPProvider(cfg.KeytabDir, cfg.MasterURL),
		Cache:    c,
		Events:   broker,
	})

	closeAll := func() error {
		broker.Stop()
		wait()
		return closeCache()
	}

	return &agent{
		cfg:        cfg,
		pipeline:   pipeline,
		dispatcher: dispatcher,
		close:      closeAll,
	}, nil
}

// stageLogger starts a broker whose events are written to the log. The
// returned func blocks until every event has been logged after Stop.
func stageLogger() (*events.Broker, func()) {
	broker := events.NewBroker()
	sub := broker.Subscribe()
	broker.Start()

	logger := log.WithComponent("events")
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for e := range sub {
			logger.Info().
				Str("stage", string(e.Type)).
				Str("service", e.Service).
				Str("role", e.Role).
				Str("event_id", e.ID).
				Msg(e.Message)
		}
	}()
	return broker, wg.Wait
}
