package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/cuemby/vss/pkg/api"
	"github.com/cuemby/vss/pkg/auth"
	"github.com/cuemby/vss/pkg/config"
	"github.com/cuemby/vss/pkg/engine"
	"github.com/cuemby/vss/pkg/log"
	"github.com/cuemby/vss/pkg/metrics"
	"github.com/cuemby/vss/pkg/recordstore"
	"github.com/cuemby/vss/pkg/recordstore/memory"
	"github.com/cuemby/vss/pkg/recordstore/postgres"
	vsshttp "github.com/cuemby/vss/pkg/transport/http"
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
	Use:     "vss-server",
	Short:   "VSS - versioned storage service",
	Long:    `vss-server runs the versioned storage service: a multi-tenant, optimistic-concurrency key/value engine exposed over HTTP.`,
	Version: Version,
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"vss-server version %s\nCommit: %s\nBuilt: %s\n",
		Version, Commit, BuildTime,
	))

	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("log-json", false, "Output logs in JSON format")
	cobra.OnInitialize(initLogging)

	serveCmd.Flags().String("listen-addr", "", "HTTP listen address for the /vss/* API (overrides VSS_LISTEN_ADDR)")
	serveCmd.Flags().String("health-addr", "", "HTTP listen address for /health, /ready, /metrics (overrides VSS_HEALTH_ADDR)")
	serveCmd.Flags().String("store-driver", "", `Record store backend: "postgres" or "memory" (overrides VSS_STORE_DRIVER)`)
	serveCmd.Flags().Int("page-size-cap", 0, "Listing page size cap, 0 keeps the configured default")
	serveCmd.Flags().String("endpoint", "", "Postgres host:port (overrides VSS_ENDPOINT)")
	serveCmd.Flags().String("username", "", "Postgres username (overrides VSS_USERNAME)")
	serveCmd.Flags().String("database", "vss", "Postgres database name")

	migrateCmd.Flags().String("endpoint", "", "Postgres host:port (overrides VSS_ENDPOINT)")
	migrateCmd.Flags().String("username", "", "Postgres username (overrides VSS_USERNAME)")
	migrateCmd.Flags().String("database", "vss", "Postgres database name")
	migrateCmd.Flags().Bool("dry-run", false, "Print the DDL without applying it")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
}

func initLogging() {
	logLevel, _ := rootCmd.PersistentFlags().GetString("log-level")
	logJSON, _ := rootCmd.PersistentFlags().GetBool("log-json")

	log.Init(log.Config{
		Level:      log.Level(logLevel),
		JSONOutput: logJSON,
	})
}

func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.FromEnv(config.Default())
	if err != nil {
		return config.Config{}, err
	}

	if v, _ := cmd.Flags().GetString("listen-addr"); v != "" {
		cfg.ListenAddr = v
	}
	if v, _ := cmd.Flags().GetString("health-addr"); v != "" {
		cfg.HealthAddr = v
	}
	if v, _ := cmd.Flags().GetString("store-driver"); v != "" {
		cfg.StoreDriver = v
	}
	if v, _ := cmd.Flags().GetInt("page-size-cap"); v > 0 {
		cfg.PageSizeCap = v
	}
	if v, _ := cmd.Flags().GetString("endpoint"); v != "" {
		cfg.Endpoint = v
	}
	if v, _ := cmd.Flags().GetString("username"); v != "" {
		cfg.Username = v
	}
	return cfg, nil
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the VSS HTTP API alongside its health and metrics server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		metrics.SetVersion(Version)

		var store recordstore.Store
		switch cfg.StoreDriver {
		case "postgres":
			database, _ := cmd.Flags().GetString("database")
			store, err = postgres.Open(cfg.DSN(database), cfg.PoolConfig())
			if err != nil {
				return fmt.Errorf("connecting to postgres: %w", err)
			}
		case "memory", "":
			store = memory.New()
		default:
			return fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
		}
		defer store.Close()

		eng := engine.New(store, cfg.PageSizeCap)
		handler := vsshttp.New(eng, auth.NullAuthorizer{})

		healthServer := api.NewHealthServer(store)
		go func() {
			if err := healthServer.Start(cfg.HealthAddr); err != nil && err != http.ErrServerClosed {
				log.Logger.Error().Err(err).Msg("health server stopped")
			}
		}()
		log.Logger.Info().Str("addr", cfg.HealthAddr).Msg("health and metrics server listening")

		apiServer := &http.Server{Addr: cfg.ListenAddr, Handler: handler}
		errCh := make(chan error, 1)
		go func() {
			if err := apiServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				errCh <- err
			}
		}()
		log.Logger.Info().Str("addr", cfg.ListenAddr).Str("store_driver", cfg.StoreDriver).Msg("vss api listening")

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

		select {
		case <-sigCh:
			log.Logger.Info().Msg("shutting down")
		case err := <-errCh:
			log.Logger.Error().Err(err).Msg("api server error")
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := apiServer.Shutdown(ctx); err != nil {
			return fmt.Errorf("shutting down api server: %w", err)
		}
		return nil
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the vss_records schema to a Postgres database",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		dryRun, _ := cmd.Flags().GetBool("dry-run")
		database, _ := cmd.Flags().GetString("database")

		if dryRun {
			fmt.Println(postgres.Schema)
			return nil
		}

		db, err := sql.Open("pgx", cfg.DSN(database))
		if err != nil {
			return fmt.Errorf("connecting to postgres: %w", err)
		}
		defer db.Close()

		ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.ConnectionTimeoutMs)*time.Millisecond)
		defer cancel()
		if _, err := db.ExecContext(ctx, postgres.Schema); err != nil {
			return fmt.Errorf("applying schema: %w", err)
		}

		log.Logger.Info().Str("database", database).Msg("schema applied")
		return nil
	},
}
