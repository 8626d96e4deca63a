// dreamlensd is the subscription proxy daemon: it verifies session tokens,
// checks the subscriber store, and streams interpretations from the backend
// model on behalf of active subscribers.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"dreamlens/internal/api"
	"dreamlens/internal/subscription"
)

// Config is the daemon's YAML configuration.
type Config struct {
	Listen string `yaml:"listen"`
	Redis  struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	SessionSecret string `yaml:"session_secret"`
}

func defaultConfig() Config {
	var cfg Config
	cfg.Listen = ":8787"
	cfg.Redis.Addr = "localhost:6379"
	return cfg
}

func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

func main() {
	var (
		configPath string
		verbose    bool
	)

	rootCmd := &cobra.Command{
		Use:   "dreamlensd",
		Short: "Dream interpretation subscription proxy",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(configPath, verbose)
		},
	}
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "", "path to YAML config file")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(configPath string, verbose bool) error {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	var logger *zap.Logger
	var err error
	if verbose {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Sync()

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	secret := cfg.SessionSecret
	if secret == "" {
		secret = os.Getenv("DREAMLENS_SESSION_SECRET")
	}
	if secret == "" {
		return fmt.Errorf("session secret not configured (set session_secret or DREAMLENS_SESSION_SECRET)")
	}

	var subscribers subscription.SubscriberStore
	if cfg.Redis.Addr != "" {
		redisStore := subscription.NewRedisStore(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := redisStore.Ping(pingCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("redis unreachable at %s: %w", cfg.Redis.Addr, err)
		}
		defer redisStore.Close()
		subscribers = redisStore
		logger.Info("subscriber store connected", zap.String("redis", cfg.Redis.Addr))
	} else {
		subscribers = subscription.NewMemoryStore()
		logger.Warn("no redis configured, using in-memory subscriber store")
	}

	server := &http.Server{
		Addr:              cfg.Listen,
		Handler:           api.NewServer(subscribers, []byte(secret), logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", cfg.Listen))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
