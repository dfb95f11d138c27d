package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"endpoint.GO/api"
	"endpoint.GO/config"
	"endpoint.GO/model/schema"
	"endpoint.GO/notify"
)

var rootCmd = &cobra.Command{
	Use:           "endpoint",
	Short:         "Route registry maintenance commands",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds registered commands and runs the CLI until ctx is done.
// It returns the process exit code.
func Execute(ctx context.Context) int {
	Apply()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

// openDB connects to the store and makes sure the registry tables exist.
func openDB() (*gorm.DB, error) {
	db, err := connectDB()
	if err != nil {
		return nil, err
	}
	if err := schema.Up(db); err != nil {
		return nil, err
	}
	return db, nil
}

func connectDB() (*gorm.DB, error) {
	db, err := config.NewDB()
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}
	return db, nil
}

// openDeps wires the services; version changes are published when redis is configured.
func openDeps() (*api.Deps, error) {
	db, err := openDB()
	if err != nil {
		return nil, err
	}
	var n notify.Notifier
	config.InitRedis()
	if config.RedisClient != nil {
		n = notify.NewRedisNotifier(config.RedisClient, config.RedisChannel(notify.DefaultChannel))
	}
	return api.NewDeps(db, n), nil
}

func init() {
	cobra.OnInitialize(func() {
		config.LoadAppConfig()
		config.InitLogger()
		logrus.Debug("cli: config loaded")
	})
}
