//go:build cli
// +build cli

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	_ "endpoint.GO/custom"

	"endpoint.GO/cmd"
	"endpoint.GO/config"
)

// CLI entry point: go run -tags cli . routes:list
func main() {
	config.LoadEnv()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cmd.Execute(ctx)
	stop()
	os.Exit(code)
}
