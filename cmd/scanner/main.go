// Package main is the token risk scanner CLI:
// - scan: one-shot scan printed as a table or JSON
// - serve: periodic scans with HTTP, metrics and WebSocket push
// - keys: provider credential status
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := Execute(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
