package main

import (
	"context"
	"fmt"
	"os"

	"github.com/pingsantohq/statusnotify/internal/cli"
)

func main() {
	ctx := context.Background()

	cmd := cli.New().Command()
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "statusnotify: %v\n", err)
		os.Exit(1)
	}
}
