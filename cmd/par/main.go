// Command par runs constrained partitioning experiments.
//
//	par instances
//	par run --config par.yaml --seed 4 --seed 7 --algorithm greedy
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, styles.fail.Render("error:"), err)
		stop()
		os.Exit(1)
	}
}
