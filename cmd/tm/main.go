package main

import (
	"context"
	"fmt"
	"os"

	"task-tracker/internal/cli"
)

func main() {
	root := cli.NewRootCommand(os.Stdout)

	// Commands bound their own work by the configured application timeout;
	// serve runs until interrupted.
	if err := root.Execute(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, cli.RenderError(err))
		os.Exit(1)
	}
}
