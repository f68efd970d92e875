// cmd/launchpilot/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// version is stamped by the build, "dev" otherwise.
var version = "dev"

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		fmt.Fprintf(os.Stderr, "📡 Signal received: %s, shutting down\n", sig)
		cancel()
	}()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "launchpilot",
		Short:        "Token launcher and fee claimer for Meteora DBC pools",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "configs/config.yaml", "config file path")

	root.AddCommand(newLaunchCommand())
	root.AddCommand(newClaimCommand())
	root.AddCommand(newPositionsCommand())
	root.AddCommand(newExportCommand())
	root.AddCommand(newVersionCommand())
	return root
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the launchpilot version",
		Run: func(*cobra.Command, []string) {
			fmt.Println("launchpilot " + version)
		},
	}
}
