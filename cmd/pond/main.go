// Command pond runs the Pond server, or acts as a thin client against one.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	clientcmd "github.com/pondhq/pond/internal/cmd/client"
	serverrun "github.com/pondhq/pond/internal/cmd/server"
	cfgpkg "github.com/pondhq/pond/internal/config"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "pond",
		Short: "Pond in-memory log-record broker",
		Long:  "Pond holds a bounded in-memory ring of access-log records and serves live queries over a small TCP protocol.",
	}

	rootCmd.AddCommand(newServerCommand())
	rootCmd.AddCommand(clientcmd.NewQueryCommand())
	rootCmd.AddCommand(clientcmd.NewInjectCommand())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newServerCommand() *cobra.Command {
	serverCmd := &cobra.Command{Use: "server", Short: "Server commands"}

	startCmd := &cobra.Command{
		Use:     "start",
		Short:   "Start the Pond server",
		Aliases: []string{"run"},
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			listenAddr, _ := cmd.Flags().GetString("listen")
			adminAddr, _ := cmd.Flags().GetString("admin")
			capacity, _ := cmd.Flags().GetInt("capacity")
			siteDir, _ := cmd.Flags().GetString("site-dir")
			logLevel, _ := cmd.Flags().GetString("log-level")
			logFormat, _ := cmd.Flags().GetString("log-format")

			cfg, err := cfgpkg.Load(configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			cfgpkg.FromEnv(&cfg)

			if cmd.Flags().Changed("listen") {
				cfg.ListenAddr = listenAddr
			}
			if cmd.Flags().Changed("admin") {
				cfg.AdminAddr = adminAddr
			}
			if cmd.Flags().Changed("capacity") {
				cfg.Capacity = capacity
			}
			if cmd.Flags().Changed("site-dir") {
				cfg.SiteDir = siteDir
			}
			if cmd.Flags().Changed("log-level") {
				cfg.LogLevel = logLevel
			}
			if cmd.Flags().Changed("log-format") {
				cfg.LogFormat = logFormat
			}

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			return serverrun.Run(ctx, serverrun.Options{Config: cfg})
		},
	}
	startCmd.Flags().String("config", "", "path to a JSON or YAML config file")
	startCmd.Flags().String("listen", "", "query server listen address (default :5480)")
	startCmd.Flags().String("admin", "", "admin HTTP listen address (default :5481)")
	startCmd.Flags().Int("capacity", 0, "maximum number of live records (default 65536)")
	startCmd.Flags().String("site-dir", "", "directory for per-site append files; empty disables per-site output")
	startCmd.Flags().String("log-level", "", "log level: debug|info|warn|error")
	startCmd.Flags().String("log-format", "", "log format: console|json")
	serverCmd.AddCommand(startCmd)

	return serverCmd
}
