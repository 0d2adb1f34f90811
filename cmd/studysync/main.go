package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/noah-isme/studysync-api/pkg/config"
	"github.com/noah-isme/studysync-api/pkg/logger"
)

var (
	cfg     *config.Config
	logr    *zap.Logger
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "studysync",
	Short: "StudySync planner tools",
	Long:  "Plan study sessions from a homework document and issue API tokens without running the server.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadConfig()
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log planner details to stderr")
}

func main() {
	defer func() {
		if logr != nil {
			_ = logr.Sync()
		}
	}()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig() error {
	var err error
	cfg, err = config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logr, err = logger.NewCLI(verbose)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	return nil
}
