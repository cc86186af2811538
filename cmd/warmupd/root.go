package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonwraymond/warmup/config"
)

func newRootCommand() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:   "warmupd",
		Short: "Demo service with startup warm-up",
		Long: `warmupd serves a small catalog API and calls its own endpoints after
binding its port, so the first real request does not pay for cold caches,
codecs and connection pools. /readyz reports 503 until the warm-up finished.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	root.SetVersionTemplate(fmt.Sprintf(
		"warmupd version %s\nCommit: %s\nBuilt: %s\n",
		Version, Commit, BuildTime,
	))
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Configuration file path")

	load := func() (*config.Config, error) {
		if configPath == "" {
			cfg := config.Default()
			cfg.Version = Version
			return &cfg, cfg.Validate()
		}
		cfg, err := config.Load(configPath)
		if err != nil {
			return nil, err
		}
		if cfg.Version == "" {
			cfg.Version = Version
		}
		return cfg, nil
	}

	root.AddCommand(newServeCommand(load))
	root.AddCommand(newPlanCommand(load))
	return root
}
