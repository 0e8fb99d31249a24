package main

import (
	"github.com/spf13/cobra"
)

type globalFlags struct {
	configPath string
	envFiles   []string
	logFormat  string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}

	root := &cobra.Command{
		Use:           "cmhash",
		Short:         "Cross-modal hashing for paired Sentinel-1/Sentinel-2 patches",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&g.configPath, "config", "c", "", "YAML config file")
	root.PersistentFlags().StringSliceVar(&g.envFiles, "env-file", nil, ".env files to load (default .env)")
	root.PersistentFlags().StringVar(&g.logFormat, "log-format", "", "Log format: text or json")
	root.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "Log level: debug, info, warn or error")

	root.AddCommand(
		newTrainCmd(g),
		newEvalCmd(g),
		newRunsCmd(g),
		newSynthCmd(),
	)
	return root
}
