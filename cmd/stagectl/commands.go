package main

import "github.com/spf13/cobra"

var (
	rootCmd = &cobra.Command{
		Use:           "stagectl",
		Short:         "Drive motion stage controllers over a serial line.",
		Long:          ``,
		SilenceErrors: true,
		SilenceUsage:  true,
	}
)

var (
	confPath  string
	confDebug bool
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&confPath, "conf", "c", "stage.hcl", "Configuration file")
	rootCmd.PersistentFlags().BoolVarP(&confDebug, "debug", "d", false, "Debug logging (frames and poll states)")
}

func Execute() error {
	return rootCmd.Execute()
}
