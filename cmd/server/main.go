// careerdesk - personal career dashboard server
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	v := viper.New()
	var configFile string

	root := &cobra.Command{
		Use:           "careerdesk",
		Short:         "Personal career dashboard with AI advice and note-service export",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context(), v, configFile)
		},
	}

	root.Flags().StringVar(&configFile, "config", "", "path to a YAML or TOML config file")
	root.Flags().String("port", "", "HTTP listen port (overrides PORT)")
	_ = v.BindPFlag("port", root.Flags().Lookup("port"))

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the build version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	})

	return root
}
