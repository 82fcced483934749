package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/essildoor/tengu-travels/cmd/perf"
	"github.com/essildoor/tengu-travels/cmd/serve"
)

const (
	Version = "1.2.0"
)

var (

	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "tengu-travels",
		Short: "in-memory travels query service",
		Long: fmt.Sprintf(`tengu-travels (v%s)

An in-memory service holding users, locations and their visits,
answering point lookups and filtered aggregate queries under
concurrent read/write load.`, Version),
	}
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of tengu-travels",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("tengu-travels v%s\n", Version)
		},
	}
)

func init() {
	// Add Commands
	RootCmd.AddCommand(serve.ServeCmd)
	RootCmd.AddCommand(perf.PerfCmd)
	RootCmd.AddCommand(versionCmd)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
