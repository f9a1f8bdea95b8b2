package main

import (
	"os"

	"github.com/spf13/cobra"
)

const version = "1.0.0"

var rootCmd = &cobra.Command{
	Use:   "replikv",
	Short: "replicated in-memory key-value store",
	Long: `replikv is a distributed in-memory key-value store using
single-leader, semi-synchronous replication with a configurable
write quorum. All nodes run this binary; the role is selected
via configuration (NODE_TYPE=leader|follower).`,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of replikv",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("replikv v%s\n", version)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
