package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var (
	configPath = ""
	rootCmd    = &cobra.Command{
		Use:   "txdecode",
		Short: "Decode Ethereum transactions into web3.py calls",
		Long: `txdecode fetches a transaction from an allow-listed JSON-RPC endpoint,
resolves its function selector against 4byte.directory, decodes the
arguments and prints a Python/web3 snippet that reproduces the call.

Such as "txdecode decode 0x..." or "txdecode serve" and so on
`,
		SilenceUsage: true,
	}
)

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file, built-in defaults when empty")
}
