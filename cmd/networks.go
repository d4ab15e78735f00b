package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/AvaProtocol/txdecode/core/config"
)

var networksCmd = &cobra.Command{
	Use:   "networks",
	Short: "List the allow-listed networks",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.NewConfig(configPath)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tCHAIN ID\tRPC URL")
		for _, n := range cfg.Networks {
			fmt.Fprintf(w, "%s\t%d\t%s\n", n.Name, n.ChainID, n.RPCURL)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(networksCmd)
}
