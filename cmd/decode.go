package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/k0kubun/pp/v3"
	"github.com/spf13/cobra"

	"github.com/AvaProtocol/txdecode/core/pipeline"
)

var (
	decodeNetwork string
	decodeJSON    bool
	decodeDump    bool

	decodeCmd = &cobra.Command{
		Use:   "decode <txhash>",
		Short: "Decode one transaction",
		Long: `Fetch a transaction, resolve its selector and print the transaction
together with a web3.py snippet that replays the call.

--network takes a network name or an RPC URL from the allow-list; the first
configured network is used when it is omitted.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			network, err := mustNetwork(a.config, decodeNetwork)
			if err != nil {
				return err
			}

			res, err := a.dispatcher.Submit(cmd.Context(), args[0], network.Name)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch {
			case decodeDump:
				printer := pp.New()
				printer.SetOutput(out)
				printer.SetColoringEnabled(false)
				printer.Println(res)
			case decodeJSON:
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if err := enc.Encode(res); err != nil {
					return err
				}
			default:
				printResult(out, res, network.TxURL(res.TxHash))
			}

			if res.Failed() {
				return res.Error
			}
			return nil
		},
	}
)

func printResult(w io.Writer, res *pipeline.Result, txURL string) {
	if res.Failed() {
		fmt.Fprintf(w, "error: %s: %s\n", res.Error.Kind, res.Error.Message)
		return
	}

	fmt.Fprintf(w, "# transaction %s on %s\n", res.TxHash, res.Network)
	if txURL != "" {
		fmt.Fprintf(w, "# %s\n", txURL)
	}
	fmt.Fprintln(w, res.TransactionJSON)
	fmt.Fprintln(w)

	switch {
	case res.State == pipeline.NoInputData:
		fmt.Fprintf(w, "# no input data: plain transfer of %s ETH\n", res.ValueEth)
	case res.CodeError != nil:
		fmt.Fprintf(w, "# cannot generate code: %s: %s\n", res.CodeError.Kind, res.CodeError.Message)
	default:
		fmt.Fprintf(w, "# %s\n", res.Signature)
		fmt.Fprint(w, res.Code)
	}
}

func init() {
	decodeCmd.Flags().StringVarP(&decodeNetwork, "network", "n", "", "network name or allow-listed RPC URL")
	decodeCmd.Flags().BoolVar(&decodeJSON, "json", false, "print the full result as JSON")
	decodeCmd.Flags().BoolVar(&decodeDump, "dump", false, "pretty-print the full result for debugging")
	rootCmd.AddCommand(decodeCmd)
}
