package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/TeneoProtocolAI/defai-agent/internal/config"
	"github.com/TeneoProtocolAI/defai-agent/internal/core/domain"
	"github.com/TeneoProtocolAI/defai-agent/internal/handler"
)

var tokenCmd = &cobra.Command{
	Use:   "token <ticker>",
	Short: "Look up a token by its ticker",
	Long: `Search the liquidity pools for a ticker, keep the dominant token and save it
as crypto_<TICKER>.json.

Examples:
  defai token SERV
  defai token '$serv' --json`,
	Args: cobra.ExactArgs(1),
	RunE: runToken,
}

func init() {
	rootCmd.AddCommand(tokenCmd)
}

func runToken(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := setup(ctx, config.ModeToken)
	if err != nil {
		return err
	}
	defer a.Close()

	out, err := a.Service.FindTokenInformations(ctx, domain.TokenLookupInput{Token: args[0]})
	if err != nil {
		var nf *domain.NotFoundError
		if errors.As(err, &nf) {
			fmt.Printf("No data found for token %q\n", nf.Query)
			return nil
		}
		return err
	}

	if jsonOutput {
		return printJSON(out)
	}
	reply, err := handler.FormatTokenReply(out)
	if err != nil {
		return err
	}
	fmt.Println(reply)
	return nil
}
