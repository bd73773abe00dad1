package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/TeneoProtocolAI/defai-agent/internal/config"
	"github.com/TeneoProtocolAI/defai-agent/internal/core/domain"
	"github.com/TeneoProtocolAI/defai-agent/internal/handler"
)

var mentionsInput domain.UserMentionsInput

var mentionsCmd = &cobra.Command{
	Use:   "mentions",
	Short: "Resolve the tickers mentioned in a user's latest tweets",
	Long: `Fetch the latest tweets of a user, resolve every $TICKER they mention and
save one tweet_<ID>_<TICKER>.json artifact per mention not saved yet.

Examples:
  defai mentions --username alice
  defai mentions --user-id 12345 --max-results 20 --start-time 2024-01-01T00:00:00Z`,
	Args: cobra.NoArgs,
	RunE: runMentions,
}

func init() {
	rootCmd.AddCommand(mentionsCmd)

	f := mentionsCmd.Flags()
	f.StringVar(&mentionsInput.UserID, "user-id", "", "Twitter user id")
	f.StringVar(&mentionsInput.Username, "username", "", "Twitter username, used when --user-id is not set")
	f.IntVar(&mentionsInput.MaxResults, "max-results", 0, "Number of tweets to fetch (5-100, default 100)")
	f.StringVar(&mentionsInput.StartTime, "start-time", "", "Oldest tweet time (RFC3339)")
	f.StringVar(&mentionsInput.EndTime, "end-time", "", "Newest tweet time (RFC3339)")
	f.StringVar(&mentionsInput.SinceID, "since-id", "", "Only tweets newer than this id")
	f.StringVar(&mentionsInput.UntilID, "until-id", "", "Only tweets older than this id")
	f.StringVar(&mentionsInput.PaginationToken, "pagination-token", "", "Timeline page token")
	mentionsCmd.MarkFlagsOneRequired("user-id", "username")
}

func runMentions(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := setup(ctx, config.ModeSocial)
	if err != nil {
		return err
	}
	defer a.Close()

	out, err := a.Service.GetUserTweetsWithTickerMentions(ctx, mentionsInput)
	if err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(out)
	}
	reply, err := handler.FormatMentionsReply(out)
	if err != nil {
		return err
	}
	fmt.Println(reply)
	return nil
}
