package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/TeneoProtocolAI/defai-agent/internal/config"
	"github.com/TeneoProtocolAI/defai-agent/internal/core/domain"
)

var postCmd = &cobra.Command{
	Use:   "post <message>",
	Short: "Post a message on Twitter",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		a, err := setup(ctx, config.ModeSocial)
		if err != nil {
			return err
		}
		defer a.Close()

		post, err := a.Service.PostMessage(ctx, domain.PostMessageInput{Message: strings.Join(args, " ")})
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(post)
		}
		fmt.Printf("Posted tweet %s\n", post.ID)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(postCmd)
}
