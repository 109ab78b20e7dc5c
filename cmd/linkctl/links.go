package main

import (
	"context"

	v2 "github.com/Totarae/linkgate/internal/grpc/v2"
	"github.com/spf13/cobra"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

func newCreateCmd(opts *rootOptions) *cobra.Command {
	var owner, url, slug, pw, message string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a short link",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req, err := structpb.NewStruct(map[string]any{
				"owner_id":        owner,
				"destination_url": url,
				"slug":            slug,
				"password":        pw,
				"custom_message":  message,
			})
			if err != nil {
				return err
			}
			return opts.call(cmd, func(ctx context.Context, c *v2.Client) (proto.Message, error) {
				return c.CreateLink(ctx, req)
			})
		},
	}
	cmd.Flags().StringVarP(&owner, "owner", "o", "", "owner id")
	cmd.Flags().StringVarP(&url, "url", "u", "", "destination URL")
	cmd.Flags().StringVarP(&slug, "slug", "s", "", "custom short code")
	cmd.Flags().StringVarP(&pw, "password", "p", "", "password protecting the link")
	cmd.Flags().StringVarP(&message, "message", "m", "", "message shown on the password prompt")
	_ = cmd.MarkFlagRequired("owner")
	_ = cmd.MarkFlagRequired("url")
	return cmd
}

func newSummaryCmd(opts *rootOptions) *cobra.Command {
	var owner string
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show link and click totals of an owner",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req, err := structpb.NewStruct(map[string]any{"owner_id": owner})
			if err != nil {
				return err
			}
			return opts.call(cmd, func(ctx context.Context, c *v2.Client) (proto.Message, error) {
				return c.UserSummary(ctx, req)
			})
		},
	}
	cmd.Flags().StringVarP(&owner, "owner", "o", "", "owner id")
	_ = cmd.MarkFlagRequired("owner")
	return cmd
}

func newClicksCmd(opts *rootOptions) *cobra.Command {
	var (
		owner, link string
		days        int
		dense       bool
	)
	cmd := &cobra.Command{
		Use:   "clicks",
		Short: "Show the per-day click series of a link",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req, err := structpb.NewStruct(map[string]any{
				"owner_id": owner,
				"link_id":  link,
				"days":     days,
				"dense":    dense,
			})
			if err != nil {
				return err
			}
			return opts.call(cmd, func(ctx context.Context, c *v2.Client) (proto.Message, error) {
				return c.ClicksOverTime(ctx, req)
			})
		},
	}
	cmd.Flags().StringVarP(&owner, "owner", "o", "", "owner id")
	cmd.Flags().StringVarP(&link, "link", "l", "", "link id")
	cmd.Flags().IntVarP(&days, "days", "d", 30, "window in days")
	cmd.Flags().BoolVar(&dense, "dense", false, "include days without clicks")
	_ = cmd.MarkFlagRequired("owner")
	_ = cmd.MarkFlagRequired("link")
	return cmd
}
