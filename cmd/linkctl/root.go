package main

import (
	"context"
	"fmt"
	"os"
	"time"

	v2 "github.com/Totarae/linkgate/internal/grpc/v2"
	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
)

type rootOptions struct {
	addr    string
	timeout time.Duration
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "linkctl",
		Short: "linkgate administration tool",
		Example: `linkctl migrate up --dsn postgres://...
linkctl create --owner <owner-id> --url https://example.com --slug promo
linkctl summary --owner <owner-id>
linkctl clicks --owner <owner-id> --link <link-id> --days 7 --dense`,
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVar(&opts.addr, "addr", envOr("GRPC_ADDRESS", "localhost:3200"), "gRPC address of the server")
	cmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 10*time.Second, "request timeout")

	cmd.AddCommand(newMigrateCmd(), newCreateCmd(opts), newSummaryCmd(opts), newClicksCmd(opts))
	cmd.SetHelpCommand(&cobra.Command{Use: "no-help", Hidden: true})
	cmd.CompletionOptions.HiddenDefaultCmd = true
	return cmd
}

// call dials the server, runs fn and prints its response as JSON.
func (o *rootOptions) call(cmd *cobra.Command, fn func(ctx context.Context, c *v2.Client) (proto.Message, error)) error {
	conn, err := grpc.NewClient(o.addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return fmt.Errorf("dial %s: %w", o.addr, err)
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), o.timeout)
	defer cancel()

	resp, err := fn(ctx, v2.NewClient(conn))
	if err != nil {
		return err
	}
	out, err := protojson.MarshalOptions{Multiline: true}.Marshal(resp)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return err
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
