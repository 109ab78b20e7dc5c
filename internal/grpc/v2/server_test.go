package v2_test

import (
	"context"
	"net"
	"testing"

	v2 "github.com/Totarae/linkgate/internal/grpc/v2"
	"github.com/Totarae/linkgate/internal/model"
	"github.com/Totarae/linkgate/internal/password"
	"github.com/Totarae/linkgate/internal/service"
	"github.com/Totarae/linkgate/internal/storage/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"
)

func newClient(t *testing.T) (*v2.Client, *service.LinkService) {
	t.Helper()
	logger := zap.NewNop()
	svc := service.NewLinkService(memory.New(), logger, service.Options{
		Password: password.Params{Time: 1, MemoryKiB: 64, Threads: 1},
	})

	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer(grpc.UnaryInterceptor(v2.LoggingInterceptor(logger)))
	v2.Register(srv, v2.NewGRPCServer(svc, "http://localhost:8080", logger))
	go func() { _ = srv.Serve(lis) }()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = conn.Close()
		srv.Stop()
		svc.Shutdown()
	})
	return v2.NewClient(conn), svc
}

func mustStruct(t *testing.T, m map[string]any) *structpb.Struct {
	t.Helper()
	s, err := structpb.NewStruct(m)
	require.NoError(t, err)
	return s
}

func TestCreateAndResolve(t *testing.T) {
	client, _ := newClient(t)
	ctx := context.Background()

	resp, err := client.CreateLink(ctx, mustStruct(t, map[string]any{
		"owner_id": "u1", "destination_url": "https://example.com", "slug": "grpc1",
	}))
	require.NoError(t, err)
	assert.Equal(t, "grpc1", resp.Fields["short_code"].GetStringValue())
	assert.Equal(t, "http://localhost:8080/l/grpc1", resp.Fields["short_url"].GetStringValue())
	assert.False(t, resp.Fields["protected"].GetBoolValue())

	_, err = client.CreateLink(ctx, mustStruct(t, map[string]any{
		"owner_id": "u2", "destination_url": "https://other.com", "slug": "grpc1",
	}))
	assert.Equal(t, codes.AlreadyExists, status.Code(err))

	_, err = client.CreateLink(ctx, mustStruct(t, map[string]any{"owner_id": "u1", "destination_url": "nope"}))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	out, err := client.Resolve(ctx, mustStruct(t, map[string]any{"short_code": "grpc1"}))
	require.NoError(t, err)
	assert.Equal(t, "https://example.com", out.Fields["destination_url"].GetStringValue())

	_, err = client.Resolve(ctx, mustStruct(t, map[string]any{"short_code": "missing"}))
	assert.Equal(t, codes.NotFound, status.Code(err))
}

func TestResolve_Password(t *testing.T) {
	client, _ := newClient(t)
	ctx := context.Background()

	_, err := client.CreateLink(ctx, mustStruct(t, map[string]any{
		"owner_id": "u1", "destination_url": "https://example.com", "slug": "locked",
		"password": "abc123", "custom_message": "Ask Kim",
	}))
	require.NoError(t, err)

	var trailer metadata.MD
	_, err = client.Resolve(ctx, mustStruct(t, map[string]any{"short_code": "locked"}), grpc.Trailer(&trailer))
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
	assert.Equal(t, []string{"Ask Kim"}, trailer.Get(v2.CustomMessageKey))

	_, err = client.Resolve(ctx, mustStruct(t, map[string]any{"short_code": "locked", "password": "ABC123"}))
	assert.Equal(t, codes.PermissionDenied, status.Code(err))

	out, err := client.Resolve(ctx, mustStruct(t, map[string]any{"short_code": "locked", "password": "abc123"}))
	require.NoError(t, err)
	assert.Equal(t, "https://example.com", out.Fields["destination_url"].GetStringValue())
}

func TestStatistics(t *testing.T) {
	client, svc := newClient(t)
	ctx := context.Background()

	resp, err := client.CreateLink(ctx, mustStruct(t, map[string]any{"owner_id": "u1", "destination_url": "https://example.com"}))
	require.NoError(t, err)
	code := resp.Fields["short_code"].GetStringValue()
	id := resp.Fields["id"].GetStringValue()

	for i := 0; i < 2; i++ {
		_, err := client.Resolve(ctx, mustStruct(t, map[string]any{"short_code": code}))
		require.NoError(t, err)
	}
	svc.Shutdown()

	sum, err := client.UserSummary(ctx, mustStruct(t, map[string]any{"owner_id": "u1"}))
	require.NoError(t, err)
	assert.Equal(t, float64(1), sum.Fields["total_links"].GetNumberValue())
	assert.Equal(t, float64(2), sum.Fields["total_clicks"].GetNumberValue())
	assert.Equal(t, 2.0, sum.Fields["average_clicks"].GetNumberValue())

	series, err := client.ClicksOverTime(ctx, mustStruct(t, map[string]any{"owner_id": "u1", "link_id": id, "days": 7}))
	require.NoError(t, err)
	items := series.Fields["series"].GetListValue().GetValues()
	require.Len(t, items, 1)
	assert.Equal(t, float64(2), items[0].GetStructValue().Fields["count"].GetNumberValue())

	_, err = client.ClicksOverTime(ctx, mustStruct(t, map[string]any{"owner_id": "u2", "link_id": id}))
	assert.Equal(t, codes.NotFound, status.Code(err))

	_, err = client.UserSummary(ctx, mustStruct(t, map[string]any{}))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestCodeFor(t *testing.T) {
	assert.Equal(t, codes.ResourceExhausted, v2.CodeFor(model.ErrExhaustedRetries))
	assert.Equal(t, codes.FailedPrecondition, v2.CodeFor(model.ErrInactiveLink))
	assert.Equal(t, codes.Unavailable, v2.CodeFor(model.Unavailable("x", assert.AnError)))
	assert.Equal(t, codes.Internal, v2.CodeFor(assert.AnError))
}
