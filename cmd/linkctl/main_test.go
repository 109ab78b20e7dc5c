package main

import (
	"bytes"
	"encoding/json"
	"net"
	"testing"

	v2 "github.com/Totarae/linkgate/internal/grpc/v2"
	"github.com/Totarae/linkgate/internal/password"
	"github.com/Totarae/linkgate/internal/service"
	"github.com/Totarae/linkgate/internal/storage/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/grpc"
)

func startServer(t *testing.T) string {
	t.Helper()
	svc := service.NewLinkService(memory.New(), zap.NewNop(), service.Options{
		Password: password.Params{Time: 1, MemoryKiB: 64, Threads: 1},
	})
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	srv := grpc.NewServer()
	v2.Register(srv, v2.NewGRPCServer(svc, "http://sho.rt", zap.NewNop()))
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(func() {
		srv.Stop()
		svc.Shutdown()
	})
	return lis.Addr().String()
}

func execute(t *testing.T, args ...string) (map[string]any, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		return nil, err
	}
	got := make(map[string]any)
	require.NoError(t, json.Unmarshal(out.Bytes(), &got), out.String())
	return got, nil
}

func TestLinkctl_CreateAndSummary(t *testing.T) {
	addr := startServer(t)

	created, err := execute(t, "--addr", addr, "create", "-o", "u1", "-u", "https://example.com/docs", "-s", "docs")
	require.NoError(t, err)
	assert.Equal(t, "docs", created["short_code"])
	assert.Equal(t, "http://sho.rt/l/docs", created["short_url"])

	_, err = execute(t, "--addr", addr, "create", "-o", "u1", "-u", "https://example.com", "-s", "docs")
	assert.Error(t, err)

	sum, err := execute(t, "--addr", addr, "summary", "-o", "u1")
	require.NoError(t, err)
	assert.Equal(t, float64(1), sum["total_links"])
	assert.Equal(t, float64(0), sum["total_clicks"])

	series, err := execute(t, "--addr", addr, "clicks", "-o", "u1", "-l", created["id"].(string), "-d", "3", "--dense")
	require.NoError(t, err)
	assert.Len(t, series["series"], 4)
}

func TestLinkctl_RequiredFlags(t *testing.T) {
	_, err := execute(t, "create", "-u", "https://example.com")
	assert.ErrorContains(t, err, "owner")

	t.Setenv("DATABASE_DSN", "")
	_, err = execute(t, "migrate", "up")
	assert.ErrorContains(t, err, "DATABASE_DSN")
}
