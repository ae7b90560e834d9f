// Package testserver starts a full clipstudio stack for end-to-end tests.
package testserver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/clipstudio/internal/app"
	"github.com/rpggio/clipstudio/internal/config"
	"github.com/rpggio/clipstudio/internal/transport"
	"github.com/stretchr/testify/require"
)

// TestServer is an in-memory registry, a real project layout on disk and
// an MCP server reachable over HTTP or in-memory transports.
type TestServer struct {
	Server      *httptest.Server
	App         *app.App
	MCP         *sdkmcp.Server
	Token       string
	Transformer *CopyTransformer
}

// New starts a test server. The registry lives in memory and ffmpeg is
// replaced by a CopyTransformer.
func New(t *testing.T, token string) *TestServer {
	t.Helper()

	cfg := config.Default()
	cfg.DB.Path = ":memory:"
	cfg.Auth.Token = token

	tf := &CopyTransformer{}
	a, err := app.New(cfg, nil, app.WithTransformer(tf))
	require.NoError(t, err)

	mcpServer := a.MCPServer()
	handler := transport.NewServer(transport.NewMCPHandler(mcpServer), transport.BearerAuth(token), nil)
	server := httptest.NewServer(handler)

	t.Cleanup(func() {
		server.Close()
		_ = a.Close()
	})

	return &TestServer{
		Server:      server,
		App:         a,
		MCP:         mcpServer,
		Token:       token,
		Transformer: tf,
	}
}

// Connect opens a client session over in-memory transports.
func (ts *TestServer) Connect(t *testing.T) *sdkmcp.ClientSession {
	t.Helper()
	ctx := context.Background()

	serverTransport, clientTransport := sdkmcp.NewInMemoryTransports()
	serverSession, err := ts.MCP.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)

	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "test-client", Version: "1.0.0"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = session.Close()
		_ = serverSession.Wait()
	})
	return session
}

// ConnectHTTP opens a client session over the streamable HTTP endpoint,
// sending the server token.
func (ts *TestServer) ConnectHTTP(t *testing.T) *sdkmcp.ClientSession {
	t.Helper()

	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "test-client", Version: "1.0.0"}, nil)
	session, err := client.Connect(context.Background(), &sdkmcp.StreamableClientTransport{
		Endpoint:   ts.Server.URL + "/mcp",
		HTTPClient: &http.Client{Transport: &bearerTransport{token: ts.Token}},
	}, nil)
	require.NoError(t, err)

	t.Cleanup(func() { _ = session.Close() })
	return session
}

type bearerTransport struct {
	token string
}

func (b *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	if b.token != "" {
		req.Header.Set("Authorization", "Bearer "+b.token)
	}
	return http.DefaultTransport.RoundTrip(req)
}

// CopyTransformer stands in for ffmpeg: the "mirrored" video is the input
// bytes prefixed with a marker.
type CopyTransformer struct {
	mu    sync.Mutex
	calls []string
}

// MirrorHorizontally writes the marked copy of input to output.
func (c *CopyTransformer) MirrorHorizontally(_ context.Context, input, output string) error {
	data, err := os.ReadFile(input)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.calls = append(c.calls, output)
	c.mu.Unlock()
	return os.WriteFile(output, append([]byte("mirrored:"), data...), 0o644)
}

// Calls returns the outputs written so far.
func (c *CopyTransformer) Calls() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.calls...)
}
