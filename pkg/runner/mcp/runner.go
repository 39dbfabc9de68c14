package mcp

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/server"
)

// Transport selects how the MCP server is exposed.
type Transport string

const (
	TransportStdio Transport = "stdio"
	TransportHTTP  Transport = "http"
)

const (
	defaultAddr     = "127.0.0.1:8080"
	defaultPath     = "/mcp"
	shutdownTimeout = 5 * time.Second
	instructions    = "Look up where listener questions are answered in Ask Kati Anything! episodes."
)

// Runner serves the episode directory to MCP clients.
type Runner struct {
	Directory Source
	Version   string
	Transport Transport

	// Addr and Path only apply to the http transport.
	Addr string
	Path string
	// Listening, when set, is called with the bound address before the
	// http transport starts serving.
	Listening func(net.Addr)
}

// Do serves until stdin closes (stdio) or ctx is done (http).
func (r Runner) Do(ctx context.Context) error {
	srv, err := r.newServer()
	if err != nil {
		return err
	}
	switch r.Transport {
	case "", TransportStdio:
		return server.ServeStdio(srv)
	case TransportHTTP:
		return r.serveHTTP(ctx, srv)
	default:
		return fmt.Errorf("unknown MCP transport %q", r.Transport)
	}
}

func (r Runner) newServer() (*server.MCPServer, error) {
	if r.Directory == nil {
		return nil, errors.New("mcp: no episode directory")
	}
	version := r.Version
	if version == "" {
		version = "dev"
	}
	srv := server.NewMCPServer("akats MCP", version,
		server.WithResourceCapabilities(false, false),
		server.WithToolCapabilities(false),
		server.WithInstructions(instructions),
		server.WithResourceRecovery(),
		server.WithRecovery(),
	)
	svc := NewService(r.Directory)
	registerResources(srv, svc)
	registerTools(srv, svc)
	return srv, nil
}

func (r Runner) endpoint() (addr, path string) {
	addr, path = r.Addr, r.Path
	if addr == "" {
		addr = defaultAddr
	}
	if path == "" {
		path = defaultPath
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return addr, path
}

func (r Runner) serveHTTP(ctx context.Context, srv *server.MCPServer) error {
	addr, path := r.endpoint()

	mux := http.NewServeMux()
	mux.Handle(path, server.NewStreamableHTTPServer(srv))
	httpSrv := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("mcp: listen %s: %w", addr, err)
	}
	if r.Listening != nil {
		r.Listening(ln.Addr())
	}

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = httpSrv.Shutdown(sctx)
	}()

	err = httpSrv.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		<-stopped
		return nil
	}
	return err
}
