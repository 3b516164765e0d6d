package transport

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sirupsen/logrus"
)

// TransportType represents the type of transport
type TransportType string

const (
	TransportStdio TransportType = "stdio"
	TransportHTTP  TransportType = "http"
)

// ParseTransportType accepts the configured transport name
func ParseTransportType(s string) (TransportType, error) {
	switch s {
	case "stdio", "":
		return TransportStdio, nil
	case "http", "streamable-http":
		return TransportHTTP, nil
	default:
		return "", fmt.Errorf("unsupported transport type: %s", s)
	}
}

// DetectTransport picks the transport from command line flags first, then the
// configured value
func DetectTransport(args []string, configured string) (TransportType, error) {
	for _, arg := range args {
		switch arg {
		case "--stdio", "-stdio":
			return TransportStdio, nil
		case "--http", "-http":
			return TransportHTTP, nil
		}
	}
	return ParseTransportType(configured)
}

// Manager runs an MCP server over the selected transport
type Manager struct {
	logger          *logrus.Logger
	transportType   TransportType
	addr            string
	shutdownTimeout time.Duration
	httpServer      *http.Server
}

// NewManager creates a new transport manager. addr is only used by the HTTP transport.
func NewManager(logger *logrus.Logger, transportType TransportType, addr string) *Manager {
	return &Manager{
		logger:          logger,
		transportType:   transportType,
		addr:            addr,
		shutdownTimeout: 10 * time.Second,
	}
}

// Type returns the transport this manager serves
func (m *Manager) Type() TransportType {
	return m.transportType
}

// Serve blocks until ctx is cancelled or the transport fails
func (m *Manager) Serve(ctx context.Context, server *mcp.Server) error {
	switch m.transportType {
	case TransportStdio:
		m.logger.Info("Serving MCP over stdio")
		if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("stdio transport failed: %w", err)
		}
		return nil
	case TransportHTTP:
		return m.serveHTTP(ctx, HTTPHandler(server))
	default:
		return fmt.Errorf("unsupported transport type: %s", m.transportType)
	}
}

// HTTPHandler exposes server over the streamable HTTP transport
func HTTPHandler(server *mcp.Server) http.Handler {
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return server
	}, nil)
}

func (m *Manager) serveHTTP(ctx context.Context, handler http.Handler) error {
	mux := http.NewServeMux()
	mux.Handle("/mcp", handler)
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"healthy"}`))
	})

	m.httpServer = &http.Server{
		Addr:              m.addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		m.logger.WithField("addr", m.addr).Info("Serving MCP over streamable HTTP")
		if err := m.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("http transport failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), m.shutdownTimeout)
	defer cancel()

	m.logger.Info("Shutting down MCP HTTP transport")
	return m.httpServer.Shutdown(shutdownCtx)
}
