package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nhle/todo-extension/internal/app"
	"github.com/nhle/todo-extension/internal/mcpserver"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the tools over MCP (stdio or streamable HTTP)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if t, _ := cmd.Flags().GetString("transport"); t != "" {
			cfg.Server.Transport = t
		}
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.Server.Addr = addr
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		restored := a.RestoreReminders(ctx)
		a.Logger.Info("serving",
			zap.String("transport", cfg.Server.Transport),
			zap.Int("reminders", restored))

		switch cfg.Server.Transport {
		case "stdio":
			return server.ServeStdio(a.MCP.MCP(),
				server.WithStdioContextFunc(mcpserver.StdioUserContext(cfg.DefaultUserID)))
		case "http":
			return serveHTTP(ctx, a)
		default:
			return fmt.Errorf("unknown transport %q (want stdio or http)", cfg.Server.Transport)
		}
	},
}

func serveHTTP(ctx context.Context, a *app.App) error {
	streamServer := server.NewStreamableHTTPServer(a.MCP.MCP(),
		server.WithEndpointPath(cfg.Server.Endpoint),
		server.WithStateLess(true),
		server.WithHTTPContextFunc(mcpserver.HTTPUserContext(cfg.Server.UserHeader, cfg.DefaultUserID)),
	)

	mux := http.NewServeMux()
	mux.Handle(cfg.Server.Endpoint, streamServer)
	mux.Handle("/metrics", a.Metrics.Handler())

	httpServer := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info("listening",
			zap.String("addr", cfg.Server.Addr),
			zap.String("endpoint", cfg.Server.Endpoint))
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	}
}

func init() {
	serveCmd.Flags().String("transport", "", "stdio or http (overrides server.transport)")
	serveCmd.Flags().String("addr", "", "listen address for http (overrides server.addr)")
}
