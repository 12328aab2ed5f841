package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/yourusername/vortex/pkg/vortex/container"
	"github.com/yourusername/vortex/pkg/vortex/logging"
	"github.com/yourusername/vortex/pkg/vortex/middleware/compress"
	"github.com/yourusername/vortex/pkg/vortex/middleware/requestid"
	"github.com/yourusername/vortex/pkg/vortex/pipeline"
	"github.com/yourusername/vortex/pkg/vortex/router"
	"github.com/yourusername/vortex/pkg/vortex/server"
)

type serveConfig struct {
	Addr               string
	RequestTimeoutMS   int
	KeepaliveTimeoutMS int
	MaxRequestsPerConn int
	MaxBodySize        int64
	MaxChunkSize       int64
	ReusePort          bool
	LogStdout          bool
	LogLevel           string
	LogFile            string
}

var serveCfg serveConfig

var rootCmd = &cobra.Command{
	Use:   "vortex",
	Short: "vortex is an HTTP/1.x server framework core",
}

var serveCmd = &cobra.Command{
	Use:     "serve",
	Short:   "Run the HTTP server",
	Example: "# vortex serve --addr :8080 --reuseport",
	Run: func(cmd *cobra.Command, args []string) {
		logging.SetDefault(logging.New(logging.Options{
			Stdout:   serveCfg.LogStdout,
			Level:    logging.Level(serveCfg.LogLevel),
			Filename: serveCfg.LogFile,
		}))

		cfg := server.DefaultConfig()
		cfg.Addr = serveCfg.Addr
		cfg.HeaderTimeout = time.Duration(serveCfg.RequestTimeoutMS) * time.Millisecond
		cfg.KeepAliveTimeout = time.Duration(serveCfg.KeepaliveTimeoutMS) * time.Millisecond
		cfg.MaxRequests = serveCfg.MaxRequestsPerConn
		cfg.MaxBodySize = uint64(serveCfg.MaxBodySize)
		cfg.MaxChunkSize = uint64(serveCfg.MaxChunkSize)
		cfg.Socket.ReusePort = serveCfg.ReusePort

		services := container.New()
		p := buildPipeline()

		srv := server.New(cfg, p, services)

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		logging.Infof("vortex: listening on %s", cfg.Addr)
		errc := make(chan error, 1)
		go func() { errc <- srv.ListenAndServe(ctx) }()

		select {
		case err := <-errc:
			if err != nil {
				fmt.Fprintf(os.Stderr, "vortex: server exited: %v\n", err)
				os.Exit(1)
			}
		case <-ctx.Done():
			logging.Infof("vortex: shutting down")
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer shutdownCancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				fmt.Fprintf(os.Stderr, "vortex: shutdown: %v\n", err)
				os.Exit(1)
			}
		}
	},
}

// buildPipeline wires the default middleware chain ahead of the router:
// request-id assignment, response compression, then routing. Applications
// embedding vortex register their own routes on the returned
// router.RoutingHandler before the server starts accepting connections; here
// we register a minimal health-check route so `serve` is useful standalone.
func buildPipeline() *pipeline.Pipeline {
	routes := router.New(0)
	routes.Route("GET", "/healthz", pipeline.HandlerFunc(func(ctx *pipeline.Context, next pipeline.Next) error {
		ctx.Response.Out.AppendStatic([]byte("ok"))
		ctx.Response.MarkStarted()
		return nil
	}))

	return pipeline.New(pipeline.NotFound).
		Use(requestid.New()).
		Use(compress.New()).
		Use(routes)
}

func init() {
	serveCmd.Flags().StringVar(&serveCfg.Addr, "addr", ":8080", "Address to listen on")
	serveCmd.Flags().IntVar(&serveCfg.RequestTimeoutMS, "request-timeout-ms", 10000, "Timeout for reading a request's head before the first byte of a new request arrives")
	serveCmd.Flags().IntVar(&serveCfg.KeepaliveTimeoutMS, "keepalive-timeout-ms", 60000, "Idle timeout between requests on a keep-alive connection")
	serveCmd.Flags().IntVar(&serveCfg.MaxRequestsPerConn, "max-requests-per-conn", 0, "Maximum requests served per connection (0 = unlimited)")
	serveCmd.Flags().Int64Var(&serveCfg.MaxBodySize, "max-body-size", 64<<20, "Maximum request body size in bytes (Content-Length or chunked)")
	serveCmd.Flags().Int64Var(&serveCfg.MaxChunkSize, "max-chunk-size", 4<<20, "Maximum chunked transfer-encoding chunk size in bytes")
	serveCmd.Flags().BoolVar(&serveCfg.ReusePort, "reuseport", false, "Enable SO_REUSEPORT on the listening socket")
	serveCmd.Flags().BoolVar(&serveCfg.LogStdout, "log-stdout", true, "Log to stdout instead of a file")
	serveCmd.Flags().StringVar(&serveCfg.LogLevel, "log-level", "info", "Log level: debug|info|warn|error")
	serveCmd.Flags().StringVar(&serveCfg.LogFile, "log-file", "vortex.log", "Log file path when --log-stdout=false")
	rootCmd.AddCommand(serveCmd)
}
