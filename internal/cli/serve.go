package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/AI2HU/bookapp/internal/api"
	"github.com/AI2HU/bookapp/internal/logger"
	"github.com/AI2HU/bookapp/internal/monitor"
)

const connectTimeout = 30 * time.Second

var (
	serveHost string
	servePort string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the book API server",
	Long: `Start the book API server. Relational routes live under /book_app and
document routes under /book_app/mongodb. /health and /metrics need no credentials.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&servePort, "port", "p", "", "Port to run the API server on (overrides config)")
	serveCmd.Flags().StringVarP(&serveHost, "host", "H", "", "Host to bind the API server to (overrides config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	if serveHost != "" {
		cfg.Server.Host = serveHost
	}
	if servePort != "" {
		cfg.Server.Port = servePort
	}

	if logger.IsDebugEnabled() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	database, err := newHybrid(cfg)
	if err != nil {
		return err
	}

	connectCtx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	if err := database.Connect(connectCtx); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := database.Disconnect(ctx); err != nil {
			logger.Error("Failed to disconnect databases: %v", err)
		}
	}()

	logger.Info("Connected to %s and %s stores", cfg.SQLDatabase.Provider, cfg.NoSQLDatabase.Provider)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	server := api.NewServer(database, cfg, registry)

	if cfg.Monitor.Enabled {
		probe := monitor.New(database, cfg.Monitor.Schedule, cfg.Server.BackendTimeout, registry)
		if err := probe.Start(); err != nil {
			return err
		}
		defer probe.Stop()
		server.SetProbe(probe)
	}

	address := cfg.Server.Address()
	printBanner(address)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Run(address)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errCh:
		return err
	case <-quit:
	}

	fmt.Println("\n" + FormatWarning("Shutting down API server..."))

	ctx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return <-errCh
}

func printBanner(address string) {
	fmt.Println(FormatHeader("Bookapp API Server"))
	fmt.Println(FormatHeader("=================="))
	fmt.Println(FormatLabelValue("Listening:", "http://"+address))
	fmt.Println(FormatLabelValue("Relational store:", cfg.SQLDatabase.Provider))
	fmt.Println(FormatLabelValue("Document store:", cfg.NoSQLDatabase.Provider+" ("+cfg.NoSQLDatabase.Database+")"))
	fmt.Println()
	fmt.Println("Endpoints:")
	fmt.Println("  Relational:")
	fmt.Println("    POST   /book_app                 - Create book")
	fmt.Println("    GET    /book_app/:id             - Get book")
	fmt.Println("    PUT    /book_app/:id             - Update book")
	fmt.Println("    DELETE /book_app/:id             - Delete book")
	fmt.Println("  Document:")
	fmt.Println("    POST   /book_app/mongodb         - Create book")
	fmt.Println("    GET    /book_app/mongodb/:id     - Get book")
	fmt.Println("    PUT    /book_app/mongodb/:id     - Update book")
	fmt.Println("    DELETE /book_app/mongodb/:id     - Delete book")
	fmt.Println("  Operations:")
	fmt.Println("    GET    /health                   - Store health")
	fmt.Println("    GET    /metrics                  - Prometheus metrics")
	fmt.Println()
	fmt.Println(FormatDim("Press Ctrl+C to stop the server"))
}
