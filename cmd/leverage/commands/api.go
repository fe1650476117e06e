package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/leverage/backend/internal/api"
	"github.com/wonny/leverage/backend/internal/api/handlers"
	"github.com/wonny/leverage/backend/internal/external/yahoo"
	"github.com/wonny/leverage/backend/internal/leverage"
	"github.com/wonny/leverage/backend/pkg/httputil"
	"github.com/wonny/leverage/backend/pkg/logger"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "API 서버 시작",
	Long: `REST API 서버를 시작합니다.

Endpoints:
  GET  /api/health              - Health check
  POST /api/generate-csv        - rows → CSV download (sample data if omitted)
  POST /api/debt-to-equity      - {ticker} → {data: [...]}
  POST /api/debt-to-equity-csv  - {ticker} → CSV download

Example:
  go run ./cmd/leverage api
  go run ./cmd/leverage api --port 8080`,
	RunE: runAPIServer,
}

var (
	apiPort string
)

func init() {
	rootCmd.AddCommand(apiCmd)

	apiCmd.Flags().StringVar(&apiPort, "port", "", "API 서버 포트 (default: $PORT or 5000)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	// 1. Load config
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if apiPort != "" {
		cfg.Port = apiPort
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	// 3. Provider client → service → handlers
	httpClient := httputil.New(cfg, log)
	provider := yahoo.NewClient(httpClient, cfg, log)
	service := leverage.NewService(provider, log)

	ratioHandler := handlers.NewRatioHandler(service, log)
	exportHandler := handlers.NewExportHandler(log)

	// 4. Router + server
	router := api.NewRouter(ratioHandler, exportHandler, cfg.AllowedOrigins, log)
	server := api.New(cfg, log, router)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	fmt.Printf("\n✅ Server running on http://localhost:%s\n", cfg.Port)
	fmt.Println("\nAvailable endpoints:")
	PrintList([]string{
		"GET  /api/health",
		"POST /api/generate-csv",
		"POST /api/debt-to-equity",
		"POST /api/debt-to-equity-csv",
	})
	fmt.Println("\nPress Ctrl+C to stop")

	// Wait for interrupt signal or a listen failure
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			log.WithError(err).Error("API server stopped")
		}
		return err
	case <-quit:
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}
