package cmd

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kiesman99/tilesplit/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start HTTP server for tilemap splitting API",
	Long: `Start an HTTP server that provides a REST API for tilemap splitting.

POST a tilemap image to /api/v1/split and receive the tiles as base64
encoded PNGs together with their names, positions and average colours.

Examples:
  # Start server on default port 8080
  tilesplit serve

  # Start server on custom port
  tilesplit serve --port 3000

  # Split a tilemap with curl
  curl --data-binary @tilemap.png http://localhost:8080/api/v1/split`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	// Server configuration
	serveCmd.Flags().StringP("bind", "b", "localhost", "bind address")
	serveCmd.Flags().IntP("port", "p", 8080, "port to listen on")
	serveCmd.Flags().Duration("timeout", 30*time.Second, "request timeout")
	serveCmd.Flags().Int64("max-body", server.DefaultMaxBodyBytes, "largest accepted upload in bytes")

	// Bind flags to viper
	viper.BindPFlag("server.bind", serveCmd.Flags().Lookup("bind"))
	viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))
	viper.BindPFlag("server.timeout", serveCmd.Flags().Lookup("timeout"))
	viper.BindPFlag("server.max-body", serveCmd.Flags().Lookup("max-body"))
}

func runServe(cmd *cobra.Command, args []string) error {
	bind := viper.GetString("server.bind")
	port := viper.GetInt("server.port")
	timeout := viper.GetDuration("server.timeout")

	addr := fmt.Sprintf("%s:%d", bind, port)

	apiServer := server.NewServer(Version).WithMaxBodyBytes(viper.GetInt64("server.max-body"))

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      server.NewRouter(apiServer, timeout),
		ReadTimeout:  timeout,
		WriteTimeout: timeout,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		fmt.Fprintf(cmd.ErrOrStderr(), "\nShutting down server...\n")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(ctx); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}()

	fmt.Fprintf(cmd.ErrOrStderr(), "Starting tilesplit server on %s\n", addr)
	fmt.Fprintf(cmd.ErrOrStderr(), "Health check: http://%s/api/v1/health\n", addr)
	fmt.Fprintf(cmd.ErrOrStderr(), "Split endpoint: http://%s/api/v1/split\n", addr)

	if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
		return fmt.Errorf("server error: %v", err)
	}

	return nil
}
