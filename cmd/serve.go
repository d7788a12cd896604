package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/MalinduDS/styleshot/internal/handlers"
	"github.com/MalinduDS/styleshot/internal/storage"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	var (
		port       string
		uploadsDir string
		flags      providerFlags
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start web server for the studio interface",
		Long: `Starts the StyleShot web interface on the specified port.

The web interface lets you upload a clothing photo, choose a virtual model and
a scene, adjust lighting with undo/redo, generate the styled image and download
it at the export preset sizes.`,
		Example: `  # Start server on default port 8888
  styleshot serve

  # Start server on custom port with OpenAI
  styleshot serve --port 3000 --provider openai`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, c, pipeline, err := flags.load()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("port") {
				cfg.Port = port
			}
			if uploadsDir != "" {
				cfg.UploadsDir = uploadsDir
			}

			store := storage.New(cfg.SessionTTL)
			defer store.Close()

			handler := handlers.New(handlers.Options{
				Store:          store,
				Catalog:        c,
				Pipeline:       pipeline,
				UploadsDir:     cfg.UploadsDir,
				MaxUploadBytes: cfg.MaxUploadBytes,
			})

			addr := ":" + cfg.Port
			server := &http.Server{
				Addr:              addr,
				Handler:           handlers.NewRouter(handler),
				ReadHeaderTimeout: 10 * time.Second,
			}

			// Start server in goroutine
			serverErr := make(chan error, 1)
			go func() {
				slog.Info("StyleShot interface available", "addr", addr, "url", "http://localhost"+addr, "provider", pipeline.Provider(), "model", pipeline.Model())
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serverErr <- err
				}
			}()

			// Wait for context cancellation (Ctrl+C) or server error
			select {
			case <-cmd.Context().Done():
				slog.Info("Shutting down server...")
				// Give in-flight generations time to finish
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				defer cancel()
				if err := server.Shutdown(shutdownCtx); err != nil {
					slog.Error("Server shutdown failed", "err", err)
					return err
				}
				slog.Info("Server stopped")
				return nil
			case err := <-serverErr:
				return err
			}
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "8888", "Port to listen on (default from PORT)")
	cmd.Flags().StringVar(&uploadsDir, "uploads-dir", "", "Directory for uploaded images (default from UPLOADS_DIR)")
	flags.register(cmd)

	return cmd
}
