package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tendergen/internal/config"
	"tendergen/internal/conversation"
	"tendergen/internal/docx"
	"tendergen/internal/llm"
	"tendergen/internal/render"
	"tendergen/internal/server"

	"github.com/spf13/cobra"
)

var (
	rootCmd = &cobra.Command{
		Use:   "tendergen",
		Short: "AI-assisted tender document drafting",
	}
	configPath string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "Path to the configuration file")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(exportCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the drafting API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
		slog.SetDefault(logger)

		system, err := cfg.LoadSystemInstruction()
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		client, err := llm.NewClient(ctx, llm.Options{
			Provider: cfg.AI.Provider,
			APIKey:   cfg.AI.APIKey,
			Model:    cfg.AI.Model,
			BaseURL:  cfg.AI.BaseURL,
		})
		if err != nil {
			return fmt.Errorf("failed to create AI client: %w", err)
		}
		defer client.Close()

		srv := &http.Server{
			Addr:              cfg.Server.Addr,
			Handler:           server.New(cfg, client, system, logger).Routes(),
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			logger.Info("server listening", "addr", cfg.Server.Addr, "provider", client.Name())
			errCh <- srv.ListenAndServe()
		}()

		stop, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		select {
		case err := <-errCh:
			if !errors.Is(err, http.ErrServerClosed) {
				return err
			}
		case <-stop.Done():
			logger.Info("shutting down")
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer shutdownCancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("shutdown failed: %w", err)
			}
		}
		return nil
	},
}

var (
	transcriptPath string
	outputPath     string
)

// exportCmd renders a saved transcript into the final document without
// touching the model, for offline regeneration.
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Render a saved transcript JSON into a tender document",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		raw, err := os.ReadFile(transcriptPath)
		if err != nil {
			return fmt.Errorf("failed to read transcript: %w", err)
		}
		var turns []conversation.Turn
		if err := json.Unmarshal(raw, &turns); err != nil {
			return fmt.Errorf("invalid transcript %s: %w", transcriptPath, err)
		}

		model := render.Render(turns, render.Metadata{
			TenderTitle:  cfg.Tender.Title,
			TenderNumber: cfg.Tender.Number,
			IssueDate:    cfg.IssueDate(),
		})
		data, err := docx.Write(model)
		if err != nil {
			return fmt.Errorf("failed to build document: %w", err)
		}

		out := outputPath
		if out == "" {
			out = docx.FileName
		}
		if err := os.WriteFile(out, data, 0o644); err != nil {
			return fmt.Errorf("failed to write document: %w", err)
		}
		fmt.Printf("Wrote %s (%d bytes)\n", out, len(data))
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&transcriptPath, "transcript", "t", "transcript.json", "Path to the transcript JSON file")
	exportCmd.Flags().StringVarP(&outputPath, "out", "o", "", "Output document path (defaults to the standard filename)")
}
