package main

import (
	"context"
	"fmt"
	"log"

	"github.com/jonathan/cv-builder/internal/db"
	"github.com/jonathan/cv-builder/internal/export"
	"github.com/jonathan/cv-builder/internal/flow"
	"github.com/jonathan/cv-builder/internal/server"
	"github.com/jonathan/cv-builder/internal/session"
	"github.com/spf13/cobra"
)

var (
	servePort string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start an HTTP server that exposes the CV conversation as sessions. Finished CVs can be
saved to PostgreSQL when DATABASE_URL is set.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&servePort, "port", "", "Port to listen on (overrides config and PORT)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := loadSettings()
	if err != nil {
		return err
	}
	if servePort != "" {
		cfg.Port = servePort
	}

	s, err := loadScript(cfg)
	if err != nil {
		return err
	}
	renderer, err := newRenderer(cfg)
	if err != nil {
		return err
	}
	if _, ok := renderer.Lookup(cfg.DefaultTemplate); !ok {
		return fmt.Errorf("unknown default template %q", cfg.DefaultTemplate)
	}

	a, closeAssistant, err := newAssistant(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeAssistant()

	opts := engineOptions(cfg, a)
	store := session.NewStore(func() (*flow.Engine, error) {
		return flow.NewEngine(s, opts)
	}, session.Options{
		MaxSessions: cfg.MaxSessions,
		TTL:         cfg.SessionTTL(),
		Verbose:     cfg.Verbose,
	})

	srvCfg := server.Config{
		Port:           cfg.Port,
		Store:          store,
		Renderer:       renderer,
		Exporter:       export.NewPDFExporter(cfg.Verbose),
		AllowedOrigins: cfg.AllowedOrigins,
		DefaultTmpl:    cfg.DefaultTemplate,
		Verbose:        cfg.Verbose,
	}

	if cfg.DatabaseURL != "" {
		database, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		if err := database.EnsureSchema(ctx); err != nil {
			database.Close()
			return err
		}
		srvCfg.Documents = database
	} else {
		log.Printf("[SERVER] DATABASE_URL not set, document persistence disabled")
	}

	srv, err := server.New(srvCfg)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start()
}
