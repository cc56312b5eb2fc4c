package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ishwar-prog/Singularity-Hackathon/internal/server"
)

var serveAddr string

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the REST API",
	Long: `Serve exposes report analysis over HTTP:

  GET  /                       service status
  GET  /platforms              platform table and verdict bands
  POST /analyze                {"text": "...", "source": "twitter"}
  POST /analyze-image          {"image_url": "...", "description": "..."}
  POST /analyze-image-upload   {"description": "..."}
  POST /score                  {"record": {...}, "platform_hint": "...", "raw_text": "..."}
  GET  /reports                stored reports (?limit=&status=)
  GET  /reports/:id            one stored report

Example:
  reliefscout serve
  reliefscout serve --addr 127.0.0.1:9000 --provider groq`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config, :8000)")
	serveCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable cache")
	serveCmd.Flags().BoolVar(&noStore, "no-store", false, "do not save reports to the history database")
	serveCmd.Flags().BoolVar(&checkLinks, "check-links", false, "check that donation links are reachable")
	serveCmd.Flags().StringVar(&intakeProvider, "provider", "", "classifier provider (openai, groq, ollama, offline)")
	serveCmd.Flags().StringVar(&intakeModel, "model", "", "classifier model name")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyRunFlags(cmd, cfg)
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	p, reports, cleanup, err := newPipeline(cfg, logger)
	if err != nil {
		return fmt.Errorf("create pipeline: %w", err)
	}
	defer cleanup()

	opts := server.Options{
		Addr:         cfg.Server.Addr,
		AllowOrigins: cfg.Server.AllowOrigins,
		Logger:       logger,
		Version:      Version,
		Development:  cfg.Log.Development,
	}
	if reports != nil {
		opts.Reports = reports
	}
	srv := server.New(p, p.Engine(), opts)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("starting reliefscout",
		zap.String("version", Version),
		zap.String("classifier", p.ClassifierName()),
		zap.Bool("store", reports != nil))
	return srv.Run(ctx)
}
