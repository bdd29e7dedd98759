package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/menuforge/extractor-core/internal/config"
	"github.com/menuforge/extractor-core/internal/observability"
	"github.com/menuforge/extractor-core/internal/ocrtext"
	"github.com/menuforge/extractor-core/internal/pipeline"
	"github.com/menuforge/extractor-core/internal/rasterize"
)

var (
	extractOutputPath string
	extractLanguages  []string
	extractTimeout    time.Duration
)

var extractCmd = &cobra.Command{
	Use:   "extract <path>",
	Short: "Extract a structured menu payload from a PDF or image",
	Args:  cobra.ExactArgs(1),
	RunE:  runExtract,
}

func init() {
	extractCmd.Flags().StringVarP(&extractOutputPath, "output", "o", "", "write JSON payload here instead of stdout")
	extractCmd.Flags().StringSliceVar(&extractLanguages, "lang", []string{"eng"}, "tesseract language codes")
	extractCmd.Flags().DurationVar(&extractTimeout, "timeout", 10*time.Minute, "abort the document after this long")
	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	path := args[0]

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if logLevel != "" {
		cfg.Observability.LogLevel = logLevel
	}

	logger := observability.New(observability.Config{
		Level:  cfg.Observability.LogLevel,
		Format: cfg.Observability.LogFormat,
	})

	engine := ocrtext.NewTesseractEngine(extractLanguages)
	defer engine.Close()

	raster := rasterize.NewFitzRasteriser(rasterize.DefaultDPI)
	p := pipeline.New(cfg, logger, engine, raster)

	ctx, cancel := context.WithTimeout(cmd.Context(), extractTimeout)
	defer cancel()

	jobID := uuid.NewString()
	payload, err := p.Run(ctx, jobID, path)
	if err != nil {
		return fmt.Errorf("extract %s: %w", path, err)
	}

	out, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	if extractOutputPath == "" {
		fmt.Println(string(out))
		return nil
	}
	return os.WriteFile(extractOutputPath, out, 0o644)
}
