package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/menuforge/extractor-core/internal/aifallback"
	"github.com/menuforge/extractor-core/internal/config"
)

var parseTextFallbackLabel string

var parseTextCmd = &cobra.Command{
	Use:   "parse-text [path]",
	Short: "Run the text-only fallback path over already-OCR'd text (reads stdin if path is omitted)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runParseText,
}

func init() {
	parseTextCmd.Flags().StringVar(&parseTextFallbackLabel, "fallback-label", "Uncategorized", "category label used when no rule matches")
	rootCmd.AddCommand(parseTextCmd)
}

func runParseText(cmd *cobra.Command, args []string) error {
	var data []byte
	var err error
	if len(args) == 1 {
		data, err = os.ReadFile(args[0])
	} else {
		data, err = io.ReadAll(os.Stdin)
	}
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	fallback := parseTextFallbackLabel
	if fallback == "" {
		fallback = config.DefaultConfig().Category.FallbackLabel
	}

	blocks := aifallback.ParseText(string(data), aifallback.Config{CategoryFallbackLabel: fallback})

	out, err := json.MarshalIndent(blocks, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal blocks: %w", err)
	}
	fmt.Println(string(out))
	return nil
}
