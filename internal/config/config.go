// Package config provides unified configuration loading for the menu
// extraction core: YAML files, environment variable overrides, and
// programmatic defaults.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all tunables for the extraction pipeline.
type Config struct {
	OCR           OCRConfig           `yaml:"ocr"`
	Layout        LayoutConfig        `yaml:"layout"`
	Fusion        FusionConfig        `yaml:"fusion"`
	Grammar       GrammarConfig       `yaml:"grammar"`
	Category      CategoryConfig      `yaml:"category"`
	Cache         CacheConfig         `yaml:"cache"`
	Observability ObservabilityConfig `yaml:"observability"`
	Debug         DebugConfig         `yaml:"debug"`
}

// OCRConfig holds OCR primitive and orientation/column settings.
type OCRConfig struct {
	ConfFloor       float64 `yaml:"conf_floor"`
	Rotations       []int   `yaml:"rotations"`
	PSMModes        []int   `yaml:"psm_modes"`
	MinGutterWidth  int     `yaml:"min_gutter_width"`
	MaxGutterWidth  int     `yaml:"max_gutter_width"`
	GutterWidthFrac float64 `yaml:"gutter_width_frac"`
}

// LayoutConfig holds layout-segmenter geometric tolerances.
type LayoutConfig struct {
	LineSpanHeightMult      float64 `yaml:"line_span_height_mult"`
	LineHeightRatioMax      float64 `yaml:"line_height_ratio_max"`
	LineMinWidthPx          int     `yaml:"line_min_width_px"`
	LineWidthWordMult       float64 `yaml:"line_width_word_mult"`
	LineGapMinPx            int     `yaml:"line_gap_min_px"`
	LineGapWordMult         float64 `yaml:"line_gap_word_mult"`
	BlockGapLineHeightMult  float64 `yaml:"block_gap_line_height_mult"`
	BlockHorizOverlapMin    float64 `yaml:"block_horiz_overlap_min"`
	TwoColMergeVerticalMult float64 `yaml:"two_col_merge_vertical_mult"`
	TwoColMergeMinPx        int     `yaml:"two_col_merge_min_px"`
	TwoColMergeMaxPx        int     `yaml:"two_col_merge_max_px"`
	TwoColMergeWidthFrac    float64 `yaml:"two_col_merge_width_frac"`
}

// FusionConfig holds multi-pass OCR fusion thresholds.
type FusionConfig struct {
	ClusterIoUMin            float64 `yaml:"cluster_iou_min"`
	ClusterOverlapMin        float64 `yaml:"cluster_overlap_min"`
	SinglePassConfFloor      float64 `yaml:"single_pass_conf_floor"`
	OutlierUsableRatio       float64 `yaml:"outlier_usable_ratio"`
	RotationTieEpsilon       float64 `yaml:"rotation_tie_epsilon"`
}

// GrammarConfig holds menu-grammar tunables.
type GrammarConfig struct {
	HeadingVocabularyPath string `yaml:"heading_vocabulary_path"`
}

// CategoryConfig holds category-inference tunables.
type CategoryConfig struct {
	FallbackLabel string `yaml:"fallback_label"`
}

// CacheConfig holds OCR-result cache settings.
type CacheConfig struct {
	Driver string `yaml:"driver"` // "memory" or "redis"
	TTLSeconds int `yaml:"ttl_seconds"`
	Redis  RedisConfig `yaml:"redis"`
}

// RedisConfig holds redis connection settings for the OCR-result cache.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

// ObservabilityConfig holds logging settings.
type ObservabilityConfig struct {
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

// DebugConfig controls opt-in debug artefact emission.
type DebugConfig struct {
	EmitPreOCRImages    bool `yaml:"emit_pre_ocr_images"`
	EmitMultiPassMeta   bool `yaml:"emit_multipass_meta"`
	EmitGrammarTrace    bool `yaml:"emit_grammar_trace"`
}

// Load reads a YAML config file (if path is non-empty) over top of
// DefaultConfig, then applies environment overrides and validates.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// DefaultConfig returns the spec-mandated default tunables.
func DefaultConfig() *Config {
	return &Config{
		OCR: OCRConfig{
			ConfFloor:       55,
			Rotations:       []int{0, 90, 180, 270},
			PSMModes:        []int{6, 4, 11},
			MinGutterWidth:  12,
			MaxGutterWidth:  64,
			GutterWidthFrac: 0.0075,
		},
		Layout: LayoutConfig{
			LineSpanHeightMult:      1.8,
			LineHeightRatioMax:      2.0,
			LineMinWidthPx:          800,
			LineWidthWordMult:       20,
			LineGapMinPx:            40,
			LineGapWordMult:         3,
			BlockGapLineHeightMult:  1.25,
			BlockHorizOverlapMin:    0.25,
			TwoColMergeVerticalMult: 1.2,
			TwoColMergeMinPx:        60,
			TwoColMergeMaxPx:        150,
			TwoColMergeWidthFrac:    0.08,
		},
		Fusion: FusionConfig{
			ClusterIoUMin:       0.35,
			ClusterOverlapMin:   0.60,
			SinglePassConfFloor: 70,
			OutlierUsableRatio:  2.5,
			RotationTieEpsilon:  0.01,
		},
		Grammar: GrammarConfig{},
		Category: CategoryConfig{
			FallbackLabel: "Uncategorized",
		},
		Cache: CacheConfig{
			Driver:     "memory",
			TTLSeconds: 300,
			Redis: RedisConfig{
				Addr:     "localhost:6379",
				DB:       0,
				PoolSize: 10,
			},
		},
		Observability: ObservabilityConfig{
			LogLevel:  "info",
			LogFormat: "console",
		},
		Debug: DebugConfig{},
	}
}

// Validate checks the configuration for internal consistency.
func (c *Config) Validate() error {
	if c.OCR.ConfFloor < 0 || c.OCR.ConfFloor > 100 {
		return fmt.Errorf("invalid ocr conf_floor: %v", c.OCR.ConfFloor)
	}
	if len(c.OCR.Rotations) == 0 {
		return fmt.Errorf("ocr rotations must not be empty")
	}
	if len(c.OCR.PSMModes) == 0 {
		return fmt.Errorf("ocr psm_modes must not be empty")
	}
	if c.Cache.Driver != "memory" && c.Cache.Driver != "redis" {
		return fmt.Errorf("invalid cache driver: %s", c.Cache.Driver)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides to config.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("MENUEXTRACT_OCR_CONF_FLOOR"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.OCR.ConfFloor = f
		}
	}
	if v := os.Getenv("MENUEXTRACT_CACHE_DRIVER"); v != "" {
		cfg.Cache.Driver = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		cfg.Cache.Driver = "redis"
		cfg.Cache.Redis.Addr = strings.TrimPrefix(v, "redis://")
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Observability.LogLevel = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Observability.LogFormat = v
	}
	if v := os.Getenv("MENUEXTRACT_DEBUG"); v == "true" {
		cfg.Debug.EmitPreOCRImages = true
		cfg.Debug.EmitMultiPassMeta = true
		cfg.Debug.EmitGrammarTrace = true
	}
}
