// Package config loads the shape-measure-mcp configuration from a JSON file
// and the environment.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ironsheep/shape-measure-mcp/internal/detection"
	"github.com/ironsheep/shape-measure-mcp/internal/geometry"
	"github.com/ironsheep/shape-measure-mcp/internal/measure"
	"github.com/ironsheep/shape-measure-mcp/internal/shape"
)

// Environment variables read by ApplyEnv and Load.
const (
	EnvConfigPath      = "SHAPE_MCP_CONFIG"
	EnvReferenceMM     = "SHAPE_MCP_REFERENCE_MM"
	EnvReferenceCorner = "SHAPE_MCP_REFERENCE_CORNER"
	EnvPreprocessMode  = "SHAPE_MCP_PREPROCESS_MODE"
	EnvStopAtReference = "SHAPE_MCP_STOP_AT_REFERENCE"
	EnvLogLevel        = "SHAPE_MCP_LOG_LEVEL"
)

// Reference selection strategies.
const (
	StrategyNearestCorner = "nearest-corner"
	StrategyLargestArea   = "largest-area"
	StrategyFixed         = "fixed"
)

// Config holds the application configuration
type Config struct {
	LogLevel  string          `json:"log_level"`
	Measure   MeasureConfig   `json:"measure"`
	Reference ReferenceConfig `json:"reference"`
	Detection DetectionConfig `json:"detection"`
	Output    OutputConfig    `json:"output"`
}

// MeasureConfig holds the calibration and classification parameters
type MeasureConfig struct {
	ReferenceSizeMM float64 `json:"reference_size_mm"`
	SideTolerancePx float64 `json:"side_tolerance_px"`
	MinAreaPx       float64 `json:"min_area_px"`
	MinAreaRatio    float64 `json:"min_area_ratio"`
	SimplifyRatio   float64 `json:"simplify_ratio"`
	StopAtReference bool    `json:"stop_at_reference"`
}

// ReferenceConfig selects how the reference object is found
type ReferenceConfig struct {
	Strategy string `json:"strategy"`
	Corner   string `json:"corner"`

	// Index is the contour used as reference by the fixed strategy, in
	// raster scan order.
	Index int `json:"index"`
}

// DetectionConfig holds the preprocessing parameters
type DetectionConfig struct {
	Mode           string  `json:"mode"`
	BlurSigma      float64 `json:"blur_sigma"`
	CannyLow       float64 `json:"canny_low"`
	CannyHigh      float64 `json:"canny_high"`
	DilateRadius   float64 `json:"dilate_radius"`
	ThresholdLevel int     `json:"threshold_level"`
}

// OutputConfig holds configuration for annotated image output
type OutputConfig struct {
	Dir    string `json:"dir"`
	Suffix string `json:"suffix"`
	Format string `json:"format"`
}

// Default returns a configuration with default values
func Default() *Config {
	d := detection.DefaultOptions()
	return &Config{
		LogLevel: "info",
		Measure: MeasureConfig{
			ReferenceSizeMM: measure.DefaultReferenceSizeMM,
			SideTolerancePx: shape.DefaultSideTolerance,
			MinAreaPx:       measure.DefaultMinArea,
			MinAreaRatio:    measure.DefaultMinAreaRatio,
			SimplifyRatio:   geometry.DefaultSimplifyRatio,
		},
		Reference: ReferenceConfig{
			Strategy: StrategyNearestCorner,
			Corner:   measure.CornerTopRight,
		},
		Detection: DetectionConfig{
			Mode:           d.Mode,
			BlurSigma:      d.BlurSigma,
			CannyLow:       d.CannyLow,
			CannyHigh:      d.CannyHigh,
			DilateRadius:   d.DilateRadius,
			ThresholdLevel: int(d.ThresholdLevel),
		},
		Output: OutputConfig{
			Dir:    "",
			Suffix: "_measured",
			Format: "png",
		},
	}
}

// Load builds the effective configuration: defaults, then the file named by
// SHAPE_MCP_CONFIG if set, then environment overrides.
func Load() (*Config, error) {
	cfg := Default()
	if path := getEnv(EnvConfigPath, ""); path != "" {
		loaded, err := LoadFromFile(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromFile loads configuration from a JSON file. Fields missing from the
// file keep their default values.
func LoadFromFile(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := Default()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveToFile saves configuration to a JSON file
func (c *Config) SaveToFile(filename string) error {
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ApplyEnv overrides fields from SHAPE_MCP_* environment variables.
func (c *Config) ApplyEnv() error {
	if v := getEnv(EnvReferenceMM, ""); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvReferenceMM, v, err)
		}
		c.Measure.ReferenceSizeMM = f
	}
	if v := getEnv(EnvStopAtReference, ""); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvStopAtReference, v, err)
		}
		c.Measure.StopAtReference = b
	}
	c.Reference.Corner = getEnv(EnvReferenceCorner, c.Reference.Corner)
	c.Detection.Mode = getEnv(EnvPreprocessMode, c.Detection.Mode)
	c.LogLevel = strings.ToLower(getEnv(EnvLogLevel, c.LogLevel))
	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	if c.Measure.ReferenceSizeMM <= 0 {
		errs = append(errs, errors.New("measure.reference_size_mm must be positive"))
	}
	if c.Measure.SideTolerancePx < 0 {
		errs = append(errs, errors.New("measure.side_tolerance_px cannot be negative"))
	}
	if c.Measure.MinAreaPx < 0 {
		errs = append(errs, errors.New("measure.min_area_px cannot be negative"))
	}
	if c.Measure.MinAreaRatio < 0 {
		errs = append(errs, errors.New("measure.min_area_ratio cannot be negative"))
	}
	if c.Measure.SimplifyRatio <= 0 || c.Measure.SimplifyRatio >= 1 {
		errs = append(errs, errors.New("measure.simplify_ratio must be between 0 and 1"))
	}

	switch c.Reference.Strategy {
	case StrategyNearestCorner, StrategyLargestArea:
	case StrategyFixed:
		if c.Reference.Index < 0 {
			errs = append(errs, errors.New("reference.index cannot be negative"))
		}
	default:
		errs = append(errs, fmt.Errorf("reference.strategy %q is not supported", c.Reference.Strategy))
	}
	if _, err := measure.CornerPoint(image.Rect(0, 0, 1, 1), c.Reference.Corner); err != nil {
		errs = append(errs, fmt.Errorf("reference.corner: %w", err))
	}

	switch c.Detection.Mode {
	case detection.ModeCanny, detection.ModeThreshold:
	default:
		errs = append(errs, fmt.Errorf("detection.mode %q is not supported", c.Detection.Mode))
	}
	if c.Detection.BlurSigma < 0 {
		errs = append(errs, errors.New("detection.blur_sigma cannot be negative"))
	}
	if c.Detection.CannyLow < 0 || c.Detection.CannyHigh < 0 {
		errs = append(errs, errors.New("detection canny thresholds cannot be negative"))
	}
	if c.Detection.CannyLow > c.Detection.CannyHigh {
		errs = append(errs, errors.New("detection.canny_low cannot exceed detection.canny_high"))
	}
	if c.Detection.DilateRadius < 0 {
		errs = append(errs, errors.New("detection.dilate_radius cannot be negative"))
	}
	if c.Detection.ThresholdLevel < 0 || c.Detection.ThresholdLevel > 255 {
		errs = append(errs, errors.New("detection.threshold_level must be between 0 and 255"))
	}

	switch strings.ToLower(c.Output.Format) {
	case "png", "jpg", "jpeg", "webp":
	default:
		errs = append(errs, fmt.Errorf("output.format %q is not supported", c.Output.Format))
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log_level %q is not supported", c.LogLevel))
	}

	return errors.Join(errs...)
}

// MeasureParams converts the measure section to measure.Params.
func (c *Config) MeasureParams() measure.Params {
	return measure.Params{
		ReferenceSizeMM: c.Measure.ReferenceSizeMM,
		SideTolerance:   c.Measure.SideTolerancePx,
		MinArea:         c.Measure.MinAreaPx,
		MinAreaRatio:    c.Measure.MinAreaRatio,
		StopAtReference: c.Measure.StopAtReference,
	}
}

// DetectionOptions converts the detection section to detection.Options.
func (c *Config) DetectionOptions() detection.Options {
	return detection.Options{
		Mode:           c.Detection.Mode,
		BlurSigma:      c.Detection.BlurSigma,
		CannyLow:       c.Detection.CannyLow,
		CannyHigh:      c.Detection.CannyHigh,
		DilateRadius:   c.Detection.DilateRadius,
		ThresholdLevel: uint8(c.Detection.ThresholdLevel),
	}
}

// Selector returns the reference selector for an image with the given bounds.
func (c *Config) Selector(bounds image.Rectangle) (measure.Selector, error) {
	switch c.Reference.Strategy {
	case StrategyLargestArea:
		return measure.LargestArea{}, nil
	case StrategyFixed:
		return measure.Fixed(c.Reference.Index), nil
	case StrategyNearestCorner, "":
		corner, err := measure.CornerPoint(bounds, c.Reference.Corner)
		if err != nil {
			return nil, err
		}
		return measure.NearestCorner{Corner: corner}, nil
	default:
		return nil, fmt.Errorf("unknown reference strategy: %s", c.Reference.Strategy)
	}
}

// OutputPath returns where the annotated copy of src is written. When
// Output.Dir is empty the copy sits next to src.
func (c *Config) OutputPath(src string) string {
	dir := c.Output.Dir
	if dir == "" {
		dir = filepath.Dir(src)
	}
	base := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))
	ext := strings.ToLower(c.Output.Format)
	if ext == "" {
		ext = "png"
	}
	return filepath.Join(dir, base+c.Output.Suffix+"."+ext)
}

func getEnv(key, defaultVal string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return defaultVal
}
