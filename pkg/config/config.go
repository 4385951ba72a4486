package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/KevoDB/sectionlist/pkg/common/log"
	"github.com/KevoDB/sectionlist/pkg/section"
	"github.com/KevoDB/sectionlist/pkg/telemetry"
)

const (
	DefaultConfigFileName = "sectionlist.json"
	CurrentConfigVersion  = 1

	// EnvPrefix prefixes every environment variable read by LoadFromEnv
	EnvPrefix = "SECTIONLIST_"
)

var (
	ErrInvalidConfig  = errors.New("invalid configuration")
	ErrConfigNotFound = errors.New("configuration not found")
)

// Grouping modes
const (
	ModeValue   = "value"
	ModeInitial = "initial"
)

// Group orders
const (
	GroupOrderFirst   = "first"
	GroupOrderKey     = "key"
	GroupOrderKeyDesc = "key_desc"
	GroupOrderSize    = "size"
)

// Key display modes
const (
	DisplayRaw   = "raw"
	DisplayUpper = "upper"
	DisplayLower = "lower"
	DisplayTitle = "title"
)

// Dataset formats and compressions. An empty value means detect from the
// file extension.
const (
	FormatJSON  = "json"
	FormatJSONL = "jsonl"

	CompressionNone = "none"
	CompressionGzip = "gzip"
	CompressionZstd = "zstd"
)

// DatasetConfig locates the records to group.
type DatasetConfig struct {
	Path        string `json:"path"`
	Format      string `json:"format"`
	Compression string `json:"compression"`
}

// GroupingConfig describes how records become sections.
type GroupingConfig struct {
	// Field is the dot path of the record field to group by
	Field string `json:"field"`

	// Mode is "value" to group by the whole field or "initial" to group by
	// its first letter
	Mode string `json:"mode"`

	// SortBy is the dot path of the field that orders records inside a
	// group. Empty keeps the input order.
	SortBy     string `json:"sort_by"`
	Descending bool   `json:"descending"`

	// GroupOrder is one of first, key, key_desc or size
	GroupOrder string `json:"group_order"`

	// Display is one of raw, upper, lower or title
	Display string `json:"display"`
}

type Config struct {
	Version int `json:"version"`

	// Presentation
	Dividers   bool   `json:"dividers"`
	Order      string `json:"order"`
	OutOfRange string `json:"out_of_range"`
	LogLevel   string `json:"log_level"`

	Dataset   DatasetConfig    `json:"dataset"`
	Grouping  GroupingConfig   `json:"grouping"`
	Telemetry telemetry.Config `json:"telemetry"`

	mu sync.RWMutex
}

// NewDefaultConfig creates a Config with recommended default values
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentConfigVersion,

		Dividers:   false,
		Order:      section.OrderReverse.String(),
		OutOfRange: section.OutOfRangeLast.String(),
		LogLevel:   "info",

		Grouping: GroupingConfig{
			Field:      "category",
			Mode:       ModeValue,
			GroupOrder: GroupOrderFirst,
			Display:    DisplayRaw,
		},

		Telemetry: telemetry.DefaultConfig(),
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.validate()
}

func (c *Config) validate() error {
	if c.Version <= 0 {
		return fmt.Errorf("%w: invalid version %d", ErrInvalidConfig, c.Version)
	}

	if _, err := section.ParseOrder(c.Order); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	if _, err := section.ParseOutOfRange(c.OutOfRange); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	switch c.Dataset.Format {
	case "", FormatJSON, FormatJSONL:
	default:
		return fmt.Errorf("%w: unknown dataset format %q", ErrInvalidConfig, c.Dataset.Format)
	}

	switch c.Dataset.Compression {
	case "", CompressionNone, CompressionGzip, CompressionZstd:
	default:
		return fmt.Errorf("%w: unknown dataset compression %q", ErrInvalidConfig, c.Dataset.Compression)
	}

	if c.Grouping.Field == "" {
		return fmt.Errorf("%w: grouping field not specified", ErrInvalidConfig)
	}

	switch c.Grouping.Mode {
	case ModeValue, ModeInitial:
	default:
		return fmt.Errorf("%w: unknown grouping mode %q", ErrInvalidConfig, c.Grouping.Mode)
	}

	switch c.Grouping.GroupOrder {
	case GroupOrderFirst, GroupOrderKey, GroupOrderKeyDesc, GroupOrderSize:
	default:
		return fmt.Errorf("%w: unknown group order %q", ErrInvalidConfig, c.Grouping.GroupOrder)
	}

	switch c.Grouping.Display {
	case DisplayRaw, DisplayUpper, DisplayLower, DisplayTitle:
	default:
		return fmt.Errorf("%w: unknown display mode %q", ErrInvalidConfig, c.Grouping.Display)
	}

	if err := c.Telemetry.Validate(); err != nil {
		return fmt.Errorf("%w: telemetry: %v", ErrInvalidConfig, err)
	}

	return nil
}

// LoadConfig reads a configuration file. Fields missing from the file keep
// their default values.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := NewDefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes the configuration to path, replacing any existing file
// atomically.
func (c *Config) Save(path string) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if err := c.validate(); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tempPath := path + ".tmp"

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		return fmt.Errorf("failed to rename config: %w", err)
	}

	return nil
}

// Update applies the given function to modify the configuration
func (c *Config) Update(fn func(*Config)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn(c)
}

// LoadFromEnv overrides values from SECTIONLIST_* environment variables.
// Unparseable values are ignored.
func (c *Config) LoadFromEnv() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if val := os.Getenv(EnvPrefix + "DATASET"); val != "" {
		c.Dataset.Path = val
	}

	if val := os.Getenv(EnvPrefix + "GROUP_BY"); val != "" {
		c.Grouping.Field = val
	}

	if val := os.Getenv(EnvPrefix + "SORT_BY"); val != "" {
		c.Grouping.SortBy = val
	}

	if val := os.Getenv(EnvPrefix + "DIVIDERS"); val != "" {
		if enabled, err := strconv.ParseBool(val); err == nil {
			c.Dividers = enabled
		}
	}

	if val := os.Getenv(EnvPrefix + "ORDER"); val != "" {
		c.Order = val
	}

	if val := os.Getenv(EnvPrefix + "OUT_OF_RANGE"); val != "" {
		c.OutOfRange = val
	}

	if val := os.Getenv(EnvPrefix + "LOG_LEVEL"); val != "" {
		c.LogLevel = val
	}

	c.Telemetry.LoadFromEnv()
}

// FlattenOptions returns the presentation settings as section options.
// The configuration must be valid.
func (c *Config) FlattenOptions() section.FlattenOptions {
	c.mu.RLock()
	defer c.mu.RUnlock()

	order, _ := section.ParseOrder(c.Order)
	return section.FlattenOptions{Dividers: c.Dividers, Order: order}
}

// AdapterOptions returns the section adapter options the configuration
// describes. The configuration must be valid.
func (c *Config) AdapterOptions() []section.Option {
	flatten := c.FlattenOptions()

	c.mu.RLock()
	defer c.mu.RUnlock()
	policy, _ := section.ParseOutOfRange(c.OutOfRange)

	return []section.Option{
		section.WithDividers(flatten.Dividers),
		section.WithOrder(flatten.Order),
		section.WithOutOfRange(policy),
	}
}
