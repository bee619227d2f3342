// Package config provides centralized configuration management.
// This is the SINGLE SOURCE OF TRUTH for all layout and build settings.
//
// IMPORTANT: When changing values, only modify this file.
// All other parts of the codebase should reference these values.
package config

import (
	"os"
	"strconv"
)

// =============================================================================
// CANVAS / SPACE CONFIGURATION
// =============================================================================

// SpaceConfig holds the canvas dimensions the layout engine works in.
// These values are shared between the engine, the preview renderer and the
// static site generator.
type SpaceConfig struct {
	Width  float64 // Canvas width in pixels
	Height float64 // Canvas height in pixels
}

// DefaultSpace returns the default canvas configuration.
func DefaultSpace() SpaceConfig {
	return SpaceConfig{
		Width:  1920,
		Height: 1080,
	}
}

// SpaceFromEnv returns canvas configuration with environment variable overrides.
// Environment variables take precedence over defaults.
func SpaceFromEnv() SpaceConfig {
	cfg := DefaultSpace()

	if w := getEnvFloat("GALAXY_WIDTH", 0); w > 0 {
		cfg.Width = w
	}
	if h := getEnvFloat("GALAXY_HEIGHT", 0); h > 0 {
		cfg.Height = h
	}

	return cfg
}

// =============================================================================
// DENSITY CLASSIFICATION
// =============================================================================

// DensityConfig holds the thresholds that bucket an entity set into the
// LOW / MEDIUM / HIGH density regimes.
type DensityConfig struct {
	LowMax    float64 // adjustedCount <= LowMax    -> LOW
	MediumMax float64 // adjustedCount <= MediumMax -> MEDIUM, else HIGH
	MinScore  float64 // Floor for the spatial distribution score
}

// DefaultDensity returns the default density thresholds.
func DefaultDensity() DensityConfig {
	return DensityConfig{
		LowMax:    20,
		MediumMax: 100,
		MinScore:  0.1,
	}
}

// DensityFromEnv returns density thresholds with environment overrides.
func DensityFromEnv() DensityConfig {
	cfg := DefaultDensity()

	if v := getEnvFloat("DENSITY_LOW_MAX", 0); v > 0 {
		cfg.LowMax = v
	}
	if v := getEnvFloat("DENSITY_MEDIUM_MAX", 0); v > 0 {
		cfg.MediumMax = v
	}

	return cfg
}

// =============================================================================
// COLLISION RESOLUTION
// =============================================================================

// CollisionConfig controls the iterative overlap resolver.
type CollisionConfig struct {
	MinDistance   float64 // Extra separation required between entity surfaces
	MaxIterations int     // Hard cap on detect->resolve passes
}

// DefaultCollision returns the default collision settings.
func DefaultCollision() CollisionConfig {
	return CollisionConfig{
		MinDistance:   20, // pixels
		MaxIterations: 80,
	}
}

// CollisionFromEnv returns collision settings with environment overrides.
func CollisionFromEnv() CollisionConfig {
	cfg := DefaultCollision()

	if v := getEnvFloat("COLLISION_MIN_DISTANCE", -1); v >= 0 {
		cfg.MinDistance = v
	}
	if v := getEnvInt("COLLISION_MAX_ITERATIONS", 0); v > 0 {
		cfg.MaxIterations = v
	}

	return cfg
}

// =============================================================================
// SPATIAL INDEXING
// =============================================================================

// SpatialConfig holds spatial grid settings for broad-phase overlap pruning.
type SpatialConfig struct {
	CellSize    float64 // Grid cell size in pixels
	MaxEntities int     // Preallocation hint for cell buckets
}

// DefaultSpatial returns the default spatial configuration.
func DefaultSpatial() SpatialConfig {
	return SpatialConfig{
		CellSize:    150, // floor only; the resolver grows cells to fit the batch's largest radii
		MaxEntities: 1024,
	}
}

// SpatialFromEnv returns spatial settings with environment overrides.
func SpatialFromEnv() SpatialConfig {
	cfg := DefaultSpatial()

	if v := getEnvFloat("SPATIAL_CELL_SIZE", 0); v > 0 {
		cfg.CellSize = v
	}

	return cfg
}

// =============================================================================
// LAYOUT STRATEGY TUNING
// =============================================================================

// ClusterConfig tunes the medium-density clustering strategy.
type ClusterConfig struct {
	MaxClusterSize int     // Entities per cluster before it closes
	EarlyCloseProb float64 // Chance a cluster closes before it is full
	ClusterRadius  float64 // Radius of the circle cluster centers sit on
	EntitySpacing  float64 // Base ring radius inside a cluster
}

// DefaultCluster returns the default clustering settings.
func DefaultCluster() ClusterConfig {
	return ClusterConfig{
		MaxClusterSize: 8,
		EarlyCloseProb: 0.3,
		ClusterRadius:  300,
		EntitySpacing:  60,
	}
}

// HexConfig tunes the high-density hexagonal packing strategy.
type HexConfig struct {
	CellRadius float64 // Nominal entity radius used for hex spacing
}

// DefaultHex returns the default hex packing settings.
func DefaultHex() HexConfig {
	return HexConfig{
		CellRadius: 40,
	}
}

// =============================================================================
// ANALYTICS ADVISOR
// =============================================================================

// AnalyticsConfig tunes the advisory performance history.
type AnalyticsConfig struct {
	HistoryCap  int // Records kept per (strategy, entityCount) key
	CountWindow int // +/- window when matching entity counts
}

// DefaultAnalytics returns the default analytics settings.
func DefaultAnalytics() AnalyticsConfig {
	return AnalyticsConfig{
		HistoryCap:  1000,
		CountWindow: 10,
	}
}

// =============================================================================
// SERVER CONFIGURATION
// =============================================================================

// ServerConfig holds preview HTTP server settings.
type ServerConfig struct {
	Port         int
	RelayoutSecs int // How often the preview server re-runs the layout
	MaxWSClients int // Hard cap on concurrent dashboard connections
}

// DefaultServer returns the default server configuration.
func DefaultServer() ServerConfig {
	return ServerConfig{
		Port:         3000,
		RelayoutSecs: 5,
		MaxWSClients: 100,
	}
}

// ServerFromEnv returns server configuration with environment overrides.
func ServerFromEnv() ServerConfig {
	cfg := DefaultServer()

	if p := getEnvInt("PORT", 0); p > 0 {
		cfg.Port = p
	}
	if s := getEnvInt("RELAYOUT_SECONDS", 0); s > 0 {
		cfg.RelayoutSecs = s
	}

	return cfg
}

// =============================================================================
// BUILD CONFIGURATION
// =============================================================================

// BuildConfig holds static site build settings.
type BuildConfig struct {
	ContentDir string // Directory scanned for HTML pages
	OutputDir  string // Directory the static site is written to
	SiteTitle  string
	EventLog   string // jsonl layout event log path ("" disables)
}

// DefaultBuild returns the default build configuration.
func DefaultBuild() BuildConfig {
	return BuildConfig{
		ContentDir: "content",
		OutputDir:  "dist",
		SiteTitle:  "Galaxy Forge",
		EventLog:   "layout-events.jsonl",
	}
}

// BuildFromEnv returns build configuration with environment overrides.
func BuildFromEnv() BuildConfig {
	cfg := DefaultBuild()

	if v := os.Getenv("CONTENT_DIR"); v != "" {
		cfg.ContentDir = v
	}
	if v := os.Getenv("OUTPUT_DIR"); v != "" {
		cfg.OutputDir = v
	}
	if v := os.Getenv("SITE_TITLE"); v != "" {
		cfg.SiteTitle = v
	}
	if v := os.Getenv("EVENT_LOG_PATH"); v != "" {
		cfg.EventLog = v
	}

	return cfg
}

// =============================================================================
// COMPLETE APP CONFIGURATION
// =============================================================================

// AppConfig holds the complete application configuration.
type AppConfig struct {
	Space     SpaceConfig
	Density   DensityConfig
	Collision CollisionConfig
	Spatial   SpatialConfig
	Cluster   ClusterConfig
	Hex       HexConfig
	Analytics AnalyticsConfig
	Server    ServerConfig
	Build     BuildConfig
}

// Load returns the complete configuration with environment overrides.
func Load() AppConfig {
	return AppConfig{
		Space:     SpaceFromEnv(),
		Density:   DensityFromEnv(),
		Collision: CollisionFromEnv(),
		Spatial:   SpatialFromEnv(),
		Cluster:   DefaultCluster(),
		Hex:       DefaultHex(),
		Analytics: DefaultAnalytics(),
		Server:    ServerFromEnv(),
		Build:     BuildFromEnv(),
	}
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}
