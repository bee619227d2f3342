package main

import (
	"log"
	"os"
	"strconv"

	"galaxy-forge/internal/config"
	"galaxy-forge/internal/galaxy"
	"galaxy-forge/internal/scanner"
	"galaxy-forge/internal/site"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("💡 No .env file found, using environment variables only")
	} else {
		log.Println("✅ Loaded environment from .env")
	}

	log.Println("🌌 ================================")
	log.Println("🌌  GALAXY FORGE - SITE BUILDER")
	log.Println("🌌 ================================")

	// Load centralized configuration (SSOT - Single Source of Truth)
	appConfig := config.Load()
	buildCfg := appConfig.Build

	log.Printf("📄 Content: %s -> %s (%gx%g canvas)",
		buildCfg.ContentDir, buildCfg.OutputDir, appConfig.Space.Width, appConfig.Space.Height)

	// Scan the content tree into entity records
	sc := scanner.New(buildCfg.ContentDir)
	records, err := sc.Scan()
	if err != nil {
		log.Fatalf("❌ Scan failed: %v", err)
	}
	if len(records) == 0 {
		log.Fatalf("❌ No pages found under %s", buildCfg.ContentDir)
	}

	// Create the layout engine with centralized config
	engine := galaxy.NewEngine(galaxy.EngineConfig{
		Space:     appConfig.Space,
		Density:   appConfig.Density,
		Collision: appConfig.Collision,
		Spatial:   appConfig.Spatial,
		Cluster:   appConfig.Cluster,
		Hex:       appConfig.Hex,
		Analytics: appConfig.Analytics,
		Seed:      getEnvInt64("LAYOUT_SEED", 0),
	})
	engine.SetEntities(records)

	// Event log is optional for one-shot builds
	if buildCfg.EventLog != "" {
		if err := engine.StartEventLog(buildCfg.EventLog); err != nil {
			log.Printf("⚠️ Event log disabled: %v", err)
		} else {
			log.Printf("📝 Event log: %s", buildCfg.EventLog)
			defer engine.StopEventLog()
		}
	}

	metrics, err := engine.BuildLayout()
	if err != nil {
		log.Fatalf("❌ Layout failed: %v", err)
	}
	log.Printf("📊 %d entities, %s density, %s strategy, %d collisions resolved, score %.1f",
		metrics.EntityCount, metrics.Density, metrics.StrategyUsed,
		metrics.CollisionsResolved, metrics.PerformanceScore)

	gen, err := site.NewGenerator(buildCfg, appConfig.Space)
	if err != nil {
		log.Fatalf("❌ Site generator: %v", err)
	}
	if err := gen.Generate(engine.GetSnapshot()); err != nil {
		log.Fatalf("❌ Site generation failed: %v", err)
	}

	log.Println("✅ Build complete")
}

func getEnvInt64(key string, defaultVal int64) int64 {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.ParseInt(v, 10, 64); err == nil {
			return i
		}
	}
	return defaultVal
}
