package main

import (
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"galaxy-forge/internal/api"
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
	log.Println("🌌  GALAXY FORGE - PREVIEW SERVER")
	log.Println("🌌 ================================")

	// Load centralized configuration (SSOT - Single Source of Truth)
	appConfig := config.Load()
	serverCfg := appConfig.Server
	buildCfg := appConfig.Build

	port := strconv.Itoa(serverCfg.Port)
	log.Printf("📄 Content: %s, site: %s", buildCfg.ContentDir, buildCfg.OutputDir)
	log.Printf("🪐 Canvas: %gx%g, relayout every %ds", appConfig.Space.Width, appConfig.Space.Height, serverCfg.RelayoutSecs)

	// Create the layout engine with centralized config
	engine := galaxy.NewEngine(galaxy.EngineConfig{
		Space:     appConfig.Space,
		Density:   appConfig.Density,
		Collision: appConfig.Collision,
		Spatial:   appConfig.Spatial,
		Cluster:   appConfig.Cluster,
		Hex:       appConfig.Hex,
		Analytics: appConfig.Analytics,
	})

	// Initial scan; the server keeps running on the last good entity set if a
	// later rescan fails
	sc := scanner.New(buildCfg.ContentDir)
	records, err := sc.Scan()
	if err != nil {
		log.Fatalf("❌ Scan failed: %v", err)
	}
	engine.SetEntities(records)

	// Start event log
	if buildCfg.EventLog != "" {
		if err := engine.StartEventLog(buildCfg.EventLog); err != nil {
			log.Printf("⚠️ Event log disabled: %v", err)
		} else {
			log.Printf("📝 Event log: %s", buildCfg.EventLog)
		}
	}

	// Start debug server
	if os.Getenv("DISABLE_DEBUG_SERVER") != "true" {
		if err := api.StartDebugServer(api.DefaultObservabilityConfig()); err != nil {
			log.Printf("⚠️ Debug server disabled: %v", err)
		}
	}

	gen, err := site.NewGenerator(buildCfg, appConfig.Space)
	if err != nil {
		log.Fatalf("❌ Site generator: %v", err)
	}

	// Engine recommendations are advisory; log them so operators can tune
	engine.OnRecommendationChanged = func(strategy string) {
		log.Printf("📊 Advisor now recommends %q for this entity count", strategy)
	}

	server := api.NewServer(engine, buildCfg.OutputDir)

	rebuild := func() {
		metrics, err := engine.BuildLayout()
		if err != nil {
			log.Printf("⚠️ Layout failed: %v", err)
			return
		}
		api.RecordBuild(metrics.CalculationTime, metrics.StrategyUsed, metrics.Density,
			metrics.CollisionsResolved, metrics.IterationCapHit,
			metrics.PerformanceScore, metrics.EntityCount)
		if stats := engine.GetEventLogStats(); stats != nil {
			if total, ok := stats["total"].(uint64); ok {
				dropped, _ := stats["dropped"].(uint64)
				api.UpdateEventLogStats(total, dropped)
			}
		}
		if err := gen.Generate(engine.GetSnapshot()); err != nil {
			log.Printf("⚠️ Site generation failed: %v", err)
		}
	}
	rebuild()

	// Periodic relayout lets hotspot rebalancing react to interactions
	relayoutTicker := time.NewTicker(time.Duration(serverCfg.RelayoutSecs) * time.Second)
	stopRelayout := make(chan struct{})
	go func() {
		for {
			select {
			case <-stopRelayout:
				return
			case <-relayoutTicker.C:
				rebuild()
			}
		}
	}()

	go func() {
		addr := ":" + port
		if err := server.Start(addr); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	log.Println("✅ Server ready! Press Ctrl+C to stop.")
	<-quit

	log.Println("🛑 Shutting down...")
	relayoutTicker.Stop()
	close(stopRelayout)
	server.Stop()
	engine.StopEventLog()
	log.Println("👋 Goodbye!")
}
