package main

import (
	"flag"
	"log"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"crowdqr/internal/config"
	database "crowdqr/internal/db"
	"crowdqr/internal/hub"

	apiserver "crowdqr/internal/api/server"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("Starting CrowdQR API Server...")

	seed := flag.Bool("seed", false, "populate the demo fixture and continue")
	flag.Parse()

	// 1. Setup Configuration
	cfg := config.Load()
	if cfg.JWT.Secret == "" {
		log.Fatal("Critical: JWT secret is missing (CROWDQR_JWT_SECRET)")
	}

	// 2. Initialize Infrastructure
	db := database.New(cfg)

	// 3. Run Database Migrations
	db.AutoMigrate()

	// Demo data only on explicit request, never as a side effect of boot.
	if *seed {
		database.SeedDemo(db.DB)
	}

	// 4. Realtime hub
	h := hub.New()

	// 5. Setup Metrics
	go func() {
		http.Handle("/_metrics", promhttp.Handler())
		log.Printf("📊 Metrics exposed at http://localhost%s/_metrics", cfg.Server.MetricsPort)
		if err := http.ListenAndServe(cfg.Server.MetricsPort, nil); err != nil {
			log.Printf("⚠️ Metrics server error: %v", err)
		}
	}()

	// 6. Start Server
	srv := apiserver.New(cfg, db, h)

	log.Printf("🚀 API Server starting on %s", cfg.Server.Port)
	if err := srv.Start(cfg.Server.Port); err != nil {
		log.Fatalf("❌ Server failed to start: %v", err)
	}
}
