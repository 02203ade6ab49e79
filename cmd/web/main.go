package main

import (
	"log"

	"crowdqr/internal/config"
	"crowdqr/internal/web"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("Starting CrowdQR Web Server...")

	cfg := config.Load()
	srv := web.New(cfg)

	log.Printf("🚀 Web Server starting on %s (API at %s)", cfg.Web.Port, cfg.Web.APIBaseURL)
	if err := srv.Start(cfg.Web.Port); err != nil {
		log.Fatalf("❌ Web server failed to start: %v", err)
	}
}
