package main

import (
	"log"

	"onboarding-backend/internal/bootstrap"
	"onboarding-backend/internal/shared/config"
	"onboarding-backend/internal/shared/server"
)

func main() {
	cfg := config.Load()

	app, err := bootstrap.Build(cfg)
	if err != nil {
		log.Fatalf("bootstrap: %v", err)
	}

	addr := server.Addr(cfg.Port)
	log.Printf("Onboarding demo listening on http://localhost%s", addr)

	if err := app.Router.Run(addr); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
