package main

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/joho/godotenv"

	"github.com/mehrabrahat/ITZENBD-POS/internal/audit"
	"github.com/mehrabrahat/ITZENBD-POS/internal/config"
	"github.com/mehrabrahat/ITZENBD-POS/internal/insights"
	"github.com/mehrabrahat/ITZENBD-POS/internal/kitchen"
	"github.com/mehrabrahat/ITZENBD-POS/internal/pricing"
	"github.com/mehrabrahat/ITZENBD-POS/internal/router"
	"github.com/mehrabrahat/ITZENBD-POS/internal/seed"
	"github.com/mehrabrahat/ITZENBD-POS/internal/service"
	"github.com/mehrabrahat/ITZENBD-POS/internal/store"
	"github.com/mehrabrahat/ITZENBD-POS/internal/ws"
)

func main() {
	// .env is optional; real env vars win either way
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	st := store.New()
	if err := seed.Load(st); err != nil {
		log.Fatalf("failed to seed store: %v", err)
	}

	auditLog := audit.NewLog()
	authz := service.NewAuthorizer(st, auditLog)
	rates := pricing.NewRates(cfg.TaxRate, cfg.ServiceChargeRate)

	orders := service.NewOrderService(st, auditLog, authz, rates)
	menu := service.NewMenuService(st, auditLog, authz)
	kds := kitchen.NewRouter(st, time.Duration(cfg.KDSDelayMinutes)*time.Minute)
	summarizer := insights.NewClient(cfg.InsightsEndpoint, cfg.InsightsModel, cfg.InsightsAPIKey)

	hub := ws.NewHub()
	go hub.Run()

	r := router.New(cfg, router.Deps{
		Store:      st,
		Audit:      auditLog,
		Orders:     orders,
		Menu:       menu,
		Authorizer: authz,
		Kitchen:    kds,
		Summarizer: summarizer,
		Hub:        hub,
	})

	log.Printf("Starting server on :%s", cfg.Port)
	if err := http.ListenAndServe(fmt.Sprintf(":%s", cfg.Port), r); err != nil {
		log.Fatal(err)
	}
}
