package main

import (
	"log"

	"github.com/joho/godotenv"

	"github.com/nullticket/helpdesk/pkg/auth"
	"github.com/nullticket/helpdesk/pkg/chat"
	"github.com/nullticket/helpdesk/pkg/config"
	"github.com/nullticket/helpdesk/pkg/kb"
	"github.com/nullticket/helpdesk/pkg/llm"
	"github.com/nullticket/helpdesk/pkg/llm/providers"
	"github.com/nullticket/helpdesk/pkg/selfservice"
	"github.com/nullticket/helpdesk/pkg/server"
	"github.com/nullticket/helpdesk/pkg/tickets"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	var provider llm.Provider
	if cfg.LLMAPIKey != "" {
		providerCfg := llm.ProviderConfig{
			Type:    cfg.LLMProvider,
			APIKey:  cfg.LLMAPIKey,
			BaseURL: cfg.LLMBaseURL,
			Model:   cfg.LLMModel,
		}
		provider, err = providers.NewProvider(providerCfg)
		if err != nil {
			log.Fatalf("configuring completion provider: %v", err)
		}
		if err := provider.ValidateConfig(providerCfg); err != nil {
			log.Fatalf("validating completion provider: %v", err)
		}
		log.Printf("Completion provider: %s (%s)", provider.GetName(), cfg.LLMModel)
	} else {
		log.Println("No completion API key set; AI chat requests will be rejected")
	}

	rules := selfservice.DefaultRules()
	if cfg.RulesPath != "" {
		rules, err = selfservice.LoadRules(cfg.RulesPath)
		if err != nil {
			log.Fatalf("loading self-service rules: %v", err)
		}
		log.Printf("Loaded %d self-service rules from %s", len(rules), cfg.RulesPath)
	}

	kbClient := kb.NewClient(cfg.APIBaseURL, cfg.HTTPTimeout)
	ticketClient := tickets.NewClient(cfg.APIBaseURL, cfg.HTTPTimeout)

	srv := server.New(cfg, server.Deps{
		SelfService: selfservice.NewResponder(rules, kbClient),
		Completer:   chat.NewCompleter(provider, cfg.LLMModel),
		Tickets:     ticketClient,
		KB:          kbClient,
		Auth: &auth.Handler{
			JWTSecret:         cfg.JWTSecret,
			AdminEmail:        cfg.AdminEmail,
			AdminPasswordHash: cfg.AdminPasswordHash,
		},
	})

	log.Printf("Helpdesk mediation server listening on %s (backend %s)", cfg.Addr, cfg.APIBaseURL)
	log.Fatal(srv.Start())
}
