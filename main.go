package main

import (
	"log"
	"net/http"

	"github.com/cardwire/tableserver/internal/ability"
	"github.com/cardwire/tableserver/internal/broadcast"
	"github.com/cardwire/tableserver/internal/config"
	"github.com/cardwire/tableserver/internal/engine"
	"github.com/cardwire/tableserver/internal/handlers"
	"github.com/cardwire/tableserver/internal/seats"
	"github.com/cardwire/tableserver/internal/store"
	"github.com/cardwire/tableserver/internal/token"
)

func main() {
	cfg := config.Load()

	engineClient := engine.New(cfg.EngineBaseURL, cfg.EngineAPIKey, cfg.EngineTimeout)
	directory := seats.NewDirectory()
	router := broadcast.NewRouter(directory)

	ctx := &handlers.Context{
		Config:     cfg,
		Conns:      handlers.NewConnTable(),
		Lobbies:    store.NewLobbyStore(),
		Sessions:   store.NewSessionStore(),
		Tokens:     token.NewRegistry(),
		Directory:  directory,
		Engine:     engineClient,
		Router:     router,
		Negotiator: ability.NewNegotiator(engineClient, router),
	}

	http.HandleFunc("/ws", ctx.HandleWS)
	http.HandleFunc("/health", ctx.HandleHealth)
	http.HandleFunc("/join-qr/", ctx.HandleJoinQR)

	log.Printf("Server starting on %s (engine at %s)", cfg.Addr, cfg.EngineBaseURL)
	log.Fatal(http.ListenAndServe(cfg.Addr, nil))
}
