package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"discord-reaction-tracker/bot"
	"discord-reaction-tracker/command"
	"discord-reaction-tracker/config"
	"discord-reaction-tracker/database"
	"discord-reaction-tracker/fetcher"
	"discord-reaction-tracker/handlers"
	"discord-reaction-tracker/report"
	"discord-reaction-tracker/scanner"
)

func main() {
	b, err := bot.New()
	if err != nil {
		log.Fatalf("Error initializing bot: %v", err)
	}

	cfg := config.Tracker()
	store, err := database.NewStore(cfg.DBPath)
	if err != nil {
		log.Fatalf("Error opening database: %v", err)
	}
	defer store.Close()

	f := fetcher.New(b.Session, cfg)
	b.Coordinator = scanner.New(store, f, cfg)
	engine := report.New(store, report.MentionResolver{})
	handlers.Init(store, b.Coordinator, engine)

	if err := b.Start(handlers.Register, command.GetCommandDefinitions()); err != nil {
		log.Fatalf("Error starting bot: %v", err)
	}

	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc

	b.Stop()
}
