package handlers

import (
	"log"
	"sync/atomic"

	"discord-reaction-tracker/bot"
	"discord-reaction-tracker/database"
	"discord-reaction-tracker/report"
	"discord-reaction-tracker/scanner"

	"github.com/bwmarrin/discordgo"
)

var (
	store       *database.Store
	coordinator *scanner.Coordinator
	engine      *report.Engine

	// liveTracking gates the live reaction handlers; /start and /stop flip
	// it. History scans ignore the flag.
	liveTracking atomic.Bool
)

// Init wires the handlers to the tracker components. Must run before
// Register.
func Init(s *database.Store, c *scanner.Coordinator, e *report.Engine) {
	store = s
	coordinator = c
	engine = e
	liveTracking.Store(true)
}

// Register all handlers to the bot.
func Register(b *bot.Bot) {
	b.Session.AddHandler(InteractionCreate(b))
	b.Session.AddHandler(ReactionAddHandler)
	b.Session.AddHandler(ReactionRemoveHandler)
	b.Session.AddHandler(GuildCreateHandler)

	// Add a ready handler to log when the bot is connected.
	b.Session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		log.Printf("Logged in as: %v#%v", s.State.User.Username, s.State.User.Discriminator)
	})
}
