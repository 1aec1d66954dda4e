package bot

import (
	"fmt"
	"log"

	"discord-reaction-tracker/config"
	"discord-reaction-tracker/scanner"
	"discord-reaction-tracker/utils"

	"github.com/bwmarrin/discordgo"
	"github.com/spf13/viper"
)

// Bot encapsulates the bot's state.
type Bot struct {
	Session     *discordgo.Session
	Coordinator *scanner.Coordinator
	Commands    []*discordgo.ApplicationCommand
}

// New loads the configuration and creates a Bot with an unopened session.
func New() (*Bot, error) {
	config.Load()
	token := viper.GetString("BOT_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("no bot token provided")
	}

	dg, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("error creating Discord session: %w", err)
	}

	dg.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages | discordgo.IntentsGuildMessageReactions
	// Cache recent messages so live reaction events can resolve the message
	// author without a REST call.
	dg.State.MaxMessageCount = 500
	// The library's built-in retry would swallow 429s before the fetcher sees
	// them; surface them so its minimum-backoff policy governs every call.
	dg.ShouldRetryOnRateLimit = false

	return &Bot{Session: dg}, nil
}

// Start opens the session, registers handlers and slash commands and starts
// the scheduler. registerHandlers runs before the connection opens so no
// early event is missed.
func (b *Bot) Start(registerHandlers func(*Bot), commands []*discordgo.ApplicationCommand) error {
	registerHandlers(b)

	if err := b.Session.Open(); err != nil {
		return fmt.Errorf("error opening connection: %w", err)
	}
	utils.InitLogger(b.Session)

	b.Commands = commands
	for _, cmd := range commands {
		if _, err := b.Session.ApplicationCommandCreate(b.Session.State.User.ID, "", cmd); err != nil {
			log.Printf("Cannot create '%v' command: %v", cmd.Name, err)
		}
	}

	startScheduler(b)

	fmt.Println("Bot is now running. Press CTRL-C to exit.")
	return nil
}

// Stop gracefully shuts the bot down: scheduler first, then any running
// scans (each finishes its current page), then the gateway session.
func (b *Bot) Stop() {
	stopScheduler()

	if b.Coordinator != nil && b.Session != nil {
		for _, guild := range b.Session.State.Guilds {
			b.Coordinator.Stop(guild.ID)
		}
	}

	if b.Session != nil {
		b.Session.Close()
	}
	fmt.Println("Bot stopped gracefully.")
}
