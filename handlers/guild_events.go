package handlers

import (
	"log"

	"discord-reaction-tracker/utils"

	"github.com/bwmarrin/discordgo"
)

// GuildCreateHandler starts a history scan the first time the bot sees a
// guild. The gateway also delivers GuildCreate for every guild on connect,
// so guilds that already have scan checkpoints are left to the scheduler.
func GuildCreateHandler(s *discordgo.Session, g *discordgo.GuildCreate) {
	if store == nil || coordinator == nil || g.Unavailable {
		return
	}

	states, err := store.ListScanStates(g.ID)
	if err != nil {
		log.Printf("Could not read scan states for guild %s: %v", g.ID, err)
		return
	}
	if len(states) > 0 {
		return
	}

	started, err := coordinator.Start(g.ID, false)
	if err != nil {
		log.Printf("Could not start scan for new guild %s: %v", g.ID, err)
		return
	}
	if started {
		utils.Info("scanner", "guild_join", "started initial scan for guild "+g.ID)
	}
}
