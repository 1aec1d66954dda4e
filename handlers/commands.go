package handlers

import (
	"log"

	"discord-reaction-tracker/utils"

	"github.com/bwmarrin/discordgo"
)

// CommandDispatcher is the central handler for all application command
// interactions. It performs permission checks and then dispatches the
// interaction to the appropriate handler.
func CommandDispatcher(s *discordgo.Session, i *discordgo.InteractionCreate) {
	auth, err := utils.NewAuth()
	if err != nil {
		log.Printf("Failed to create auth instance: %v", err)
		return
	}

	commandPermissions := map[string]string{
		"scan":        "admin",
		"scan_stop":   "admin",
		"scan_status": "guest",
		"report":      "guest",
		"emoji_stats": "guest",
		"start":       "admin",
		"stop":        "admin",
		"status":      "guest",
		"help":        "guest",
		"debug_db":    "developer",
		"ping":        "guest",
	}

	commandName := i.ApplicationCommandData().Name
	if requiredLevel, ok := commandPermissions[commandName]; ok {
		if !auth.CheckPermission(s, i, requiredLevel) {
			respond(s, i, "🚫 You do not have permission to run this command.", true)
			return
		}
	}

	switch commandName {
	case "scan":
		HandleScan(s, i)
	case "scan_stop":
		HandleScanStop(s, i)
	case "scan_status":
		HandleScanStatus(s, i)
	case "report":
		HandleReport(s, i)
	case "emoji_stats":
		HandleEmojiStats(s, i)
	case "start":
		HandleTrackingStart(s, i)
	case "stop":
		HandleTrackingStop(s, i)
	case "status":
		HandleTrackingStatus(s, i)
	case "help":
		HandleHelp(s, i)
	case "debug_db":
		HandleDebugDB(s, i)
	case "ping":
		HandlePing(s, i)
	default:
		respond(s, i, "🚫 Internal error: unknown command.", true)
	}
}

func respond(s *discordgo.Session, i *discordgo.InteractionCreate, content string, ephemeral bool) {
	data := &discordgo.InteractionResponseData{Content: content}
	if ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}
	if err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	}); err != nil {
		log.Printf("Failed to respond to interaction: %v", err)
	}
}
