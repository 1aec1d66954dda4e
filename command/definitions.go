package command

import "github.com/bwmarrin/discordgo"

// ScanCommand defines the structure for the /scan command.
type ScanCommand struct{}

// Definition returns the application command definition.
func (c *ScanCommand) Definition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        "scan",
		Description: "Start scanning message history for reactions",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Name:        "mode",
				Description: "Resume from saved progress or rescan full history",
				Type:        discordgo.ApplicationCommandOptionString,
				Required:    false,
				Choices: []*discordgo.ApplicationCommandOptionChoice{
					{
						Name:  "Resume",
						Value: "resume",
					},
					{
						Name:  "Full Rescan",
						Value: "full",
					},
				},
			},
		},
	}
}

// ScanStopCommand defines the structure for the /scan_stop command.
type ScanStopCommand struct{}

// Definition returns the application command definition.
func (c *ScanStopCommand) Definition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        "scan_stop",
		Description: "Stop the scanning process",
	}
}

// ScanStatusCommand defines the structure for the /scan_status command.
type ScanStatusCommand struct{}

// Definition returns the application command definition.
func (c *ScanStatusCommand) Definition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        "scan_status",
		Description: "Check scanning progress",
	}
}

// ReportCommand defines the structure for the /report command.
type ReportCommand struct{}

// Definition returns the application command definition.
func (c *ReportCommand) Definition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        "report",
		Description: "Generate a detailed report of reactions",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Name:        "days",
				Description: "Number of days to look back (default: 30)",
				Type:        discordgo.ApplicationCommandOptionInteger,
				Required:    false,
			},
			{
				Name:        "emoji",
				Description: "Emoji to filter by (default: 😹, use 'all' for all emojis)",
				Type:        discordgo.ApplicationCommandOptionString,
				Required:    false,
			},
		},
	}
}

// EmojiStatsCommand defines the structure for the /emoji_stats command.
type EmojiStatsCommand struct{}

// Definition returns the application command definition.
func (c *EmojiStatsCommand) Definition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        "emoji_stats",
		Description: "Show statistics about emoji usage",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Name:        "days",
				Description: "Number of days to look back (default: 30)",
				Type:        discordgo.ApplicationCommandOptionInteger,
				Required:    false,
			},
		},
	}
}

// StartCommand defines the structure for the /start command.
type StartCommand struct{}

// Definition returns the application command definition.
func (c *StartCommand) Definition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        "start",
		Description: "Start tracking reactions",
	}
}

// StopCommand defines the structure for the /stop command.
type StopCommand struct{}

// Definition returns the application command definition.
func (c *StopCommand) Definition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        "stop",
		Description: "Stop tracking reactions",
	}
}

// StatusCommand defines the structure for the /status command.
type StatusCommand struct{}

// Definition returns the application command definition.
func (c *StatusCommand) Definition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        "status",
		Description: "Check tracking status",
	}
}

// HelpCommand defines the structure for the /help command.
type HelpCommand struct{}

// Definition returns the application command definition.
func (c *HelpCommand) Definition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        "help",
		Description: "Show help information about bot commands",
	}
}

// DebugDBCommand defines the structure for the /debug_db command.
type DebugDBCommand struct{}

// Definition returns the application command definition.
func (c *DebugDBCommand) Definition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        "debug_db",
		Description: "Debug command to check database contents",
	}
}

// PingCommand defines the structure for the /ping command.
type PingCommand struct{}

// Definition returns the application command definition.
func (c *PingCommand) Definition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        "ping",
		Description: "Responds with Pong!",
	}
}
