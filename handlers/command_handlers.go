package handlers

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"discord-reaction-tracker/report"
	"discord-reaction-tracker/utils"

	"github.com/bwmarrin/discordgo"
)

const defaultReportDays = 30

// replyChunkSize keeps each reply under the Discord 2000-character limit.
const replyChunkSize = 1900

// HandleScan handles the /scan command. The coordinator runs the scan in the
// background; the interaction only acknowledges whether one was started.
func HandleScan(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.GuildID == "" {
		respond(s, i, "❌ This command can only be used in a server!", true)
		return
	}

	full := false
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == "mode" && opt.StringValue() == "full" {
			full = true
		}
	}

	started, err := coordinator.Start(i.GuildID, full)
	if err != nil {
		log.Printf("Failed to start scan for guild %s: %v", i.GuildID, err)
		respond(s, i, "❌ Could not start the scan, check the logs.", true)
		return
	}
	if !started {
		respond(s, i, "⚠️ A scan is already running. Use /scan_status to check progress.", false)
		return
	}

	utils.Info("scanner", "start", fmt.Sprintf("guild %s (full=%v)", i.GuildID, full))
	respond(s, i, "📊 Started scanning message history for reactions. This may take a while.", false)
}

// HandleScanStop handles the /scan_stop command. Stopping waits for workers
// to finish their current page, so the result arrives as a followup.
func HandleScanStop(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.GuildID == "" {
		respond(s, i, "❌ This command can only be used in a server!", true)
		return
	}

	if !coordinator.Running(i.GuildID) {
		respond(s, i, "No scan is currently running.", false)
		return
	}

	respond(s, i, "🛑 Stopping the scan after the current pages finish...", false)

	go func() {
		coordinator.Stop(i.GuildID)
		utils.Info("scanner", "stop", "guild "+i.GuildID)
		if _, err := s.FollowupMessageCreate(i.Interaction, true, &discordgo.WebhookParams{
			Content: "🛑 Scanning stopped. Progress was saved; /scan resumes where it left off.",
		}); err != nil {
			log.Printf("Failed to send scan_stop followup: %v", err)
		}
	}()
}

// HandleScanStatus handles the /scan_status command.
func HandleScanStatus(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.GuildID == "" {
		respond(s, i, "❌ This command can only be used in a server!", true)
		return
	}

	summary, err := coordinator.Status(i.GuildID)
	if err != nil {
		log.Printf("Failed to read scan status for guild %s: %v", i.GuildID, err)
		respond(s, i, "❌ Scan status unavailable.", true)
		return
	}

	var b strings.Builder
	if summary.Running {
		b.WriteString("📊 **Scanning in Progress**\n")
	} else {
		b.WriteString("📊 **Scanner Status**\n")
	}
	fmt.Fprintf(&b, "%d completed / %d total channels (%d pending, %d in progress, %d stopped, %d failed)\n",
		summary.Completed, summary.Total(), summary.Pending, summary.InProgress, summary.Stopped, summary.Failed)

	for _, st := range summary.Channels {
		if st.LastScannedMessageID != "" {
			fmt.Fprintf(&b, "<#%s>: %s, last scanned message %s\n", st.ChannelID, st.Status, st.LastScannedMessageID)
		} else {
			fmt.Fprintf(&b, "<#%s>: %s\n", st.ChannelID, st.Status)
		}
	}
	if summary.Total() == 0 {
		b.WriteString("No scan has been run yet. Use /scan to start one.")
	}

	respondChunked(s, i, b.String())
}

// HandleReport handles the /report command.
func HandleReport(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.GuildID == "" {
		respond(s, i, "❌ This command can only be used in a server!", true)
		return
	}

	days := defaultReportDays
	emoji := ""
	for _, opt := range i.ApplicationCommandData().Options {
		switch opt.Name {
		case "days":
			days = int(opt.IntValue())
		case "emoji":
			emoji = opt.StringValue()
		}
	}

	text, err := engine.GenerateReport(i.GuildID, days, emoji)
	if err != nil {
		if errors.Is(err, report.ErrInvalidFilter) {
			respond(s, i, "❌ "+err.Error(), true)
			return
		}
		log.Printf("Report for guild %s failed: %v", i.GuildID, err)
		respond(s, i, "❌ Report unavailable, try again later.", true)
		return
	}

	respondChunked(s, i, text)
}

// HandleEmojiStats handles the /emoji_stats command.
func HandleEmojiStats(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.GuildID == "" {
		respond(s, i, "❌ This command can only be used in a server!", true)
		return
	}

	days := defaultReportDays
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == "days" {
			days = int(opt.IntValue())
		}
	}

	stats, err := engine.EmojiStats(i.GuildID, days)
	if err != nil {
		if errors.Is(err, report.ErrInvalidFilter) {
			respond(s, i, "❌ "+err.Error(), true)
			return
		}
		log.Printf("Emoji stats for guild %s failed: %v", i.GuildID, err)
		respond(s, i, "❌ Emoji statistics unavailable, try again later.", true)
		return
	}
	if len(stats) == 0 {
		respond(s, i, "No emoji statistics available for the specified timeframe!", false)
		return
	}

	var b strings.Builder
	b.WriteString("📊 **Most Used Emojis**\n")
	fmt.Fprintf(&b, "Time period: Last %d days\n\n", days)
	for _, st := range stats {
		fmt.Fprintf(&b, "%s: %d uses\n", st.Emoji, st.Count)
	}

	respond(s, i, b.String(), false)
}

// HandleDebugDB handles the /debug_db command with raw store counts.
func HandleDebugDB(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.GuildID == "" {
		respond(s, i, "❌ This command can only be used in a server!", true)
		return
	}

	ov, err := store.GuildOverview(i.GuildID)
	if err != nil {
		log.Printf("Overview for guild %s failed: %v", i.GuildID, err)
		respond(s, i, "❌ Database overview unavailable.", true)
		return
	}
	if ov.TotalReactions == 0 {
		respond(s, i, "No reactions found in database!", true)
		return
	}

	var b strings.Builder
	b.WriteString("📋 **Database Overview**\n")
	fmt.Fprintf(&b, "Total reactions: %d\n", ov.TotalReactions)
	fmt.Fprintf(&b, "Unique emojis: %d\n", ov.UniqueEmojis)
	fmt.Fprintf(&b, "Users involved: %d\n\n", ov.UniqueUsers)

	b.WriteString("Reactions per channel:\n")
	for _, ch := range ov.Channels {
		fmt.Fprintf(&b, "<#%s>: %d\n", ch.ChannelID, ch.Count)
	}

	b.WriteString("\nTop emojis:\n")
	for _, st := range ov.TopEmojis {
		fmt.Fprintf(&b, "%s: %d\n", st.Emoji, st.Count)
	}

	respond(s, i, b.String(), true)
}

// HandleTrackingStart handles the /start command.
func HandleTrackingStart(s *discordgo.Session, i *discordgo.InteractionCreate) {
	liveTracking.Store(true)
	utils.Info("ingest", "tracking_start", "by user interaction")
	respond(s, i, "✅ Now tracking all reactions in this server!", false)
}

// HandleTrackingStop handles the /stop command. Only the live handlers are
// gated; history scans keep their own start/stop commands.
func HandleTrackingStop(s *discordgo.Session, i *discordgo.InteractionCreate) {
	liveTracking.Store(false)
	utils.Info("ingest", "tracking_stop", "by user interaction")
	respond(s, i, "🛑 Reaction tracking has been stopped.", false)
}

// HandleTrackingStatus handles the /status command.
func HandleTrackingStatus(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if liveTracking.Load() {
		respond(s, i, "Tracking status: ✅ Active", false)
		return
	}
	respond(s, i, "Tracking status: ❌ Inactive", false)
}

// HandleHelp handles the /help command.
func HandleHelp(s *discordgo.Session, i *discordgo.InteractionCreate) {
	respond(s, i, helpText(), true)
}

func helpText() string {
	return strings.Join([]string{
		"🔧 **Reaction Tracker Commands**",
		"",
		"**📊 Main Commands**",
		"`/report [days] [emoji]` - Get reaction statistics",
		"`/scan` - Start scanning message history",
		"`/scan_status` - Check scanning progress",
		"`/scan_stop` - Stop the scanning process",
		"`/emoji_stats [days]` - Show emoji usage statistics",
		"",
		"**⚙️ Control Commands**",
		"`/start` - Start tracking",
		"`/stop` - Stop tracking",
		"`/status` - Check status",
		"",
		"**🌟 Examples**",
		"`/report` - Last 30 days of 😹 reactions",
		"`/report days:7 emoji:all` - All reactions from last week",
	}, "\n")
}

// HandlePing handles the /ping command.
func HandlePing(s *discordgo.Session, i *discordgo.InteractionCreate) {
	respond(s, i, "Pong!", false)
}

// respondChunked splits long replies into followups so each message stays
// under the platform limit.
func respondChunked(s *discordgo.Session, i *discordgo.InteractionCreate, text string) {
	chunks := splitMessage(text, replyChunkSize)
	if len(chunks) == 0 {
		return
	}

	if len(chunks) == 1 {
		respond(s, i, chunks[0], false)
		return
	}

	respond(s, i, fmt.Sprintf("%s\n(Part 1/%d)", chunks[0], len(chunks)), false)
	for n, chunk := range chunks[1:] {
		if _, err := s.FollowupMessageCreate(i.Interaction, true, &discordgo.WebhookParams{
			Content: fmt.Sprintf("%s\n(Part %d/%d)", chunk, n+2, len(chunks)),
		}); err != nil {
			log.Printf("Failed to send report followup: %v", err)
			return
		}
	}
}

// splitMessage cuts text into rune-safe chunks of at most size runes.
func splitMessage(text string, size int) []string {
	runes := []rune(text)
	var chunks []string
	for len(runes) > size {
		chunks = append(chunks, string(runes[:size]))
		runes = runes[size:]
	}
	if len(runes) > 0 {
		chunks = append(chunks, string(runes))
	}
	return chunks
}
