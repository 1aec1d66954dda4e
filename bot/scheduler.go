package bot

import (
	"log"

	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
)

var c *cron.Cron

// startScheduler starts the cron jobs. The hourly job resumes interrupted or
// never-finished scans; completed channels are skipped, so a fully scanned
// guild costs nothing.
func startScheduler(b *Bot) {
	log.Println("Initializing scheduler...")
	c = cron.New()
	_, err := c.AddFunc("@hourly", func() {
		log.Println("Running hourly scan resume...")
		resumeAllGuilds(b)
	})
	if err != nil {
		log.Fatalf("Could not set up cron job: %v", err)
	}
	c.Start()
	log.Println("Cron job scheduled to run hourly.")

	if viper.GetBool("bot.scanAtStartup") {
		go func() {
			log.Println("Resuming scans on startup...")
			resumeAllGuilds(b)
		}()
	} else {
		log.Println("Skipping startup scan as per configuration.")
	}
}

// stopScheduler stops the cron jobs.
func stopScheduler() {
	if c != nil {
		c.Stop()
		log.Println("Scheduler stopped.")
	}
}

func resumeAllGuilds(b *Bot) {
	if b.Coordinator == nil {
		return
	}
	for _, guild := range b.Session.State.Guilds {
		started, err := b.Coordinator.Start(guild.ID, false)
		if err != nil {
			log.Printf("Could not resume scan for guild %s: %v", guild.ID, err)
			continue
		}
		if started {
			log.Printf("Resumed scan for guild %s", guild.ID)
		}
	}
}
