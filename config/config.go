package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"discord-reaction-tracker/models"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load reads configuration from a .env file, config.yaml and the
// environment, in that order. Environment variables override file settings.
// Missing files are not an error; defaults below keep the tracker usable
// with nothing but BOT_TOKEN set.
func Load() {
	// Environment variables from .env, ignored when the file is absent.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, skipping.")
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Println("No config.yaml found, using environment variables and defaults.")
		} else {
			panic(fmt.Errorf("fatal error reading config file: %w", err))
		}
	}
}

func setDefaults() {
	viper.SetDefault("bot.scanAtStartup", false)
	// Guest-level commands are public unless a config narrows the list.
	viper.SetDefault("commands.auth.guest", []string{"0"})
	viper.SetDefault("tracker.dbPath", "data/reactions.db")
	viper.SetDefault("tracker.callDelayMs", 500)
	viper.SetDefault("tracker.messageDelayMs", 250)
	viper.SetDefault("tracker.channelDelayMs", 2000)
	viper.SetDefault("tracker.minBackoffMs", 5000)
	viper.SetDefault("tracker.requestTimeoutMs", 15000)
	viper.SetDefault("tracker.maxRetries", 3)
	viper.SetDefault("tracker.channelWorkers", 2)
	viper.SetDefault("tracker.pageSize", 100)
}

// Tracker snapshots the tracker settings into an immutable config struct.
// Constructors receive this value; nothing reads viper after startup.
func Tracker() models.TrackerConfig {
	return models.TrackerConfig{
		DBPath:         viper.GetString("tracker.dbPath"),
		CallDelay:      time.Duration(viper.GetInt("tracker.callDelayMs")) * time.Millisecond,
		MessageDelay:   time.Duration(viper.GetInt("tracker.messageDelayMs")) * time.Millisecond,
		ChannelDelay:   time.Duration(viper.GetInt("tracker.channelDelayMs")) * time.Millisecond,
		MinBackoff:     time.Duration(viper.GetInt("tracker.minBackoffMs")) * time.Millisecond,
		RequestTimeout: time.Duration(viper.GetInt("tracker.requestTimeoutMs")) * time.Millisecond,
		MaxRetries:     viper.GetInt("tracker.maxRetries"),
		ChannelWorkers: viper.GetInt("tracker.channelWorkers"),
		PageSize:       viper.GetInt("tracker.pageSize"),
	}
}
