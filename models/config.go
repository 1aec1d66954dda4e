package models

import "time"

// TrackerConfig is the immutable runtime configuration, built once at startup
// by config.Load and passed explicitly to the store, fetcher and coordinator.
type TrackerConfig struct {
	DBPath         string
	CallDelay      time.Duration
	MessageDelay   time.Duration
	ChannelDelay   time.Duration
	MinBackoff     time.Duration
	RequestTimeout time.Duration
	MaxRetries     int
	ChannelWorkers int
	PageSize       int
}

// CommandsConfig holds the authorization lists for slash commands.
type CommandsConfig struct {
	Auth AuthConfig `json:"auth" mapstructure:"auth"`
}

// AuthConfig maps permission levels to user or role IDs. A guest entry of
// "0" grants public access.
type AuthConfig struct {
	Developers  []string `json:"developers" mapstructure:"developers"`
	AdminsRoles []string `json:"adminsRoles" mapstructure:"adminsRoles"`
	Guest       []string `json:"guest" mapstructure:"guest"`
}
