package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"verify-bot/models"
)

// LoadConfig loads configuration from multiple sources:
//  1. .env file (environment variables)
//  2. config.yaml (base configuration: token, database path, API endpoint)
//  3. config/guilds.json (per-guild scopes, roles and log channels,
//     merged into the main configuration)
//
// Environment variables override same-named file settings.
func LoadConfig() {
	// Load environment variables from .env if present.
	if err := godotenv.Load(); err != nil {
		logrus.Info("no .env file found, skipping")
	}

	// Base configuration file (config.yaml).
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			logrus.Info("no config.yaml found, using environment variables and merged configs only")
		} else {
			panic(fmt.Errorf("fatal error reading base config: %w", err))
		}
	}

	// Merge the per-guild configuration (config/guilds.json).
	viper.SetConfigName("guilds")
	viper.SetConfigType("json")
	viper.AddConfigPath("./config")

	if err := viper.MergeInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			logrus.Info("no config/guilds.json found, skipping merge")
		} else {
			panic(fmt.Errorf("fatal error merging guild config: %w", err))
		}
	}
}

// Guilds returns the per-guild verification configuration.
func Guilds() models.GuildsConfig {
	var guilds models.GuildsConfig
	if err := viper.UnmarshalKey("guilds", &guilds); err != nil {
		logrus.Errorf("failed to unmarshal guild config: %v", err)
		return models.GuildsConfig{}
	}
	return guilds
}

// Guild returns one guild's configuration.
func Guild(guildID string) (models.GuildConfig, bool) {
	guilds := Guilds()
	g, ok := guilds[guildID]
	return g, ok
}

// Scope resolves a scope's Discord wiring. The guild ID names the main
// scope; anything else is looked up among the guild's sub-scopes.
func Scope(guildID, scopeID string) (models.ScopeConfig, bool) {
	g, ok := Guild(guildID)
	if !ok {
		return models.ScopeConfig{}, false
	}
	return g.Scope(guildID, scopeID)
}
