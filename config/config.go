// Package config reads keeper's configuration.
//
// Values are read, in order of increasing priority, from a TOML file,
// the environment (including a .env file), and command-line flags.
package config

import (
	"os"
	"strings"

	"emperror.dev/errors"
	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
	"github.com/diamondburned/arikawa/v3/discord"
	"github.com/joho/godotenv"
	"github.com/starshine-sys/keeper/common/log"
)

// DefaultPath is where the config file is read from if no other path is given.
const DefaultPath = "config.toml"

type Config struct {
	Auth AuthConfig `toml:"auth"`
	Bot  BotConfig  `toml:"bot"`
}

type AuthConfig struct {
	Discord string `toml:"discord" env:"TOKEN"`
	Sentry  string `toml:"sentry" env:"SENTRY_DSN"`
}

type BotConfig struct {
	AppID    uint64   `toml:"app_id" env:"APP_ID"`
	Prefixes []string `toml:"prefixes" env:"PREFIXES" envSeparator:","`

	// CommandsGuildID is the guild scoped registrations go to.
	CommandsGuildID uint64 `toml:"commands_guild_id" env:"COMMANDS_GUILD_ID"`
	// CommandsDir overrides the embedded command definitions with a directory on disk.
	CommandsDir string `toml:"commands_dir" env:"COMMANDS_DIR"`
	// AdminCategory is the definitions subdirectory registered by deploy-admin.
	AdminCategory string `toml:"admin_category" env:"ADMIN_CATEGORY"`

	SupportServer string `toml:"support_server" env:"SUPPORT_SERVER"`
}

// Error is returned when required configuration is missing.
type Error struct {
	Missing []string
}

func (e *Error) Error() string {
	return "missing required configuration: " + strings.Join(e.Missing, ", ")
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Bot: BotConfig{
			Prefixes:      []string{"!"},
			AdminCategory: "admin",
		},
	}
}

// Load reads the configuration file at path, if it exists, then applies environment overrides.
// A .env file in the working directory is loaded into the environment first.
func Load(path string) (c Config, err error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return c, errors.Wrap(err, "loading .env file")
	}

	c = Default()

	b, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		log.Debugf("Config file %q doesn't exist, using environment only", path)
	case err != nil:
		return c, errors.Wrap(err, "read config file")
	default:
		if err = toml.Unmarshal(b, &c); err != nil {
			return c, errors.Wrap(err, "unmarshal config")
		}
	}

	if err = env.Parse(&c); err != nil {
		return c, errors.Wrap(err, "parse environment")
	}
	return c, nil
}

// AppID returns the application ID as a Discord ID.
func (c Config) AppID() discord.AppID {
	return discord.AppID(c.Bot.AppID)
}

// CommandsGuildID returns the scoped registration guild as a Discord ID.
func (c Config) CommandsGuildID() discord.GuildID {
	return discord.GuildID(c.Bot.CommandsGuildID)
}

// Validate checks that everything needed to talk to Discord is set.
// If requireGuild is true, the commands guild must be set too.
func (c Config) Validate(requireGuild bool) error {
	var missing []string
	if strings.TrimSpace(c.Auth.Discord) == "" {
		missing = append(missing, "token (auth.discord / $TOKEN)")
	}
	if c.Bot.AppID == 0 {
		missing = append(missing, "application ID (bot.app_id / $APP_ID)")
	}
	if requireGuild && c.Bot.CommandsGuildID == 0 {
		missing = append(missing, "guild ID (bot.commands_guild_id / $COMMANDS_GUILD_ID)")
	}

	if len(missing) > 0 {
		return &Error{Missing: missing}
	}
	return nil
}
