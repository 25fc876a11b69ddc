// Package deploy holds the commands that register slash commands with Discord.
package deploy

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"emperror.dev/errors"
	"github.com/diamondburned/arikawa/v3/api"
	"github.com/diamondburned/arikawa/v3/discord"
	"github.com/starshine-sys/keeper/commands"
	"github.com/starshine-sys/keeper/commands/builtin"
	"github.com/starshine-sys/keeper/config"
	"github.com/starshine-sys/keeper/definitions"
	"github.com/starshine-sys/keeper/deploy"
	"github.com/urfave/cli/v2"
)

var dryRunFlag = &cli.BoolFlag{
	Name:  "dry-run",
	Usage: "Print the commands that would be registered instead of registering them",
}

var guildFlag = &cli.Uint64Flag{
	Name:  "guild",
	Usage: "Register commands in this guild",
}

var Command = &cli.Command{
	Name:   "deploy",
	Usage:  "Register slash commands globally, or in one guild",
	Action: run,
	Flags: []cli.Flag{
		guildFlag,
		&cli.StringFlag{
			Name:  "category",
			Usage: "Only register commands in this definitions subdirectory",
		},
		&cli.BoolFlag{
			Name:  "allow-empty",
			Usage: "Register even if no commands were loaded (this removes all registered commands)",
		},
		dryRunFlag,
	},
}

var AdminCommand = &cli.Command{
	Name:   "deploy-admin",
	Usage:  "Register admin commands in the commands guild",
	Action: runAdmin,
	Flags: []cli.Flag{
		guildFlag,
		dryRunFlag,
	},
}

// params describes one deployment.
type params struct {
	Root         string
	GuildID      discord.GuildID
	RequireGuild bool
	DryRun       bool
	AllowEmpty   bool
}

// newRegistrar is replaced in tests.
var newRegistrar = func(ctx context.Context, token string) deploy.Registrar {
	return newClient(ctx, token)
}

// newClient returns a Discord client that sends every request exactly once.
// A failed registration is reported to the operator, never retried.
func newClient(ctx context.Context, token string) *api.Client {
	c := api.NewClient("Bot " + token).WithContext(ctx)
	// 0 would mean retrying forever
	c.Client.Retries = 1
	return c
}

func run(c *cli.Context) error {
	conf, err := readConfig(c)
	if err != nil {
		return err
	}

	p := params{
		Root:       ".",
		GuildID:    discord.GuildID(c.Uint64("guild")),
		DryRun:     c.Bool("dry-run"),
		AllowEmpty: c.Bool("allow-empty"),
	}
	if cat := c.String("category"); cat != "" {
		p.Root = cat
	}

	return deployCommands(c.Context, c.App.Writer, conf, p)
}

func runAdmin(c *cli.Context) error {
	conf, err := readConfig(c)
	if err != nil {
		return err
	}

	if g := c.Uint64("guild"); g != 0 {
		conf.Bot.CommandsGuildID = g
	}

	p := params{
		Root:         conf.Bot.AdminCategory,
		GuildID:      conf.CommandsGuildID(),
		RequireGuild: true,
		DryRun:       c.Bool("dry-run"),
	}
	if p.Root == "" {
		p.Root = definitions.Admin
	}

	return deployCommands(c.Context, c.App.Writer, conf, p)
}

func readConfig(c *cli.Context) (config.Config, error) {
	conf, err := config.Load(c.String("config"))
	if err != nil {
		return conf, errors.Wrap(err, "reading config")
	}

	if dir := c.String("commands-dir"); dir != "" {
		conf.Bot.CommandsDir = dir
	}
	return conf, nil
}

func deployCommands(ctx context.Context, out io.Writer, conf config.Config, p params) error {
	// check configuration before doing any work
	if err := conf.Validate(p.RequireGuild); err != nil {
		fmt.Fprintln(out, "Configuration error:", err)
		return err
	}

	set, err := commands.Load(definitions.Open(conf.Bot.CommandsDir), p.Root, builtin.Registry(builtin.Deps{}))
	if err != nil {
		fmt.Fprintln(out, "Error loading commands:", err)
		return err
	}
	for _, e := range set.Errors {
		fmt.Fprintln(out, "Skipped (error):", e)
	}
	for _, d := range set.Duplicates {
		fmt.Fprintf(out, "Skipped (duplicate): %v in %v, already loaded from %v\n", d.Name, d.Path, d.FirstPath)
	}

	target := deploy.Target{AppID: conf.AppID(), GuildID: p.GuildID}

	if p.DryRun {
		b, err := json.MarshalIndent(deploy.CommandData(set.Modules), "", "  ")
		if err != nil {
			return errors.Wrap(err, "marshaling commands")
		}
		fmt.Fprintf(out, "Would register %v command(s) (%v):\n%s\n", set.Len(), target, b)
		return nil
	}

	res, err := deploy.Deploy(ctx, newRegistrar(ctx, conf.Auth.Discord), target, set.Modules, deploy.Options{AllowEmpty: p.AllowEmpty})
	if err != nil {
		var rlErr *deploy.RateLimitError
		if errors.As(err, &rlErr) {
			fmt.Fprintln(out, "Discord is rate limiting command registration. Wait before trying again:", rlErr)
		} else {
			fmt.Fprintln(out, "Error overwriting commands:", err)
		}
		return err
	}

	if target.GuildID.IsValid() {
		fmt.Fprintf(out, "Wrote %v command(s) in guild %v!\n", len(res.Commands), target.GuildID)
	} else {
		fmt.Fprintf(out, "Wrote %v global command(s)!\n", len(res.Commands))
	}
	return nil
}
