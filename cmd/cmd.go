package cmd

import (
	"os"

	"github.com/starshine-sys/keeper/cmd/bot"
	"github.com/starshine-sys/keeper/cmd/deploy"
	"github.com/starshine-sys/keeper/common"
	"github.com/starshine-sys/keeper/config"
	"github.com/urfave/cli/v2"
)

var app = &cli.App{
	Name:    "keeper",
	Usage:   "Discord moderation and utility bot",
	Version: common.Version(),

	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "config",
			Usage: "Path to the configuration file",
			Value: config.DefaultPath,
		},
		&cli.StringFlag{
			Name:  "commands-dir",
			Usage: "Read command definitions from this directory instead of the built-in ones",
		},
	},

	Commands: []*cli.Command{
		bot.Command,
		deploy.Command,
		deploy.AdminCommand,
	},
}

func Run() error {
	return app.Run(os.Args)
}
