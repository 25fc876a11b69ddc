package bot

import (
	"os"
	"os/signal"
	"syscall"

	"emperror.dev/errors"
	"github.com/getsentry/sentry-go"
	"github.com/starshine-sys/keeper/bot"
	"github.com/starshine-sys/keeper/common"
	"github.com/starshine-sys/keeper/common/log"
	"github.com/starshine-sys/keeper/config"
	"github.com/urfave/cli/v2"
)

var Command = &cli.Command{
	Name:   "bot",
	Usage:  "Run the bot",
	Action: run,
}

func run(c *cli.Context) error {
	conf, err := config.Load(c.String("config"))
	if err != nil {
		return errors.Wrap(err, "reading config")
	}
	if dir := c.String("commands-dir"); dir != "" {
		conf.Bot.CommandsDir = dir
	}

	if conf.Auth.Discord == "" {
		return &config.Error{Missing: []string{"token (auth.discord / $TOKEN)"}}
	}

	// set up sentry
	if conf.Auth.Sentry != "" {
		log.Debug("setting up sentry")
		err := sentry.Init(sentry.ClientOptions{
			Dsn:     conf.Auth.Sentry,
			Release: common.Version(),
		})
		if err != nil {
			log.Fatalf("setting up sentry: %v", err)
		}

		log.Debug("set up sentry")
	} else {
		log.Debugf("sentry DSN was not provided, not setting it up")
	}

	b, err := bot.New(conf)
	if err != nil {
		return errors.Wrap(err, "creating bot")
	}

	// actually run bot!
	ctx, cancel := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	err = b.Open(ctx)
	if err != nil {
		return errors.Wrap(err, "opening gateway connection")
	}

	defer func() {
		err = b.Close()
		if err != nil {
			log.Errorf("closing gateway connection: %v", err)
		}
	}()

	log.Infof("Connected to Discord with %v command(s). Press Ctrl-C or send an interrupt signal to stop.", b.Commands.Len())

	<-ctx.Done()

	log.Infof("Interrupt signal received. Shutting down...")
	return nil
}
