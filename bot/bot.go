package bot

import (
	"context"
	"sync"
	"time"

	"emperror.dev/errors"
	"github.com/diamondburned/arikawa/v3/discord"
	"github.com/diamondburned/arikawa/v3/gateway"
	"github.com/diamondburned/arikawa/v3/state"
	"github.com/starshine-sys/keeper/commands"
	"github.com/starshine-sys/keeper/commands/admin"
	"github.com/starshine-sys/keeper/commands/builtin"
	"github.com/starshine-sys/keeper/common/log"
	"github.com/starshine-sys/keeper/config"
	"github.com/starshine-sys/keeper/definitions"
)

const Intents = gateway.IntentGuilds |
	gateway.IntentGuildMembers |
	gateway.IntentGuildMessages |
	gateway.IntentMessageContent

// CommandTimeout bounds a single command invocation.
const CommandTimeout = 30 * time.Second

type Bot struct {
	State    *state.State
	Config   config.Config
	Commands *commands.Set

	locks *admin.LockStore

	user   discord.User
	userMu sync.RWMutex
}

// New creates a new Bot and loads its commands.
func New(c config.Config) (*Bot, error) {
	s := state.New("Bot " + c.Auth.Discord)
	s.AddIntents(Intents)

	bot := &Bot{
		State:  s,
		Config: c,
		locks:  admin.NewLockStore(admin.DefaultLockTTL),
	}

	reg := builtin.Registry(builtin.Deps{
		Client:   s.Client,
		Locks:    bot.locks,
		Prefix:   bot.defaultPrefix(),
		Commands: func() *commands.Set { return bot.Commands },
	})

	set, err := commands.Load(definitions.Open(c.Bot.CommandsDir), ".", reg)
	if err != nil {
		return nil, errors.Wrap(err, "loading commands")
	}
	if set.Len() == 0 {
		return nil, errors.New("no commands were loaded")
	}
	bot.Commands = set

	s.AddHandler(bot.ready)
	s.AddHandler(bot.interactionCreate)
	s.AddHandler(bot.messageCreate)

	return bot, nil
}

func (bot *Bot) Open(ctx context.Context) error {
	log.Debug("opening gateway connection")

	return bot.State.Open(ctx)
}

func (bot *Bot) Close() error {
	err := bot.State.Close()
	if lerr := bot.locks.Close(); lerr != nil {
		err = errors.Append(err, lerr)
	}
	return err
}

// Me returns the bot user, once the gateway is ready.
func (bot *Bot) Me() discord.User {
	bot.userMu.RLock()
	defer bot.userMu.RUnlock()
	return bot.user
}

func (bot *Bot) ready(ev *gateway.ReadyEvent) {
	bot.userMu.Lock()
	bot.user = ev.User
	bot.userMu.Unlock()

	log.Infof("User: %v (%v)", ev.User.Tag(), ev.User.ID)
}

func (bot *Bot) defaultPrefix() string {
	if len(bot.Config.Bot.Prefixes) > 0 {
		return bot.Config.Bot.Prefixes[0]
	}
	return ""
}
