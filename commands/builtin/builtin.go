// Package builtin registers every command handler keeper ships with.
package builtin

import (
	"strings"

	"github.com/diamondburned/arikawa/v3/api"
	"github.com/starshine-sys/keeper/commands"
	"github.com/starshine-sys/keeper/commands/admin"
	"github.com/starshine-sys/keeper/commands/fun"
	"github.com/starshine-sys/keeper/commands/info"
	"github.com/starshine-sys/keeper/common/log"
)

// Deps are what the handlers need to run. A zero Deps is fine for registering commands with Discord,
// as handlers aren't called then.
type Deps struct {
	Client *api.Client
	Locks  *admin.LockStore
	Prefix string

	// Commands returns the loaded command set, for help.
	Commands func() *commands.Set
}

// Registry returns a registry holding all built-in handlers.
func Registry(deps Deps) *commands.Registry {
	if deps.Commands == nil {
		deps.Commands = func() *commands.Set { return nil }
	}

	reg := commands.NewRegistry()

	channels := &admin.Channels{Client: deps.Client, Store: deps.Locks}
	reg.MustRegister("lock", admin.Lock{Channels: channels})
	reg.MustRegister("unlock", admin.Unlock{Channels: channels})

	reg.MustRegister("roll", fun.NewRoll())

	reg.MustRegister("serverinfo", &info.ServerInfo{Client: deps.Client})
	reg.MustRegister("help", &info.Help{Commands: deps.Commands, Prefix: deps.Prefix})

	log.Debugf("Registered handlers: %v", strings.Join(reg.Names(), ", "))
	return reg
}
