// Package commands defines command modules and loads them from a tree of definition files.
//
// A module is a Schema (read from a TOML file) bound to a Handler (registered in Go under the
// same name). Each module has two entry points: Interactive for slash commands and Legacy for
// prefix commands parsed from message text.
package commands

import (
	"context"
	"fmt"

	"github.com/diamondburned/arikawa/v3/discord"
)

// Handler is the behaviour half of a command module.
type Handler interface {
	// Interactive runs the command from a slash command invocation.
	Interactive(ctx context.Context, req *Request) (Reply, error)
	// Legacy runs the command from a prefixed message. args are the whitespace-separated
	// words following the command name.
	Legacy(ctx context.Context, req *Request, args []string) (Reply, error)
}

// Module is a loaded command: its schema, its handler, and where it was found.
type Module struct {
	Schema  Schema
	Handler Handler

	// Path is the definition file's path relative to the loader's file system.
	Path string
	// Category is the first directory of Path, or "" for files at the top level.
	Category string
}

// Name returns the module's command name.
func (m *Module) Name() string { return m.Schema.Name }

// Request is what a handler gets to know about an invocation.
type Request struct {
	GuildID   discord.GuildID
	ChannelID discord.ChannelID
	User      discord.User
	// Member is nil outside of guilds.
	Member *discord.Member

	// Options are the resolved option values, from the interaction or from the legacy arguments.
	Options Options
}

// Reply is a successful command result.
type Reply struct {
	Content   string
	Embeds    []discord.Embed
	Ephemeral bool
}

// Replyf returns a plain text reply.
func Replyf(tmpl string, v ...any) Reply {
	return Reply{Content: fmt.Sprintf(tmpl, v...)}
}

// EmbedReply returns a reply consisting of the given embeds.
func EmbedReply(embeds ...discord.Embed) Reply {
	return Reply{Embeds: embeds}
}

// UserError is an error whose message is meant for the person who ran the command.
// Every other error returned by a handler is treated as an internal error.
type UserError struct {
	Message string
}

func (e *UserError) Error() string { return e.Message }

// Errorf returns a *UserError.
func Errorf(tmpl string, v ...any) error {
	return &UserError{Message: fmt.Sprintf(tmpl, v...)}
}
