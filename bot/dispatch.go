package bot

import (
	"context"
	"strings"

	"emperror.dev/errors"
	"github.com/diamondburned/arikawa/v3/discord"
	"github.com/starshine-sys/keeper/commands"
	"github.com/starshine-sys/keeper/common"
	"github.com/starshine-sys/keeper/common/log"
)

// invocation is a single run of a command, from either entry point.
type invocation struct {
	module *commands.Module
	req    *commands.Request

	legacy bool
	args   []string

	// perms returns the invoking member's permissions in the channel.
	// It is only set for legacy invocations, as Discord checks slash command permissions itself.
	perms func() (discord.Permissions, error)
}

// execute runs the command and turns its result into the reply to send.
// It always returns something to reply with.
func (bot *Bot) execute(inv *invocation) commands.Reply {
	reply, err := bot.run(inv)
	return bot.result(inv, reply, err)
}

func (bot *Bot) run(inv *invocation) (reply commands.Reply, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("panic in command %q: %v", inv.module.Name(), r)
		}
	}()

	if err := checkGuild(inv); err != nil {
		return reply, err
	}
	if err := checkPermissions(inv); err != nil {
		return reply, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), CommandTimeout)
	defer cancel()

	if inv.legacy {
		inv.req.Options, err = inv.module.Schema.ParseArgs(inv.args)
		if err != nil {
			return reply, err
		}
		return inv.module.Handler.Legacy(ctx, inv.req, inv.args)
	}
	return inv.module.Handler.Interactive(ctx, inv.req)
}

func checkGuild(inv *invocation) error {
	if inv.module.Schema.GuildOnly && !inv.req.GuildID.IsValid() {
		return commands.Errorf("This command can only be used in a server.")
	}
	return nil
}

// result is the single place command results are converted to replies and errors are logged.
func (bot *Bot) result(inv *invocation, reply commands.Reply, err error) commands.Reply {
	logger := log.With(
		"command", inv.module.Name(),
		"legacy", inv.legacy,
		"guild", inv.req.GuildID,
		"channel", inv.req.ChannelID,
		"user", inv.req.User.ID,
	)

	if err == nil {
		logger.Debug("command succeeded")
		if reply.Content == "" && len(reply.Embeds) == 0 {
			reply.Content = "Done!"
		}
		return reply
	}

	var uerr *commands.UserError
	if errors.As(err, &uerr) {
		logger.Debugf("command rejected input: %v", uerr)
		return commands.Reply{Content: uerr.Message, Ephemeral: true}
	}

	code := bot.errorCode(inv, err)
	logger.Errorw("running command", "error", err, "code", code)
	return bot.internalErrorReply(code)
}

func checkPermissions(inv *invocation) error {
	if inv.perms == nil || !inv.req.GuildID.IsValid() {
		return nil
	}

	required, err := inv.module.Schema.RequiredPermissions()
	if err != nil || required == 0 {
		return err
	}

	perms, err := inv.perms()
	if err != nil {
		return errors.Wrap(err, "getting member permissions")
	}

	if missing := required &^ perms; missing != 0 && !perms.Has(discord.PermissionAdministrator) {
		return commands.Errorf("You need the following permission(s) to use this command: %v",
			strings.Join(common.PermStrings(missing), ", "))
	}
	return nil
}
