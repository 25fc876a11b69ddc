// Package admin holds moderation commands.
package admin

import (
	"context"
	"fmt"

	"emperror.dev/errors"
	"github.com/diamondburned/arikawa/v3/api"
	"github.com/diamondburned/arikawa/v3/discord"
	"github.com/starshine-sys/keeper/commands"
	"github.com/starshine-sys/keeper/common"
	"github.com/starshine-sys/keeper/common/log"
)

// ChannelClient is the part of the Discord API that lock and unlock need.
// *api.Client implements it.
type ChannelClient interface {
	Channel(id discord.ChannelID) (*discord.Channel, error)
	EditChannelPermission(channelID discord.ChannelID, overwriteID discord.Snowflake, data api.EditChannelPermissionData) error
	DeleteChannelPermission(channelID discord.ChannelID, overwriteID discord.Snowflake, reason api.AuditLogReason) error
}

// Channels holds what lock and unlock share.
type Channels struct {
	Client ChannelClient
	Store  *LockStore
}

// Lock denies Send Messages to @everyone in the current channel.
type Lock struct{ *Channels }

// Unlock undoes Lock.
type Unlock struct{ *Channels }

func (l Lock) Interactive(ctx context.Context, req *commands.Request) (commands.Reply, error) {
	return l.lock(ctx, req)
}

func (l Lock) Legacy(ctx context.Context, req *commands.Request, _ []string) (commands.Reply, error) {
	return l.lock(ctx, req)
}

func (u Unlock) Interactive(ctx context.Context, req *commands.Request) (commands.Reply, error) {
	return u.unlock(ctx, req)
}

func (u Unlock) Legacy(ctx context.Context, req *commands.Request, _ []string) (commands.Reply, error) {
	return u.unlock(ctx, req)
}

// everyoneOverwrite returns the channel's @everyone overwrite, and whether it exists.
// The @everyone role has the same ID as its guild.
func everyoneOverwrite(ch *discord.Channel, guildID discord.GuildID) (discord.Overwrite, bool) {
	id := discord.Snowflake(guildID)
	for _, ow := range ch.Overwrites {
		if ow.Type == discord.OverwriteRole && ow.ID == id {
			return ow, true
		}
	}
	return discord.Overwrite{ID: id, Type: discord.OverwriteRole}, false
}

func stateOf(ow discord.Overwrite) sendState {
	switch {
	case ow.Deny.Has(discord.PermissionSendMessages):
		return sendDenied
	case ow.Allow.Has(discord.PermissionSendMessages):
		return sendAllowed
	default:
		return sendNeutral
	}
}

func (c *Channels) channel(req *commands.Request) (*discord.Channel, error) {
	if !req.GuildID.IsValid() {
		return nil, commands.Errorf("This command can only be used in a server.")
	}

	ch, err := c.Client.Channel(req.ChannelID)
	if err != nil {
		return nil, errors.Wrapf(err, "getting channel %v", req.ChannelID)
	}
	return ch, nil
}

func (l Lock) lock(_ context.Context, req *commands.Request) (commands.Reply, error) {
	ch, err := l.channel(req)
	if err != nil {
		return commands.Reply{}, err
	}

	ow, _ := everyoneOverwrite(ch, req.GuildID)
	prior := stateOf(ow)
	if prior == sendDenied {
		return commands.Reply{Content: "This channel is already locked.", Ephemeral: true}, nil
	}

	err = l.Client.EditChannelPermission(ch.ID, ow.ID, api.EditChannelPermissionData{
		Type:           discord.OverwriteRole,
		Allow:          ow.Allow &^ discord.PermissionSendMessages,
		Deny:           ow.Deny | discord.PermissionSendMessages,
		AuditLogReason: api.AuditLogReason(fmt.Sprintf("Channel locked by %v (%v)", req.User.Tag(), req.User.ID)),
	})
	if err != nil {
		return commands.Reply{}, errors.Wrapf(err, "editing permissions for channel %v", ch.ID)
	}

	if l.Store != nil {
		if err := l.Store.remember(ch.ID, prior); err != nil {
			log.Warnf("Locked channel %v but couldn't remember its previous state: %v", ch.ID, err)
		}
	}

	return commands.EmbedReply(discord.Embed{
		Title:       "🔒 Channel locked",
		Description: fmt.Sprintf("%v has been locked by %v.", ch.Mention(), req.User.Mention()),
		Color:       common.ColourOrange,
		Timestamp:   discord.NowTimestamp(),
	}), nil
}

func (u Unlock) unlock(_ context.Context, req *commands.Request) (commands.Reply, error) {
	ch, err := u.channel(req)
	if err != nil {
		return commands.Reply{}, err
	}

	ow, _ := everyoneOverwrite(ch, req.GuildID)
	if stateOf(ow) != sendDenied {
		return commands.Reply{Content: "This channel isn't locked.", Ephemeral: true}, nil
	}

	target := sendNeutral
	if u.Store != nil {
		if st, ok := u.Store.recall(ch.ID); ok && st != sendDenied {
			target = st
		}
	}

	allow := ow.Allow &^ discord.PermissionSendMessages
	deny := ow.Deny &^ discord.PermissionSendMessages
	if target == sendAllowed {
		allow |= discord.PermissionSendMessages
	}

	reason := api.AuditLogReason(fmt.Sprintf("Channel unlocked by %v (%v)", req.User.Tag(), req.User.ID))
	// nothing left in the overwrite, so remove it entirely
	if allow == 0 && deny == 0 {
		err = u.Client.DeleteChannelPermission(ch.ID, ow.ID, reason)
	} else {
		err = u.Client.EditChannelPermission(ch.ID, ow.ID, api.EditChannelPermissionData{
			Type:           discord.OverwriteRole,
			Allow:          allow,
			Deny:           deny,
			AuditLogReason: reason,
		})
	}
	if err != nil {
		return commands.Reply{}, errors.Wrapf(err, "editing permissions for channel %v", ch.ID)
	}

	if u.Store != nil {
		u.Store.forget(ch.ID)
	}
	log.Debugf("Unlocked channel %v, Send Messages is now %v", ch.ID, target)

	return commands.EmbedReply(discord.Embed{
		Title:       "🔓 Channel unlocked",
		Description: fmt.Sprintf("%v has been unlocked by %v.", ch.Mention(), req.User.Mention()),
		Color:       common.ColourGreen,
		Timestamp:   discord.NowTimestamp(),
	}), nil
}
