// Package info holds informational commands.
package info

import (
	"context"
	"fmt"

	"emperror.dev/errors"
	"github.com/diamondburned/arikawa/v3/discord"
	"github.com/dustin/go-humanize"
	"github.com/starshine-sys/keeper/commands"
	"github.com/starshine-sys/keeper/common"
)

// GuildClient is the part of the Discord API that serverinfo needs.
// *api.Client implements it.
type GuildClient interface {
	Guild(id discord.GuildID) (*discord.Guild, error)
	Channels(guildID discord.GuildID) ([]discord.Channel, error)
	// Members returns up to limit members, or all of them if limit is 0.
	Members(guildID discord.GuildID, limit uint) ([]discord.Member, error)
}

// ServerInfo shows information about the current guild.
type ServerInfo struct {
	Client GuildClient
}

// MemberCounts splits a guild's members into humans and bots.
type MemberCounts struct {
	Humans int
	Bots   int
}

// Total returns the number of members counted.
func (c MemberCounts) Total() int { return c.Humans + c.Bots }

// CountMembers counts humans and bots.
func CountMembers(members []discord.Member) (c MemberCounts) {
	for _, m := range members {
		if m.User.Bot {
			c.Bots++
		} else {
			c.Humans++
		}
	}
	return c
}

func (s *ServerInfo) Interactive(ctx context.Context, req *commands.Request) (commands.Reply, error) {
	return s.info(ctx, req)
}

func (s *ServerInfo) Legacy(ctx context.Context, req *commands.Request, _ []string) (commands.Reply, error) {
	return s.info(ctx, req)
}

func (s *ServerInfo) info(_ context.Context, req *commands.Request) (commands.Reply, error) {
	if !req.GuildID.IsValid() {
		return commands.Reply{}, commands.Errorf("This command can only be used in a server.")
	}

	g, err := s.Client.Guild(req.GuildID)
	if err != nil {
		return commands.Reply{}, errors.Wrapf(err, "getting guild %v", req.GuildID)
	}

	members, err := s.Client.Members(req.GuildID, 0)
	if err != nil {
		return commands.Reply{}, errors.Wrapf(err, "getting members of guild %v", req.GuildID)
	}
	counts := CountMembers(members)

	channels, err := s.Client.Channels(req.GuildID)
	if err != nil {
		return commands.Reply{}, errors.Wrapf(err, "getting channels of guild %v", req.GuildID)
	}

	created := g.ID.Time()

	e := discord.Embed{
		Title: g.Name,
		Color: common.ColourBlue,
		Fields: []discord.EmbedField{
			{Name: "Owner", Value: g.OwnerID.Mention(), Inline: true},
			{Name: "Created", Value: fmt.Sprintf("%v\n(%v)", created.Format("Jan _2 2006"), humanize.Time(created)), Inline: true},
			{Name: "Members", Value: humanize.Comma(int64(counts.Total())), Inline: true},
			{Name: "Humans", Value: humanize.Comma(int64(counts.Humans)), Inline: true},
			{Name: "Bots", Value: humanize.Comma(int64(counts.Bots)), Inline: true},
			{Name: "Channels", Value: humanize.Comma(int64(len(channels))), Inline: true},
			{Name: "Roles", Value: humanize.Comma(int64(len(g.Roles))), Inline: true},
		},
		Footer:    &discord.EmbedFooter{Text: "ID: " + g.ID.String()},
		Timestamp: discord.NowTimestamp(),
	}

	if g.Icon != "" {
		e.Thumbnail = &discord.EmbedThumbnail{URL: g.IconURL()}
	}

	return commands.EmbedReply(e), nil
}
