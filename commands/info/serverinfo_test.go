package info

import (
	"context"
	"testing"

	"emperror.dev/errors"
	"github.com/diamondburned/arikawa/v3/discord"
	"github.com/starshine-sys/keeper/commands"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGuild struct {
	guild    discord.Guild
	channels []discord.Channel
	members  []discord.Member
	err      error
}

func (f *fakeGuild) Guild(discord.GuildID) (*discord.Guild, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &f.guild, nil
}

func (f *fakeGuild) Channels(discord.GuildID) ([]discord.Channel, error) { return f.channels, nil }

func (f *fakeGuild) Members(discord.GuildID, uint) ([]discord.Member, error) { return f.members, nil }

func members(humans, bots int) []discord.Member {
	var out []discord.Member
	for i := 0; i < humans; i++ {
		out = append(out, discord.Member{User: discord.User{ID: discord.UserID(i + 1)}})
	}
	for i := 0; i < bots; i++ {
		out = append(out, discord.Member{User: discord.User{ID: discord.UserID(1000 + i), Bot: true}})
	}
	return out
}

func field(t *testing.T, e discord.Embed, name string) string {
	t.Helper()

	for _, f := range e.Fields {
		if f.Name == name {
			return f.Value
		}
	}
	t.Fatalf("embed has no field %q", name)
	return ""
}

func TestCountMembers(t *testing.T) {
	for _, tc := range []struct{ humans, bots int }{{0, 0}, {1, 0}, {0, 3}, {1500, 12}} {
		c := CountMembers(members(tc.humans, tc.bots))

		assert.Equal(t, tc.humans, c.Humans)
		assert.Equal(t, tc.bots, c.Bots)
		assert.Equal(t, tc.humans+tc.bots, c.Total())
	}
}

func TestServerInfo(t *testing.T) {
	fake := &fakeGuild{
		guild: discord.Guild{
			ID:      discord.GuildID(discord.NewSnowflake(discord.NowTimestamp().Time())),
			Name:    "Test Server",
			OwnerID: 42,
			Roles:   make([]discord.Role, 4),
		},
		channels: make([]discord.Channel, 7),
		members:  members(1500, 12),
	}
	s := &ServerInfo{Client: fake}

	reply, err := s.Interactive(context.Background(), &commands.Request{GuildID: fake.guild.ID})
	require.NoError(t, err)
	require.Len(t, reply.Embeds, 1)

	e := reply.Embeds[0]
	assert.Equal(t, "Test Server", e.Title)
	assert.Equal(t, "1,512", field(t, e, "Members"))
	assert.Equal(t, "1,500", field(t, e, "Humans"))
	assert.Equal(t, "12", field(t, e, "Bots"))
	assert.Equal(t, "7", field(t, e, "Channels"))
	assert.Equal(t, "4", field(t, e, "Roles"))
	assert.Equal(t, "<@42>", field(t, e, "Owner"))
	assert.Nil(t, e.Thumbnail)
}

func TestServerInfoOutsideGuild(t *testing.T) {
	s := &ServerInfo{Client: &fakeGuild{}}

	_, err := s.Legacy(context.Background(), &commands.Request{}, nil)
	var uerr *commands.UserError
	require.ErrorAs(t, err, &uerr)
}

func TestServerInfoAPIError(t *testing.T) {
	s := &ServerInfo{Client: &fakeGuild{err: errors.New("unknown guild")}}

	_, err := s.Interactive(context.Background(), &commands.Request{GuildID: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown guild")
}
