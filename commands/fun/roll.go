// Package fun holds commands that don't do anything useful.
package fun

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/diamondburned/arikawa/v3/discord"
	"github.com/starshine-sys/keeper/commands"
	"github.com/starshine-sys/keeper/common"
)

// Die limits
const (
	DefaultFaces = 6
	MinFaces     = 2
	MaxFaces     = 100
)

// Roll rolls a single die.
type Roll struct {
	// intn returns a number in [0, n).
	intn func(n int) int
}

// NewRoll returns a Roll using the global random source.
func NewRoll() *Roll {
	return &Roll{intn: rand.IntN}
}

// Roll returns a number in [1, faces].
func (r *Roll) Roll(faces int64) (int64, error) {
	if faces < MinFaces || faces > MaxFaces {
		return 0, commands.Errorf("`faces` must be between %v and %v.", MinFaces, MaxFaces)
	}
	return int64(r.intn(int(faces))) + 1, nil
}

func (r *Roll) Interactive(_ context.Context, req *commands.Request) (commands.Reply, error) {
	return r.reply(req)
}

func (r *Roll) Legacy(_ context.Context, req *commands.Request, _ []string) (commands.Reply, error) {
	return r.reply(req)
}

func (r *Roll) reply(req *commands.Request) (commands.Reply, error) {
	faces := int64(DefaultFaces)
	if req.Options.Has("faces") {
		faces = req.Options.Int("faces")
	}

	n, err := r.Roll(faces)
	if err != nil {
		return commands.Reply{}, err
	}

	return commands.EmbedReply(discord.Embed{
		Title:       "🎲 Dice roll",
		Description: fmt.Sprintf("%v rolled a d%v and got **%v**!", req.User.Mention(), faces, n),
		Color:       common.ColourPurple,
		Timestamp:   discord.NowTimestamp(),
	}), nil
}
