package common

import "github.com/diamondburned/arikawa/v3/discord"

// Embed colours
const (
	ColourPurple discord.Color = 0x9b59b6
	ColourGreen  discord.Color = 0x2ecc71
	ColourOrange discord.Color = 0xe67e22
	ColourRed    discord.Color = 0xe74c3c
	ColourBlue   discord.Color = 0x3498db
)
