package common

import (
	"strings"

	"github.com/diamondburned/arikawa/v3/discord"
)

// Perm is a single permission
type Perm struct {
	Permission discord.Permissions
	// Key is the name used in command definition files.
	Key  string
	Name string
}

// AllPerms are the permissions command definitions can require.
var AllPerms = []Perm{
	{discord.PermissionAdministrator, "administrator", "Administrator"},
	{discord.PermissionManageGuild, "manage_guild", "Manage Server"},
	{discord.PermissionManageChannels, "manage_channels", "Manage Channels"},
	{discord.PermissionManageRoles, "manage_roles", "Manage Roles"},
	{discord.PermissionManageMessages, "manage_messages", "Manage Messages"},
	{discord.PermissionManageWebhooks, "manage_webhooks", "Manage Webhooks"},
	{discord.PermissionKickMembers, "kick_members", "Kick Members"},
	{discord.PermissionBanMembers, "ban_members", "Ban Members"},
	{discord.PermissionViewAuditLog, "view_audit_log", "View Audit Log"},
	{discord.PermissionMentionEveryone, "mention_everyone", "Mention Everyone"},

	{discord.PermissionViewChannel, "view_channel", "View Channel"},
	{discord.PermissionSendMessages, "send_messages", "Send Messages"},
	{discord.PermissionReadMessageHistory, "read_message_history", "Read Message History"},
	{discord.PermissionEmbedLinks, "embed_links", "Embed Links"},
	{discord.PermissionAttachFiles, "attach_files", "Attach Files"},
	{discord.PermissionAddReactions, "add_reactions", "Add Reactions"},
}

// ParsePermission returns the permission with the given key.
func ParsePermission(key string) (discord.Permissions, bool) {
	key = strings.ToLower(strings.TrimSpace(key))
	for _, p := range AllPerms {
		if p.Key == key {
			return p.Permission, true
		}
	}
	return 0, false
}

// PermStrings gives permission strings for all known permissions set in p
func PermStrings(p discord.Permissions) []string {
	var out = make([]string, 0, len(AllPerms))
	for _, perm := range AllPerms {
		if p&perm.Permission == perm.Permission {
			out = append(out, perm.Name)
		}
	}

	return out
}
