package provision

import "github.com/bwmarrin/discordgo"

const characterAllow = discordgo.PermissionViewChannel |
	discordgo.PermissionSendMessages |
	discordgo.PermissionReadMessageHistory |
	discordgo.PermissionAttachFiles |
	discordgo.PermissionEmbedLinks |
	discordgo.PermissionAddReactions

const managementAllow = characterAllow |
	discordgo.PermissionManageChannels |
	discordgo.PermissionManageMessages |
	discordgo.PermissionManageRoles |
	discordgo.PermissionMentionEveryone |
	discordgo.PermissionManageWebhooks

// Topology is the fixed overwrite list applied at channel creation:
// @everyone loses visibility, the character role can use the channel, the
// moderator role (and the game-master role when configured) manages it.
func Topology(guildID, characterRoleID, moderatorRoleID, gameMasterRoleID string) []*discordgo.PermissionOverwrite {
	overwrites := []*discordgo.PermissionOverwrite{
		{
			ID:   guildID,
			Type: discordgo.PermissionOverwriteTypeRole,
			Deny: discordgo.PermissionViewChannel,
		},
		{
			ID:    characterRoleID,
			Type:  discordgo.PermissionOverwriteTypeRole,
			Allow: characterAllow,
		},
		{
			ID:    moderatorRoleID,
			Type:  discordgo.PermissionOverwriteTypeRole,
			Allow: managementAllow,
		},
	}
	if gameMasterRoleID != "" {
		overwrites = append(overwrites, &discordgo.PermissionOverwrite{
			ID:    gameMasterRoleID,
			Type:  discordgo.PermissionOverwriteTypeRole,
			Allow: managementAllow,
		})
	}
	return overwrites
}
