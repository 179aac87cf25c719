package discord

import (
	"strings"

	"github.com/bwmarrin/discordgo"
)

// FindRoleByName returns the first role whose name equals name
// case-insensitively, or nil.
func FindRoleByName(roles []*discordgo.Role, name string) *discordgo.Role {
	for _, role := range roles {
		if role != nil && strings.EqualFold(role.Name, name) {
			return role
		}
	}
	return nil
}

// FindChannelByName returns the first channel with exactly this name, or nil.
// Channel names are matched verbatim: slugs are already lowercase.
func FindChannelByName(channels []*discordgo.Channel, name string) *discordgo.Channel {
	for _, ch := range channels {
		if ch != nil && ch.Name == name {
			return ch
		}
	}
	return nil
}

// HasRole reports whether roleID appears in the member's role set.
func HasRole(memberRoles []string, roleID string) bool {
	for _, id := range memberRoles {
		if id == roleID {
			return true
		}
	}
	return false
}
