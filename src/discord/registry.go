package discord

import (
	"github.com/bwmarrin/discordgo"
)

// Registry is the slice of the Discord API the registrar needs: enumerating
// and creating roles and channels, granting roles, and sending messages.
// Components take this interface so tests can swap in a fake guild.
type Registry interface {
	Roles(guildID string) ([]*discordgo.Role, error)
	CreateRole(guildID, name, reason string) (*discordgo.Role, error)
	Channels(guildID string) ([]*discordgo.Channel, error)
	CreateChannel(guildID string, data discordgo.GuildChannelCreateData, reason string) (*discordgo.Channel, error)
	AddMemberRole(guildID, userID, roleID string) error
	SendMessage(channelID, content string) error
	SendEmbed(channelID string, embed *discordgo.MessageEmbed) error
}

// SessionRegistry adapts a live discordgo session to Registry. Create calls
// carry an audit log reason so moderators can trace who asked for what.
type SessionRegistry struct {
	session *discordgo.Session
}

func NewSessionRegistry(session *discordgo.Session) *SessionRegistry {
	return &SessionRegistry{session: session}
}

func (r *SessionRegistry) Roles(guildID string) ([]*discordgo.Role, error) {
	return r.session.GuildRoles(guildID)
}

func (r *SessionRegistry) CreateRole(guildID, name, reason string) (*discordgo.Role, error) {
	return r.session.GuildRoleCreate(guildID, &discordgo.RoleParams{
		Name: name,
	}, discordgo.WithAuditLogReason(reason))
}

func (r *SessionRegistry) Channels(guildID string) ([]*discordgo.Channel, error) {
	return r.session.GuildChannels(guildID)
}

func (r *SessionRegistry) CreateChannel(guildID string, data discordgo.GuildChannelCreateData, reason string) (*discordgo.Channel, error) {
	return r.session.GuildChannelCreateComplex(guildID, data, discordgo.WithAuditLogReason(reason))
}

func (r *SessionRegistry) AddMemberRole(guildID, userID, roleID string) error {
	return r.session.GuildMemberRoleAdd(guildID, userID, roleID)
}

func (r *SessionRegistry) SendMessage(channelID, content string) error {
	_, err := r.session.ChannelMessageSend(channelID, content)
	return err
}

func (r *SessionRegistry) SendEmbed(channelID string, embed *discordgo.MessageEmbed) error {
	_, err := r.session.ChannelMessageSendEmbed(channelID, embed)
	return err
}
