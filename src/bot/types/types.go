package types

import "github.com/bwmarrin/discordgo"

// Inbound submissions
type Submission struct {
	MessageID   string
	GuildID     string
	ChannelID   string
	AuthorID    string
	AuthorName  string
	FromBot     bool
	WebhookID   string
	Content     string
	Embeds      []*discordgo.MessageEmbed
	MemberRoles []string
}

// FromMessage flattens a gateway message event into a Submission.
func FromMessage(m *discordgo.MessageCreate) Submission {
	sub := Submission{
		MessageID: m.ID,
		GuildID:   m.GuildID,
		ChannelID: m.ChannelID,
		Content:   m.Content,
		Embeds:    m.Embeds,
		WebhookID: m.WebhookID,
	}
	if m.Author != nil {
		sub.AuthorID = m.Author.ID
		sub.AuthorName = m.Author.Username
		sub.FromBot = m.Author.Bot
	}
	if m.Member != nil {
		sub.MemberRoles = m.Member.Roles
	}
	return sub
}

// Provisioning outcome
type ProvisionResult struct {
	OpID           string
	Role           *discordgo.Role
	Channel        *discordgo.Channel
	CreatedRole    bool
	CreatedChannel bool
}
