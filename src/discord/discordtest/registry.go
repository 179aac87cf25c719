// Package discordtest provides an in-memory Registry for component tests.
package discordtest

import (
	"fmt"
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/rp-haven/oc-registrar/src/discord"
)

// FakeGuild implements discord.Registry against in-memory role/channel
// tables. All methods are safe for concurrent use so tests can race
// provisioning goroutines against each other.
type FakeGuild struct {
	GuildID string

	// Error injection; nil means the call succeeds.
	FailCreateRole    error
	FailCreateChannel error
	FailAddRole       error
	FailSendMessage   error
	FailSendEmbed     error

	mu          sync.Mutex
	nextID      int
	roles       []*discordgo.Role
	channels    []*discordgo.Channel
	memberRoles map[string][]string
	messages    map[string][]string
	embeds      map[string][]*discordgo.MessageEmbed

	CreateRoleCalls    int
	CreateChannelCalls int
	AddRoleCalls       int
}

var _ discord.Registry = (*FakeGuild)(nil)

func NewFakeGuild(guildID string) *FakeGuild {
	return &FakeGuild{
		GuildID:     guildID,
		memberRoles: make(map[string][]string),
		messages:    make(map[string][]string),
		embeds:      make(map[string][]*discordgo.MessageEmbed),
	}
}

func (g *FakeGuild) id(prefix string) string {
	g.nextID++
	return fmt.Sprintf("%s%d", prefix, g.nextID)
}

// SeedRole adds an existing role and returns it.
func (g *FakeGuild) SeedRole(name string) *discordgo.Role {
	g.mu.Lock()
	defer g.mu.Unlock()
	role := &discordgo.Role{ID: g.id("role"), Name: name}
	g.roles = append(g.roles, role)
	return role
}

// SeedChannel adds an existing channel and returns it.
func (g *FakeGuild) SeedChannel(name string) *discordgo.Channel {
	g.mu.Lock()
	defer g.mu.Unlock()
	ch := &discordgo.Channel{ID: g.id("chan"), Name: name, Type: discordgo.ChannelTypeGuildText}
	g.channels = append(g.channels, ch)
	return ch
}

func (g *FakeGuild) Roles(guildID string) ([]*discordgo.Role, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]*discordgo.Role, len(g.roles))
	copy(out, g.roles)
	return out, nil
}

func (g *FakeGuild) CreateRole(guildID, name, reason string) (*discordgo.Role, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.CreateRoleCalls++
	if g.FailCreateRole != nil {
		return nil, g.FailCreateRole
	}
	role := &discordgo.Role{ID: g.id("role"), Name: name}
	g.roles = append(g.roles, role)
	return role, nil
}

func (g *FakeGuild) Channels(guildID string) ([]*discordgo.Channel, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]*discordgo.Channel, len(g.channels))
	copy(out, g.channels)
	return out, nil
}

func (g *FakeGuild) CreateChannel(guildID string, data discordgo.GuildChannelCreateData, reason string) (*discordgo.Channel, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.CreateChannelCalls++
	if g.FailCreateChannel != nil {
		return nil, g.FailCreateChannel
	}
	ch := &discordgo.Channel{
		ID:                   g.id("chan"),
		Name:                 data.Name,
		Type:                 data.Type,
		Topic:                data.Topic,
		ParentID:             data.ParentID,
		PermissionOverwrites: data.PermissionOverwrites,
	}
	g.channels = append(g.channels, ch)
	return ch, nil
}

func (g *FakeGuild) AddMemberRole(guildID, userID, roleID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.AddRoleCalls++
	if g.FailAddRole != nil {
		return g.FailAddRole
	}
	for _, id := range g.memberRoles[userID] {
		if id == roleID {
			return nil
		}
	}
	g.memberRoles[userID] = append(g.memberRoles[userID], roleID)
	return nil
}

func (g *FakeGuild) SendMessage(channelID, content string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.FailSendMessage != nil {
		return g.FailSendMessage
	}
	g.messages[channelID] = append(g.messages[channelID], content)
	return nil
}

func (g *FakeGuild) SendEmbed(channelID string, embed *discordgo.MessageEmbed) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.FailSendEmbed != nil {
		return g.FailSendEmbed
	}
	g.embeds[channelID] = append(g.embeds[channelID], embed)
	return nil
}

// RolesNamed returns every role with this exact name.
func (g *FakeGuild) RolesNamed(name string) []*discordgo.Role {
	g.mu.Lock()
	defer g.mu.Unlock()
	var out []*discordgo.Role
	for _, role := range g.roles {
		if role.Name == name {
			out = append(out, role)
		}
	}
	return out
}

// ChannelsNamed returns every channel with this exact name.
func (g *FakeGuild) ChannelsNamed(name string) []*discordgo.Channel {
	g.mu.Lock()
	defer g.mu.Unlock()
	var out []*discordgo.Channel
	for _, ch := range g.channels {
		if ch.Name == name {
			out = append(out, ch)
		}
	}
	return out
}

// MemberRoles returns the role IDs granted to a member.
func (g *FakeGuild) MemberRoles(userID string) []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]string, len(g.memberRoles[userID]))
	copy(out, g.memberRoles[userID])
	return out
}

// Messages returns the plain messages sent to a channel.
func (g *FakeGuild) Messages(channelID string) []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]string, len(g.messages[channelID]))
	copy(out, g.messages[channelID])
	return out
}

// Embeds returns the embeds sent to a channel.
func (g *FakeGuild) Embeds(channelID string) []*discordgo.MessageEmbed {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]*discordgo.MessageEmbed, len(g.embeds[channelID]))
	copy(out, g.embeds[channelID])
	return out
}
