package provision

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rp-haven/oc-registrar/src/bot/types"
	"github.com/rp-haven/oc-registrar/src/discord"
	"github.com/rp-haven/oc-registrar/src/namekit"
	"github.com/rp-haven/oc-registrar/src/namelock"
)

type Config struct {
	GuildID         string
	CategoryID      string
	ModeratorRoleID string
	// GameMasterRoleID and LogChannelID are optional; empty disables the GM
	// overwrite and the audit message respectively.
	GameMasterRoleID string
	LogChannelID     string
	Registry         discord.Registry
	Locks            *namelock.Map
}

// Engine ensures the role/channel pair for a character exists. Every step
// re-checks current state before acting, so rerunning the same name finishes
// whatever an earlier partial failure left undone instead of duplicating it.
type Engine struct {
	config Config
}

func NewEngine(config Config) *Engine {
	if config.Locks == nil {
		config.Locks = namelock.New()
	}
	return &Engine{config: config}
}

// ChannelName maps a full character name to its channel name.
func ChannelName(fullName string) string {
	return "oc-" + namekit.Slugify(fullName)
}

// Provision ensures the role named after the first name and the private
// channel for fullName, welcomes the submitter, assigns the role, and emits
// the audit message. Concurrent calls for names sharing a first name are
// serialized on a keyed lock.
func (e *Engine) Provision(ctx context.Context, opID, fullName string, sub types.Submission) (*types.ProvisionResult, error) {
	firstName := namekit.FirstName(fullName)
	if firstName == "" {
		return nil, fmt.Errorf("blank name")
	}

	key := strings.ToLower(firstName)
	e.config.Locks.Lock(key)
	defer e.config.Locks.Unlock(key)

	role, createdRole, err := e.ensureRole(firstName, fullName, sub)
	if err != nil {
		return nil, fmt.Errorf("ensure role %q: %w", firstName, err)
	}

	channel, createdChannel, err := e.ensureChannel(fullName, role, sub)
	if err != nil {
		return nil, fmt.Errorf("ensure channel %q: %w", ChannelName(fullName), err)
	}

	if err := e.assignRole(sub, role); err != nil {
		return nil, fmt.Errorf("assign role %q: %w", role.Name, err)
	}

	if err := e.audit(opID, fullName, role, channel, sub); err != nil {
		return nil, fmt.Errorf("audit message: %w", err)
	}

	return &types.ProvisionResult{
		OpID:           opID,
		Role:           role,
		Channel:        channel,
		CreatedRole:    createdRole,
		CreatedChannel: createdChannel,
	}, nil
}

func (e *Engine) ensureRole(roleName, fullName string, sub types.Submission) (*discordgo.Role, bool, error) {
	roles, err := e.config.Registry.Roles(e.config.GuildID)
	if err != nil {
		return nil, false, fmt.Errorf("list roles: %w", err)
	}
	if role := discord.FindRoleByName(roles, roleName); role != nil {
		return role, false, nil
	}

	reason := fmt.Sprintf("OC registration: %s (submitted by %s)", fullName, sub.AuthorName)
	role, err := e.config.Registry.CreateRole(e.config.GuildID, roleName, reason)
	if err != nil {
		return nil, false, fmt.Errorf("create role: %w", err)
	}
	log.Printf("Created role %q (%s)", roleName, role.ID)
	return role, true, nil
}

func (e *Engine) ensureChannel(fullName string, role *discordgo.Role, sub types.Submission) (*discordgo.Channel, bool, error) {
	name := ChannelName(fullName)
	channels, err := e.config.Registry.Channels(e.config.GuildID)
	if err != nil {
		return nil, false, fmt.Errorf("list channels: %w", err)
	}
	if ch := discord.FindChannelByName(channels, name); ch != nil {
		return ch, false, nil
	}

	data := discordgo.GuildChannelCreateData{
		Name:                 name,
		Type:                 discordgo.ChannelTypeGuildText,
		Topic:                fmt.Sprintf("Private channel for %s", fullName),
		ParentID:             e.config.CategoryID,
		PermissionOverwrites: Topology(e.config.GuildID, role.ID, e.config.ModeratorRoleID, e.config.GameMasterRoleID),
	}
	ch, err := e.config.Registry.CreateChannel(e.config.GuildID, data, fmt.Sprintf("OC registration: %s", fullName))
	if err != nil {
		return nil, false, fmt.Errorf("create channel: %w", err)
	}
	log.Printf("Created channel #%s (%s)", name, ch.ID)

	welcome := fmt.Sprintf("Welcome, <@%s>! **%s** is registered and this channel is theirs. Post the character sheet, art and story hooks here.", sub.AuthorID, fullName)
	if err := e.config.Registry.SendMessage(ch.ID, welcome); err != nil {
		return ch, true, fmt.Errorf("welcome message: %w", err)
	}

	// Replicate the submitted sheet embed so the channel starts with it.
	if embed := firstEmbed(sub.Embeds); embed != nil {
		if err := e.config.Registry.SendEmbed(ch.ID, embed); err != nil {
			log.Printf("Embed replication into #%s failed: %v", name, err)
		}
	}

	return ch, true, nil
}

func (e *Engine) assignRole(sub types.Submission, role *discordgo.Role) error {
	if discord.HasRole(sub.MemberRoles, role.ID) {
		return nil
	}
	return e.config.Registry.AddMemberRole(e.config.GuildID, sub.AuthorID, role.ID)
}

func (e *Engine) audit(opID, fullName string, role *discordgo.Role, ch *discordgo.Channel, sub types.Submission) error {
	if e.config.LogChannelID == "" {
		return nil
	}

	embed := &discordgo.MessageEmbed{
		Title:       "Character Registered",
		Description: fmt.Sprintf("**%s** has been provisioned.", fullName),
		Color:       0x00ff00,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Role", Value: fmt.Sprintf("<@&%s>", role.ID), Inline: true},
			{Name: "Channel", Value: fmt.Sprintf("<#%s>", ch.ID), Inline: true},
			{Name: "Submitted by", Value: fmt.Sprintf("<@%s>", sub.AuthorID), Inline: true},
		},
		Footer: &discordgo.MessageEmbedFooter{
			Text: "oc-registrar · op " + opID,
		},
		Timestamp: time.Now().Format(time.RFC3339),
	}
	return e.config.Registry.SendEmbed(e.config.LogChannelID, embed)
}

func firstEmbed(embeds []*discordgo.MessageEmbed) *discordgo.MessageEmbed {
	for _, em := range embeds {
		if em != nil {
			return em
		}
	}
	return nil
}
