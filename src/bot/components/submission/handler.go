package submission

import (
	"context"
	"fmt"
	"log"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
	"github.com/rp-haven/oc-registrar/src/bot/components/extractor"
	"github.com/rp-haven/oc-registrar/src/bot/components/provision"
	"github.com/rp-haven/oc-registrar/src/bot/components/roster"
	"github.com/rp-haven/oc-registrar/src/bot/types"
	"github.com/rp-haven/oc-registrar/src/discord"
	"github.com/rp-haven/oc-registrar/src/namekit"
)

type Config struct {
	GuildID   string
	ChannelID string
	// RelayWebhookID, when set, restricts webhook submissions to one relay.
	RelayWebhookID string
	Registry       discord.Registry
	Roster         *roster.Cache
	Extractor      *extractor.Extractor
	Engine         *provision.Engine
	Cooldown       *Cooldown
	Stats          *Stats
}

// Handler runs the submission pipeline for inbound messages: scope check,
// name extraction, roster refresh + duplicate check, shape validation, then
// provisioning. Every rejection is terminal; internal failures are logged
// and never reach Discord as a crash.
type Handler struct {
	config Config
}

func NewHandler(config Config) *Handler {
	if config.Stats == nil {
		config.Stats = &Stats{}
	}
	if config.Cooldown == nil {
		config.Cooldown = NewCooldown(0)
	}
	return &Handler{config: config}
}

func (h *Handler) HandleMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author != nil && s.State != nil && s.State.User != nil && m.Author.ID == s.State.User.ID {
		return
	}
	h.Process(context.Background(), types.FromMessage(m))
}

// Process runs one submission through the pipeline.
func (h *Handler) Process(ctx context.Context, sub types.Submission) {
	defer func() {
		if r := recover(); r != nil {
			h.config.Stats.Failures.Add(1)
			log.Printf("Submission %s: recovered from panic: %v", sub.MessageID, r)
		}
	}()

	if !h.inScope(sub) {
		return
	}
	h.config.Stats.Seen.Add(1)

	name := h.config.Extractor.CandidateName(sub)
	if name == "" {
		h.config.Stats.Ignored.Add(1)
		return
	}

	if !h.config.Cooldown.Allow(sub.AuthorID) {
		h.config.Stats.Throttled.Add(1)
		wait := h.config.Cooldown.Remaining(sub.AuthorID)
		h.reply(sub, fmt.Sprintf("Please wait %d seconds before submitting again.", int(wait.Seconds())+1))
		return
	}

	// The cache resolves refresh failures per its policy; the duplicate
	// check below runs against whatever snapshot that leaves installed.
	h.config.Roster.Refresh(ctx)

	if h.config.Roster.Contains(name) {
		h.config.Stats.Duplicates.Add(1)
		log.Printf("Duplicate submission %q from %s", name, sub.AuthorName)
		h.reply(sub, fmt.Sprintf("**%s** already exists in the roster. If this is your character, please contact a moderator.", name))
		return
	}

	if _, _, ok := namekit.SplitName(name); !ok {
		h.config.Stats.Malformed.Add(1)
		h.reply(sub, "Characters need a first and a last name. Try again like `OC: Mito Uzumaki`.")
		return
	}

	opID := uuid.NewString()[:8]
	log.Printf("Submission %s: provisioning %q for %s", opID, name, sub.AuthorName)

	result, err := h.config.Engine.Provision(ctx, opID, name, sub)
	if err != nil {
		h.config.Stats.Failures.Add(1)
		log.Printf("Submission %s: provisioning %q failed: %v", opID, name, err)
		return
	}

	h.config.Stats.Provisioned.Add(1)
	log.Printf("Submission %s: %q ready (role %s, channel #%s)", opID, name, result.Role.Name, result.Channel.Name)
}

func (h *Handler) inScope(sub types.Submission) bool {
	if sub.FromBot && sub.WebhookID == "" {
		return false
	}
	if sub.WebhookID != "" && h.config.RelayWebhookID != "" && sub.WebhookID != h.config.RelayWebhookID {
		return false
	}
	return sub.GuildID == h.config.GuildID && sub.ChannelID == h.config.ChannelID
}

func (h *Handler) reply(sub types.Submission, content string) {
	if err := h.config.Registry.SendMessage(sub.ChannelID, content); err != nil {
		log.Printf("Reply in %s failed: %v", sub.ChannelID, err)
	}
}
