package submission

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rp-haven/oc-registrar/src/bot/components/extractor"
	"github.com/rp-haven/oc-registrar/src/bot/components/provision"
	"github.com/rp-haven/oc-registrar/src/bot/components/roster"
	"github.com/rp-haven/oc-registrar/src/bot/types"
	"github.com/rp-haven/oc-registrar/src/discord/discordtest"
	"github.com/stretchr/testify/require"
)

type staticFetcher struct {
	body []byte
	err  error
}

func (f *staticFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.body, nil
}

const emptySheet = "\"id\",\"name\"\n"
const sakuraSheet = "\"id\",\"name\"\n\"1\",\"Sakura Haruno\"\n"

func testHandler(g *discordtest.FakeGuild, fetcher roster.Fetcher, mutate ...func(*Config)) *Handler {
	cache := roster.NewCache(roster.Config{URL: "http://sheet", Fetcher: fetcher})
	engine := provision.NewEngine(provision.Config{
		GuildID:         "guild1",
		CategoryID:      "cat1",
		ModeratorRoleID: "modrole",
		Registry:        g,
	})
	cfg := Config{
		GuildID:   "guild1",
		ChannelID: "submissions",
		Registry:  g,
		Roster:    cache,
		Extractor: extractor.New(),
		Engine:    engine,
		Cooldown:  NewCooldown(0),
		Stats:     &Stats{},
	}
	for _, m := range mutate {
		m(&cfg)
	}
	return NewHandler(cfg)
}

func textSubmission(content string) types.Submission {
	return types.Submission{
		MessageID:  "msg1",
		GuildID:    "guild1",
		ChannelID:  "submissions",
		AuthorID:   "user1",
		AuthorName: "kay",
		Content:    content,
	}
}

func TestPipelineProvisionsNewCharacter(t *testing.T) {
	g := discordtest.NewFakeGuild("guild1")
	h := testHandler(g, &staticFetcher{body: []byte(emptySheet)})

	h.Process(context.Background(), textSubmission("OC: Mito Uzumaki"))

	require.Len(t, g.RolesNamed("Mito"), 1)
	channels := g.ChannelsNamed("oc-mito-uzumaki")
	require.Len(t, channels, 1)
	require.Len(t, g.Messages(channels[0].ID), 1, "welcome expected")
	require.Empty(t, g.Messages("submissions"), "no rejection reply expected")

	snap := h.config.Stats.Snapshot()
	require.Equal(t, uint64(1), snap.Seen)
	require.Equal(t, uint64(1), snap.Provisioned)
	require.Zero(t, snap.Failures)
}

func TestPipelineRejectsDuplicate(t *testing.T) {
	g := discordtest.NewFakeGuild("guild1")
	h := testHandler(g, &staticFetcher{body: []byte(sakuraSheet)})

	h.Process(context.Background(), textSubmission("Sakura Haruno"))

	replies := g.Messages("submissions")
	require.Len(t, replies, 1)
	require.Contains(t, replies[0], "already exists in the roster")
	require.Zero(t, g.CreateRoleCalls)
	require.Zero(t, g.CreateChannelCalls)
	require.Equal(t, uint64(1), h.config.Stats.Snapshot().Duplicates)
}

func TestPipelineDuplicateCheckCaseInsensitive(t *testing.T) {
	g := discordtest.NewFakeGuild("guild1")
	h := testHandler(g, &staticFetcher{body: []byte(sakuraSheet)})

	h.Process(context.Background(), textSubmission("SAKURA HARUNO"))

	replies := g.Messages("submissions")
	require.Len(t, replies, 1)
	require.Contains(t, replies[0], "already exists in the roster")
}

func TestPipelineRejectsSingleToken(t *testing.T) {
	g := discordtest.NewFakeGuild("guild1")
	h := testHandler(g, &staticFetcher{body: []byte(emptySheet)})

	h.Process(context.Background(), textSubmission("Gaara"))

	replies := g.Messages("submissions")
	require.Len(t, replies, 1)
	require.Contains(t, replies[0], "first and a last name")
	require.Zero(t, g.CreateRoleCalls)
	require.Equal(t, uint64(1), h.config.Stats.Snapshot().Malformed)
}

func TestPipelineSingleTokenDuplicateStillRejectedAsDuplicate(t *testing.T) {
	// Shape validation runs after the duplicate check: a one-word name that
	// is already rostered gets the duplicate reply, not the format help.
	g := discordtest.NewFakeGuild("guild1")
	sheet := "\"id\",\"name\"\n\"1\",\"Gaara\"\n"
	h := testHandler(g, &staticFetcher{body: []byte(sheet)})

	h.Process(context.Background(), textSubmission("Gaara"))

	replies := g.Messages("submissions")
	require.Len(t, replies, 1)
	require.Contains(t, replies[0], "already exists in the roster")
}

func TestPipelineFetchFailureFailsOpen(t *testing.T) {
	g := discordtest.NewFakeGuild("guild1")
	h := testHandler(g, &staticFetcher{err: errors.New("connection refused")})

	h.Process(context.Background(), textSubmission("OC: Mito Uzumaki"))

	require.Len(t, g.RolesNamed("Mito"), 1)
	require.Len(t, g.ChannelsNamed("oc-mito-uzumaki"), 1)
}

func TestPipelineIgnoresNonSubmissionContent(t *testing.T) {
	g := discordtest.NewFakeGuild("guild1")
	h := testHandler(g, &staticFetcher{body: []byte(emptySheet)})

	h.Process(context.Background(), textSubmission("   "))

	require.Empty(t, g.Messages("submissions"))
	require.Zero(t, g.CreateRoleCalls)
	require.Equal(t, uint64(1), h.config.Stats.Snapshot().Ignored)
}

func TestPipelineScope(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*types.Submission)
		config  func(*Config)
		dropped bool
	}{
		{
			name:    "wrong channel",
			mutate:  func(s *types.Submission) { s.ChannelID = "general" },
			dropped: true,
		},
		{
			name:    "wrong guild",
			mutate:  func(s *types.Submission) { s.GuildID = "other" },
			dropped: true,
		},
		{
			name:    "plain bot author",
			mutate:  func(s *types.Submission) { s.FromBot = true },
			dropped: true,
		},
		{
			name:    "webhook relay accepted",
			mutate:  func(s *types.Submission) { s.FromBot = true; s.WebhookID = "wh1" },
			dropped: false,
		},
		{
			name:    "configured relay match",
			mutate:  func(s *types.Submission) { s.FromBot = true; s.WebhookID = "wh1" },
			config:  func(c *Config) { c.RelayWebhookID = "wh1" },
			dropped: false,
		},
		{
			name:    "configured relay mismatch",
			mutate:  func(s *types.Submission) { s.FromBot = true; s.WebhookID = "wh2" },
			config:  func(c *Config) { c.RelayWebhookID = "wh1" },
			dropped: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			g := discordtest.NewFakeGuild("guild1")
			mutators := []func(*Config){}
			if tc.config != nil {
				mutators = append(mutators, tc.config)
			}
			h := testHandler(g, &staticFetcher{body: []byte(emptySheet)}, mutators...)

			sub := textSubmission("OC: Mito Uzumaki")
			tc.mutate(&sub)
			h.Process(context.Background(), sub)

			if tc.dropped {
				require.Zero(t, g.CreateRoleCalls, "expected drop")
				require.Zero(t, h.config.Stats.Snapshot().Seen)
			} else {
				require.Equal(t, 1, g.CreateRoleCalls, "expected provisioning")
			}
		})
	}
}

func TestPipelineCooldown(t *testing.T) {
	g := discordtest.NewFakeGuild("guild1")
	h := testHandler(g, &staticFetcher{body: []byte(emptySheet)}, func(c *Config) {
		c.Cooldown = NewCooldown(time.Minute)
	})

	h.Process(context.Background(), textSubmission("OC: Mito Uzumaki"))
	h.Process(context.Background(), textSubmission("OC: Gaara Sand"))

	require.Len(t, g.RolesNamed("Mito"), 1)
	require.Empty(t, g.RolesNamed("Gaara"))

	replies := g.Messages("submissions")
	require.Len(t, replies, 1)
	require.Contains(t, replies[0], "wait")
	require.Equal(t, uint64(1), h.config.Stats.Snapshot().Throttled)
}

func TestPipelineProvisioningFailureLoggedNotReplied(t *testing.T) {
	g := discordtest.NewFakeGuild("guild1")
	g.FailCreateRole = errors.New("missing permissions")
	h := testHandler(g, &staticFetcher{body: []byte(emptySheet)})

	h.Process(context.Background(), textSubmission("OC: Mito Uzumaki"))

	require.Empty(t, g.Messages("submissions"), "provisioning failures must not reach the user")
	require.Equal(t, uint64(1), h.config.Stats.Snapshot().Failures)
}

func TestPipelineEmbedSubmission(t *testing.T) {
	g := discordtest.NewFakeGuild("guild1")
	h := testHandler(g, &staticFetcher{body: []byte(emptySheet)})

	sub := textSubmission("form relay")
	sub.FromBot = true
	sub.WebhookID = "wh1"
	sub.Embeds = []*discordgo.MessageEmbed{{Title: "OC: Mito Uzumaki", Description: "sheet body"}}

	h.Process(context.Background(), sub)

	channels := g.ChannelsNamed("oc-mito-uzumaki")
	require.Len(t, channels, 1)
	require.Len(t, g.Embeds(channels[0].ID), 1)
}
