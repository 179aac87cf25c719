package bot

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/redis/go-redis/v9"
	"github.com/rp-haven/oc-registrar/src/bot/components/extractor"
	"github.com/rp-haven/oc-registrar/src/bot/components/provision"
	"github.com/rp-haven/oc-registrar/src/bot/components/roster"
	"github.com/rp-haven/oc-registrar/src/bot/components/submission"
	"github.com/rp-haven/oc-registrar/src/bot/config"
	"github.com/rp-haven/oc-registrar/src/data"
	"github.com/rp-haven/oc-registrar/src/discord"
)

type Bot struct {
	session *discordgo.Session
	rdb     *redis.Client
	config  config.Config

	roster   *roster.Cache
	engine   *provision.Engine
	handler  *submission.Handler
	cooldown *submission.Cooldown
	stats    *submission.Stats

	started time.Time
	ctx     context.Context
	cancel  context.CancelFunc
}

func New(cfg config.Config, rdb *redis.Client) (*Bot, error) {
	dg, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())

	bot := &Bot{
		session: dg,
		rdb:     rdb,
		config:  cfg,
		started: time.Now(),
		ctx:     ctx,
		cancel:  cancel,
	}

	if err := bot.initializeComponents(); err != nil {
		cancel()
		return nil, err
	}

	bot.registerHandlers()

	dg.Identify.Intents = discordgo.IntentsGuildMessages |
		discordgo.IntentsMessageContent |
		discordgo.IntentsGuilds

	return bot, nil
}

func (b *Bot) initializeComponents() error {
	policy, err := roster.ParsePolicy(b.config.RosterFailPolicy)
	if err != nil {
		return fmt.Errorf("roster policy: %w", err)
	}

	var mirror roster.Mirror
	if b.rdb != nil {
		mirror = data.NewRosterMirror(b.rdb)
	}

	b.roster = roster.NewCache(roster.Config{
		URL:     b.config.RosterURL(),
		Fetcher: roster.NewHTTPFetcher(0),
		Policy:  policy,
		Mirror:  mirror,
	})

	registry := discord.NewSessionRegistry(b.session)

	b.engine = provision.NewEngine(provision.Config{
		GuildID:          b.config.GuildID,
		CategoryID:       b.config.CategoryID,
		ModeratorRoleID:  b.config.ModeratorRoleID,
		GameMasterRoleID: b.config.GameMasterRoleID,
		LogChannelID:     b.config.LogChannelID,
		Registry:         registry,
	})

	b.cooldown = submission.NewCooldown(b.config.CooldownWindow())
	b.stats = &submission.Stats{}

	b.handler = submission.NewHandler(submission.Config{
		GuildID:        b.config.GuildID,
		ChannelID:      b.config.SubmissionsChannel,
		RelayWebhookID: b.config.RelayWebhookID,
		Registry:       registry,
		Roster:         b.roster,
		Extractor:      extractor.New(),
		Engine:         b.engine,
		Cooldown:       b.cooldown,
		Stats:          b.stats,
	})

	return nil
}

func (b *Bot) registerHandlers() {
	b.session.AddHandler(b.handleReady)
	b.session.AddHandler(b.handler.HandleMessage)
}

func (b *Bot) handleReady(s *discordgo.Session, event *discordgo.Ready) {
	log.Printf("Discord bot logged in as %s", event.User.Username)

	n, err := b.roster.Refresh(b.ctx)
	if err != nil {
		log.Printf("Initial roster refresh failed: %v", err)
		return
	}
	log.Printf("Roster loaded: %d registered names", n)
}

func (b *Bot) Start() error {
	b.cooldown.StartSweeper(b.ctx, time.Minute)
	return b.session.Open()
}

func (b *Bot) Stop() {
	b.cancel()
	b.session.Close()
}

// Accessors for the ops webserver.

func (b *Bot) Roster() *roster.Cache {
	return b.roster
}

func (b *Bot) Stats() *submission.Stats {
	return b.stats
}

func (b *Bot) GuildID() string {
	return b.config.GuildID
}

func (b *Bot) Started() time.Time {
	return b.started
}

func (b *Bot) Username() string {
	if b.session.State != nil && b.session.State.User != nil {
		return b.session.State.User.Username
	}
	return ""
}
