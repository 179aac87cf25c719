package webserver

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rp-haven/oc-registrar/src/bot/components/roster"
	"github.com/rp-haven/oc-registrar/src/bot/components/submission"
)

// StatusSource is the slice of the bot the ops surface reads. *bot.Bot
// satisfies it; tests plug in a fake.
type StatusSource interface {
	Username() string
	GuildID() string
	Started() time.Time
	Roster() *roster.Cache
	Stats() *submission.Stats
}

func New(source StatusSource, opsToken string) *gin.Engine {
	g := gin.New()
	g.Use(gin.Logger(), gin.Recovery())
	attachRoutes(g, source, opsToken)
	return g
}
