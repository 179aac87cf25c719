package webserver

import (
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func attachRoutes(r *gin.Engine, source StatusSource, opsToken string) {
	r.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Authorization"},
	}))

	opsH := NewOps(source, opsToken)

	r.GET("/healthz", opsH.Health)

	v1 := r.Group("/v1")
	{
		v1.GET("/status", opsH.Status)
		v1.GET("/roster", opsH.Roster)
		v1.POST("/roster/refresh", opsH.RequireToken, opsH.RefreshRoster)
	}
}

type Ops struct {
	source StatusSource
	token  string
}

func NewOps(source StatusSource, token string) Ops {
	return Ops{source: source, token: token}
}

func (o Ops) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (o Ops) Status(c *gin.Context) {
	roster := o.source.Roster()
	c.JSON(http.StatusOK, gin.H{
		"bot":    o.source.Username(),
		"guild":  o.source.GuildID(),
		"uptime": time.Since(o.source.Started()).Round(time.Second).String(),
		"roster": gin.H{
			"size":       roster.Size(),
			"fetched_at": roster.FetchedAt(),
			"policy":     string(roster.Policy()),
		},
		"pipeline": o.source.Stats().Snapshot(),
	})
}

func (o Ops) Roster(c *gin.Context) {
	names := o.source.Roster().Names()
	c.JSON(http.StatusOK, gin.H{"count": len(names), "names": names})
}

// RequireToken gates mutating routes. With no token configured the route
// stays closed.
func (o Ops) RequireToken(c *gin.Context) {
	if o.token == "" {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "refresh disabled: OPS_TOKEN not configured"})
		return
	}
	header := c.GetHeader("Authorization")
	if subtle.ConstantTimeCompare([]byte(header), []byte("Bearer "+o.token)) != 1 {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	c.Next()
}

func (o Ops) RefreshRoster(c *gin.Context) {
	n, err := o.source.Roster().Refresh(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error(), "size": n})
		return
	}
	c.JSON(http.StatusOK, gin.H{"size": n})
}
