package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rp-haven/oc-registrar/src/bot/bot"
	"github.com/rp-haven/oc-registrar/src/bot/config"
	"github.com/rp-haven/oc-registrar/src/data"
	"github.com/rp-haven/oc-registrar/src/webserver"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	var rdb *redis.Client
	if cfg.RedisURL != "" {
		rdb = data.MustRedis(cfg.RedisURL)
	}

	b, err := bot.New(cfg, rdb)
	if err != nil {
		log.Fatalf("Failed to create bot: %v", err)
	}

	if err := b.Start(); err != nil {
		log.Fatalf("Failed to start bot: %v", err)
	}

	var opsServer *http.Server
	if cfg.OpsAddr != "" {
		opsServer = &http.Server{
			Addr:    cfg.OpsAddr,
			Handler: webserver.New(b, cfg.OpsToken),
		}
		go func() {
			log.Printf("Ops server listening on %s", cfg.OpsAddr)
			if err := opsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatalf("ops server: %v", err)
			}
		}()
	}

	log.Println("OC registrar is running. Press CTRL-C to exit.")

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs

	if opsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := opsServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("Ops server shutdown: %v", err)
		}
		cancel()
	}

	b.Stop()
	log.Println("OC registrar stopped")
}
