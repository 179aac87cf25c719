// Fetches the published roster export and prints what the registrar would
// see, then round-trips the Redis mirror when REDIS_URL is set.
package main

import (
	"context"
	"log"
	"os"

	"github.com/rp-haven/oc-registrar/src/bot/components/roster"
	"github.com/rp-haven/oc-registrar/src/data"
)

func main() {
	sheetID := os.Getenv("SHEET_ID")
	if sheetID == "" {
		log.Fatal("SHEET_ID not set")
	}

	url := roster.ExportURL(sheetID, os.Getenv("SHEET_GID"))
	log.Printf("Fetching %s", url)

	cache := roster.NewCache(roster.Config{
		URL:     url,
		Fetcher: roster.NewHTTPFetcher(0),
	})

	ctx := context.Background()
	n, err := cache.Refresh(ctx)
	if err != nil {
		log.Fatalf("refresh: %v", err)
	}

	log.Printf("Roster: %d names", n)
	for i, name := range cache.Names() {
		if i == 10 {
			log.Printf("  ... and %d more", n-10)
			break
		}
		log.Printf("  %s", name)
	}

	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		log.Println("REDIS_URL not set, skipping mirror check")
		return
	}

	rdb := data.MustRedis(redisURL)
	defer rdb.Close()

	mirror := data.NewRosterMirror(rdb)
	if err := mirror.Store(ctx, cache.Names()); err != nil {
		log.Fatalf("mirror store: %v", err)
	}
	back, err := mirror.Load(ctx)
	if err != nil {
		log.Fatalf("mirror load: %v", err)
	}
	log.Printf("Mirror round-trip: %d names", len(back))
}
