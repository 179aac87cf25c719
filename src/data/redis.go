package data

import (
	"context"
	"log"

	"github.com/redis/go-redis/v9"
)

const rosterKey = "ocregistrar:roster:lastgood"

func MustRedis(url string) *redis.Client {
	opt, err := redis.ParseURL(url)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}
	return redis.NewClient(opt)
}

// RosterMirror persists the last successfully fetched roster so a restart
// under the last-good policy does not start from an empty snapshot.
type RosterMirror struct {
	rdb *redis.Client
}

func NewRosterMirror(rdb *redis.Client) *RosterMirror {
	return &RosterMirror{rdb: rdb}
}

// Store replaces the mirrored name set wholesale.
func (m *RosterMirror) Store(ctx context.Context, names []string) error {
	pipe := m.rdb.TxPipeline()
	pipe.Del(ctx, rosterKey)
	if len(names) > 0 {
		members := make([]interface{}, len(names))
		for i, name := range names {
			members[i] = name
		}
		pipe.SAdd(ctx, rosterKey, members...)
	}
	_, err := pipe.Exec(ctx)
	return err
}

// Load returns the mirrored name set, empty when nothing was stored yet.
func (m *RosterMirror) Load(ctx context.Context) ([]string, error) {
	return m.rdb.SMembers(ctx, rosterKey).Result()
}
