package roster

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"log"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rp-haven/oc-registrar/src/webclient"
)

// FailPolicy decides what a failed refresh leaves installed.
type FailPolicy string

const (
	// FailPolicyEmpty installs an empty snapshot: the duplicate check passes
	// everyone until the sheet is reachable again.
	FailPolicyEmpty FailPolicy = "empty"
	// FailPolicyLastGood keeps the previous snapshot, recovering it from the
	// mirror when the process restarted in between.
	FailPolicyLastGood FailPolicy = "last-good"
)

// ParsePolicy maps a config string to a FailPolicy. Blank means empty.
func ParsePolicy(v string) (FailPolicy, error) {
	switch FailPolicy(strings.ToLower(strings.TrimSpace(v))) {
	case "", FailPolicyEmpty:
		return FailPolicyEmpty, nil
	case FailPolicyLastGood:
		return FailPolicyLastGood, nil
	default:
		return "", fmt.Errorf("unknown roster fail policy %q", v)
	}
}

// ExportURL builds the published CSV export URL for one sheet tab.
func ExportURL(sheetID, gid string) string {
	if gid == "" {
		gid = "0"
	}
	return fmt.Sprintf("https://docs.google.com/spreadsheets/d/%s/gviz/tq?tqx=out:csv&gid=%s", sheetID, gid)
}

// Fetcher retrieves the published roster document.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// HTTPFetcher fetches the export over plain HTTP. The sheet is published
// read-only, so no credentials are attached.
type HTTPFetcher struct {
	client *http.Client
}

func NewHTTPFetcher(timeout time.Duration) *HTTPFetcher {
	return &HTTPFetcher{client: webclient.NewDefault(timeout)}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	return webclient.FetchText(ctx, f.client, url)
}

// Mirror persists the last successfully parsed name set across restarts.
type Mirror interface {
	Store(ctx context.Context, names []string) error
	Load(ctx context.Context) ([]string, error)
}

type Config struct {
	URL     string
	Fetcher Fetcher
	Policy  FailPolicy
	Mirror  Mirror // optional
}

// Cache holds the current roster snapshot. The snapshot is replaced
// wholesale on every refresh; a failed refresh resolves per the configured
// policy and never propagates as fatal to the caller's pipeline.
type Cache struct {
	config Config

	mu        sync.RWMutex
	names     map[string]struct{}
	fetchedAt time.Time
}

func NewCache(config Config) *Cache {
	if config.Policy == "" {
		config.Policy = FailPolicyEmpty
	}
	return &Cache{
		config: config,
		names:  make(map[string]struct{}),
	}
}

// Refresh replaces the snapshot from the published document and reports its
// size. On failure the returned error describes the cause while the
// installed snapshot already reflects the fail policy, so callers may ignore
// the error and keep going.
func (c *Cache) Refresh(ctx context.Context) (int, error) {
	body, err := c.config.Fetcher.Fetch(ctx, c.config.URL)
	if err != nil {
		return c.failed(ctx, fmt.Errorf("fetch roster: %w", err))
	}

	names, err := parseNames(body)
	if err != nil {
		return c.failed(ctx, fmt.Errorf("parse roster: %w", err))
	}

	c.install(names, true)
	c.mirrorStore(ctx, names)
	return len(names), nil
}

// Contains reports whether the trimmed, lowercased name is on the roster.
func (c *Cache) Contains(name string) bool {
	key := strings.ToLower(strings.TrimSpace(name))
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.names[key]
	return ok
}

// Size returns the number of names in the current snapshot.
func (c *Cache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.names)
}

// Names returns the current snapshot sorted, for the ops surface.
func (c *Cache) Names() []string {
	c.mu.RLock()
	out := make([]string, 0, len(c.names))
	for name := range c.names {
		out = append(out, name)
	}
	c.mu.RUnlock()
	sort.Strings(out)
	return out
}

// FetchedAt returns the time of the last successful refresh, zero if none.
func (c *Cache) FetchedAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.fetchedAt
}

func (c *Cache) Policy() FailPolicy {
	return c.config.Policy
}

func (c *Cache) install(names map[string]struct{}, fresh bool) {
	c.mu.Lock()
	c.names = names
	if fresh {
		c.fetchedAt = time.Now()
	}
	c.mu.Unlock()
}

// failed resolves a refresh failure per policy and reports the resulting
// snapshot size alongside the cause.
func (c *Cache) failed(ctx context.Context, cause error) (int, error) {
	if c.config.Policy == FailPolicyLastGood {
		if size := c.Size(); size > 0 {
			log.Printf("roster: refresh failed, keeping last-good snapshot of %d names: %v", size, cause)
			return size, cause
		}
		if names := c.mirrorLoad(ctx); len(names) > 0 {
			c.install(names, false)
			log.Printf("roster: refresh failed, recovered %d names from mirror: %v", len(names), cause)
			return len(names), cause
		}
	}

	log.Printf("roster: refresh failed, treating roster as empty: %v", cause)
	c.install(make(map[string]struct{}), false)
	return 0, cause
}

func (c *Cache) mirrorStore(ctx context.Context, names map[string]struct{}) {
	if c.config.Mirror == nil {
		return
	}
	flat := make([]string, 0, len(names))
	for name := range names {
		flat = append(flat, name)
	}
	if err := c.config.Mirror.Store(ctx, flat); err != nil {
		log.Printf("roster: mirror store failed: %v", err)
	}
}

func (c *Cache) mirrorLoad(ctx context.Context) map[string]struct{} {
	if c.config.Mirror == nil {
		return nil
	}
	flat, err := c.config.Mirror.Load(ctx)
	if err != nil {
		log.Printf("roster: mirror load failed: %v", err)
		return nil
	}
	names := make(map[string]struct{}, len(flat))
	for _, name := range flat {
		if name = strings.TrimSpace(name); name != "" {
			names[strings.ToLower(name)] = struct{}{}
		}
	}
	return names
}

// parseNames extracts the name column from the CSV export: row 0 is the
// header, column 1 is the full name, blanks are skipped, everything is
// lowercased on insert.
func parseNames(body []byte) (map[string]struct{}, error) {
	reader := csv.NewReader(bytes.NewReader(body))
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}

	names := make(map[string]struct{})
	for i, row := range rows {
		if i == 0 || len(row) < 2 {
			continue
		}
		name := strings.TrimSpace(row[1])
		if name == "" {
			continue
		}
		names[strings.ToLower(name)] = struct{}{}
	}
	return names, nil
}
