package webserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rp-haven/oc-registrar/src/bot/components/roster"
	"github.com/rp-haven/oc-registrar/src/bot/components/submission"
	"github.com/stretchr/testify/require"
)

type stubFetcher struct {
	body []byte
	err  error
}

func (f *stubFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.body, nil
}

type fakeSource struct {
	cache   *roster.Cache
	stats   *submission.Stats
	started time.Time
}

func (f *fakeSource) Username() string         { return "oc-registrar" }
func (f *fakeSource) GuildID() string          { return "guild1" }
func (f *fakeSource) Started() time.Time       { return f.started }
func (f *fakeSource) Roster() *roster.Cache    { return f.cache }
func (f *fakeSource) Stats() *submission.Stats { return f.stats }

func testServer(fetcher roster.Fetcher, token string) (*gin.Engine, *fakeSource) {
	gin.SetMode(gin.TestMode)
	source := &fakeSource{
		cache:   roster.NewCache(roster.Config{URL: "http://sheet", Fetcher: fetcher}),
		stats:   &submission.Stats{},
		started: time.Now().Add(-time.Minute),
	}
	return New(source, token), source
}

func doRequest(r *gin.Engine, method, path string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHealthz(t *testing.T) {
	r, _ := testServer(&stubFetcher{}, "")

	w := doRequest(r, http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestStatus(t *testing.T) {
	fetcher := &stubFetcher{body: []byte("\"id\",\"name\"\n\"1\",\"Mito Uzumaki\"\n")}
	r, source := testServer(fetcher, "")

	_, err := source.cache.Refresh(context.Background())
	require.NoError(t, err)
	source.stats.Provisioned.Add(3)

	w := doRequest(r, http.MethodGet, "/v1/status", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Bot    string `json:"bot"`
		Guild  string `json:"guild"`
		Roster struct {
			Size   int    `json:"size"`
			Policy string `json:"policy"`
		} `json:"roster"`
		Pipeline submission.StatsSnapshot `json:"pipeline"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, "oc-registrar", body.Bot)
	require.Equal(t, "guild1", body.Guild)
	require.Equal(t, 1, body.Roster.Size)
	require.Equal(t, "empty", body.Roster.Policy)
	require.Equal(t, uint64(3), body.Pipeline.Provisioned)
}

func TestRosterNames(t *testing.T) {
	fetcher := &stubFetcher{body: []byte("\"id\",\"name\"\n\"1\",\"Mito Uzumaki\"\n\"2\",\"Gaara Sand\"\n")}
	r, source := testServer(fetcher, "")

	_, err := source.cache.Refresh(context.Background())
	require.NoError(t, err)

	w := doRequest(r, http.MethodGet, "/v1/roster", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Count int      `json:"count"`
		Names []string `json:"names"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, 2, body.Count)
	require.Equal(t, []string{"gaara sand", "mito uzumaki"}, body.Names)
}

func TestRefreshClosedWithoutToken(t *testing.T) {
	r, _ := testServer(&stubFetcher{}, "")

	w := doRequest(r, http.MethodPost, "/v1/roster/refresh", nil)
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestRefreshRejectsBadToken(t *testing.T) {
	r, _ := testServer(&stubFetcher{}, "secret")

	w := doRequest(r, http.MethodPost, "/v1/roster/refresh", map[string]string{
		"Authorization": "Bearer wrong",
	})
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRefreshWithToken(t *testing.T) {
	fetcher := &stubFetcher{body: []byte("\"id\",\"name\"\n\"1\",\"Mito Uzumaki\"\n")}
	r, source := testServer(fetcher, "secret")

	w := doRequest(r, http.MethodPost, "/v1/roster/refresh", map[string]string{
		"Authorization": "Bearer secret",
	})
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, 1, source.cache.Size())
	require.JSONEq(t, `{"size":1}`, w.Body.String())
}

func TestRefreshReportsFetchFailure(t *testing.T) {
	r, _ := testServer(&stubFetcher{err: errors.New("connection refused")}, "secret")

	w := doRequest(r, http.MethodPost, "/v1/roster/refresh", map[string]string{
		"Authorization": "Bearer secret",
	})
	require.Equal(t, http.StatusBadGateway, w.Code)
}
