// Minimal end-to-end smoke test for the registrar ops API.
package main

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
)

var (
	baseURL  = getenv("OPS_URL", "http://localhost:8090")
	opsToken = os.Getenv("OPS_TOKEN")
)

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func main() {
	checkHealth()
	status := checkStatus()
	checkRoster(status.Roster.Size)
	if opsToken != "" {
		refresh()
	} else {
		log.Println("OPS_TOKEN not set, skipping refresh")
	}

	fmt.Println("✓ all endpoints passed")
}

// ----------------------------- endpoints

func checkHealth() {
	var resp struct {
		Status string `json:"status"`
	}
	doJSON("GET", "/healthz", "", &resp, http.StatusOK)
	if resp.Status != "ok" {
		log.Fatalf("healthz: status %q", resp.Status)
	}
}

type statusResponse struct {
	Bot    string `json:"bot"`
	Guild  string `json:"guild"`
	Uptime string `json:"uptime"`
	Roster struct {
		Size   int    `json:"size"`
		Policy string `json:"policy"`
	} `json:"roster"`
}

func checkStatus() statusResponse {
	var resp statusResponse
	doJSON("GET", "/v1/status", "", &resp, http.StatusOK)
	if resp.Guild == "" {
		log.Fatal("status: empty guild")
	}
	log.Printf("Status: bot=%s guild=%s uptime=%s roster=%d policy=%s",
		resp.Bot, resp.Guild, resp.Uptime, resp.Roster.Size, resp.Roster.Policy)
	return resp
}

func checkRoster(wantSize int) {
	var resp struct {
		Count int      `json:"count"`
		Names []string `json:"names"`
	}
	doJSON("GET", "/v1/roster", "", &resp, http.StatusOK)
	if resp.Count != wantSize {
		log.Fatalf("roster: count %d does not match status size %d", resp.Count, wantSize)
	}
}

func refresh() {
	var resp struct {
		Size int `json:"size"`
	}
	doJSON("POST", "/v1/roster/refresh", opsToken, &resp, http.StatusOK)
	log.Printf("Refresh: %d names", resp.Size)
}

// ----------------------------- helpers

func doJSON(method, path, token string, out any, want int) {
	req, _ := http.NewRequest(method, baseURL+path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		log.Fatalf("%s %s: %v", method, path, err)
	}
	defer res.Body.Close()
	if res.StatusCode != want {
		log.Fatalf("%s %s: want %d got %d", method, path, want, res.StatusCode)
	}
	if out != nil {
		if err := json.NewDecoder(res.Body).Decode(out); err != nil {
			log.Fatalf("%s %s decode: %v", method, path, err)
		}
	}
}
