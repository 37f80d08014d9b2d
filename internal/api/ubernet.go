// Package api is the client for the UberNet leaderboard API, the upstream
// source of official league standings.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/valyala/fasthttp"

	"ladder-tracker/internal/config"
)

type UberNetClient struct {
	baseURL string
	apiKey  string
	client  *fasthttp.Client
}

func NewUberNetClient(cfg *config.Config) *UberNetClient {
	return &UberNetClient{
		baseURL: cfg.UberAPIURL,
		apiKey:  cfg.UberAPIKey,
		client: &fasthttp.Client{
			MaxConnsPerHost:     100,
			ReadTimeout:         10 * time.Second,
			WriteTimeout:        10 * time.Second,
			MaxIdleConnDuration: 1 * time.Minute,
		},
	}
}

// LeaderboardResponse is one league's standings as UberNet serves them,
// already ranked.
type LeaderboardResponse struct {
	League  string             `json:"league"`
	Entries []LeaderboardEntry `json:"entries"`
}

type LeaderboardEntry struct {
	Rank        int       `json:"rank"`
	UberID      int64     `json:"uber_id"`
	DisplayName string    `json:"display_name"`
	LastMatch   time.Time `json:"last_match"`
}

// Enabled reports whether an upstream URL is configured. Without one the
// refresher stays idle and the service serves whatever is already stored.
func (c *UberNetClient) Enabled() bool {
	return c.baseURL != ""
}

func (c *UberNetClient) GetLeaderboard(ctx context.Context, league string) (*LeaderboardResponse, error) {
	url := fmt.Sprintf("%s/GameClient/Leaderboard?League=%s", c.baseURL, league)
	return doRequest[LeaderboardResponse](ctx, c, url)
}

func doRequest[T any](ctx context.Context, client *UberNetClient, url string) (*T, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodGet)
	if client.apiKey != "" {
		req.Header.Set("X-Authorization", client.apiKey)
	}

	deadline, ok := ctx.Deadline()
	if ok {
		if err := client.client.DoDeadline(req, resp, deadline); err != nil {
			return nil, err
		}
	} else {
		if err := client.client.Do(req, resp); err != nil {
			return nil, err
		}
	}

	if resp.StatusCode() != fasthttp.StatusOK {
		return nil, fmt.Errorf("API error: %d", resp.StatusCode())
	}

	var result T
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return nil, err
	}
	return &result, nil
}
