// Package games is the client for the external sports-schedule service. The
// chat core only ever asks it for upcoming games; schedule data is never
// stored locally.
package games

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

var ErrGameNotFound = errors.New("games: game not found")

// Game is one scheduled match as returned by the feed.
type Game struct {
	ID              string    `json:"id"`
	HomeTeam        string    `json:"home_team"`
	AwayTeam        string    `json:"away_team"`
	StartsAt        time.Time `json:"starts_at"`
	DurationMinutes int       `json:"duration_minutes"`
}

// Title is the display name used for a room derived from the game.
func (g Game) Title() string {
	return g.HomeTeam + " vs " + g.AwayTeam
}

// EstimatedEnd is the scheduled start plus the estimated duration.
func (g Game) EstimatedEnd() time.Time {
	return g.StartsAt.Add(time.Duration(g.DurationMinutes) * time.Minute)
}

// RoomID derives the fixed room id for this game.
func (g Game) RoomID() string {
	return "game-" + g.ID
}

type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// UpcomingGames fetches games for a team inside [now, now+window). An empty
// team returns the whole schedule window.
func (c *Client) UpcomingGames(ctx context.Context, team string, window time.Duration) ([]Game, error) {
	q := url.Values{}
	if team != "" {
		q.Set("team", team)
	}
	now := time.Now().UTC()
	q.Set("from", now.Format(time.RFC3339))
	q.Set("to", now.Add(window).Format(time.RFC3339))

	var out []Game
	if err := c.getJSON(ctx, "/games?"+q.Encode(), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GameByID fetches a single game.
func (c *Client) GameByID(ctx context.Context, id string) (*Game, error) {
	var out Game
	err := c.getJSON(ctx, "/games/"+url.PathEscape(id), &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return err
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrGameNotFound
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("games: schedule service returned %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
