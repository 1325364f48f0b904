package statsprovider

import (
	"context"
	"net/url"

	"github.com/riskibarqy/fantasy-hoops/internal/domain/gamelog"
)

const FallbackName = "fallback"

// FallbackProvider reads REST style rows:
//
//	{"data":[{"date":"2025-10-22","pts":28}]}
//
// Some rows carry game_date and points instead; both spellings are accepted.
type FallbackProvider struct {
	client *Client
}

func NewFallbackProvider(client *Client) *FallbackProvider {
	return &FallbackProvider{client: client}
}

func (p *FallbackProvider) Name() string {
	return FallbackName
}

func (p *FallbackProvider) FetchGameLog(ctx context.Context, playerID, season string) ([]gamelog.RawEntry, error) {
	raw, err := p.client.getJSON(ctx, "/v1/players/"+url.PathEscape(playerID)+"/games",
		queryParam{key: "season", value: season},
	)
	if err != nil {
		return nil, err
	}

	var payload fallbackEnvelope
	if err := decode(raw, &payload); err != nil {
		return nil, err
	}

	out := make([]gamelog.RawEntry, 0, len(payload.Data))
	for _, row := range payload.Data {
		out = append(out, gamelog.RawEntry{
			Date:   dateString(firstPresent(row, "date", "game_date")),
			Points: parsePoints(firstPresent(row, "pts", "points")),
		})
	}
	return out, nil
}

type fallbackEnvelope struct {
	Data []map[string]any `json:"data"`
}

func firstPresent(row map[string]any, keys ...string) any {
	for _, key := range keys {
		if value, ok := row[key]; ok && value != nil {
			return value
		}
	}
	return nil
}
