package statsprovider

import (
	"context"
	"strings"

	"github.com/riskibarqy/fantasy-hoops/internal/domain/gamelog"
)

const (
	PrimaryName        = "primary"
	primaryGameLogPath = "/stats/playergamelog"
	primaryResultSet   = "PlayerGameLog"
)

// PrimaryProvider reads stats-style tabular game logs:
//
//	{"resultSets":[{"name":"PlayerGameLog","headers":["GAME_DATE","PTS"],"rowSet":[["OCT 22, 2025",28]]}]}
type PrimaryProvider struct {
	client     *Client
	seasonType string
}

func NewPrimaryProvider(client *Client) *PrimaryProvider {
	return &PrimaryProvider{client: client, seasonType: "Regular Season"}
}

func (p *PrimaryProvider) Name() string {
	return PrimaryName
}

func (p *PrimaryProvider) FetchGameLog(ctx context.Context, playerID, season string) ([]gamelog.RawEntry, error) {
	raw, err := p.client.getJSON(ctx, primaryGameLogPath,
		queryParam{key: "PlayerID", value: playerID},
		queryParam{key: "Season", value: season},
		queryParam{key: "SeasonType", value: p.seasonType},
	)
	if err != nil {
		return nil, err
	}

	var payload primaryEnvelope
	if err := decode(raw, &payload); err != nil {
		return nil, err
	}
	return payload.entries(), nil
}

type primaryEnvelope struct {
	ResultSets []primaryResultSetPayload `json:"resultSets"`
}

type primaryResultSetPayload struct {
	Name    string   `json:"name"`
	Headers []string `json:"headers"`
	RowSet  [][]any  `json:"rowSet"`
}

func (e primaryEnvelope) entries() []gamelog.RawEntry {
	var set *primaryResultSetPayload
	for i := range e.ResultSets {
		if strings.EqualFold(e.ResultSets[i].Name, primaryResultSet) {
			set = &e.ResultSets[i]
			break
		}
	}
	if set == nil && len(e.ResultSets) > 0 {
		set = &e.ResultSets[0]
	}
	if set == nil {
		return []gamelog.RawEntry{}
	}

	dateIdx, ptsIdx := -1, -1
	for i, header := range set.Headers {
		switch strings.ToUpper(strings.TrimSpace(header)) {
		case "GAME_DATE":
			dateIdx = i
		case "PTS":
			ptsIdx = i
		}
	}

	out := make([]gamelog.RawEntry, 0, len(set.RowSet))
	for _, row := range set.RowSet {
		entry := gamelog.RawEntry{}
		if dateIdx >= 0 && dateIdx < len(row) {
			entry.Date = dateString(row[dateIdx])
		}
		if ptsIdx >= 0 && ptsIdx < len(row) {
			entry.Points = parsePoints(row[ptsIdx])
		}
		out = append(out, entry)
	}
	return out
}
