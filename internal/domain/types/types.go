// Package types contains the JSON shapes shared by the API and the CLI.
package types

import "github.com/okian/lookalike/internal/domain/model"

// PlayerView is the public projection of a player record.
type PlayerView struct {
	Name       string             `json:"name"`
	Age        int                `json:"age"`
	League     string             `json:"league"`
	Teams      string             `json:"teams,omitempty"`
	Positions  []string           `json:"positions"`
	Value      float64            `json:"value"`
	Wage       float64            `json:"wage"`
	Contract   string             `json:"contract,omitempty"`
	Overall    int                `json:"overall,omitempty"`
	Potential  int                `json:"potential,omitempty"`
	Traits     string             `json:"traits,omitempty"`
	PhotoURL   string             `json:"photo_url,omitempty"`
	Attributes map[string]float64 `json:"attributes,omitempty"`
}

// Match is one ranked similarity result
type Match struct {
	Rank     int        `json:"rank"`
	Player   PlayerView `json:"player"`
	Distance float64    `json:"distance"`
}

// SimilarResponse is the body returned for a similarity query.
type SimilarResponse struct {
	Target  PlayerView `json:"target"`
	Matches []Match    `json:"matches"`
}

// NewPlayerView projects p. Attributes are keyed by schema name when
// withAttributes is set.
func NewPlayerView(p model.Player, withAttributes bool) PlayerView {
	v := PlayerView{
		Name:      p.Name,
		Age:       p.Age,
		League:    p.League,
		Teams:     p.Teams,
		Positions: make([]string, len(p.Positions)),
		Value:     p.Value,
		Wage:      p.Wage,
		Contract:  p.Contract,
		Overall:   p.Overall,
		Potential: p.Potential,
		Traits:    p.Traits,
		PhotoURL:  p.PhotoURL,
	}
	for i, pos := range p.Positions {
		v.Positions[i] = pos.String()
	}
	if withAttributes && len(p.Attributes) == model.AttributeCount {
		v.Attributes = make(map[string]float64, model.AttributeCount)
		for i, name := range model.AttributeSchema {
			v.Attributes[name] = p.Attributes[i]
		}
	}
	return v
}

// NewMatches ranks players from 1 in the order given. distances may be
// shorter than players; missing entries are reported as zero.
func NewMatches(players []model.Player, distances []float64) []Match {
	out := make([]Match, len(players))
	for i, p := range players {
		out[i] = Match{Rank: i + 1, Player: NewPlayerView(p, false)}
		if i < len(distances) {
			out[i].Distance = distances[i]
		}
	}
	return out
}
