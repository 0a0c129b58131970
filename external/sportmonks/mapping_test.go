package sportmonks

import (
	"errors"
	"testing"
)

func scoreEntry(participant, description string, goals float64) map[string]any {
	return map[string]any{
		"description": description,
		"score": map[string]any{
			"participant": participant,
			"goals":       goals,
		},
	}
}

func TestMapFixture_ScorePrecedence(t *testing.T) {
	raw := Raw{
		"id":          float64(101),
		"league_id":   float64(8),
		"season_id":   float64(20),
		"starting_at": "2024-03-02 15:00:00",
		"scores": []any{
			scoreEntry("home", "1ST_HALF", 1),
			scoreEntry("away", "1ST_HALF", 0),
			scoreEntry("home", "CURRENT", 2),
			scoreEntry("away", "CURRENT", 0),
		},
		"participants": []any{
			map[string]any{"id": float64(10), "meta": map[string]any{"location": "home"}},
			map[string]any{"id": float64(20), "meta": map[string]any{"location": "away"}},
		},
	}

	f, participants, err := MapFixture(raw)
	if err != nil {
		t.Fatalf("map fixture: %v", err)
	}
	if f.HomeScore == nil || *f.HomeScore != 2 {
		t.Fatalf("expected home score 2 from CURRENT entry, got %v", f.HomeScore)
	}
	if f.AwayScore == nil || *f.AwayScore != 0 {
		t.Fatalf("expected away score 0 from CURRENT entry, got %v", f.AwayScore)
	}
	if len(participants) != 2 {
		t.Fatalf("expected 2 participants, got %d", len(participants))
	}
	if f.HomeTeamID == nil || *f.HomeTeamID != 10 {
		t.Fatalf("unexpected home team id: %v", f.HomeTeamID)
	}
	if participants[0].Score == nil || *participants[0].Score != 2 {
		t.Fatalf("expected home participant score 2, got %v", participants[0].Score)
	}
}

func TestMapFixture_FirstSeenFallbackKeepsZero(t *testing.T) {
	// No CURRENT marker: the first-seen entries win, even when both
	// are zero and even though they may describe a mid-match state.
	// That ambiguity is inherited from the provider and kept as is.
	raw := Raw{
		"id": float64(102),
		"scores": []any{
			scoreEntry("home", "1ST_HALF", 0),
			scoreEntry("away", "1ST_HALF", 0),
			scoreEntry("home", "2ND_HALF", 3),
		},
	}

	f, _, err := MapFixture(raw)
	if err != nil {
		t.Fatalf("map fixture: %v", err)
	}
	if f.HomeScore == nil || *f.HomeScore != 0 {
		t.Fatalf("expected first-seen home score 0, got %v", f.HomeScore)
	}
	if f.AwayScore == nil || *f.AwayScore != 0 {
		t.Fatalf("expected first-seen away score 0, got %v", f.AwayScore)
	}
	if !f.Scored() {
		t.Fatalf("zero scores must still count as scored")
	}
}

func TestMapFixture_LegacyScoresObject(t *testing.T) {
	raw := Raw{
		"id": float64(103),
		"scores": map[string]any{
			"localteam_score":   float64(1),
			"visitorteam_score": float64(2),
		},
	}

	f, _, err := MapFixture(raw)
	if err != nil {
		t.Fatalf("map fixture: %v", err)
	}
	if f.HomeScore == nil || *f.HomeScore != 1 || f.AwayScore == nil || *f.AwayScore != 2 {
		t.Fatalf("unexpected legacy scores: %v / %v", f.HomeScore, f.AwayScore)
	}
}

func TestMapFixture_MissingID(t *testing.T) {
	_, _, err := MapFixture(Raw{"name": "no id"})
	if err == nil {
		t.Fatal("expected mapping error for fixture without id")
	}
	var mapErr *MappingError
	if !errors.As(err, &mapErr) || mapErr.Kind != "fixture" {
		t.Fatalf("expected fixture mapping error, got %v", err)
	}
}

func TestExtractStatValue_Shapes(t *testing.T) {
	cases := []struct {
		name  string
		input any
		want  *float64
	}{
		{"value object", map[string]any{"value": float64(7)}, floatPtr(7)},
		{"bare number", float64(3), floatPtr(3)},
		{"numeric string", "4", floatPtr(4)},
		{"generic object first numeric", map[string]any{"b_num": float64(5), "a_text": "x"}, floatPtr(5)},
		{"value key beats others", map[string]any{"total": float64(9), "value": float64(2)}, floatPtr(2)},
		{"nothing numeric", map[string]any{"label": "n/a"}, nil},
		{"nil", nil, nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ExtractStatValue(tc.input)
			if (got == nil) != (tc.want == nil) {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
			if got != nil && *got != *tc.want {
				t.Fatalf("got %v, want %v", *got, *tc.want)
			}
		})
	}
}

func TestMapLineups_MinutesAndStarts(t *testing.T) {
	raw := Raw{
		"id": float64(200),
		"lineups": []any{
			map[string]any{
				"player_id": float64(1),
				"team_id":   float64(10),
				"type_id":   float64(11),
				"details": []any{
					map[string]any{"type_id": float64(119), "data": map[string]any{"value": float64(90)}},
					map[string]any{"type_id": float64(42), "data": map[string]any{"value": float64(3)}},
				},
			},
			map[string]any{
				"player_id": float64(2),
				"team_id":   float64(10),
				"type_id":   float64(12),
			},
		},
	}

	appearances, stats, err := MapLineups(raw)
	if err != nil {
		t.Fatalf("map lineups: %v", err)
	}
	if len(appearances) != 2 {
		t.Fatalf("expected 2 appearances, got %d", len(appearances))
	}
	if !appearances[0].Started || appearances[1].Started {
		t.Fatalf("unexpected started flags: %+v", appearances)
	}
	if appearances[0].Minutes == nil || *appearances[0].Minutes != 90 {
		t.Fatalf("expected 90 minutes, got %v", appearances[0].Minutes)
	}
	if len(stats) != 2 {
		t.Fatalf("expected 2 stat rows, got %d", len(stats))
	}
	if stats[1].TypeID != 42 || stats[1].Value == nil || *stats[1].Value != 3 {
		t.Fatalf("unexpected stat row: %+v", stats[1])
	}
}

func TestMapOddsOutcome_HashStability(t *testing.T) {
	base := Raw{
		"id":           float64(9001),
		"fixture_id":   float64(101),
		"bookmaker_id": float64(2),
		"market_id":    float64(1),
		"label":        "Home",
		"value":        "1.95",
	}

	first, err := MapOddsOutcome(base)
	if err != nil {
		t.Fatalf("map outcome: %v", err)
	}
	second, err := MapOddsOutcome(base)
	if err != nil {
		t.Fatalf("map outcome again: %v", err)
	}
	if first.RawHash != second.RawHash {
		t.Fatalf("identical payloads must hash identically")
	}

	changed := Raw{}
	for k, v := range base {
		changed[k] = v
	}
	changed["value"] = "2.10"
	third, err := MapOddsOutcome(changed)
	if err != nil {
		t.Fatalf("map changed outcome: %v", err)
	}
	if third.RawHash == first.RawHash {
		t.Fatalf("price change must change the hash")
	}
	if third.Price == nil || *third.Price != 2.10 {
		t.Fatalf("unexpected price: %v", third.Price)
	}
}

func TestMapPlayerProp(t *testing.T) {
	prop, err := MapPlayerProp(Raw{
		"fixture_id": float64(101),
		"market_id":  float64(268),
		"name":       "J. Alvarez",
		"label":      "Over",
		"total":      "1.5",
		"dp3":        "2.250",
	})
	if err != nil {
		t.Fatalf("map player prop: %v", err)
	}
	if prop.PlayerName != "J. Alvarez" || prop.Line != 1.5 || prop.Selection != "Over" {
		t.Fatalf("unexpected prop: %+v", prop)
	}
	if prop.Price == nil || *prop.Price != 2.25 {
		t.Fatalf("unexpected price: %v", prop.Price)
	}

	if _, err := MapPlayerProp(Raw{"fixture_id": float64(1), "market_id": float64(268)}); err == nil {
		t.Fatal("expected error for prop without player name")
	}
}

func floatPtr(v float64) *float64 { return &v }
