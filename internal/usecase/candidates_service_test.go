package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bytedance/sonic"

	"github.com/matchpulse/sportsync/internal/domain/fixture"
	"github.com/matchpulse/sportsync/internal/domain/form"
	"github.com/matchpulse/sportsync/internal/domain/odds"
	"github.com/matchpulse/sportsync/internal/domain/statline"
	"github.com/matchpulse/sportsync/internal/platform/logging"
)

type stubWindowFixtureRepo struct {
	fixture.Repository
	between []fixture.Fixture
}

func (r *stubWindowFixtureRepo) ListBetween(_ context.Context, _, _ time.Time) ([]fixture.Fixture, error) {
	return r.between, nil
}

func shotLine(fixtureID int64, shotsFor, shotsAgainst float64) statline.TeamLine {
	at := time.Date(2025, time.August, int(fixtureID%28)+1, 15, 0, 0, 0, time.UTC)
	return statline.TeamLine{
		FixtureID:    fixtureID,
		StartingAt:   &at,
		Location:     fixture.LocationHome,
		GoalsFor:     1,
		GoalsAgainst: 1,
		ShotsFor:     floatPtr(shotsFor),
		ShotsAgainst: floatPtr(shotsAgainst),
	}
}

func oneShotSequence(shots []float64) string {
	samples := make([]form.FixtureSample, 0, len(shots))
	for i, v := range shots {
		v := v
		samples = append(samples, form.FixtureSample{
			FixtureID: int64(i + 1),
			Values:    map[string]*float64{"shots": &v},
		})
	}
	raw, err := sonic.ConfigStd.Marshal(samples)
	if err != nil {
		panic(err)
	}
	return string(raw)
}

func newTestCandidatesService(fixtures *stubWindowFixtureRepo, stats *stubStatlineRepo, oddsRepo *stubOddsRepo, forms *stubFormRepo) *CandidatesService {
	return NewCandidatesService(fixtures, stats, oddsRepo, forms, logging.NewNop(), CandidatesConfig{
		SampleSizes:   []int{5, 10},
		MinSamples:    3,
		MinPct:        0.7,
		BookmakerID:   2,
		LookbackDays:  2,
		LookaheadDays: 14,
	})
}

func TestTeamShotCandidates_JoinsFormAgainstOdds(t *testing.T) {
	kickoff := time.Now().UTC().AddDate(0, 0, 3)
	home, away := int64(100), int64(200)
	fixtures := &stubWindowFixtureRepo{between: []fixture.Fixture{
		{ID: 9, StartingAt: &kickoff, HomeTeamID: &home, AwayTeamID: &away},
	}}

	stats := &stubStatlineRepo{teamLines: map[int64][]statline.TeamLine{
		100: {
			shotLine(15, 14, 10),
			shotLine(14, 13, 11),
			shotLine(13, 12, 12),
			shotLine(12, 5, 5),
			shotLine(11, 13, 10),
		},
		200: {
			shotLine(15, 8, 14),
			shotLine(14, 9, 23),
			shotLine(13, 7, 24),
			shotLine(12, 8, 23),
			shotLine(11, 9, 25),
		},
	}}

	line45, line225 := 4.5, 22.5
	oddsRepo := &stubOddsRepo{byMarket: map[string][]odds.Latest{
		marketKeyTeamShots: {
			{FixtureID: 9, BookmakerID: 2, MarketID: 285, MarketKey: marketKeyTeamShots, Selection: "home", Line: &line45, Price: 1.8},
		},
		marketKeyMatchShots: {
			{FixtureID: 9, BookmakerID: 2, MarketID: 292, MarketKey: marketKeyMatchShots, Selection: "Over", Line: &line225, Price: 2.0},
		},
	}}

	service := newTestCandidatesService(fixtures, stats, oddsRepo, &stubFormRepo{})
	rows, err := service.TeamShotCandidates(context.Background())
	if err != nil {
		t.Fatalf("TeamShotCandidates: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2: %+v", len(rows), rows)
	}

	// Equal weakest-side pct, so the higher price sorts first.
	if rows[0].Market != marketKeyMatchShots {
		t.Fatalf("first market = %q, want match_shots", rows[0].Market)
	}
	if !almostEqual(rows[0].Line, 22.5) {
		t.Fatalf("match line = %v, want 22.5", rows[0].Line)
	}

	teamRow := rows[1]
	if teamRow.Market != marketKeyTeamShots || teamRow.Side != fixture.LocationHome {
		t.Fatalf("second row = %+v, want home team shots", teamRow)
	}
	if teamRow.TeamID != 100 || teamRow.OpponentID != 200 {
		t.Fatalf("pair = (%d, %d), want (100, 200)", teamRow.TeamID, teamRow.OpponentID)
	}
	if !almostEqual(teamRow.TeamPct, 0.8) {
		t.Fatalf("team pct = %v, want 0.8", teamRow.TeamPct)
	}
	if !almostEqual(teamRow.OpponentPct, 1.0) {
		t.Fatalf("opponent concede pct = %v, want 1.0", teamRow.OpponentPct)
	}
	if teamRow.Price == nil || !almostEqual(*teamRow.Price, 1.8) {
		t.Fatalf("price = %v, want 1.8", teamRow.Price)
	}
}

func TestTeamShotCandidates_BelowThresholdFiltered(t *testing.T) {
	kickoff := time.Now().UTC().AddDate(0, 0, 3)
	home, away := int64(100), int64(200)
	fixtures := &stubWindowFixtureRepo{between: []fixture.Fixture{
		{ID: 9, StartingAt: &kickoff, HomeTeamID: &home, AwayTeamID: &away},
	}}

	// Home side attacks well but the opponent rarely concedes, so the
	// weak side fails the threshold.
	stats := &stubStatlineRepo{teamLines: map[int64][]statline.TeamLine{
		100: {shotLine(15, 14, 9), shotLine(14, 13, 9), shotLine(13, 12, 9)},
		200: {shotLine(15, 8, 2), shotLine(14, 9, 3), shotLine(13, 7, 2)},
	}}
	line45 := 4.5
	oddsRepo := &stubOddsRepo{byMarket: map[string][]odds.Latest{
		marketKeyTeamShots: {
			{FixtureID: 9, BookmakerID: 2, MarketID: 285, MarketKey: marketKeyTeamShots, Selection: "home", Line: &line45, Price: 1.8},
		},
	}}

	service := newTestCandidatesService(fixtures, stats, oddsRepo, &stubFormRepo{})
	rows, err := service.TeamShotCandidates(context.Background())
	if err != nil {
		t.Fatalf("TeamShotCandidates: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("got %d rows, want none: %+v", len(rows), rows)
	}
}

func TestPlayerOneShotCandidates_FloorsOverStoredSequences(t *testing.T) {
	always := make([]float64, 20)
	for i := range always {
		always[i] = 1
	}
	never := make([]float64, 20)

	forms := &stubFormRepo{listByPlayer: map[int][]form.PlayerForm{
		20: {
			{PlayerID: 7, SampleSize: 20, RawFixtures: oneShotSequence(always)},
			{PlayerID: 8, SampleSize: 20, RawFixtures: oneShotSequence(never)},
		},
	}}
	service := newTestCandidatesService(&stubWindowFixtureRepo{}, &stubStatlineRepo{}, &stubOddsRepo{}, forms)

	rows, err := service.PlayerOneShotCandidates(context.Background(), 20)
	if err != nil {
		t.Fatalf("PlayerOneShotCandidates: %v", err)
	}
	// Player 7 clears every floor (9/11, 12/14, 13/15, 16/20).
	if len(rows) != 4 {
		t.Fatalf("got %d rows, want 4: %+v", len(rows), rows)
	}
	wantSizes := []int{11, 14, 15, 20}
	for i, row := range rows {
		if row.PlayerID != 7 {
			t.Fatalf("row %d player = %d, want 7", i, row.PlayerID)
		}
		if row.SampleSize != wantSizes[i] {
			t.Fatalf("row %d sample = %d, want %d", i, row.SampleSize, wantSizes[i])
		}
		if row.Hits != row.SampleSize {
			t.Fatalf("row %d hits = %d, want %d", i, row.Hits, row.SampleSize)
		}
	}
}

func TestPlayerOneShotCandidates_BoundaryExactlyAtFloor(t *testing.T) {
	// 16 hits in 20 games sits exactly on the 16/20 floor; 15 would
	// miss it.
	atFloor := make([]float64, 20)
	for i := 0; i < 16; i++ {
		atFloor[i] = 1
	}
	forms := &stubFormRepo{listByPlayer: map[int][]form.PlayerForm{
		20: {{PlayerID: 7, SampleSize: 20, RawFixtures: oneShotSequence(atFloor)}},
	}}
	service := newTestCandidatesService(&stubWindowFixtureRepo{}, &stubStatlineRepo{}, &stubOddsRepo{}, forms)

	rows, err := service.PlayerOneShotCandidates(context.Background(), 20)
	if err != nil {
		t.Fatalf("PlayerOneShotCandidates: %v", err)
	}
	found := false
	for _, row := range rows {
		if row.SampleSize == 20 {
			found = true
			if row.Hits != 16 {
				t.Fatalf("hits = %d, want 16", row.Hits)
			}
		}
	}
	if !found {
		t.Fatalf("16/20 boundary should qualify: %+v", rows)
	}
}

func TestPlayerOneShotCandidates_NoStoredFormsIsNotFound(t *testing.T) {
	service := newTestCandidatesService(&stubWindowFixtureRepo{}, &stubStatlineRepo{}, &stubOddsRepo{}, &stubFormRepo{listByPlayer: map[int][]form.PlayerForm{}})

	_, err := service.PlayerOneShotCandidates(context.Background(), 20)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestPlayerOneShotCandidates_ShortSequenceSkipsLargeFloors(t *testing.T) {
	short := []float64{1, 1, 1, 1, 1}
	forms := &stubFormRepo{listByPlayer: map[int][]form.PlayerForm{
		20: {{PlayerID: 7, SampleSize: 20, RawFixtures: oneShotSequence(short)}},
	}}
	service := newTestCandidatesService(&stubWindowFixtureRepo{}, &stubStatlineRepo{}, &stubOddsRepo{}, forms)

	rows, err := service.PlayerOneShotCandidates(context.Background(), 20)
	if err != nil {
		t.Fatalf("PlayerOneShotCandidates: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("a five-game sequence cannot clear any floor, got %+v", rows)
	}
}
