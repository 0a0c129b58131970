package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/matchpulse/sportsync/internal/domain/fixture"
	"github.com/matchpulse/sportsync/internal/domain/reference"
	"github.com/matchpulse/sportsync/internal/platform/logging"
)

func datePtr(year int, month time.Month, day int) *time.Time {
	v := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return &v
}

func TestRetainedSeasonIDs_CurrentPlusMostRecentlyEnded(t *testing.T) {
	seasons := []reference.Season{
		{ID: 1, LeagueID: 8, IsCurrent: true},
		{ID: 2, LeagueID: 8, EndDate: datePtr(2025, time.May, 25)},
		{ID: 3, LeagueID: 8, EndDate: datePtr(2024, time.May, 19)},
		{ID: 4, LeagueID: 8, EndDate: datePtr(2023, time.May, 28)},
		{ID: 5, LeagueID: 9, IsCurrent: true},
		{ID: 6, LeagueID: 9, EndDate: datePtr(2025, time.May, 18)},
	}

	keep := RetainedSeasonIDs(seasons)
	want := []int64{1, 2, 5, 6}
	if len(keep) != len(want) {
		t.Fatalf("kept %d seasons, want %d: %v", len(keep), len(want), keep)
	}
	for _, id := range want {
		if _, ok := keep[id]; !ok {
			t.Fatalf("season %d missing from keep set %v", id, keep)
		}
	}
}

func TestRetainedSeasonIDs_LeagueWithOnlyCurrent(t *testing.T) {
	seasons := []reference.Season{
		{ID: 10, LeagueID: 20, IsCurrent: true},
	}
	keep := RetainedSeasonIDs(seasons)
	if len(keep) != 1 {
		t.Fatalf("kept %d seasons, want 1", len(keep))
	}
	if _, ok := keep[10]; !ok {
		t.Fatal("current season not kept")
	}
}

type stubSeasonRepo struct {
	reference.Repository
	seasons []reference.Season
	called  bool
}

func (r *stubSeasonRepo) ListSeasons(_ context.Context) ([]reference.Season, error) {
	r.called = true
	return r.seasons, nil
}

type stubPruneFixtureRepo struct {
	fixture.Repository
	outside []fixture.Fixture
	called  bool
}

func (r *stubPruneFixtureRepo) ListOutsideSeasons(_ context.Context, _ []int64) ([]fixture.Fixture, error) {
	r.called = true
	return r.outside, nil
}

func TestFixturesOutsideKeepWindow_DisabledSkipsScan(t *testing.T) {
	refs := &stubSeasonRepo{}
	fixtures := &stubPruneFixtureRepo{}
	service := NewRetentionService(refs, fixtures, logging.NewNop(), RetentionConfig{Enabled: false})

	got, err := service.FixturesOutsideKeepWindow(context.Background())
	if err != nil {
		t.Fatalf("FixturesOutsideKeepWindow: %v", err)
	}
	if got != nil {
		t.Fatalf("disabled scan returned %+v, want nil", got)
	}
	if refs.called || fixtures.called {
		t.Fatal("disabled scan must not touch storage")
	}
}

func TestFixturesOutsideKeepWindow_KeepDaysRecencyFloor(t *testing.T) {
	now := time.Date(2026, time.September, 1, 12, 0, 0, 0, time.UTC)
	old := now.AddDate(0, 0, -500)
	recent := now.AddDate(0, 0, -30)

	refs := &stubSeasonRepo{seasons: []reference.Season{{ID: 1, LeagueID: 8, IsCurrent: true}}}
	fixtures := &stubPruneFixtureRepo{outside: []fixture.Fixture{
		{ID: 100, StartingAt: &old},
		{ID: 101, StartingAt: &recent},
		{ID: 102},
	}}
	service := NewRetentionService(refs, fixtures, logging.NewNop(), RetentionConfig{Enabled: true, KeepDays: 400})
	service.now = func() time.Time { return now }

	got, err := service.FixturesOutsideKeepWindow(context.Background())
	if err != nil {
		t.Fatalf("FixturesOutsideKeepWindow: %v", err)
	}
	// The recent fixture is protected by the floor; the dateless one is
	// always a candidate.
	if len(got) != 2 {
		t.Fatalf("got %d candidates, want 2: %+v", len(got), got)
	}
	if got[0].ID != 100 || got[1].ID != 102 {
		t.Fatalf("candidates = %d, %d, want 100 and 102", got[0].ID, got[1].ID)
	}
}

func TestRetainedSeasonIDs_NilEndDatesSortLast(t *testing.T) {
	seasons := []reference.Season{
		{ID: 30, LeagueID: 40},
		{ID: 31, LeagueID: 40, EndDate: datePtr(2024, time.June, 1)},
	}
	keep := RetainedSeasonIDs(seasons)
	if _, ok := keep[31]; !ok {
		t.Fatalf("dated season not preferred over undated: %v", keep)
	}
	if _, ok := keep[30]; ok {
		t.Fatalf("undated season should not be kept: %v", keep)
	}
}
