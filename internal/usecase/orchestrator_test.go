package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/matchpulse/sportsync/external/sportmonks"
	"github.com/matchpulse/sportsync/internal/domain/reference"
)

type stubCountryRepo struct {
	reference.Repository
	countries []reference.Country
}

func (r *stubCountryRepo) UpsertCountries(_ context.Context, items []reference.Country) error {
	r.countries = append(r.countries, items...)
	return nil
}

func (r *stubCountryRepo) UpsertVenues(_ context.Context, _ []reference.Venue) error {
	return nil
}

func TestSyncRun_RequestedKindsOnly(t *testing.T) {
	provider := newStubProvider()
	provider.pages["/countries"] = []sportmonks.Page{
		{Number: 1, Records: []sportmonks.Raw{
			{"id": int64(1), "name": "England"},
			{"id": int64(2), "name": "Spain"},
		}},
	}
	refs := &stubCountryRepo{}

	service := newTestSyncService(provider, refs, &stubFixtureRepo{}, newStubStateRepo())
	result, err := service.SyncRun(context.Background(), SyncRunInput{
		Kinds:      []string{"countries", "venues"},
		MaxWorkers: 2,
	})
	if err != nil {
		t.Fatalf("SyncRun: %v", err)
	}
	if result.TaskCount != 2 {
		t.Fatalf("task count = %d, want 2", result.TaskCount)
	}
	if result.SuccessCount != 1 {
		t.Fatalf("success count = %d, want 1 (countries)", result.SuccessCount)
	}
	if result.SkippedCount != 1 {
		t.Fatalf("skipped count = %d, want 1 (venues had no records)", result.SkippedCount)
	}
	if result.FailedCount != 0 {
		t.Fatalf("failed count = %d, want 0", result.FailedCount)
	}
	if len(refs.countries) != 2 {
		t.Fatalf("stored %d countries, want 2", len(refs.countries))
	}

	// Tasks come back sorted by kind regardless of completion order.
	if result.Tasks[0].SyncData != "countries" || result.Tasks[1].SyncData != "venues" {
		t.Fatalf("tasks out of order: %+v", result.Tasks)
	}
}

func TestSyncRun_FailedStreamDoesNotStopOthers(t *testing.T) {
	provider := newStubProvider()
	provider.fail["/countries"] = errors.New("upstream down")
	provider.pages["/venues"] = []sportmonks.Page{
		{Number: 1, Records: []sportmonks.Raw{{"id": int64(5), "name": "Anfield"}}},
	}
	refs := &stubCountryRepo{}

	service := newTestSyncService(provider, refs, &stubFixtureRepo{}, newStubStateRepo())
	result, err := service.SyncRun(context.Background(), SyncRunInput{
		Kinds: []string{"countries", "venues"},
	})
	if err != nil {
		t.Fatalf("SyncRun: %v", err)
	}
	if result.FailedCount != 1 || result.SuccessCount != 1 {
		t.Fatalf("failed/success = %d/%d, want 1/1", result.FailedCount, result.SuccessCount)
	}
}

func TestSyncRun_UnknownKindRejected(t *testing.T) {
	service := newTestSyncService(newStubProvider(), &stubCountryRepo{}, &stubFixtureRepo{}, newStubStateRepo())
	_, err := service.SyncRun(context.Background(), SyncRunInput{Kinds: []string{"nonsense"}})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}
