package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/matchpulse/sportsync/external/sportmonks"
	"github.com/matchpulse/sportsync/internal/domain/fixture"
	"github.com/matchpulse/sportsync/internal/domain/reference"
	"github.com/matchpulse/sportsync/internal/platform/logging"
)

type stubProvider struct {
	pages    map[string][]sportmonks.Page
	fail     map[string]error
	lastOpts map[string]sportmonks.PageOptions
}

func newStubProvider() *stubProvider {
	return &stubProvider{
		pages:    make(map[string][]sportmonks.Page),
		fail:     make(map[string]error),
		lastOpts: make(map[string]sportmonks.PageOptions),
	}
}

func (p *stubProvider) ForEachPage(_ context.Context, path string, opts sportmonks.PageOptions, fn sportmonks.PageFunc) error {
	p.lastOpts[path] = opts
	if err := p.fail[path]; err != nil {
		return err
	}
	for _, page := range p.pages[path] {
		if err := fn(page); err != nil {
			return err
		}
	}
	return nil
}

func (p *stubProvider) ForEach(ctx context.Context, path string, opts sportmonks.PageOptions, fn func(record sportmonks.Raw) error) error {
	return p.ForEachPage(ctx, path, opts, func(page sportmonks.Page) error {
		for _, record := range page.Records {
			if err := fn(record); err != nil {
				return err
			}
		}
		return nil
	})
}

func (p *stubProvider) FetchSingle(_ context.Context, path string, _ sportmonks.PageOptions) (sportmonks.Raw, error) {
	if err := p.fail[path]; err != nil {
		return nil, err
	}
	pages := p.pages[path]
	if len(pages) == 0 || len(pages[0].Records) == 0 {
		return nil, fmt.Errorf("no stub data for %s", path)
	}
	return pages[0].Records[0], nil
}

type stubReferenceRepo struct {
	reference.Repository
	teamBatches    [][]reference.Team
	failTeamsAfter int
}

func (r *stubReferenceRepo) UpsertTeams(_ context.Context, items []reference.Team) error {
	if r.failTeamsAfter > 0 && len(r.teamBatches) >= r.failTeamsAfter {
		return errors.New("storage unavailable")
	}
	r.teamBatches = append(r.teamBatches, items)
	return nil
}

type stubStateRepo struct {
	values map[string]string
	sets   []string
}

func newStubStateRepo() *stubStateRepo {
	return &stubStateRepo{values: make(map[string]string)}
}

func (r *stubStateRepo) Get(_ context.Context, key string) (string, error) {
	return r.values[key], nil
}

func (r *stubStateRepo) Set(_ context.Context, key, value string) error {
	r.values[key] = value
	r.sets = append(r.sets, key+"="+value)
	return nil
}

type stubFixtureRepo struct {
	fixture.Repository
	fixtures     []fixture.Fixture
	participants []fixture.Participant
	headToHead   []fixture.HeadToHead
	idsBetween   []int64
}

func (r *stubFixtureRepo) UpsertFixtures(_ context.Context, items []fixture.Fixture) error {
	r.fixtures = append(r.fixtures, items...)
	return nil
}

func (r *stubFixtureRepo) UpsertParticipants(_ context.Context, items []fixture.Participant) error {
	r.participants = append(r.participants, items...)
	return nil
}

func (r *stubFixtureRepo) UpsertHeadToHead(_ context.Context, item fixture.HeadToHead) error {
	r.headToHead = append(r.headToHead, item)
	return nil
}

func (r *stubFixtureRepo) ListIDsBetween(_ context.Context, _, _ time.Time) ([]int64, error) {
	return r.idsBetween, nil
}

func teamRecord(id int64) sportmonks.Raw {
	return sportmonks.Raw{"id": id, "name": fmt.Sprintf("Team %d", id)}
}

func newTestSyncService(provider Provider, refs reference.Repository, fixtures fixture.Repository, state *stubStateRepo) *SyncService {
	return NewSyncService(provider, refs, fixtures, nil, nil, state, logging.NewNop(), SyncConfig{
		BookmakerID:     2,
		MaxDateSpanDays: 95,
	})
}

func TestDateChunks_NewestFirstAndBounded(t *testing.T) {
	from := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, time.December, 31, 0, 0, 0, 0, time.UTC)

	chunks := dateChunks(from, to, 95)
	if len(chunks) == 0 {
		t.Fatal("expected chunks")
	}
	if !chunks[0].to.Equal(to) {
		t.Fatalf("first chunk ends %v, want %v", chunks[0].to, to)
	}
	if !chunks[len(chunks)-1].from.Equal(from) {
		t.Fatalf("last chunk starts %v, want %v", chunks[len(chunks)-1].from, from)
	}
	for i, chunk := range chunks {
		days := int(chunk.to.Sub(chunk.from).Hours()/24) + 1
		if days > 95 {
			t.Fatalf("chunk %d spans %d days", i, days)
		}
		if chunk.to.Before(chunk.from) {
			t.Fatalf("chunk %d inverted: %v..%v", i, chunk.from, chunk.to)
		}
		if i > 0 {
			gap := chunks[i-1].from.Sub(chunk.to)
			if gap != 24*time.Hour {
				t.Fatalf("chunks %d and %d not contiguous newest-first: gap %v", i-1, i, gap)
			}
		}
	}
}

func TestDateChunks_SingleDay(t *testing.T) {
	day := time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)
	chunks := dateChunks(day, day, 95)
	if len(chunks) != 1 {
		t.Fatalf("got %d chunks, want 1", len(chunks))
	}
	if !chunks[0].from.Equal(day) || !chunks[0].to.Equal(day) {
		t.Fatalf("chunk = %v..%v, want single day", chunks[0].from, chunks[0].to)
	}
}

func TestSyncTeams_CursorAdvancesPerPage(t *testing.T) {
	provider := newStubProvider()
	provider.pages["/teams"] = []sportmonks.Page{
		{Number: 1, Records: []sportmonks.Raw{teamRecord(1), teamRecord(2), teamRecord(3)}},
		{Number: 2, Records: []sportmonks.Raw{teamRecord(4), teamRecord(5)}},
	}
	refs := &stubReferenceRepo{}
	state := newStubStateRepo()

	service := newTestSyncService(provider, refs, &stubFixtureRepo{}, state)
	report, err := service.SyncTeams(context.Background())
	if err != nil {
		t.Fatalf("SyncTeams: %v", err)
	}
	if report.Fetched != 5 || report.Upserted != 5 {
		t.Fatalf("report = %+v, want 5 fetched and upserted", report)
	}
	if got := state.values[cursorTeams]; got != "5" {
		t.Fatalf("cursor = %q, want 5", got)
	}
	if len(state.sets) != 2 {
		t.Fatalf("cursor written %d times, want once per page", len(state.sets))
	}
}

func TestSyncTeams_CursorSurvivesMidStreamFailure(t *testing.T) {
	provider := newStubProvider()
	provider.pages["/teams"] = []sportmonks.Page{
		{Number: 1, Records: []sportmonks.Raw{teamRecord(1), teamRecord(2)}},
		{Number: 2, Records: []sportmonks.Raw{teamRecord(3), teamRecord(4)}},
	}
	refs := &stubReferenceRepo{failTeamsAfter: 1}
	state := newStubStateRepo()

	service := newTestSyncService(provider, refs, &stubFixtureRepo{}, state)
	_, err := service.SyncTeams(context.Background())
	if err == nil {
		t.Fatal("expected storage error")
	}
	if got := state.values[cursorTeams]; got != "2" {
		t.Fatalf("cursor = %q, want last committed page id 2", got)
	}
}

func TestSyncTeams_ResumesFromStoredCursor(t *testing.T) {
	provider := newStubProvider()
	state := newStubStateRepo()
	state.values[cursorTeams] = "120"

	service := newTestSyncService(provider, &stubReferenceRepo{}, &stubFixtureRepo{}, state)
	if _, err := service.SyncTeams(context.Background()); err != nil {
		t.Fatalf("SyncTeams: %v", err)
	}
	if got := provider.lastOpts["/teams"].IDAfter; got != 120 {
		t.Fatalf("IDAfter = %d, want 120", got)
	}
}

func TestSyncFixtures_MappingSkipDoesNotAbortPage(t *testing.T) {
	provider := newStubProvider()
	provider.pages["/fixtures"] = []sportmonks.Page{
		{Number: 1, Records: []sportmonks.Raw{
			{"id": int64(100), "state": map[string]any{"short_name": "FT"}},
			{"name": "missing id"},
			{"id": int64(101)},
		}},
	}
	repo := &stubFixtureRepo{}

	service := newTestSyncService(provider, &stubReferenceRepo{}, repo, newStubStateRepo())
	report, err := service.SyncFixtures(context.Background(), 0)
	if err != nil {
		t.Fatalf("SyncFixtures: %v", err)
	}
	if report.Fetched != 3 {
		t.Fatalf("fetched = %d, want 3", report.Fetched)
	}
	if report.Upserted != 2 {
		t.Fatalf("upserted = %d, want 2", report.Upserted)
	}
	if report.Errored != 1 {
		t.Fatalf("errored = %d, want 1", report.Errored)
	}
	if len(repo.fixtures) != 2 {
		t.Fatalf("stored %d fixtures, want 2", len(repo.fixtures))
	}
}

func TestSyncStatTypes_FailSoft(t *testing.T) {
	provider := newStubProvider()
	provider.fail["/types"] = errors.New("endpoint not in plan")

	service := newTestSyncService(provider, &stubReferenceRepo{}, &stubFixtureRepo{}, newStubStateRepo())
	report, err := service.SyncStatTypes(context.Background())
	if err != nil {
		t.Fatalf("SyncStatTypes should swallow provider errors, got %v", err)
	}
	if report.Errored != 1 {
		t.Fatalf("errored = %d, want 1", report.Errored)
	}
}

func TestSyncHeadToHead_OrdersPair(t *testing.T) {
	provider := newStubProvider()
	provider.pages["/fixtures/head-to-head/4/9"] = []sportmonks.Page{
		{Number: 1, Records: []sportmonks.Raw{{"id": int64(77)}}},
	}
	repo := &stubFixtureRepo{}

	service := newTestSyncService(provider, &stubReferenceRepo{}, repo, newStubStateRepo())
	if _, err := service.SyncHeadToHead(context.Background(), 9, 4); err != nil {
		t.Fatalf("SyncHeadToHead: %v", err)
	}
	if len(repo.headToHead) != 1 {
		t.Fatalf("stored %d head-to-head rows, want 1", len(repo.headToHead))
	}
	row := repo.headToHead[0]
	if row.TeamAID != 4 || row.TeamBID != 9 {
		t.Fatalf("pair = (%d, %d), want (4, 9)", row.TeamAID, row.TeamBID)
	}
	if row.Fixtures == "" || row.Fixtures == "null" {
		t.Fatalf("fixtures payload not stored: %q", row.Fixtures)
	}
}

func TestSyncHeadToHead_RejectsSameTeam(t *testing.T) {
	service := newTestSyncService(newStubProvider(), &stubReferenceRepo{}, &stubFixtureRepo{}, newStubStateRepo())
	_, err := service.SyncHeadToHead(context.Background(), 7, 7)
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}

func TestSyncTeams_OpenCircuitMarkedUnavailable(t *testing.T) {
	provider := newStubProvider()
	provider.fail["/teams"] = fmt.Errorf("fetch teams: %w", sportmonks.ErrCircuitOpen)

	service := newTestSyncService(provider, &stubReferenceRepo{}, &stubFixtureRepo{}, newStubStateRepo())
	_, err := service.SyncTeams(context.Background())
	if !errors.Is(err, ErrDependencyUnavailable) {
		t.Fatalf("err = %v, want ErrDependencyUnavailable", err)
	}
	if !errors.Is(err, sportmonks.ErrCircuitOpen) {
		t.Fatalf("marking must keep the original cause, got %v", err)
	}
}

func TestSyncPlayers_RejectsNonPositiveSeason(t *testing.T) {
	service := newTestSyncService(newStubProvider(), &stubReferenceRepo{}, &stubFixtureRepo{}, newStubStateRepo())
	_, err := service.SyncPlayers(context.Background(), 0)
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}
