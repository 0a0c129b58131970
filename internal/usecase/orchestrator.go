package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"
)

type syncRunKind string

const (
	runStatusSuccess = "success"
	runStatusFailed  = "failed"
	runStatusSkipped = "skipped"

	runKindCountries  syncRunKind = "countries"
	runKindLeagues    syncRunKind = "leagues"
	runKindSeasons    syncRunKind = "seasons"
	runKindTypes      syncRunKind = "types"
	runKindVenues     syncRunKind = "venues"
	runKindTeams      syncRunKind = "teams"
	runKindPlayers    syncRunKind = "players"
	runKindFixtures   syncRunKind = "fixtures"
	runKindLivescores syncRunKind = "livescores"
	runKindBookmakers syncRunKind = "bookmakers"
	runKindMarkets    syncRunKind = "markets"
	runKindOdds       syncRunKind = "odds"
	runKindPlayerOdds syncRunKind = "player_odds"
)

var allRunKinds = []syncRunKind{
	runKindCountries, runKindLeagues, runKindSeasons, runKindTypes,
	runKindVenues, runKindTeams, runKindPlayers, runKindFixtures,
	runKindLivescores, runKindBookmakers, runKindMarkets,
	runKindOdds, runKindPlayerOdds,
}

type SyncRunInput struct {
	Kinds      []string
	MaxWorkers int
}

type SyncRunResult struct {
	TaskCount     int                 `json:"task_count"`
	SuccessCount  int                 `json:"success_count"`
	FailedCount   int                 `json:"failed_count"`
	SkippedCount  int                 `json:"skipped_count"`
	WorkerCount   int                 `json:"worker_count"`
	Tasks         []SyncRunTaskResult `json:"tasks"`
	RequestedData []string            `json:"requested_data"`
}

type SyncRunTaskResult struct {
	SyncData   string `json:"sync_data"`
	Status     string `json:"status"`
	Records    int    `json:"records"`
	Skipped    int    `json:"skipped"`
	Errored    int    `json:"errored"`
	DurationMs int64  `json:"duration_ms"`
	Message    string `json:"message,omitempty"`
}

// SyncRun executes the requested stream kinds on a worker pool. The
// streams touch disjoint key spaces, so they run concurrently; one
// failed stream never stops the others.
func (s *SyncService) SyncRun(ctx context.Context, input SyncRunInput) (SyncRunResult, error) {
	kinds, rawKinds, err := normalizeRunKinds(input.Kinds)
	if err != nil {
		return SyncRunResult{}, err
	}

	workerCount := normalizeRunWorkerCount(input.MaxWorkers, len(kinds))
	result := SyncRunResult{
		TaskCount:     len(kinds),
		WorkerCount:   workerCount,
		RequestedData: rawKinds,
		Tasks:         make([]SyncRunTaskResult, 0, len(kinds)),
	}
	if len(kinds) == 0 {
		return result, nil
	}

	results := make(chan SyncRunTaskResult, len(kinds))
	var successCount, failedCount, skippedCount atomic.Int32

	workerPool, err := ants.NewPool(workerCount)
	if err != nil {
		return SyncRunResult{}, fmt.Errorf("create worker pool: %w", err)
	}
	defer workerPool.Release()

	var workers sync.WaitGroup
	for _, kind := range kinds {
		kind := kind
		workers.Add(1)
		if err := workerPool.Submit(func() {
			defer workers.Done()

			start := time.Now()
			row := SyncRunTaskResult{SyncData: string(kind)}
			report, err := s.runSyncKind(ctx, kind)
			row.Records = report.Upserted
			row.Skipped = report.Skipped
			row.Errored = report.Errored

			switch {
			case err != nil:
				row.Status = runStatusFailed
				row.Message = err.Error()
				failedCount.Add(1)
			case report.Fetched == 0 && report.Errored == 0:
				row.Status = runStatusSkipped
				row.Message = "no records matched"
				skippedCount.Add(1)
			default:
				row.Status = runStatusSuccess
				if len(report.Errors) > 0 {
					row.Message = strings.Join(report.Errors, "; ")
				}
				successCount.Add(1)
			}
			row.DurationMs = time.Since(start).Milliseconds()
			results <- row
		}); err != nil {
			workers.Done()
			return SyncRunResult{}, fmt.Errorf("submit task to worker pool: %w", err)
		}
	}

	workers.Wait()
	close(results)

	for row := range results {
		result.Tasks = append(result.Tasks, row)
	}
	sort.SliceStable(result.Tasks, func(i, j int) bool {
		return result.Tasks[i].SyncData < result.Tasks[j].SyncData
	})

	result.SuccessCount = int(successCount.Load())
	result.FailedCount = int(failedCount.Load())
	result.SkippedCount = int(skippedCount.Load())
	return result, nil
}

func (s *SyncService) runSyncKind(ctx context.Context, kind syncRunKind) (KindReport, error) {
	switch kind {
	case runKindCountries:
		return s.SyncCountries(ctx)
	case runKindLeagues:
		return s.SyncLeagues(ctx)
	case runKindSeasons:
		return s.SyncSeasons(ctx)
	case runKindTypes:
		return s.SyncStatTypes(ctx)
	case runKindVenues:
		return s.SyncVenues(ctx)
	case runKindTeams:
		return s.SyncTeams(ctx)
	case runKindPlayers:
		return s.SyncAllPlayers(ctx)
	case runKindFixtures:
		return s.SyncFixtures(ctx, 0)
	case runKindLivescores:
		return s.SyncLivescores(ctx)
	case runKindBookmakers:
		return s.SyncBookmakers(ctx)
	case runKindMarkets:
		return s.SyncMarkets(ctx)
	case runKindOdds:
		return s.SyncFixtureOdds(ctx, nil)
	case runKindPlayerOdds:
		return s.SyncPlayerPropOdds(ctx, 7)
	default:
		return KindReport{Kind: string(kind)}, fmt.Errorf("%w: unknown sync kind %q", ErrInvalidInput, kind)
	}
}

func normalizeRunKinds(requested []string) ([]syncRunKind, []string, error) {
	if len(requested) == 0 {
		raw := make([]string, 0, len(allRunKinds))
		for _, kind := range allRunKinds {
			raw = append(raw, string(kind))
		}
		return allRunKinds, raw, nil
	}

	known := make(map[syncRunKind]struct{}, len(allRunKinds))
	for _, kind := range allRunKinds {
		known[kind] = struct{}{}
	}

	seen := make(map[syncRunKind]struct{}, len(requested))
	kinds := make([]syncRunKind, 0, len(requested))
	raw := make([]string, 0, len(requested))
	for _, item := range requested {
		kind := syncRunKind(strings.ToLower(strings.TrimSpace(item)))
		if kind == "" {
			continue
		}
		if _, ok := known[kind]; !ok {
			return nil, nil, fmt.Errorf("%w: unknown sync kind %q", ErrInvalidInput, item)
		}
		if _, dup := seen[kind]; dup {
			continue
		}
		seen[kind] = struct{}{}
		kinds = append(kinds, kind)
		raw = append(raw, string(kind))
	}
	return kinds, raw, nil
}

func normalizeRunWorkerCount(requested, taskCount int) int {
	count := requested
	if count <= 0 {
		count = 4
	}
	if taskCount > 0 && count > taskCount {
		count = taskCount
	}
	if count < 1 {
		count = 1
	}
	return count
}
