package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/bytedance/sonic"

	"github.com/matchpulse/sportsync/external/sportmonks"
	"github.com/matchpulse/sportsync/internal/config"
	"github.com/matchpulse/sportsync/internal/infrastructure/repository/postgres"
	"github.com/matchpulse/sportsync/internal/platform/logging"
	"github.com/matchpulse/sportsync/internal/platform/resilience"
	"github.com/matchpulse/sportsync/internal/usecase"
)

const dateLayout = "2006-01-02"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := logging.NewJSON(cfg.LogLevel)
	defer logger.Sync()

	db, err := postgres.Open(cfg.DBURL)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()

	refs := postgres.NewReferenceRepository(db)
	fixtures := postgres.NewFixtureRepository(db)
	stats := postgres.NewStatLineRepository(db)
	oddsRepo := postgres.NewOddsRepository(db)
	forms := postgres.NewFormRepository(db)
	state := postgres.NewSyncStateRepository(db)

	client := sportmonks.NewClient(sportmonks.ClientConfig{
		BaseURL:         cfg.SportMonksBaseURL,
		Token:           cfg.SportMonksToken,
		Timeout:         cfg.SportMonksTimeout,
		MaxRetries:      cfg.SportMonksMaxRetries,
		RequestsPerHour: cfg.SportMonksRequestsPerHour,
		Populate:        cfg.SportMonksPopulate,
		Logger:          logger,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.SportMonksCircuitEnabled,
			FailureThreshold: cfg.SportMonksCircuitFailureCount,
			OpenTimeout:      cfg.SportMonksCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.SportMonksCircuitHalfOpenMax,
		},
	})

	syncSvc := usecase.NewSyncService(client, refs, fixtures, stats, oddsRepo, state, logger, usecase.SyncConfig{
		LeagueIDs:       cfg.SyncLeagueIDs,
		BookmakerID:     cfg.SyncBookmakerID,
		MaxDateSpanDays: cfg.SyncMaxDateSpan,
	})
	aggSvc := usecase.NewAggregationService(refs, stats, oddsRepo, forms, logger, usecase.AggregationConfig{
		SampleSizes:        cfg.FormSampleSizes,
		MinSamples:         cfg.FormMinSamples,
		AvailabilitySample: cfg.AvailabilitySample,
		Workers:            cfg.SyncWorkers,
	})
	candSvc := usecase.NewCandidatesService(fixtures, stats, oddsRepo, forms, logger, usecase.CandidatesConfig{
		SampleSizes: cfg.FormSampleSizes,
		MinSamples:  cfg.FormMinSamples,
		MinPct:      cfg.ValueMinPct,
		BookmakerID: cfg.SyncBookmakerID,
	})
	retentionSvc := usecase.NewRetentionService(refs, fixtures, logger, usecase.RetentionConfig{
		Enabled:  cfg.RetentionEnabled,
		KeepDays: cfg.RetentionKeepDays,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cmd := strings.ToLower(strings.TrimSpace(os.Args[1]))
	args := os.Args[2:]

	switch cmd {
	case "sync-static":
		runReports(ctx,
			syncSvc.SyncCountries,
			syncSvc.SyncLeagues,
			syncSvc.SyncSeasons,
			syncSvc.SyncVenues,
		)
	case "sync-types":
		runReports(ctx, syncSvc.SyncStatTypes)
	case "sync-teams":
		runReports(ctx, syncSvc.SyncTeams)
	case "sync-players":
		if len(args) == 0 {
			runReports(ctx, syncSvc.SyncAllPlayers)
			return
		}
		seasonID, parseErr := parseID(args[0])
		if parseErr != nil {
			log.Fatal(parseErr)
		}
		printReport(must(syncSvc.SyncPlayers(ctx, seasonID)))
	case "sync-fixtures":
		var seasonID int64
		if len(args) > 0 {
			var parseErr error
			seasonID, parseErr = parseID(args[0])
			if parseErr != nil {
				log.Fatal(parseErr)
			}
		}
		printReport(must(syncSvc.SyncFixtures(ctx, seasonID)))
	case "sync-between":
		if len(args) < 2 {
			log.Fatal("sync-between requires <from> <to> dates (YYYY-MM-DD)")
		}
		from, to, parseErr := parseDatePair(args[0], args[1])
		if parseErr != nil {
			log.Fatal(parseErr)
		}
		printReport(must(syncSvc.SyncFixturesBetween(ctx, from, to, hasFlag(args[2:], "--details"))))
	case "sync-history":
		daysBack, daysForward := 365, 7
		if len(args) > 0 {
			daysBack = mustAtoi(args[0], "days back")
		}
		if len(args) > 1 {
			daysForward = mustAtoi(args[1], "days forward")
		}
		printReport(must(syncSvc.SyncHistory(ctx, daysBack, daysForward, hasFlag(args, "--details"))))
	case "sync-livescores":
		runReports(ctx, syncSvc.SyncLivescores)
	case "sync-bookmakers":
		runReports(ctx, syncSvc.SyncBookmakers, syncSvc.SyncMarkets)
	case "sync-odds":
		fixtureIDs, parseErr := parseIDs(args)
		if parseErr != nil {
			log.Fatal(parseErr)
		}
		printReport(must(syncSvc.SyncFixtureOdds(ctx, fixtureIDs)))
	case "sync-player-odds":
		daysForward := 7
		if len(args) > 0 {
			daysForward = mustAtoi(args[0], "days forward")
		}
		printReport(must(syncSvc.SyncPlayerPropOdds(ctx, daysForward)))
	case "sync-inplay-odds":
		runReports(ctx, syncSvc.SyncInplayOdds)
	case "sync-h2h":
		if len(args) < 2 {
			log.Fatal("sync-h2h requires two team ids")
		}
		teamA, errA := parseID(args[0])
		teamB, errB := parseID(args[1])
		if errA != nil {
			log.Fatal(errA)
		}
		if errB != nil {
			log.Fatal(errB)
		}
		printReport(must(syncSvc.SyncHeadToHead(ctx, teamA, teamB)))
	case "sync-run":
		result, runErr := syncSvc.SyncRun(ctx, usecase.SyncRunInput{
			Kinds:      args,
			MaxWorkers: cfg.SyncWorkers,
		})
		if runErr != nil {
			log.Fatal(runErr)
		}
		printJSON(result)
	case "compute-forms":
		report, runErr := aggSvc.BulkComputeForms(ctx)
		if runErr != nil {
			log.Fatal(runErr)
		}
		fmt.Printf("team_forms=%d player_forms=%d availability=%d errored=%d\n",
			report.TeamForms, report.PlayerForms, report.Availability, report.Errored)
		for _, msg := range report.Errors {
			fmt.Fprintf(os.Stderr, "error: %s\n", msg)
		}
	case "normalize-odds":
		fixtureIDs, parseErr := parseIDs(args)
		if parseErr != nil {
			log.Fatal(parseErr)
		}
		rows, runErr := aggSvc.NormalizeOdds(ctx, fixtureIDs)
		if runErr != nil {
			log.Fatal(runErr)
		}
		fmt.Printf("latest odds rows: %d\n", rows)
	case "candidates":
		mode := "team"
		if len(args) > 0 {
			mode = strings.ToLower(strings.TrimSpace(args[0]))
		}
		switch mode {
		case "team":
			rows, runErr := candSvc.TeamShotCandidates(ctx)
			if runErr != nil {
				log.Fatal(runErr)
			}
			printJSON(rows)
		case "player":
			storedSample := 20
			if len(args) > 1 {
				storedSample = mustAtoi(args[1], "stored sample size")
			}
			rows, runErr := candSvc.PlayerOneShotCandidates(ctx, storedSample)
			if runErr != nil {
				log.Fatal(runErr)
			}
			printJSON(rows)
		default:
			log.Fatalf("unknown candidates mode %q (want team or player)", mode)
		}
	case "retention-report":
		stale, runErr := retentionSvc.FixturesOutsideKeepWindow(ctx)
		if runErr != nil {
			log.Fatal(runErr)
		}
		fmt.Printf("fixtures outside keep window: %d\n", len(stale))
		for _, fx := range stale {
			season := int64(0)
			if fx.SeasonID != nil {
				season = *fx.SeasonID
			}
			fmt.Printf("fixture %d season %d\n", fx.ID, season)
		}
	default:
		printUsage()
		os.Exit(2)
	}
}

func runReports(ctx context.Context, streams ...func(context.Context) (usecase.KindReport, error)) {
	for _, stream := range streams {
		report, err := stream(ctx)
		if err != nil {
			printReport(report)
			log.Fatal(err)
		}
		printReport(report)
	}
}

func must(report usecase.KindReport, err error) usecase.KindReport {
	if err != nil {
		printReport(report)
		log.Fatal(err)
	}
	return report
}

func printReport(report usecase.KindReport) {
	fmt.Printf("%s: fetched=%d upserted=%d skipped=%d errored=%d\n",
		report.Kind, report.Fetched, report.Upserted, report.Skipped, report.Errored)
	for _, msg := range report.Errors {
		fmt.Fprintf(os.Stderr, "%s error: %s\n", report.Kind, msg)
	}
}

func printJSON(v any) {
	out, err := sonic.ConfigStd.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Fatalf("encode output: %v", err)
	}
	fmt.Println(string(out))
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q: %w", raw, err)
	}
	return id, nil
}

func parseIDs(args []string) ([]int64, error) {
	var ids []int64
	for _, arg := range args {
		if strings.HasPrefix(arg, "--") {
			continue
		}
		id, err := parseID(arg)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func parseDatePair(fromRaw, toRaw string) (time.Time, time.Time, error) {
	from, err := time.Parse(dateLayout, strings.TrimSpace(fromRaw))
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid from date %q: %w", fromRaw, err)
	}
	to, err := time.Parse(dateLayout, strings.TrimSpace(toRaw))
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid to date %q: %w", toRaw, err)
	}
	return from, to, nil
}

func mustAtoi(raw, name string) int {
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		log.Fatalf("invalid %s %q: %v", name, raw, err)
	}
	return value
}

func hasFlag(args []string, flag string) bool {
	for _, arg := range args {
		if strings.EqualFold(strings.TrimSpace(arg), flag) {
			return true
		}
	}
	return false
}

func printUsage() {
	name := filepath.Base(os.Args[0])
	fmt.Fprintf(os.Stderr, "usage: %s <command> [args]\n", name)
	fmt.Fprintln(os.Stderr, "commands:")
	fmt.Fprintln(os.Stderr, "  sync-static                      countries, leagues, seasons, venues")
	fmt.Fprintln(os.Stderr, "  sync-types                       stat type dictionary")
	fmt.Fprintln(os.Stderr, "  sync-teams                       teams (cursor resumable)")
	fmt.Fprintln(os.Stderr, "  sync-players [seasonID]          squads per season, all seasons by default")
	fmt.Fprintln(os.Stderr, "  sync-fixtures [seasonID]         fixtures, one season or all")
	fmt.Fprintln(os.Stderr, "  sync-between <from> <to> [--details]")
	fmt.Fprintln(os.Stderr, "  sync-history [back] [fwd] [--details]")
	fmt.Fprintln(os.Stderr, "  sync-livescores                  in-play fixtures")
	fmt.Fprintln(os.Stderr, "  sync-bookmakers                  bookmakers and markets")
	fmt.Fprintln(os.Stderr, "  sync-odds [fixtureID...]         pre-match odds, upcoming window by default")
	fmt.Fprintln(os.Stderr, "  sync-player-odds [fwd]           player prop odds for upcoming fixtures")
	fmt.Fprintln(os.Stderr, "  sync-inplay-odds                 latest in-play odds")
	fmt.Fprintln(os.Stderr, "  sync-h2h <teamA> <teamB>         head-to-head history")
	fmt.Fprintln(os.Stderr, "  sync-run [kind...]               parallel multi-stream run")
	fmt.Fprintln(os.Stderr, "  compute-forms                    rolling team/player form and availability")
	fmt.Fprintln(os.Stderr, "  normalize-odds [fixtureID...]    refresh flattened latest odds")
	fmt.Fprintln(os.Stderr, "  candidates [team|player] [n]     value candidates from form vs odds")
	fmt.Fprintln(os.Stderr, "  retention-report                 fixtures outside the season keep window")
}
