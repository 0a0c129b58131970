package sportmonks

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"

	"github.com/matchpulse/sportsync/internal/domain/fixture"
	"github.com/matchpulse/sportsync/internal/domain/odds"
	"github.com/matchpulse/sportsync/internal/domain/reference"
	"github.com/matchpulse/sportsync/internal/domain/statline"
)

// Lineup type ids: 11 marks the starting eleven, 12 the bench.
const lineupTypeStarting = 11

// statValueKeys is the ordered field preference when a stat's data
// block is an object.
var statValueKeys = []string{"value", "total", "count", "goals", "average", "percentage"}

func MapCountry(r Raw) (reference.Country, error) {
	id, ok := r.Int64("id")
	if !ok {
		return reference.Country{}, newMappingError("country", "missing id")
	}
	return reference.Country{
		ID:    id,
		Name:  r.String("name"),
		Extra: r.Encode(),
	}, nil
}

func MapLeague(r Raw) (reference.League, error) {
	id, ok := r.Int64("id")
	if !ok {
		return reference.League{}, newMappingError("league", "missing id")
	}
	return reference.League{
		ID:        id,
		CountryID: r.OptInt64("country_id"),
		Name:      r.String("name"),
		Short:     r.String("short_code"),
		Extra:     r.Encode(),
	}, nil
}

func MapSeason(r Raw) (reference.Season, error) {
	id, ok := r.Int64("id")
	if !ok {
		return reference.Season{}, newMappingError("season", "missing id")
	}
	leagueID, ok := r.Int64("league_id")
	if !ok {
		return reference.Season{}, newMappingError("season", "missing league_id for season %d", id)
	}
	return reference.Season{
		ID:        id,
		LeagueID:  leagueID,
		Name:      r.String("name"),
		IsCurrent: r.Bool("is_current"),
		StartDate: r.Time("starting_at"),
		EndDate:   r.Time("ending_at"),
		Extra:     r.Encode(),
	}, nil
}

func MapVenue(r Raw) (reference.Venue, error) {
	id, ok := r.Int64("id")
	if !ok {
		return reference.Venue{}, newMappingError("venue", "missing id")
	}
	return reference.Venue{
		ID:    id,
		Name:  r.String("name"),
		City:  r.String("city_name"),
		Extra: r.Encode(),
	}, nil
}

func MapStatType(r Raw) (reference.StatType, error) {
	id, ok := r.Int64("id")
	if !ok {
		return reference.StatType{}, newMappingError("type", "missing id")
	}
	return reference.StatType{
		ID:            id,
		Name:          r.String("name"),
		Code:          r.String("code"),
		DeveloperName: r.String("developer_name"),
		Extra:         r.Encode(),
	}, nil
}

func MapTeam(r Raw) (reference.Team, error) {
	id, ok := r.Int64("id")
	if !ok {
		return reference.Team{}, newMappingError("team", "missing id")
	}
	return reference.Team{
		ID:        id,
		Name:      r.String("name"),
		Short:     r.String("short_code"),
		CountryID: r.OptInt64("country_id"),
		VenueID:   r.OptInt64("venue_id"),
		Extra:     r.Encode(),
	}, nil
}

func MapPlayer(r Raw) (reference.Player, error) {
	id, ok := r.Int64("id")
	if !ok {
		return reference.Player{}, newMappingError("player", "missing id")
	}
	name := r.String("name")
	if name == "" {
		name = r.String("display_name")
	}
	return reference.Player{
		ID:         id,
		Name:       name,
		CommonName: r.String("common_name"),
		TeamID:     r.OptInt64("team_id"),
		CountryID:  r.OptInt64("country_id"),
		PositionID: r.OptInt64("position_id"),
		Extra:      r.Encode(),
	}, nil
}

func MapBookmaker(r Raw) (reference.Bookmaker, error) {
	id, ok := r.Int64("id")
	if !ok {
		return reference.Bookmaker{}, newMappingError("bookmaker", "missing id")
	}
	return reference.Bookmaker{
		ID:    id,
		Name:  r.String("name"),
		Extra: r.Encode(),
	}, nil
}

func MapMarket(r Raw) (reference.Market, error) {
	id, ok := r.Int64("id")
	if !ok {
		return reference.Market{}, newMappingError("market", "missing id")
	}
	return reference.Market{
		ID:            id,
		Name:          r.String("name"),
		DeveloperName: r.String("developer_name"),
		Extra:         r.Encode(),
	}, nil
}

// MapFixture maps a fixture record plus its participants. Scores come
// from the scores include when present; zero is a valid score.
func MapFixture(r Raw) (fixture.Fixture, []fixture.Participant, error) {
	id, ok := r.Int64("id")
	if !ok {
		return fixture.Fixture{}, nil, newMappingError("fixture", "missing id")
	}

	status := r.Map("state").String("short_name")
	if status == "" {
		status = r.String("status")
	}

	homeScore, awayScore := resolveScores(r)

	out := fixture.Fixture{
		ID:         id,
		LeagueID:   r.OptInt64("league_id"),
		SeasonID:   r.OptInt64("season_id"),
		VenueID:    r.OptInt64("venue_id"),
		Status:     status,
		StartingAt: r.Time("starting_at"),
		HomeScore:  homeScore,
		AwayScore:  awayScore,
		Extra:      r.Encode(),
	}

	participants := make([]fixture.Participant, 0, 2)
	for _, p := range r.Slice("participants") {
		teamID, ok := p.Int64("id")
		if !ok {
			continue
		}
		location := p.String("location")
		if location == "" {
			location = p.Map("meta").String("location")
		}
		participant := fixture.Participant{
			FixtureID: id,
			TeamID:    teamID,
			Location:  location,
			Extra:     p.Encode(),
		}
		switch location {
		case fixture.LocationHome:
			out.HomeTeamID = &teamID
			participant.Score = homeScore
		case fixture.LocationAway:
			out.AwayTeamID = &teamID
			participant.Score = awayScore
		}
		participants = append(participants, participant)
	}

	return out, participants, nil
}

// resolveScores picks final scores from the score snapshot array. A
// side's entry described as CURRENT wins over earlier period entries;
// without a CURRENT marker the first-seen entry per side is kept, even
// if the provider emitted it mid-match. Legacy payloads carry a flat
// scores object instead.
func resolveScores(r Raw) (home, away *int) {
	entries := r.Slice("scores")
	if len(entries) == 0 {
		if legacy := r.Map("scores"); legacy != nil {
			return intFromFloat(legacy.OptFloat("localteam_score")), intFromFloat(legacy.OptFloat("visitorteam_score"))
		}
		return nil, nil
	}

	var firstHome, firstAway, currentHome, currentAway *int
	for _, entry := range entries {
		score := entry.Map("score")
		goals, ok := score.Float("goals")
		if !ok {
			continue
		}
		value := int(goals)
		current := strings.EqualFold(entry.String("description"), "CURRENT")

		switch score.String("participant") {
		case fixture.LocationHome:
			if firstHome == nil {
				firstHome = &value
			}
			if current && currentHome == nil {
				currentHome = &value
			}
		case fixture.LocationAway:
			if firstAway == nil {
				firstAway = &value
			}
			if current && currentAway == nil {
				currentAway = &value
			}
		}
	}

	home = firstHome
	if currentHome != nil {
		home = currentHome
	}
	away = firstAway
	if currentAway != nil {
		away = currentAway
	}
	return home, away
}

// MapTeamStats maps the statistics include of a fixture record into
// per-team typed stat lines.
func MapTeamStats(r Raw) ([]statline.TeamStat, error) {
	fixtureID, ok := r.Int64("id")
	if !ok {
		return nil, newMappingError("team_stats", "missing fixture id")
	}

	out := make([]statline.TeamStat, 0, 16)
	for _, entry := range r.Slice("statistics") {
		typeID, ok := entry.Int64("type_id")
		if !ok {
			continue
		}
		teamID, ok := entry.Int64("participant_id")
		if !ok {
			continue
		}
		out = append(out, statline.TeamStat{
			FixtureID: fixtureID,
			TeamID:    teamID,
			TypeID:    typeID,
			Value:     ExtractStatValue(entry["data"]),
			Raw:       entry.Encode(),
		})
	}
	return out, nil
}

// MapLineups maps the lineups include of a fixture record into squad
// appearances plus per-player typed stat lines from lineup details.
func MapLineups(r Raw) ([]statline.Appearance, []statline.PlayerStat, error) {
	fixtureID, ok := r.Int64("id")
	if !ok {
		return nil, nil, newMappingError("lineups", "missing fixture id")
	}

	appearances := make([]statline.Appearance, 0, 40)
	stats := make([]statline.PlayerStat, 0, 128)
	for _, entry := range r.Slice("lineups") {
		playerID, ok := entry.Int64("player_id")
		if !ok {
			continue
		}
		teamID := entry.OptInt64("team_id")
		lineupType, _ := entry.Int64("type_id")

		appearance := statline.Appearance{
			FixtureID: fixtureID,
			PlayerID:  playerID,
			TeamID:    teamID,
			Started:   lineupType == lineupTypeStarting,
			Raw:       entry.Encode(),
		}

		for _, detail := range entry.Slice("details") {
			typeID, ok := detail.Int64("type_id")
			if !ok {
				continue
			}
			value := ExtractStatValue(detail["data"])
			if typeID == minutesPlayedTypeID {
				appearance.Minutes = value
			}
			stats = append(stats, statline.PlayerStat{
				FixtureID: fixtureID,
				PlayerID:  playerID,
				TeamID:    teamID,
				TypeID:    typeID,
				Value:     value,
				Raw:       detail.Encode(),
			})
		}

		appearances = append(appearances, appearance)
	}
	return appearances, stats, nil
}

// minutesPlayedTypeID is the provider stat type for minutes played.
const minutesPlayedTypeID = 119

// MapOddsOutcome maps one priced selection. RawHash fingerprints the
// canonical payload for no-op detection downstream.
func MapOddsOutcome(r Raw) (odds.Outcome, error) {
	fixtureID, ok := r.Int64("fixture_id")
	if !ok {
		return odds.Outcome{}, newMappingError("odds_outcome", "missing fixture_id")
	}
	bookmakerID, ok := r.Int64("bookmaker_id")
	if !ok {
		return odds.Outcome{}, newMappingError("odds_outcome", "missing bookmaker_id for fixture %d", fixtureID)
	}
	marketID, ok := r.Int64("market_id")
	if !ok {
		return odds.Outcome{}, newMappingError("odds_outcome", "missing market_id for fixture %d", fixtureID)
	}

	price := r.OptFloat("dp3")
	if price == nil {
		price = r.OptFloat("value")
	}

	return odds.Outcome{
		ProviderOutcomeID: r.OptInt64("id"),
		FixtureID:         fixtureID,
		BookmakerID:       bookmakerID,
		MarketID:          marketID,
		Label:             r.String("label"),
		Participant:       optString(r, "name"),
		Handicap:          optString(r, "handicap"),
		Total:             optString(r, "total"),
		Price:             price,
		Probability:       optString(r, "probability"),
		Stopped:           r.Bool("stopped"),
		RawHash:           payloadHash(r),
		Raw:               r.Encode(),
	}, nil
}

// PlayerProp is a player-prop selection before the player reference is
// resolved; the provider keys these rows by display name, not id.
type PlayerProp struct {
	FixtureID  int64
	MarketID   int64
	PlayerName string
	Line       float64
	Selection  string
	Price      *float64
	RawHash    string
	Raw        string
}

func MapPlayerProp(r Raw) (PlayerProp, error) {
	fixtureID, ok := r.Int64("fixture_id")
	if !ok {
		return PlayerProp{}, newMappingError("player_prop", "missing fixture_id")
	}
	marketID, ok := r.Int64("market_id")
	if !ok {
		return PlayerProp{}, newMappingError("player_prop", "missing market_id for fixture %d", fixtureID)
	}
	name := strings.TrimSpace(r.String("name"))
	if name == "" {
		name = strings.TrimSpace(r.String("participant"))
	}
	if name == "" {
		return PlayerProp{}, newMappingError("player_prop", "missing player name for fixture %d market %d", fixtureID, marketID)
	}

	line, ok := r.Float("total")
	if !ok {
		line, _ = r.Float("handicap")
	}
	price := r.OptFloat("dp3")
	if price == nil {
		price = r.OptFloat("value")
	}

	return PlayerProp{
		FixtureID:  fixtureID,
		MarketID:   marketID,
		PlayerName: name,
		Line:       line,
		Selection:  r.String("label"),
		Price:      price,
		RawHash:    payloadHash(r),
		Raw:        r.Encode(),
	}, nil
}

// ExtractStatValue pulls a numeric stat value out of the shapes the
// provider uses: an object with a canonical value key, a bare number,
// or a generic object whose first numeric field (in sorted key order)
// is taken.
func ExtractStatValue(value any) *float64 {
	obj, isObj := value.(map[string]any)
	if !isObj {
		if f, ok := coerceFloat(value); ok {
			return &f
		}
		return nil
	}

	for _, key := range statValueKeys {
		if raw, present := obj[key]; present {
			if f, ok := coerceFloat(raw); ok {
				return &f
			}
		}
	}

	keys := make([]string, 0, len(obj))
	for key := range obj {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if f, ok := coerceFloat(obj[key]); ok {
			return &f
		}
	}
	return nil
}

func payloadHash(r Raw) string {
	sum := sha256.Sum256([]byte(r.Encode()))
	return hex.EncodeToString(sum[:])
}

func optString(r Raw, key string) *string {
	value := strings.TrimSpace(r.String(key))
	if value == "" {
		return nil
	}
	return &value
}

func intFromFloat(v *float64) *int {
	if v == nil {
		return nil
	}
	out := int(*v)
	return &out
}
