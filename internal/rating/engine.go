// Package rating replays a match history and derives an Elo-like skill
// rating per player. Updates are margin-aware (lopsided results move ratings
// further), experience-aware (new players move faster) and weighted between
// sets won and points scored.
package rating

import (
	"math"
	"sort"
	"strings"

	"github.com/fortuna/victoria/internal/model"
)

const (
	// InitialElo is the rating every player starts from.
	InitialElo = 1400

	// BaseK is the base K-factor before the dynamic multipliers.
	BaseK = 100

	// FloorElo is the minimum rating; no sequence of losses drops below it.
	FloorElo = 800
)

// Result weighting: sets won dominate, in-set points refine.
const (
	setsWeight   = 0.7
	pointsWeight = 0.3
)

// reservedTokens are the bare role codes and their combined forms; a row
// carrying one of these instead of a name is not a ratable player.
var reservedTokens = map[string]struct{}{
	"A": {}, "B": {}, "C": {}, "X": {}, "Y": {}, "Z": {},
	"ABC": {}, "XYZ": {},
}

// doublesMarker flags the synthetic doubles players.
var doublesMarker = strings.ToUpper(strings.TrimSpace(model.DoublesPrefix))

type playerState struct {
	elo     int
	matches int
	wins    int
	order   int // first-seen index, stabilizes ties

	clubCounts map[string]int
	clubOrder  []string
}

// Engine owns the per-player rating state for one replay pass. Construct a
// fresh Engine per run; the final snapshot is an immutable leaderboard.
type Engine struct {
	players map[string]*playerState
	seen    int
}

// NewEngine returns an empty engine.
func NewEngine() *Engine {
	return &Engine{players: make(map[string]*playerState)}
}

// Replay walks the matches in input order and every duel in acta order,
// updating ratings as it goes. Call once.
func (e *Engine) Replay(matches []model.Match) {
	for i := range matches {
		for _, duel := range matches[i].Duels {
			e.applyDuel(&matches[i], duel)
		}
	}
}

// applyDuel performs both sides' updates for one duel, home side first.
// Both expectations read the pre-duel ratings: the away side's expected
// value must not see the home side's fresh update.
func (e *Engine) applyDuel(match *model.Match, duel model.Duel) {
	home := strings.TrimSpace(duel.HomePlayer)
	away := strings.TrimSpace(duel.AwayPlayer)

	if !IsValidPlayer(home) || !IsValidPlayer(away) {
		return
	}

	h := e.state(home)
	a := e.state(away)

	h.tallyClub(resolveClub(duel.HomeCode, match))
	a.tallyClub(resolveClub(duel.AwayCode, match))

	// Bookkeeping first: the experience factor reads the count including
	// the current duel.
	h.matches++
	a.matches++
	if duel.HomeScore > duel.AwayScore {
		h.wins++
	} else if duel.AwayScore > duel.HomeScore {
		a.wins++
	}

	homeElo, awayElo := h.elo, a.elo

	resultHome := computeResult(duel.HomeScore, duel.AwayScore, duel.HomeSets, duel.AwaySets)
	resultAway := computeResult(duel.AwayScore, duel.HomeScore, duel.AwaySets, duel.HomeSets)

	h.elo = updateElo(homeElo, awayElo, resultHome, duel.HomeScore, duel.AwayScore, h.matches)
	a.elo = updateElo(awayElo, homeElo, resultAway, duel.AwayScore, duel.HomeScore, a.matches)
}

func (e *Engine) state(player string) *playerState {
	s, ok := e.players[player]
	if !ok {
		s = &playerState{
			elo:        InitialElo,
			order:      e.seen,
			clubCounts: make(map[string]int),
		}
		e.seen++
		e.players[player] = s
	}
	return s
}

func (s *playerState) tallyClub(club string) {
	if _, ok := s.clubCounts[club]; !ok {
		s.clubOrder = append(s.clubOrder, club)
	}
	s.clubCounts[club]++
}

// club resolves the player's recorded club: the team most often associated
// with their duels, first-encountered winning ties.
func (s *playerState) club() string {
	best, bestCount := "Unknown", 0
	for _, club := range s.clubOrder {
		if s.clubCounts[club] > bestCount {
			best, bestCount = club, s.clubCounts[club]
		}
	}
	return best
}

// Leaderboard returns the final snapshot sorted by rating descending,
// first-seen order breaking ties.
func (e *Engine) Leaderboard() []model.PlayerRating {
	names := make([]string, 0, len(e.players))
	for name := range e.players {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		si, sj := e.players[names[i]], e.players[names[j]]
		if si.elo != sj.elo {
			return si.elo > sj.elo
		}
		return si.order < sj.order
	})

	board := make([]model.PlayerRating, 0, len(names))
	for _, name := range names {
		s := e.players[name]
		winRate := 0.0
		if s.matches > 0 {
			winRate = math.Round(float64(s.wins)/float64(s.matches)*100*10) / 10
		}
		board = append(board, model.PlayerRating{
			Player:  name,
			Elo:     s.elo,
			Club:    s.club(),
			Matches: s.matches,
			Wins:    s.wins,
			WinRate: winRate,
		})
	}
	return board
}

// IsValidPlayer excludes empty names, bare role tokens and the synthetic
// doubles players from rating.
func IsValidPlayer(name string) bool {
	name = strings.ToUpper(strings.TrimSpace(name))
	if name == "" {
		return false
	}
	if _, reserved := reservedTokens[name]; reserved {
		return false
	}
	return !strings.Contains(name, doublesMarker)
}

// computeResult maps a duel outcome to [0,1]: 70% sets-ratio, 30%
// points-ratio. Without per-set data the sets-ratio stands alone.
func computeResult(ownScore, oppScore int, ownSets, oppSets []int) float64 {
	if ownScore == 0 && oppScore == 0 {
		return 0.5
	}

	setsResult := 0.5
	if total := ownScore + oppScore; total > 0 {
		setsResult = float64(ownScore) / float64(total)
	}

	if len(ownSets) == 0 || len(oppSets) == 0 {
		return clamp01(setsResult)
	}

	ownPoints := sumPositive(ownSets)
	oppPoints := sumPositive(oppSets)
	pointsResult := 0.5
	if total := ownPoints + oppPoints; total > 0 {
		pointsResult = float64(ownPoints) / float64(total)
	}

	return clamp01(setsWeight*setsResult + pointsWeight*pointsResult)
}

// marginCoefficient amplifies blowouts and dampens narrow results.
func marginCoefficient(ownScore, oppScore int) float64 {
	switch margin := abs(ownScore - oppScore); margin {
	case 3:
		return 1.2
	case 2:
		return 1.0
	default:
		return 0.85
	}
}

// dynamicK scales the base K by experience and by the pre-duel rating gap,
// rounded to an integer after combination.
func dynamicK(matchesSoFar int, eloDiff int) int {
	expFactor := 1.0
	switch {
	case matchesSoFar < 5:
		expFactor = 1.5
	case matchesSoFar < 15:
		expFactor = 1.2
	}

	gapFactor := 1.0
	switch {
	case abs(eloDiff) > 200:
		gapFactor = 1.3
	case abs(eloDiff) > 100:
		gapFactor = 1.15
	}

	return int(math.Round(BaseK * expFactor * gapFactor))
}

// updateElo computes one side's new rating from its pre-duel view.
func updateElo(ownElo, oppElo int, result float64, ownScore, oppScore, matchesSoFar int) int {
	eloDiff := oppElo - ownElo
	k := dynamicK(matchesSoFar, eloDiff)
	expected := 1 / (1 + math.Pow(10, float64(eloDiff)/400))

	delta := float64(k) * marginCoefficient(ownScore, oppScore) * (result - expected)

	newElo := float64(ownElo) + delta
	if newElo < FloorElo {
		newElo = FloorElo
	}
	return int(math.Round(newElo))
}

func resolveClub(code model.TeamCode, match *model.Match) string {
	homeTeam, awayTeam := resolveFamilies(match)
	switch code.Family() {
	case model.FamilyHome:
		return orUnknown(homeTeam)
	case model.FamilyAway:
		return orUnknown(awayTeam)
	default:
		return "Unknown"
	}
}

// resolveFamilies maps the home code family to a real team name for the
// match by tallying home-family duel wins against the official aggregate
// home score. Same indirection as the acta parser's doubles resolution.
func resolveFamilies(match *model.Match) (homeFamilyTeam, awayFamilyTeam string) {
	homeWins := 0
	for _, d := range match.Duels {
		switch {
		case d.HomeCode.Family() == model.FamilyHome && d.HomeScore > d.AwayScore:
			homeWins++
		case d.AwayCode.Family() == model.FamilyHome && d.AwayScore > d.HomeScore:
			homeWins++
		}
	}

	if homeWins == match.ScoreHome {
		return match.HomeTeam, match.AwayTeam
	}
	return match.AwayTeam, match.HomeTeam
}

func orUnknown(team string) string {
	if team == "" {
		return "Unknown"
	}
	return team
}

func sumPositive(sets []int) int {
	total := 0
	for _, s := range sets {
		if s > 0 {
			total += s
		}
	}
	return total
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
