// Package model holds the domain types shared across the pipeline: groups,
// matches, duels, standings rows and rating rows. All types are plain data;
// the json tags define the persisted artifact schema.
package model

import (
	"regexp"
	"strings"
)

// Match status values. A match is only promoted to finished once a non-empty
// duel list has been attached by enrichment.
const (
	StatusScheduled = "scheduled"
	StatusFinished  = "finished"
)

// MaxSets is the maximum number of per-set point values recorded for a duel.
const MaxSets = 5

// Acta layout constants: a full-length acta has seven duels, the seventh
// being the team doubles game. Shorter actas are truncated to six.
const (
	MinDuelsValidMatch = 6
	DuelsWithDoubles   = 7
	DoublesIndex       = 6
)

// DoublesPrefix labels the synthetic players of the doubles duel.
const DoublesPrefix = "Doubles "

// Group is one competition subdivision, loaded from static configuration.
type Group struct {
	CompetitionID int    `json:"competition_id"`
	Label         string `json:"label"`
}

// Match is one team-vs-team fixture as reported by the list endpoint.
// Duels stays empty until enrichment attaches the parsed acta.
type Match struct {
	MatchID      string `json:"match_id"`
	Competition  int    `json:"competition"`
	Group        string `json:"group"`
	Date         string `json:"date"`
	Time         string `json:"time"`
	Venue        string `json:"venue"`
	HomeTeam     string `json:"home_team"`
	AwayTeam     string `json:"away_team"`
	ScoreHome    int    `json:"score_home"`
	ScoreAway    int    `json:"score_away"`
	Result       string `json:"result"`
	Status       string `json:"status"`
	SourceStatus string `json:"source_status,omitempty"`
	Duels        []Duel `json:"games"`
}

// Duel is one individual game within a team match.
type Duel struct {
	HomeCode   TeamCode `json:"home_code"`
	HomePlayer string   `json:"home_player"`
	HomeSets   []int    `json:"home_sets"`
	HomeScore  int      `json:"home_score"`
	AwayCode   TeamCode `json:"away_code"`
	AwayPlayer string   `json:"away_player"`
	AwaySets   []int    `json:"away_sets"`
	AwayScore  int      `json:"away_score"`
}

// TeamRecord is one row of a standings table, in source order.
type TeamRecord struct {
	Position      int    `json:"position"`
	Team          string `json:"team"`
	Matches       int    `json:"matches"`
	Wins          int    `json:"wins"`
	Losses        int    `json:"losses"`
	PointsFor     int    `json:"points_for"`
	PointsAgainst int    `json:"points_against"`
	PointsDiff    int    `json:"points_diff"`
	Points        int    `json:"points"`
}

// PlayerRating is one leaderboard row emitted by the rating engine.
type PlayerRating struct {
	Player  string  `json:"player"`
	Elo     int     `json:"elo"`
	Club    string  `json:"club"`
	Matches int     `json:"matches"`
	Wins    int     `json:"wins"`
	WinRate float64 `json:"win_rate"`
}

// CodeFamily identifies which side of the acta a role code belongs to.
// The two families are disjoint: a home-family code can only face an
// away-family code.
type CodeFamily int

const (
	FamilyNone CodeFamily = iota
	FamilyHome             // A, B, C, ABC
	FamilyAway             // X, Y, Z, XYZ
)

// TeamCode is one token of the fixed role-code alphabet found in the first
// acta column. The codes are roles within a match, not team identities;
// resolving a code to a real team is per-match (see the acta package).
type TeamCode string

// The full code alphabet. ABC and XYZ are the combined forms used on the
// doubles row.
const (
	CodeA   TeamCode = "A"
	CodeB   TeamCode = "B"
	CodeC   TeamCode = "C"
	CodeABC TeamCode = "ABC"
	CodeX   TeamCode = "X"
	CodeY   TeamCode = "Y"
	CodeZ   TeamCode = "Z"
	CodeXYZ TeamCode = "XYZ"
)

// Family reports which code family the token belongs to, or FamilyNone for
// anything outside the alphabet.
func (c TeamCode) Family() CodeFamily {
	switch c {
	case CodeA, CodeB, CodeC, CodeABC:
		return FamilyHome
	case CodeX, CodeY, CodeZ, CodeXYZ:
		return FamilyAway
	default:
		return FamilyNone
	}
}

// Valid reports whether the token is part of the code alphabet.
func (c TeamCode) Valid() bool {
	return c.Family() != FamilyNone
}

// ParseTeamCode normalizes a raw cell token into a TeamCode. The returned
// code may be invalid (Family() == FamilyNone) for non-code cells.
func ParseTeamCode(s string) TeamCode {
	return TeamCode(strings.ToUpper(strings.TrimSpace(s)))
}

var unsafeLabelRe = regexp.MustCompile(`[^A-Za-z0-9]`)

// SafeLabel reduces a group label to the token used in artifact file names,
// e.g. "Grupo 6" -> "Grupo6".
func SafeLabel(label string) string {
	return unsafeLabelRe.ReplaceAllString(label, "")
}
