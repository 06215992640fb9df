package fetch

import (
	"bytes"
	"encoding/json"
	"log"
	"regexp"
	"strconv"
	"strings"

	"github.com/fortuna/victoria/internal/model"
)

// sourceFinished is the list endpoint's status string for a played match.
const sourceFinished = "Finalizado"

var (
	tagRe       = regexp.MustCompile(`<[^>]+>`)
	scoreHomeRe = regexp.MustCompile(`scoreHome" value="(\d+)`)
	scoreAwayRe = regexp.MustCompile(`scoreAway" value="(\d+)`)
	scorePairRe = regexp.MustCompile(`>(\d+)\s*-\s*(\d+)<`)
)

// listPayload mirrors the datatable response of the match list endpoint.
type listPayload struct {
	Rows []listRow `json:"aaData"`
}

type listRow struct {
	RowID      flexID `json:"row_id"`
	GroupRound string `json:"groupround"`
	Date       string `json:"date"`
	Time       string `json:"time"`
	Venue      string `json:"venue"`
	Home       string `json:"home"`
	Away       string `json:"away"`
	Result     string `json:"result"`
	Status     string `json:"status"`
}

// flexID tolerates ids serialized as either number or string.
type flexID string

func (f *flexID) UnmarshalJSON(b []byte) error {
	b = bytes.Trim(b, `"`)
	*f = flexID(b)
	return nil
}

// EmptyListPayload is the empty-result marker returned on transport errors,
// letting the pipeline proceed with zero matches.
var EmptyListPayload = []byte(`{"aaData": []}`)

// ExtractGroupMatches decodes the raw list payload and keeps the rows
// belonging to the group, normalized into Match values with empty duel
// lists. Matches start scheduled; enrichment alone promotes them.
func ExtractGroupMatches(payload []byte, group model.Group) []model.Match {
	var list listPayload
	if err := json.Unmarshal(payload, &list); err != nil {
		log.Printf("[list] competition %d: bad payload: %v", group.CompetitionID, err)
		return nil
	}

	var matches []model.Match
	for _, row := range list.Rows {
		if row.GroupRound != group.Label {
			continue
		}
		scoreHome, scoreAway := parseGlobalScore(row.Result)
		matches = append(matches, model.Match{
			MatchID:      string(row.RowID),
			Competition:  group.CompetitionID,
			Group:        row.GroupRound,
			Date:         row.Date,
			Time:         row.Time,
			Venue:        stripHTML(row.Venue),
			HomeTeam:     stripHTML(row.Home),
			AwayTeam:     stripHTML(row.Away),
			ScoreHome:    scoreHome,
			ScoreAway:    scoreAway,
			Result:       stripHTML(row.Result),
			Status:       model.StatusScheduled,
			SourceStatus: row.Status,
			Duels:        []model.Duel{},
		})
	}
	return matches
}

// IsFinishedCandidate reports whether the source marked the match as played,
// i.e. worth an acta fetch.
func IsFinishedCandidate(m *model.Match) bool {
	return m.SourceStatus == sourceFinished
}

func stripHTML(s string) string {
	return strings.TrimSpace(tagRe.ReplaceAllString(s, ""))
}

// parseGlobalScore pulls the aggregate score pair out of the result cell's
// markup, trying the hidden inputs first and the rendered "h - a" text as a
// fallback. Unparsable results read 0-0.
func parseGlobalScore(resultHTML string) (home, away int) {
	mH := scoreHomeRe.FindStringSubmatch(resultHTML)
	mA := scoreAwayRe.FindStringSubmatch(resultHTML)
	if mH != nil && mA != nil {
		home, _ = strconv.Atoi(mH[1])
		away, _ = strconv.Atoi(mA[1])
		return home, away
	}
	if m := scorePairRe.FindStringSubmatch(resultHTML); m != nil {
		home, _ = strconv.Atoi(m[1])
		away, _ = strconv.Atoi(m[2])
	}
	return home, away
}
