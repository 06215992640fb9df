// Package acta reconstructs the ordered duel list of a match from the raw
// acta table markup. The parser is lenient by construction: rows that do not
// look like duel rows are skipped, never fatal.
package acta

import (
	"log"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/fortuna/victoria/internal/model"
)

// Parse turns raw acta markup into an ordered duel list for the match.
// An empty result means the acta could not be reconstructed and the match
// must not be marked finished.
func Parse(html string, match *model.Match) []model.Duel {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		log.Printf("[acta] match %s: unparsable markup: %v", match.MatchID, err)
		return nil
	}

	table := doc.Find("div#sub-matches-container table").First()
	if table.Length() == 0 {
		table = doc.Find("table").First()
	}
	if table.Length() == 0 {
		log.Printf("[acta] match %s: results table not found", match.MatchID)
		return nil
	}

	var duels []model.Duel
	var pending *model.Duel
	skipped := 0

	table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		cells := rowCells(tr)
		if len(cells) < 3 {
			return
		}

		code := model.ParseTeamCode(cells[0])
		player := cells[1]
		sets, score := splitNumericRun(cells[2:])

		// Pairing state machine: a home-family code opens a pending duel,
		// the next away-family code closes it. Anything else is discarded.
		switch code.Family() {
		case model.FamilyHome:
			pending = &model.Duel{
				HomeCode:   code,
				HomePlayer: player,
				HomeSets:   sets,
				HomeScore:  score,
			}
		case model.FamilyAway:
			if pending == nil {
				skipped++
				return
			}
			pending.AwayCode = code
			pending.AwayPlayer = player
			pending.AwaySets = sets
			pending.AwayScore = score
			duels = append(duels, *pending)
			pending = nil
		default:
			skipped++
		}
	})

	if skipped > 0 {
		log.Printf("[acta] match %s: skipped %d out-of-order or non-duel rows", match.MatchID, skipped)
	}

	if len(duels) < model.DuelsWithDoubles {
		if len(duels) > model.MinDuelsValidMatch {
			duels = duels[:model.MinDuelsValidMatch]
		}
		return duels
	}

	// Full-length acta: the duel at the doubles slot is a team game, so both
	// player names are replaced by a synthetic team-level label.
	d := &duels[model.DoublesIndex]
	homeTeam, awayTeam := ResolveTeams(duels, match)
	d.HomePlayer = model.DoublesPrefix + resolveSide(d.HomeCode, homeTeam, awayTeam)
	d.AwayPlayer = model.DoublesPrefix + resolveSide(d.AwayCode, homeTeam, awayTeam)

	return duels
}

// rowCells returns the trimmed, non-empty td texts of a row.
func rowCells(tr *goquery.Selection) []string {
	var cells []string
	tr.Find("td").Each(func(_ int, td *goquery.Selection) {
		if text := strings.TrimSpace(td.Text()); text != "" {
			cells = append(cells, text)
		}
	})
	return cells
}

// splitNumericRun extracts the numeric run of a duel row: up to MaxSets
// per-set point values followed by the aggregate score. A run too short to
// fill the set slots records no sets; a run without the trailing aggregate
// defaults the score to 0.
func splitNumericRun(cells []string) (sets []int, score int) {
	var digits []int
	for _, c := range cells {
		if n, err := strconv.Atoi(c); err == nil {
			digits = append(digits, n)
		}
	}

	if len(digits) >= model.MaxSets {
		sets = digits[:model.MaxSets]
	}
	if len(digits) > model.MaxSets {
		score = digits[model.MaxSets]
	}
	return sets, score
}

// ResolveTeams determines which named team the home code family stands for
// in this match. The code alphabet is a set of role tokens, not team
// identities: the mapping is recovered per match by tallying home-family
// duel wins and comparing against the match's official aggregate home score.
func ResolveTeams(duels []model.Duel, match *model.Match) (homeFamilyTeam, awayFamilyTeam string) {
	homeWins := 0
	for _, d := range duels {
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

// ResolveTeam maps a single code to its real team name for the match, or
// "Unknown" for codes outside the alphabet.
func ResolveTeam(code model.TeamCode, duels []model.Duel, match *model.Match) string {
	homeTeam, awayTeam := ResolveTeams(duels, match)
	return resolveSide(code, homeTeam, awayTeam)
}

func resolveSide(code model.TeamCode, homeFamilyTeam, awayFamilyTeam string) string {
	switch code.Family() {
	case model.FamilyHome:
		return homeFamilyTeam
	case model.FamilyAway:
		return awayFamilyTeam
	default:
		return "Unknown"
	}
}
