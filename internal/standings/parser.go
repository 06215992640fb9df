// Package standings parses the ranked team table out of a competition's
// standings markup.
package standings

import (
	"log"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/fortuna/victoria/internal/model"
)

// Parse extracts the team records of the sub-section whose heading matches
// groupLabel. A missing section yields an empty list, not an error; rows
// that fail numeric parsing are skipped. Records keep source order, which is
// already rank order.
func Parse(html, groupLabel string) []model.TeamRecord {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		log.Printf("[standings] unparsable markup for %q: %v", groupLabel, err)
		return nil
	}

	var records []model.TeamRecord
	want := normalizeLabel(groupLabel)

	doc.Find("div.standings-groups").Each(func(_ int, group *goquery.Selection) {
		title := group.Find("h4.standings-groups-title").First()
		if title.Length() == 0 || normalizeLabel(title.Text()) != want {
			return
		}

		table := group.Find("table.standings-table").First()
		if table.Length() == 0 {
			log.Printf("[standings] table not found for %q", groupLabel)
			return
		}

		table.Find("tr").Each(func(i int, tr *goquery.Selection) {
			if i == 0 {
				return // header row
			}
			if rec, ok := parseRow(tr); ok {
				records = append(records, rec)
			}
		})
	})

	return records
}

// parseRow reads the fixed cell layout of one standings row. Any malformed
// cell skips the row.
func parseRow(tr *goquery.Selection) (model.TeamRecord, bool) {
	cells := tr.Find("td, th")
	if cells.Length() < 11 {
		return model.TeamRecord{}, false
	}

	var rec model.TeamRecord

	rec.Position = atoiOrZero(cells.Eq(0).Find("span").First().Text())
	rec.Team = strings.TrimSpace(cells.Eq(1).Find("a span").First().Text())

	nums := make([]int, 0, 6)
	for i := 2; i <= 7; i++ {
		n, err := strconv.Atoi(strings.TrimSpace(cells.Eq(i).Text()))
		if err != nil {
			return model.TeamRecord{}, false
		}
		nums = append(nums, n)
	}
	rec.Matches = nums[0]
	rec.Wins = nums[1]
	rec.Losses = nums[2]
	rec.PointsFor = nums[3]
	rec.PointsAgainst = nums[4]
	rec.PointsDiff = nums[5]

	rec.Points = atoiOrZero(cells.Eq(cells.Length() - 1).Find("strong").First().Text())

	return rec, true
}

func atoiOrZero(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}

// normalizeLabel compares headings case- and whitespace-insensitively.
func normalizeLabel(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
