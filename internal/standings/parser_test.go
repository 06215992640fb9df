package standings

import (
	"fmt"
	"strings"
	"testing"
)

func standingsRow(pos int, team string, nums [6]int, points int) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<tr><td><span>%d</span></td><td><a href="#"><span>%s</span></a></td>`, pos, team)
	for _, n := range nums {
		fmt.Fprintf(&b, "<td>%d</td>", n)
	}
	fmt.Fprintf(&b, "<td></td><td></td><td><strong>%d</strong></td></tr>", points)
	return b.String()
}

func standingsSection(title string, rows ...string) string {
	return `<div class="standings-groups"><h4 class="standings-groups-title">` + title +
		`</h4><table class="standings-table"><thead><tr><th>Pos</th><th>Equipo</th>` +
		`<th>J</th><th>G</th><th>P</th><th>F</th><th>C</th><th>D</th><th></th><th></th><th>Pts</th></tr></thead><tbody>` +
		strings.Join(rows, "\n") + `</tbody></table></div>`
}

func TestParseMatchingSection(t *testing.T) {
	html := `<div class="standings-results">` +
		standingsSection("Grupo 5",
			standingsRow(1, "Otro Club", [6]int{10, 10, 0, 60, 10, 50}, 20)) +
		standingsSection("Grupo 6",
			standingsRow(1, "CD Ronda", [6]int{10, 9, 1, 55, 15, 40}, 19),
			standingsRow(2, "TM Málaga", [6]int{10, 8, 2, 50, 20, 30}, 18)) +
		`</div>`

	records := Parse(html, "Grupo 6")
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}

	first := records[0]
	if first.Position != 1 || first.Team != "CD Ronda" {
		t.Errorf("unexpected leader: %+v", first)
	}
	if first.Matches != 10 || first.Wins != 9 || first.Losses != 1 {
		t.Errorf("unexpected match tallies: %+v", first)
	}
	if first.PointsFor != 55 || first.PointsAgainst != 15 || first.PointsDiff != 40 {
		t.Errorf("unexpected point tallies: %+v", first)
	}
	if first.Points != 19 {
		t.Errorf("Points = %d, want 19", first.Points)
	}

	if records[1].Team != "TM Málaga" || records[1].Position != 2 {
		t.Errorf("unexpected runner-up: %+v", records[1])
	}
}

func TestParseNormalizesHeading(t *testing.T) {
	html := standingsSection("  GRUPO   6 ",
		standingsRow(1, "CD Ronda", [6]int{1, 1, 0, 7, 0, 7}, 2))

	if records := Parse(html, "grupo 6"); len(records) != 1 {
		t.Fatalf("heading normalization failed, got %d records", len(records))
	}
}

func TestParseSkipsMalformedRows(t *testing.T) {
	badNumeric := `<tr><td><span>2</span></td><td><a><span>Roto CF</span></a></td>` +
		`<td>x</td><td>1</td><td>1</td><td>5</td><td>5</td><td>0</td><td></td><td></td><td><strong>3</strong></td></tr>`
	short := `<tr><td colspan="11">descansa</td></tr>`

	html := standingsSection("Grupo 6",
		standingsRow(1, "CD Ronda", [6]int{2, 2, 0, 14, 0, 14}, 4),
		badNumeric,
		short)

	records := Parse(html, "Grupo 6")
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0].Team != "CD Ronda" {
		t.Errorf("unexpected survivor: %+v", records[0])
	}
}

func TestParseMissingSection(t *testing.T) {
	html := standingsSection("Grupo 5",
		standingsRow(1, "Otro Club", [6]int{1, 1, 0, 7, 0, 7}, 2))

	if records := Parse(html, "Grupo 6"); len(records) != 0 {
		t.Fatalf("expected no records for missing section, got %d", len(records))
	}
}
