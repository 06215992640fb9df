package fetch

import (
	"testing"

	"github.com/fortuna/victoria/internal/model"
)

var grupo6 = model.Group{CompetitionID: 14110, Label: "Grupo 6"}

func TestExtractGroupMatches(t *testing.T) {
	payload := []byte(`{"aaData": [
		{"row_id": 101, "groupround": "Grupo 6", "date": "12/10/2025", "time": "10:00",
		 "venue": "<a href=\"#\">Pabellón Municipal</a>",
		 "home": "<span>CD Ronda</span>", "away": "<span>TM Málaga</span>",
		 "result": "<input id=\"scoreHome\" value=\"5\"><input id=\"scoreAway\" value=\"2\"><span>5 - 2</span>",
		 "status": "Finalizado"},
		{"row_id": "102", "groupround": "Grupo 6", "date": "19/10/2025", "time": "11:00",
		 "venue": "Sala B", "home": "CTM Antequera", "away": "CD Ronda",
		 "result": "", "status": "Pendiente"},
		{"row_id": 201, "groupround": "Grupo 7", "date": "12/10/2025", "time": "10:00",
		 "venue": "Otra sala", "home": "X", "away": "Y",
		 "result": "", "status": "Finalizado"}
	]}`)

	matches := ExtractGroupMatches(payload, grupo6)
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches for the group, got %d", len(matches))
	}

	m := matches[0]
	if m.MatchID != "101" {
		t.Errorf("MatchID = %q, want 101", m.MatchID)
	}
	if m.Competition != 14110 || m.Group != "Grupo 6" {
		t.Errorf("group fields: %+v", m)
	}
	if m.Venue != "Pabellón Municipal" || m.HomeTeam != "CD Ronda" || m.AwayTeam != "TM Málaga" {
		t.Errorf("markup not stripped: %+v", m)
	}
	if m.ScoreHome != 5 || m.ScoreAway != 2 {
		t.Errorf("global score = %d-%d, want 5-2", m.ScoreHome, m.ScoreAway)
	}
	if m.Status != model.StatusScheduled {
		t.Errorf("Status = %q, want every listed match to start scheduled", m.Status)
	}
	if m.Duels == nil || len(m.Duels) != 0 {
		t.Errorf("Duels must start empty, got %v", m.Duels)
	}

	// String row_id is tolerated alongside numeric.
	if matches[1].MatchID != "102" {
		t.Errorf("string row_id: MatchID = %q", matches[1].MatchID)
	}
}

func TestExtractGroupMatchesBadPayload(t *testing.T) {
	if matches := ExtractGroupMatches([]byte("<html>error</html>"), grupo6); matches != nil {
		t.Fatalf("expected nil on undecodable payload, got %v", matches)
	}
	if matches := ExtractGroupMatches(EmptyListPayload, grupo6); len(matches) != 0 {
		t.Fatalf("expected no matches from the empty payload, got %d", len(matches))
	}
}

func TestIsFinishedCandidate(t *testing.T) {
	if !IsFinishedCandidate(&model.Match{SourceStatus: "Finalizado"}) {
		t.Error("Finalizado must be a candidate")
	}
	for _, status := range []string{"Pendiente", "Aplazado", "finalizado", ""} {
		if IsFinishedCandidate(&model.Match{SourceStatus: status}) {
			t.Errorf("%q must not be a candidate", status)
		}
	}
}

func TestParseGlobalScore(t *testing.T) {
	tests := []struct {
		name       string
		html       string
		home, away int
	}{
		{"hidden inputs", `<input id="scoreHome" value="4"><input id="scoreAway" value="3">`, 4, 3},
		{"rendered pair fallback", `<span>6 - 1</span>`, 6, 1},
		{"inputs win over text", `<input id="scoreHome" value="5"><input id="scoreAway" value="2"><span>9 - 9</span>`, 5, 2},
		{"empty", "", 0, 0},
		{"garbage", "<span>aplazado</span>", 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			home, away := parseGlobalScore(tt.html)
			if home != tt.home || away != tt.away {
				t.Errorf("parseGlobalScore(%q) = %d-%d, want %d-%d", tt.html, home, away, tt.home, tt.away)
			}
		})
	}
}
