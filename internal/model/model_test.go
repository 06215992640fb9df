package model

import "testing"

func TestTeamCodeFamilies(t *testing.T) {
	home := []TeamCode{CodeA, CodeB, CodeC, CodeABC}
	away := []TeamCode{CodeX, CodeY, CodeZ, CodeXYZ}

	for _, c := range home {
		if c.Family() != FamilyHome {
			t.Errorf("%s: family = %v, want home", c, c.Family())
		}
		if !c.Valid() {
			t.Errorf("%s must be valid", c)
		}
	}
	for _, c := range away {
		if c.Family() != FamilyAway {
			t.Errorf("%s: family = %v, want away", c, c.Family())
		}
	}

	for _, s := range []string{"", "D", "AB", "AXZ", "doubles"} {
		if c := TeamCode(s); c.Family() != FamilyNone || c.Valid() {
			t.Errorf("%q must be outside the alphabet", s)
		}
	}
}

func TestParseTeamCode(t *testing.T) {
	cases := map[string]TeamCode{
		"a":      CodeA,
		" X ":    CodeX,
		"abc":    CodeABC,
		"\txyz ": CodeXYZ,
	}
	for in, want := range cases {
		if got := ParseTeamCode(in); got != want {
			t.Errorf("ParseTeamCode(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSafeLabel(t *testing.T) {
	cases := map[string]string{
		"Grupo 6":          "Grupo6",
		"Grupo 7":          "Grupo7",
		"División de Honor": "DivisindeHonor",
		"":                 "",
	}
	for in, want := range cases {
		if got := SafeLabel(in); got != want {
			t.Errorf("SafeLabel(%q) = %q, want %q", in, got, want)
		}
	}
}
