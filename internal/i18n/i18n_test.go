package i18n

import "testing"

func TestNormalize(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"fr", "fr"},
		{"fr-CA", "fr"},
		{"en", "en"},
		{"en-GB", "en"},
		{"de", "en"},
		{"", "en"},
		{"not a tag", "en"},
	}
	for _, c := range cases {
		if got := Normalize(c.in); got != c.want {
			t.Errorf("Normalize(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestT(t *testing.T) {
	if got := T("en", "export.exerciseLabel", 3); got != "Exercise 3" {
		t.Errorf("en label = %q", got)
	}
	if got := T("fr", "export.exerciseLabel", 3); got != "Exercice 3" {
		t.Errorf("fr label = %q", got)
	}
	if got := T("fr-CA", "notify.exerciseDeleted"); got != "Exercice supprimé." {
		t.Errorf("regional tag = %q", got)
	}
	if got := T("en", "no.such.key"); got != "no.such.key" {
		t.Errorf("unknown key = %q", got)
	}
}

func TestFormatDate(t *testing.T) {
	if got := FormatDate("2024-09-02", "en"); got != "September 2, 2024" {
		t.Errorf("en = %q", got)
	}
	if got := FormatDate("2024-09-02", "fr"); got != "2 septembre 2024" {
		t.Errorf("fr = %q", got)
	}
	if got := FormatDate("2024-08-01", "fr"); got != "1 août 2024" {
		t.Errorf("fr août = %q", got)
	}
	if got := FormatDate("not-a-date", "en"); got != "not-a-date" {
		t.Errorf("unparseable input must pass through, got %q", got)
	}
}
