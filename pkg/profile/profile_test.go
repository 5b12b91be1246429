package profile

import "testing"

func TestInitials(t *testing.T) {
	cases := []struct {
		name string
		p    Profile
		want string
	}{
		{"split fields", Profile{FirstName: "jane", LastName: "doe"}, "JD"},
		{"full name fallback", Profile{FullName: "Arjun Singh"}, "AS"},
		{"middle names ignored", Profile{FullName: "Mary Jane van Dyk"}, "MD"},
		{"single name", Profile{FullName: "Cher"}, "C"},
		{"empty", Profile{}, ""},
	}
	for _, tc := range cases {
		if got := tc.p.Initials(); got != tc.want {
			t.Errorf("%s: Initials() = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestThemeDefaultsToSystem(t *testing.T) {
	var p Profile
	if p.Theme() != ThemeSystem {
		t.Fatalf("default theme = %q", p.Theme())
	}
	p.Prefs.Theme = ThemeDark
	if p.Theme() != ThemeDark {
		t.Fatalf("theme = %q", p.Theme())
	}
}
