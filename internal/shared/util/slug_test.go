package util

import "testing"

func TestSlug(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"IT Security Policy", "it-security-policy"},
		{"handbook-ack", "handbook-ack"},
		{"Jane Doe", "jane-doe"},
		{"  --  ", "doc"},
		{"", "doc"},
		{"a__b..c", "a-b-c"},
	}
	for _, tc := range cases {
		if got := Slug(tc.in); got != tc.want {
			t.Errorf("Slug(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestDisplayName(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"jane_doe", "Jane Doe"},
		{"handbook-ack", "Handbook Ack"},
		{"IT-security", "It Security"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := DisplayName(tc.in); got != tc.want {
			t.Errorf("DisplayName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestSanitizeFileName(t *testing.T) {
	if _, err := SanitizeFileName("../etc/passwd"); err == nil {
		t.Fatalf("expected traversal rejection")
	}
	got, err := SanitizeFileName("a/b.pdf")
	if err != nil {
		t.Fatalf("SanitizeFileName: %v", err)
	}
	if got != "a_b.pdf" {
		t.Fatalf("expected a_b.pdf, got %q", got)
	}
}
