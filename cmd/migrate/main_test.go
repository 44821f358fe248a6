package main

import "testing"

func TestDescriptionFromFilename(t *testing.T) {
	cases := map[string]string{
		"2026-10-14-001-create-state-snapshots.sql": "create state snapshots",
		"no-prefix.sql":                             "no prefix",
		"2026-10-14-002-x.sql":                      "x",
	}
	for in, want := range cases {
		if got := descriptionFromFilename(in); got != want {
			t.Errorf("descriptionFromFilename(%q) = %q, want %q", in, got, want)
		}
	}
}
