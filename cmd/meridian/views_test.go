package main

import (
	"testing"
	"time"

	"meridian/internal/ledger"
)

func TestFormatStatusLabel(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"pending", "Pending"},
		{"running", "Running"},
		{"completed", "Completed"},
		{"in_flight", "In Flight"},
		{"  failed  ", "Failed"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := formatStatusLabel(tc.in); got != tc.want {
			t.Fatalf("formatStatusLabel(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestFormatProgress(t *testing.T) {
	if got := formatProgress(3, 7); got != "3/7" {
		t.Fatalf("formatProgress(3, 7) = %q", got)
	}
	if got := formatProgress(0, 0); got != "-" {
		t.Fatalf("formatProgress(0, 0) = %q", got)
	}
}

func TestFormatDisplayTime(t *testing.T) {
	if got := formatDisplayTime(time.Time{}); got != "" {
		t.Fatalf("zero time should render empty, got %q", got)
	}
	stamp := time.Date(2024, 6, 1, 14, 30, 0, 0, time.UTC)
	if got := formatDisplayTime(stamp); got != "2024-06-01 14:30" {
		t.Fatalf("formatDisplayTime = %q", got)
	}
}

func TestShortRunID(t *testing.T) {
	if got := shortRunID("0f9a2c14-77aa-4f02-9c1d-3a5be0a61f4d"); got != "0f9a2c14" {
		t.Fatalf("shortRunID = %q", got)
	}
	if got := shortRunID("abc"); got != "abc" {
		t.Fatalf("short input should pass through, got %q", got)
	}
}

func TestFormatBytes(t *testing.T) {
	cases := []struct {
		in   int64
		want string
	}{
		{512, "512 B"},
		{2048, "2.0 KiB"},
		{5 * 1024 * 1024, "5.0 MiB"},
		{int64(3.5 * 1024 * 1024 * 1024), "3.5 GiB"},
	}
	for _, tc := range cases {
		if got := formatBytes(tc.in); got != tc.want {
			t.Fatalf("formatBytes(%d) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestBuildRunRows(t *testing.T) {
	created := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	runs := []*ledger.Run{
		{
			RunID:        "0f9a2c14-77aa-4f02-9c1d-3a5be0a61f4d",
			Title:        "Harbor Sunrise",
			Status:       ledger.StatusRunning,
			Stage:        "encode",
			StageCurrent: 6,
			StageTotal:   7,
			CreatedAt:    created,
		},
		{
			RunID:  "aaaabbbb-0000-1111-2222-333344445555",
			Status: ledger.StatusPending,
		},
	}

	rows := buildRunRows(runs)
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	want := []string{"0f9a2c14", "Harbor Sunrise", "Running", "encode", "6/7", "2024-06-01 09:00"}
	for i, cell := range want {
		if rows[0][i] != cell {
			t.Fatalf("row 0 col %d = %q, want %q", i, rows[0][i], cell)
		}
	}
	if rows[1][1] != "Untitled" {
		t.Fatalf("blank title should render Untitled, got %q", rows[1][1])
	}
	if rows[1][4] != "-" {
		t.Fatalf("zero total should render -, got %q", rows[1][4])
	}
}
