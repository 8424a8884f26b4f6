package main

import (
	"fmt"
	"strings"
	"time"

	"meridian/internal/ledger"
)

func buildRunRows(runs []*ledger.Run) [][]string {
	if len(runs) == 0 {
		return nil
	}
	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		title := strings.TrimSpace(run.Title)
		if title == "" {
			title = "Untitled"
		}
		rows = append(rows, []string{
			shortRunID(run.RunID),
			title,
			formatStatusLabel(string(run.Status)),
			run.Stage,
			formatProgress(run.StageCurrent, run.StageTotal),
			formatDisplayTime(run.CreatedAt),
		})
	}
	return rows
}

func formatStatusLabel(status string) string {
	status = strings.TrimSpace(status)
	if status == "" {
		return ""
	}
	parts := strings.Split(status, "_")
	for i, part := range parts {
		lower := strings.ToLower(part)
		if lower == "" {
			continue
		}
		parts[i] = strings.ToUpper(lower[:1]) + lower[1:]
	}
	return strings.Join(parts, " ")
}

func formatProgress(current, total int) string {
	if total <= 0 {
		return "-"
	}
	return fmt.Sprintf("%d/%d", current, total)
}

func formatDisplayTime(value time.Time) string {
	if value.IsZero() {
		return ""
	}
	return value.UTC().Format("2006-01-02 15:04")
}

// shortRunID keeps the first UUID group, enough to disambiguate runs in a
// table while `runs show` accepts the prefix.
func shortRunID(id string) string {
	id = strings.TrimSpace(id)
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	value := float64(n)
	exp := 0
	for value >= unit && exp < 4 {
		value /= unit
		exp++
	}
	suffixes := []string{"KiB", "MiB", "GiB", "TiB"}
	return fmt.Sprintf("%.1f %s", value, suffixes[exp-1])
}
