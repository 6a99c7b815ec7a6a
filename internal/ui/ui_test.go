package ui

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/papapumpkin/pulsar/internal/network"
	"github.com/papapumpkin/pulsar/internal/rank"
	"github.com/papapumpkin/pulsar/internal/store"
)

func newTestPrinter() (*Printer, *bytes.Buffer) {
	var buf bytes.Buffer
	return NewWriter(&buf), &buf
}

func assertContains(t *testing.T, output string, checks map[string]string) {
	t.Helper()
	for name, substr := range checks {
		if !strings.Contains(output, substr) {
			t.Errorf("expected output to contain %s (%q), got:\n%s", name, substr, output)
		}
	}
}

func TestNewWriter_NoColorForBuffers(t *testing.T) {
	t.Parallel()
	p, buf := newTestPrinter()
	p.Error("boom")
	if strings.Contains(buf.String(), "\033[") {
		t.Errorf("expected no escape codes for a non-terminal writer, got %q", buf.String())
	}
}

func TestBanner(t *testing.T) {
	t.Parallel()
	p, buf := newTestPrinter()
	p.Banner()
	assertContains(t, buf.String(), map[string]string{"name": "PULSAR"})
}

func TestNetworkLoaded(t *testing.T) {
	t.Parallel()
	p, buf := newTestPrinter()
	p.NetworkLoaded("web.toml", network.Stats{Pages: 4, Links: 7, Dangling: 1})
	assertContains(t, buf.String(), map[string]string{
		"source":   "web.toml",
		"pages":    "4 pages",
		"links":    "7 links",
		"dangling": "1 dangling",
	})
}

func TestIterationLine(t *testing.T) {
	t.Parallel()
	line := IterationLine(rank.IterationStats{Iteration: 3, Difference: 0.00125, DangleSum: 0.25}, 100)
	assertContains(t, line, map[string]string{
		"prefix":     "[pulsar]",
		"iteration":  "iteration 3/100",
		"difference": "diff 1.250e-03",
		"dangling":   "dangling 0.2500",
	})
}

func TestProgress_UsesCarriageReturn(t *testing.T) {
	t.Parallel()
	p, buf := newTestPrinter()
	p.Progress(rank.IterationStats{Iteration: 1, Difference: 1}, 10)
	if !strings.HasPrefix(buf.String(), "\r") {
		t.Errorf("expected output to start with carriage return, got %q", buf.String())
	}
	if strings.Contains(buf.String(), "\n") {
		t.Errorf("expected no newline, got %q", buf.String())
	}
}

func TestRunOutcome(t *testing.T) {
	t.Parallel()

	t.Run("converged", func(t *testing.T) {
		t.Parallel()
		p, buf := newTestPrinter()
		p.Converged(17, 4.2e-7, 1500*time.Microsecond)
		assertContains(t, buf.String(), map[string]string{
			"status":     "converged",
			"iterations": "after 17 iteration(s)",
			"difference": "4.200e-07",
			"elapsed":    "1.5ms",
		})
	})

	t.Run("failed", func(t *testing.T) {
		t.Parallel()
		p, buf := newTestPrinter()
		p.Failed(errors.New("no luck"))
		assertContains(t, buf.String(), map[string]string{
			"status": "failed",
			"cause":  "no luck",
		})
	})

	t.Run("check passed", func(t *testing.T) {
		t.Parallel()
		p, buf := newTestPrinter()
		p.CheckPassed("SingleThreaded", 3e-9)
		assertContains(t, buf.String(), map[string]string{
			"reference": "SingleThreaded",
			"delta":     "3.000e-09",
		})
	})
}

func TestSortRows(t *testing.T) {
	t.Parallel()
	rows := []RankRow{
		{Page: "a", Rank: 0.1},
		{Page: "b", Rank: 0.4},
		{Page: "c", Rank: 0.1},
		{Page: "d", Rank: 0.4},
	}
	SortRows(rows)

	var got []string
	for _, r := range rows {
		got = append(got, r.Page)
	}
	if diff := cmp.Diff([]string{"b", "d", "a", "c"}, got); diff != "" {
		t.Errorf("SortRows order mismatch (-want +got):\n%s", diff)
	}
}

func TestRankTable(t *testing.T) {
	t.Parallel()
	rows := []RankRow{
		{Page: "home", ID: "0123456789abcdef0123", Rank: 0.5},
		{Page: "about", ID: "fedcba9876543210fedc", Rank: 0.3},
		{Page: "blog", ID: "aaaaaaaaaaaaaaaaaaaa", Rank: 0.2},
	}

	t.Run("all rows", func(t *testing.T) {
		t.Parallel()
		p, buf := newTestPrinter()
		p.RankTable(rows, 0)
		assertContains(t, buf.String(), map[string]string{
			"header":   "RANK",
			"first":    "home",
			"short id": "0123456789ab",
			"rank":     "0.500000",
			"last":     "blog",
		})
		if strings.Contains(buf.String(), "0123456789abc") {
			t.Errorf("expected IDs to be shortened, got:\n%s", buf.String())
		}
	})

	t.Run("top limits rows", func(t *testing.T) {
		t.Parallel()
		p, buf := newTestPrinter()
		p.RankTable(rows, 2)
		if strings.Contains(buf.String(), "blog") {
			t.Errorf("expected top=2 to omit the third row, got:\n%s", buf.String())
		}
	})
}

func TestRuns(t *testing.T) {
	t.Parallel()

	t.Run("empty", func(t *testing.T) {
		t.Parallel()
		p, buf := newTestPrinter()
		p.Runs(nil)
		assertContains(t, buf.String(), map[string]string{"message": "no stored runs"})
	})

	t.Run("rows", func(t *testing.T) {
		t.Parallel()
		p, buf := newTestPrinter()
		p.Runs([]store.Run{{
			ID:         "run-1",
			Network:    "web.toml",
			Ranker:     "MultiThreaded[4]",
			Pages:      12,
			Iterations: 31,
			Difference: 9.5e-7,
			StartedAt:  time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC),
		}})
		assertContains(t, buf.String(), map[string]string{
			"id":         "run-1",
			"network":    "web.toml",
			"ranker":     "MultiThreaded[4]",
			"iterations": "31",
			"difference": "9.50e-07",
		})
	})
}

func TestRunDetail(t *testing.T) {
	t.Parallel()
	p, buf := newTestPrinter()
	p.RunDetail(store.Run{
		ID:            "run-9",
		Network:       "web.hcl",
		Ranker:        "SingleThreaded",
		Alpha:         0.85,
		Tolerance:     1e-6,
		MaxIterations: 100,
		Threads:       1,
		Pages:         3,
		Iterations:    20,
		Difference:    1e-7,
		Duration:      time.Millisecond,
	})
	assertContains(t, buf.String(), map[string]string{
		"id":      "run-9",
		"network": "web.hcl",
		"options": "alpha=0.85 tolerance=1e-06 iterations≤100",
		"result":  "3 pages, 20 iteration(s)",
	})
}
