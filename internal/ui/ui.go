// Package ui renders pulsar's human-facing terminal output with lipgloss.
package ui

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/papapumpkin/pulsar/internal/network"
	"github.com/papapumpkin/pulsar/internal/pageid"
	"github.com/papapumpkin/pulsar/internal/rank"
	"github.com/papapumpkin/pulsar/internal/store"
)

// idWidth is how many hex digits of a page ID are shown in tables.
const idWidth = 12

// Printer writes status lines and result tables to a terminal.
type Printer struct {
	w  io.Writer
	st styles
}

// New returns a Printer writing to stderr.
func New() *Printer {
	return NewWriter(os.Stderr)
}

// NewWriter returns a Printer writing to w. Colors are enabled only when w
// is a terminal that supports them.
func NewWriter(w io.Writer) *Printer {
	return &Printer{w: w, st: newStyles(lipgloss.NewRenderer(w))}
}

// Banner prints the program banner.
func (p *Printer) Banner() {
	title := p.st.title.Render("PULSAR") + "  " + p.st.muted.Render("parallel PageRank")
	fmt.Fprintln(p.w, p.st.banner.Render(title))
}

// NetworkLoaded reports a parsed network.
func (p *Printer) NetworkLoaded(source string, s network.Stats) {
	fmt.Fprintf(p.w, "%s %s %s\n",
		p.st.success.Render(iconDone),
		source,
		p.st.muted.Render(fmt.Sprintf("(%d pages, %d links, %d dangling)", s.Pages, s.Links, s.Dangling)))
}

// RunStart reports the ranker and options of a run.
func (p *Printer) RunStart(ranker string, opts rank.Options) {
	fmt.Fprintf(p.w, "%s %s %s\n",
		p.st.working.Render(iconWorking),
		p.st.title.Render(ranker),
		p.st.muted.Render(fmt.Sprintf("alpha=%g tolerance=%g iterations≤%d", opts.Alpha, opts.Tolerance, opts.Iterations)))
}

// IterationLine formats one iteration as a single status line.
func IterationLine(s rank.IterationStats, budget int) string {
	return fmt.Sprintf("[pulsar] iteration %d/%d | diff %.3e | dangling %.4f",
		s.Iteration, budget, s.Difference, s.DangleSum)
}

// Iteration prints one iteration on its own line.
func (p *Printer) Iteration(s rank.IterationStats, budget int) {
	fmt.Fprintln(p.w, p.st.muted.Render(IterationLine(s, budget)))
}

// Progress overwrites the current line with the iteration status. Call Done
// to end the line.
func (p *Printer) Progress(s rank.IterationStats, budget int) {
	fmt.Fprintf(p.w, "\r%s", IterationLine(s, budget))
}

// Converged reports a successful run.
func (p *Printer) Converged(iterations int, difference float64, elapsed time.Duration) {
	fmt.Fprintf(p.w, "%s %s %s\n",
		p.st.success.Render(iconDone+" converged"),
		fmt.Sprintf("after %d iteration(s)", iterations),
		p.st.muted.Render(fmt.Sprintf("(diff %.3e, %s)", difference, elapsed.Round(time.Microsecond))))
}

// Failed reports a run that ended with err.
func (p *Printer) Failed(err error) {
	fmt.Fprintf(p.w, "%s %v\n", p.st.danger.Render(iconFailed+" failed:"), err)
}

// CheckPassed reports agreement with the reference ranker.
func (p *Printer) CheckPassed(reference string, maxDelta float64) {
	fmt.Fprintf(p.w, "%s %s\n",
		p.st.success.Render(iconDone+" matches "+reference),
		p.st.muted.Render(fmt.Sprintf("(max delta %.3e)", maxDelta)))
}

// Saved reports a run written to the result store.
func (p *Printer) Saved(runID string) {
	fmt.Fprintf(p.w, "%s run %s\n", p.st.success.Render(iconDone+" saved"), runID)
}

// Watching reports that path is being watched for changes.
func (p *Printer) Watching(path string) {
	fmt.Fprintf(p.w, "%s %s\n", p.st.accent.Render(iconWorking+" watching"), path)
}

// Info prints a de-emphasized informational line.
func (p *Printer) Info(msg string) {
	fmt.Fprintf(p.w, "%s %s\n", p.st.muted.Render(iconInfo), msg)
}

// Error prints an error line.
func (p *Printer) Error(msg string) {
	fmt.Fprintf(p.w, "%s%s\n", p.st.danger.Render("error: "), msg)
}

// RankRow is one line of a rank table.
type RankRow struct {
	Page string
	ID   pageid.ID
	Rank float64
}

// SortRows orders rows by rank, highest first. Ties keep their order.
func SortRows(rows []RankRow) {
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Rank > rows[j].Rank })
}

// RankTable renders the top rows, in the order given, as a bordered table.
// A top of zero or less renders every row.
func (p *Printer) RankTable(rows []RankRow, top int) {
	if top > 0 && top < len(rows) {
		rows = rows[:top]
	}
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(p.st.border).
		Headers("#", "PAGE", "ID", "RANK").
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return p.st.header
			case col == 0 || col == 3:
				return p.st.number
			default:
				return p.st.cell
			}
		})
	for i, r := range rows {
		t.Row(strconv.Itoa(i+1), r.Page, r.ID.Short(idWidth), strconv.FormatFloat(r.Rank, 'f', 6, 64))
	}
	fmt.Fprintln(p.w, t.Render())
}

// Runs renders stored runs as a table.
func (p *Printer) Runs(runs []store.Run) {
	if len(runs) == 0 {
		p.Info("no stored runs")
		return
	}
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(p.st.border).
		Headers("RUN", "STARTED", "NETWORK", "RANKER", "PAGES", "ITER", "DIFF").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return p.st.header
			}
			if col >= 4 {
				return p.st.number
			}
			return p.st.cell
		})
	for _, r := range runs {
		t.Row(
			r.ID,
			r.StartedAt.Local().Format(time.DateTime),
			r.Network,
			r.Ranker,
			strconv.Itoa(r.Pages),
			strconv.Itoa(r.Iterations),
			strconv.FormatFloat(r.Difference, 'e', 2, 64),
		)
	}
	fmt.Fprintln(p.w, t.Render())
}

// RunDetail prints the header of one stored run.
func (p *Printer) RunDetail(r store.Run) {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", p.st.title.Render("run"), r.ID)
	fmt.Fprintf(&b, "  network    %s\n", r.Network)
	fmt.Fprintf(&b, "  ranker     %s (threads %d)\n", r.Ranker, r.Threads)
	fmt.Fprintf(&b, "  options    alpha=%g tolerance=%g iterations≤%d\n", r.Alpha, r.Tolerance, r.MaxIterations)
	fmt.Fprintf(&b, "  result     %d pages, %d iteration(s), diff %.3e\n", r.Pages, r.Iterations, r.Difference)
	fmt.Fprintf(&b, "  started    %s (%s)\n", r.StartedAt.Local().Format(time.DateTime), r.Duration)
	fmt.Fprint(p.w, b.String())
}
