package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"go.trai.ch/overlens/internal/app"
	"go.trai.ch/overlens/internal/ui/style"
)

var (
	fileStyle  = lipgloss.NewStyle().Bold(true)
	mutedStyle = lipgloss.NewStyle().Foreground(style.Slate)
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// renderResult prints a file heading followed by one line per relation.
func renderResult(w io.Writer, r app.Result) {
	_, _ = fmt.Fprintln(w, fileStyle.Render(r.File))
	if len(r.Relations) == 0 {
		_, _ = fmt.Fprintln(w, "  "+mutedStyle.Render("no override relations"))
		return
	}
	for _, rel := range r.Relations {
		_, _ = fmt.Fprintf(w, "  %4d %s %s\n", rel.Line, style.Relation(rel.Overrides()), rel.Describe())
	}
}

func renderStatus(w io.Writer, report *app.StatusReport) {
	worker := "stopped"
	switch st := report.Status.Worker; {
	case st.Ready:
		worker = fmt.Sprintf("ready (pid %d)", st.PID)
	case st.Running:
		worker = fmt.Sprintf("starting (pid %d)", st.PID)
	}

	lastScan := "never"
	if idx := report.Status.Index; !idx.LastScan.IsZero() {
		lastScan = idx.LastScan.Local().Format("2006-01-02 15:04:05")
	}

	rows := [][2]string{
		{"Root", report.Root},
		{"Worker", strings.Join(report.Command, " ")},
		{"State", worker},
		{"Snapshot", report.SnapshotPath},
		{"Files", fmt.Sprint(report.Status.Index.Files)},
		{"Relations", fmt.Sprint(report.Status.Index.Relations)},
		{"Dependencies", fmt.Sprint(report.Status.Index.Dependencies)},
		{"Last scan", lastScan},
	}
	for _, row := range rows {
		_, _ = fmt.Fprintf(w, "%-13s %s\n", mutedStyle.Render(row[0]+":"), row[1])
	}
}
