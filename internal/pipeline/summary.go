package pipeline

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Summary is the outcome of one run.
type Summary struct {
	Jobs []*Job
}

// Failed counts manuals that were not written.
func (s *Summary) Failed() int {
	n := 0
	for _, j := range s.Jobs {
		if j.Status.Failed() {
			n++
		}
	}
	return n
}

// OK reports whether every manual was written.
func (s *Summary) OK() bool { return s.Failed() == 0 }

var (
	summaryHead = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF"))
	statusOK    = lipgloss.NewStyle().Foreground(lipgloss.Color("#4CAF50"))
	statusWarn  = lipgloss.NewStyle().Foreground(lipgloss.Color("#E0A030"))
	statusFail  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF6B6B"))
	summaryDim  = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	summaryBox  = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444444")).
			Padding(0, 1)
)

// Render formats the summary for the terminal.
func (s *Summary) Render() string {
	var lines []string
	lines = append(lines, summaryHead.Render("manualgest"))
	for _, j := range s.Jobs {
		lines = append(lines, renderJob(j))
	}
	written := len(s.Jobs) - s.Failed()
	total := fmt.Sprintf("%d written, %d failed", written, s.Failed())
	if s.OK() {
		lines = append(lines, statusOK.Render(total))
	} else {
		lines = append(lines, statusFail.Render(total))
	}
	return summaryBox.Render(strings.Join(lines, "\n"))
}

func renderJob(j *Job) string {
	name := fmt.Sprintf("%-12s", j.Key)
	switch j.Status {
	case StatusCompleted:
		return name + statusOK.Render("ok") + summaryDim.Render(fmt.Sprintf("  %d pages, %d tasks -> %s%s", j.Pages, j.Tasks, j.Output.Path, unchanged(j)))
	case StatusPartial:
		return name + statusWarn.Render(fmt.Sprintf("%d issues", len(j.Issues))) + summaryDim.Render(fmt.Sprintf("  %d pages, %d tasks -> %s%s", j.Pages, j.Tasks, j.Output.Path, unchanged(j)))
	case StatusNoSource:
		return name + statusFail.Render("no source")
	}
	msg := string(j.Status)
	if j.Err != nil {
		msg = fmt.Sprintf("%s in %s: %v", j.Status, j.Phase, j.Err)
	}
	return name + statusFail.Render(msg)
}

func unchanged(j *Job) string {
	if j.Output.Unchanged {
		return " (unchanged)"
	}
	return ""
}
