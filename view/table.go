package view

import (
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
)

type tableViewer struct {
	repo ViewRepository
	out  io.Writer
}

func NewTableViewer(repo ViewRepository, out io.Writer) Viewer {
	return &tableViewer{repo: repo, out: out}
}

func (t *tableViewer) Do(yearMonth string) error {
	ss, err := t.repo.ListSessions(yearMonth)
	if err != nil {
		return err
	}
	buildTableWriter(ss, t.out).Render()
	return nil
}

func buildTableWriter(ss sessionsForView, out io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.AppendHeader(table.Row{"Date", "Started", "Ended", "Duration", "Presses", "Releases", "Stop reason", "Log"})

	for _, s := range ss {
		t.AppendRow(table.Row{
			s.StartedAt.Local().Format("2006-01-02"),
			s.StartedAt.Local().Format("15:04:05"),
			ptrTimeToString(s.EndedAt),
			durationToString(s.Duration()),
			s.Presses,
			s.Releases,
			reasonOrRunning(s.Reason),
			s.LogPath,
		})
	}
	presses, releases, tracked := ss.Totals()
	t.AppendFooter(table.Row{"", "", "Total", durationToString(tracked), presses, releases, "", ""})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, AutoMerge: true},
	})
	t.SetStyle(table.StyleRounded)
	return t
}

func durationToString(d time.Duration) string {
	d = d.Round(time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", int(d.Hours()), int(d.Minutes())%60, int(d.Seconds())%60)
}

func ptrTimeToString(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Local().Format("15:04:05")
}

func reasonOrRunning(reason string) string {
	if reason == "" {
		return "running"
	}
	return reason
}
