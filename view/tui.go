package view

import (
	"fmt"
	"log/slog"

	"github.com/gdamore/tcell/v2"

	"github.com/rivo/tview"
)

func NewTUI(repo ViewRepository, logger *slog.Logger) Viewer {
	return &tui{
		repo:   repo,
		logger: logger,
	}
}

type tui struct {
	repo   ViewRepository
	logger *slog.Logger

	app *tview.Application
}

func (t *tui) Do(yearMonth string) error {
	ss, err := t.repo.ListSessions(yearMonth)
	if err != nil {
		return err
	}

	t.app = tview.NewApplication()
	table := newSessionTable(ss)
	table.Select(1, 0).SetFixed(1, 0).SetSelectable(true, false)
	table.SetDoneFunc(func(key tcell.Key) {
		if key == tcell.KeyEscape {
			t.app.Stop()
		}
	})
	t.app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Rune() == 'q' {
			t.app.Stop()
			return nil
		}
		return event
	})

	title := yearMonth
	if title == "" {
		title = "this month"
	}
	root := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(tview.NewTextView().SetText(fmt.Sprintf("Tracking sessions, %s (q to quit)", title)), 1, 1, false).
		AddItem(table, 0, 1, true)
	t.logger.Debug("open session viewer", slog.Int("sessions", len(ss)))
	return t.app.SetRoot(root, true).Run()
}

var sessionHeader = []string{"Date", "Started", "Ended", "Duration", "Presses", "Releases", "Stop reason"}

func newSessionTable(ss sessionsForView) *tview.Table {
	table := tview.NewTable().SetBorders(true)
	for col, h := range sessionHeader {
		table.SetCell(0, col, tview.NewTableCell(h).SetAlign(tview.AlignCenter).SetSelectable(false))
	}

	for i, s := range ss {
		row := i + 1
		reason := reasonOrRunning(s.Reason)
		color := tcell.ColorWhite
		switch reason {
		case "emergency_shutdown", "backend_failure":
			color = tcell.ColorRed
		case "running":
			color = tcell.ColorGreen
		}
		cells := []string{
			s.StartedAt.Local().Format("2006-01-02"),
			s.StartedAt.Local().Format("15:04:05"),
			ptrTimeToString(s.EndedAt),
			durationToString(s.Duration()),
			fmt.Sprint(s.Presses),
			fmt.Sprint(s.Releases),
			reason,
		}
		for col, c := range cells {
			table.SetCell(row, col, tview.NewTableCell(c).SetAlign(tview.AlignCenter).SetTextColor(color))
		}
	}

	presses, releases, tracked := ss.Totals()
	last := len(ss) + 1
	table.SetCell(last, 2, tview.NewTableCell("Total").SetAlign(tview.AlignCenter).SetSelectable(false))
	table.SetCell(last, 3, tview.NewTableCell(durationToString(tracked)).SetAlign(tview.AlignCenter).SetSelectable(false))
	table.SetCell(last, 4, tview.NewTableCell(fmt.Sprint(presses)).SetAlign(tview.AlignCenter).SetSelectable(false))
	table.SetCell(last, 5, tview.NewTableCell(fmt.Sprint(releases)).SetAlign(tview.AlignCenter).SetSelectable(false))
	return table
}
