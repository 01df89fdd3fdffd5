package sink

import (
	"io"

	"keyinvader/keylog"

	"github.com/jedib0t/go-pretty/v6/text"
)

var kindColors = map[keylog.Kind]text.Colors{
	keylog.KindKeyDown:           {text.FgGreen},
	keylog.KindKeyDownSpecial:    {text.FgHiGreen},
	keylog.KindKeyUp:             {text.FgYellow},
	keylog.KindKeyUpSpecial:      {text.FgHiYellow},
	keylog.KindHotkeyShutdown:    {text.FgCyan, text.Bold},
	keylog.KindEmergencyShutdown: {text.FgRed, text.Bold},
	keylog.KindInterrupted:       {text.FgMagenta, text.Bold},
	keylog.KindBackendFailure:    {text.FgRed, text.Bold},
}

// ConsoleSink echoes events to a terminal.
type ConsoleSink struct {
	out   io.Writer
	color bool
}

func NewConsoleSink(out io.Writer, color bool) *ConsoleSink {
	return &ConsoleSink{out: out, color: color}
}

func (s *ConsoleSink) Update(src keylog.Source) error {
	e := src.Current()
	line := e.Text()
	if c, ok := kindColors[e.Kind]; ok && s.color {
		line = c.Sprint(line)
	}
	_, err := io.WriteString(s.out, line+"\n")
	return err
}
