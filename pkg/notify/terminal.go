package notify

import (
	"io"

	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/fatih/color"

	"rmoflow/pkg/events"
)

// TerminalSink writes toasts to a terminal, color-coded by level.
type TerminalSink struct {
	Out io.Writer
}

func (t TerminalSink) Toast(msg events.ToastMsg) {
	var c *color.Color
	switch msg.Level {
	case events.ToastSuccess:
		c = color.New(color.FgGreen)
	case events.ToastError:
		c = color.New(color.FgRed)
	default:
		c = color.New(color.FgCyan)
	}
	_, _ = c.Fprintln(t.Out, msg.Text)
}

// ChannelSink forwards toasts onto a message channel for the UI loop.
// Posts are dropped rather than blocked when the channel is full.
type ChannelSink struct {
	Ch chan<- tea.Msg
}

func (s ChannelSink) Toast(msg events.ToastMsg) {
	select {
	case s.Ch <- msg:
	default:
	}
}
