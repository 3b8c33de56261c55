package analysis

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/tphakala/keyclip/internal/conf"
	"github.com/tphakala/keyclip/internal/session"
	"github.com/tphakala/keyclip/internal/timeline"
)

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
var cellStyle = lipgloss.NewStyle().Padding(0, 1)

// Inspect loads a take, applies the click times as hit tests and prints the
// resulting timeline to w.
func Inspect(ctx context.Context, settings *conf.Settings, w io.Writer, take Take, clicks []float64) error {
	s, err := LoadTake(ctx, settings, take, nil)
	if err != nil {
		return err
	}
	defer s.Close()

	buf := s.Buffer()
	events := s.Events()
	fmt.Fprintf(w, "%s: %.2fs at %d Hz, %d key presses\n",
		filepath.Base(take.Audio), buf.Duration(), buf.SampleRate(), len(events))

	for _, t := range clicks {
		evt, ok := s.ToggleAt(t)
		if !ok {
			fmt.Fprintf(w, "click %.2fs: no key press within %.2fs\n", t, settings.Timeline.HitThreshold)
			continue
		}
		verb := "deselected"
		if evt.Selected {
			verb = "selected"
		}
		fmt.Fprintf(w, "click %.2fs: %s %s at %.3fs\n", t, verb, evt.Display, evt.Time)
	}

	if len(events) == 0 {
		return nil
	}
	fmt.Fprintln(w, eventTable(s))
	return nil
}

func eventTable(s *session.Session) string {
	events := s.Events()
	rows := make([][]string, 0, len(events))
	for i := range events {
		rows = append(rows, eventRow(i+1, &events[i]))
	}

	return table.New().
		Border(lipgloss.NormalBorder()).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers("#", "TIME", "KEY", "CODE", "GROUP", "WINDOW", "SEL").
		Rows(rows...).
		String()
}

func eventRow(n int, evt *timeline.KeyEvent) []string {
	selected := ""
	if evt.Selected {
		selected = "*"
	}
	return []string{
		strconv.Itoa(n),
		fmt.Sprintf("%.3fs", evt.Time),
		evt.Display,
		evt.Code,
		string(evt.Group),
		fmt.Sprintf("%.3f-%.3fs", evt.WindowStart, evt.WindowEnd),
		selected,
	}
}
