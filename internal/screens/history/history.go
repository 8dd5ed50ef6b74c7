package history

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"

	"charm.land/lipgloss/v2"

	"github.com/gentaprep/genta-tui/internal/practice"
	"github.com/gentaprep/genta-tui/internal/router"
	"github.com/gentaprep/genta-tui/internal/screen"
	"github.com/gentaprep/genta-tui/internal/section"
	"github.com/gentaprep/genta-tui/internal/store"
	"github.com/gentaprep/genta-tui/internal/ui/layout"
	"github.com/gentaprep/genta-tui/internal/ui/theme"
)

// row is one displayed session, from either the server list or the
// local event log.
type row struct {
	Section            string
	EndedAt            time.Time
	QuestionsAttempted int
	QuestionsCorrect   int
	DurationSecs       int
}

type historyLoadedMsg struct {
	Rows    []row
	Stats   map[string]store.SectionStats
	Offline bool
	Err     error
}

// HistoryScreen displays past sessions and per-section totals. Server
// history is preferred; the local event log fills in when offline.
type HistoryScreen struct {
	svc       *practice.Service
	eventRepo store.EventRepo
	rows      []row
	stats     map[string]store.SectionStats
	offline   bool
	selected  int
	expanded  map[int]bool
	loaded    bool
	errMsg    string
}

var _ screen.Screen = (*HistoryScreen)(nil)
var _ screen.KeyHintProvider = (*HistoryScreen)(nil)

// New creates a new HistoryScreen.
func New(svc *practice.Service, eventRepo store.EventRepo) *HistoryScreen {
	return &HistoryScreen{
		svc:       svc,
		eventRepo: eventRepo,
		expanded:  make(map[int]bool),
	}
}

func (s *HistoryScreen) Init() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		msg := historyLoadedMsg{}

		if list, err := s.svc.ListSessions(ctx, 1, 50); err == nil {
			msg.Rows = serverRows(list.Data)
		} else {
			msg.Offline = true
			local, lerr := s.eventRepo.RecentSessions(ctx, 50)
			if lerr != nil {
				return historyLoadedMsg{Err: lerr}
			}
			msg.Rows = localRows(local)
		}

		stats, err := s.eventRepo.SectionStats(ctx)
		if err != nil {
			stats = map[string]store.SectionStats{}
		}
		msg.Stats = stats
		return msg
	}
}

func serverRows(sessions []practice.Session) []row {
	rows := make([]row, 0, len(sessions))
	for _, sess := range sessions {
		if sess.EndedAt == nil {
			continue
		}
		r := row{
			EndedAt:            *sess.EndedAt,
			QuestionsAttempted: sess.QuestionsAttempted,
			QuestionsCorrect:   sess.QuestionsCorrect,
		}
		if sess.Section != nil {
			r.Section = string(*sess.Section)
		}
		if sess.DurationMinutes != nil {
			r.DurationSecs = *sess.DurationMinutes * 60
		} else {
			r.DurationSecs = int(sess.EndedAt.Sub(sess.StartedAt).Seconds())
		}
		rows = append(rows, r)
	}
	return rows
}

func localRows(sessions []store.SessionHistory) []row {
	rows := make([]row, 0, len(sessions))
	for _, sess := range sessions {
		rows = append(rows, row{
			Section:            sess.Section,
			EndedAt:            sess.EndedAt,
			QuestionsAttempted: sess.QuestionsAttempted,
			QuestionsCorrect:   sess.QuestionsCorrect,
			DurationSecs:       sess.DurationSecs,
		})
	}
	return rows
}

func (s *HistoryScreen) Title() string {
	return "Riwayat"
}

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Details"},
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		} else {
			s.rows = msg.Rows
			s.stats = msg.Stats
			s.offline = msg.Offline
		}
		s.loaded = true
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
			return s, nil
		case "down", "j":
			if s.selected < len(s.rows)-1 {
				s.selected++
			}
			return s, nil
		case "enter":
			s.expanded[s.selected] = !s.expanded[s.selected]
			return s, nil
		}
	}
	return s, nil
}

func (s *HistoryScreen) View(width, height int) string {
	if s.errMsg != "" {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.Current.Danger).
			Render(fmt.Sprintf("\n\nError: %s", s.errMsg))
	}
	if !s.loaded {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.Current.TextDim).
			Render("\n\n  Loading history...")
	}
	if len(s.rows) == 0 {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.Current.TextDim).Italic(true).
			Render("\n\n  Belum ada sesi. Mulai latihan dulu!")
	}

	var b strings.Builder
	b.WriteString("\n")

	if s.offline {
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			lipgloss.NewStyle().Foreground(theme.Current.TextDim).Italic(true).
				Render("Offline: riwayat lokal saja")))
		b.WriteString("\n\n")
	}

	for i, sess := range s.rows {
		dateStr := sess.EndedAt.Format("Jan 02, 2006")
		mins := sess.DurationSecs / 60
		secs := sess.DurationSecs % 60
		durationStr := fmt.Sprintf("%d:%02d", mins, secs)

		var accuracy float64
		if sess.QuestionsAttempted > 0 {
			accuracy = float64(sess.QuestionsCorrect) / float64(sess.QuestionsAttempted) * 100
		}

		prefix := "  "
		if i == s.selected {
			prefix = "> "
		}

		line := fmt.Sprintf("%s%s  %s  %s  %d soal  %.0f%%",
			prefix, dateStr, sess.Section, durationStr, sess.QuestionsAttempted, accuracy)

		style := lipgloss.NewStyle().Foreground(theme.Current.Text)
		if i == s.selected {
			style = style.Foreground(theme.Current.Primary).Bold(true)
		}
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			style.Render(line)))
		b.WriteString("\n")

		// Expanded row: lifetime totals for that session's section.
		if s.expanded[i] {
			st, ok := s.stats[sess.Section]
			if !ok || st.Attempts == 0 {
				b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
					lipgloss.NewStyle().Foreground(theme.Current.TextDim).Italic(true).
						Render("    Belum ada statistik subtes")))
				b.WriteString("\n")
			} else {
				name := section.Section(sess.Section).Name()
				detail := fmt.Sprintf("    %s: %d/%d benar sepanjang waktu (%.0f%%)",
					name, st.Correct, st.Attempts, st.Accuracy()*100)
				b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
					lipgloss.NewStyle().Foreground(theme.Current.Secondary).Render(detail)))
				b.WriteString("\n")
			}
		}
	}

	return b.String()
}
