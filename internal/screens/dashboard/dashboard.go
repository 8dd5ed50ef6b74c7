// Package dashboard renders the readiness overview, per-section detail,
// and progress analytics.
package dashboard

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/gentaprep/genta-tui/internal/analytics"
	"github.com/gentaprep/genta-tui/internal/readiness"
	"github.com/gentaprep/genta-tui/internal/router"
	"github.com/gentaprep/genta-tui/internal/screen"
	"github.com/gentaprep/genta-tui/internal/section"
	"github.com/gentaprep/genta-tui/internal/ui/components"
	"github.com/gentaprep/genta-tui/internal/ui/layout"
	"github.com/gentaprep/genta-tui/internal/ui/theme"
)

type overviewLoadedMsg struct {
	Overview *readiness.Overview
	Progress *analytics.Progress
	Err      error
}

type detailLoadedMsg struct {
	Detail *readiness.SectionDetail
	Err    error
}

type progressLoadedMsg struct {
	Progress *analytics.Progress
	Err      error
}

type targetSavedMsg struct {
	Updated *readiness.SectionReadiness
	Err     error
}

type mode int

const (
	modeOverview mode = iota
	modeDetail
)

// DashboardScreen shows how ready the learner is, per section and
// overall, plus recent progress.
type DashboardScreen struct {
	readySvc *readiness.Service
	statsSvc *analytics.Service

	mode     mode
	overview *readiness.Overview
	progress *analytics.Progress
	window   analytics.Window
	detail   *readiness.SectionDetail
	selected int
	target   float64
	loaded   bool
	busy     bool
	errMsg   string
}

var _ screen.Screen = (*DashboardScreen)(nil)
var _ screen.KeyHintProvider = (*DashboardScreen)(nil)

// New creates the dashboard screen.
func New(readySvc *readiness.Service, statsSvc *analytics.Service) *DashboardScreen {
	return &DashboardScreen{
		readySvc: readySvc,
		statsSvc: statsSvc,
		window:   analytics.Month,
	}
}

func (s *DashboardScreen) Init() tea.Cmd {
	return s.loadOverviewCmd()
}

func (s *DashboardScreen) Title() string {
	if s.mode == modeDetail && s.detail != nil {
		return "Kesiapan " + string(s.detail.Section)
	}
	return "Dashboard"
}

func (s *DashboardScreen) KeyHints() []layout.KeyHint {
	if s.mode == modeDetail {
		return []layout.KeyHint{
			{Key: "+/-", Description: "Adjust target"},
			{Key: "Esc", Description: "Back"},
		}
	}
	return []layout.KeyHint{
		{Key: "↑/↓", Description: "Section"},
		{Key: "Enter", Description: "Detail"},
		{Key: "1/2/3", Description: "Week/Month/Quarter"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *DashboardScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case overviewLoadedMsg:
		s.busy = false
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		s.overview = msg.Overview
		s.progress = msg.Progress
		s.loaded = true
		return s, nil

	case detailLoadedMsg:
		s.busy = false
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		s.detail = msg.Detail
		s.target = msg.Detail.TargetTheta
		s.mode = modeDetail
		return s, nil

	case progressLoadedMsg:
		s.busy = false
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		s.progress = msg.Progress
		return s, nil

	case targetSavedMsg:
		s.busy = false
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		if s.detail != nil && msg.Updated != nil {
			s.detail.SectionReadiness = *msg.Updated
			s.target = msg.Updated.TargetTheta
		}
		return s, nil

	case tea.KeyMsg:
		return s.handleKey(msg)
	}
	return s, nil
}

func (s *DashboardScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	if s.errMsg != "" {
		s.errMsg = ""
		if s.mode == modeOverview && !s.loaded {
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		}
		return s, nil
	}
	if s.busy {
		return s, nil
	}

	if s.mode == modeDetail {
		switch msg.String() {
		case "esc":
			s.mode = modeOverview
			s.detail = nil
			return s, nil
		case "+", "=":
			return s.adjustTarget(0.1)
		case "-", "_":
			return s.adjustTarget(-0.1)
		}
		return s, nil
	}

	switch msg.String() {
	case "esc":
		return s, func() tea.Msg { return router.PopScreenMsg{} }
	case "up", "k":
		if s.selected > 0 {
			s.selected--
		}
	case "down", "j":
		if s.selected < len(section.All)-1 {
			s.selected++
		}
	case "enter":
		s.busy = true
		return s, s.loadDetailCmd(section.All[s.selected])
	case "1":
		return s.switchWindow(analytics.Week)
	case "2":
		return s.switchWindow(analytics.Month)
	case "3":
		return s.switchWindow(analytics.Quarter)
	}
	return s, nil
}

func (s *DashboardScreen) switchWindow(w analytics.Window) (screen.Screen, tea.Cmd) {
	if w == s.window {
		return s, nil
	}
	s.window = w
	s.busy = true
	return s, s.loadProgressCmd(w)
}

// adjustTarget nudges the target theta and saves it. The server clamps
// to [-3, 3]; mirroring it here keeps the UI honest while waiting.
func (s *DashboardScreen) adjustTarget(delta float64) (screen.Screen, tea.Cmd) {
	if s.detail == nil {
		return s, nil
	}
	next := s.target + delta
	if next > 3 {
		next = 3
	}
	if next < -3 {
		next = -3
	}
	if next == s.target {
		return s, nil
	}
	s.target = next
	s.busy = true
	sec := s.detail.Section
	return s, func() tea.Msg {
		updated, err := s.readySvc.UpdateTarget(context.Background(), sec, next)
		return targetSavedMsg{Updated: updated, Err: err}
	}
}

func (s *DashboardScreen) loadOverviewCmd() tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		ov, err := s.readySvc.Overview(ctx)
		if err != nil {
			return overviewLoadedMsg{Err: err}
		}
		prog, err := s.statsSvc.Progress(ctx, s.window, nil)
		if err != nil {
			return overviewLoadedMsg{Err: err}
		}
		return overviewLoadedMsg{Overview: ov, Progress: prog}
	}
}

func (s *DashboardScreen) loadDetailCmd(sec section.Section) tea.Cmd {
	return func() tea.Msg {
		det, err := s.readySvc.SectionDetail(context.Background(), sec)
		return detailLoadedMsg{Detail: det, Err: err}
	}
}

func (s *DashboardScreen) loadProgressCmd(w analytics.Window) tea.Cmd {
	return func() tea.Msg {
		prog, err := s.statsSvc.Progress(context.Background(), w, nil)
		return progressLoadedMsg{Progress: prog, Err: err}
	}
}

func (s *DashboardScreen) View(width, height int) string {
	if s.errMsg != "" {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.Current.Danger).
			Render(fmt.Sprintf("\n\nError: %s\n\nPress any key.", s.errMsg))
	}
	if !s.loaded || s.busy && s.overview == nil {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.Current.TextDim).
			Render("\n\n  Memuat dashboard...")
	}
	if s.mode == modeDetail && s.detail != nil {
		return s.renderDetail(width)
	}
	return s.renderOverview(width)
}

func (s *DashboardScreen) renderOverview(width int) string {
	ov := s.overview
	var b strings.Builder
	b.WriteString("\n")

	barWidth := min(width-20, 50)
	overall := components.NewProgressBar("Kesiapan total", ov.OverallReadiness/100, true, barWidth+16)
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, overall.View()))
	b.WriteString("\n")

	catLine := fmt.Sprintf("TPS %.0f%%    Literasi %.0f%%    Akurasi %.0f%% (%d/%d)",
		ov.TPSReadiness, ov.LiterasiReadiness,
		ov.OverallAccuracy*100, ov.TotalCorrect, ov.TotalAttempts)
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
		lipgloss.NewStyle().Foreground(theme.Current.TextDim).Render(catLine)))
	b.WriteString("\n\n")

	for i, sec := range section.All {
		sr, ok := ov.SectionReadiness[sec]
		prefix := "  "
		if i == s.selected {
			prefix = "> "
		}

		var line string
		if ok {
			bar := components.NewProgressBar("", sr.ReadinessPercentage/100, true, barWidth)
			line = fmt.Sprintf("%s%-4s %s  θ %+.2f → %+.2f",
				prefix, sec, bar.View(), sr.CurrentTheta, sr.TargetTheta)
		} else {
			line = fmt.Sprintf("%s%-4s belum ada data", prefix, sec)
		}

		style := lipgloss.NewStyle().Foreground(theme.Current.Text)
		if i == s.selected {
			style = style.Foreground(theme.Current.Primary).Bold(true)
		}
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, style.Render(line)))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	var marks []string
	if ov.WeakestSection != nil {
		marks = append(marks, "Terlemah: "+string(*ov.WeakestSection))
	}
	if ov.StrongestSection != nil {
		marks = append(marks, "Terkuat: "+string(*ov.StrongestSection))
	}
	if ov.RecommendedSection != nil {
		marks = append(marks, "Saran latihan: "+string(*ov.RecommendedSection))
	}
	if len(marks) > 0 {
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			lipgloss.NewStyle().Foreground(theme.Current.Accent).Render(strings.Join(marks, "    "))))
		b.WriteString("\n\n")
	}

	b.WriteString(s.renderProgress(width))
	return b.String()
}

func (s *DashboardScreen) renderProgress(width int) string {
	prog := s.progress
	if prog == nil {
		return ""
	}

	var b strings.Builder
	title := fmt.Sprintf("Progres %d hari terakhir", prog.PeriodDays)
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
		lipgloss.NewStyle().Foreground(theme.Current.Secondary).Bold(true).Render(title)))
	b.WriteString("\n")

	line := fmt.Sprintf("%d soal  akurasi %.0f%%  perbaikan minggu ini %+.1f%%",
		prog.TotalQuestionsAttempted, prog.AverageAccuracy*100, prog.ImprovementThisWeek)
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
		lipgloss.NewStyle().Foreground(theme.Current.Text).Render(line)))
	b.WriteString("\n")

	return b.String()
}

func (s *DashboardScreen) renderDetail(width int) string {
	det := s.detail
	var b strings.Builder
	b.WriteString("\n")

	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
		lipgloss.NewStyle().Foreground(theme.Current.Primary).Bold(true).
			Render(det.Section.Name())))
	b.WriteString("\n\n")

	bar := components.NewProgressBar("Kesiapan", det.ReadinessPercentage/100, true, min(width-20, 60))
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, bar.View()))
	b.WriteString("\n")

	saved := ""
	if s.busy {
		saved = "  (menyimpan...)"
	}
	thetaLine := fmt.Sprintf("θ sekarang %+.2f   target %+.2f%s   prediksi skor %d-%d",
		det.CurrentTheta, s.target, saved, det.PredictedScoreLow, det.PredictedScoreHigh)
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
		lipgloss.NewStyle().Foreground(theme.Current.Text).Render(thetaLine)))
	b.WriteString("\n")

	if det.DaysToReady != nil {
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			lipgloss.NewStyle().Foreground(theme.Current.TextDim).
				Render(fmt.Sprintf("Perkiraan siap dalam %d hari", *det.DaysToReady))))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if len(det.SubtypeBreakdown) > 0 {
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			lipgloss.NewStyle().Foreground(theme.Current.Secondary).Bold(true).
				Render("Per subtipe")))
		b.WriteString("\n")
		for _, st := range det.SubtypeBreakdown {
			mark := " "
			style := lipgloss.NewStyle().Foreground(theme.Current.Text)
			if st.IsWeakArea {
				mark = "!"
				style = lipgloss.NewStyle().Foreground(theme.Current.Danger)
			}
			line := fmt.Sprintf("%s %-28s %3d/%-3d  %.0f%%",
				mark, st.SubType, st.CorrectCount, st.TotalAttempts, st.Accuracy*100)
			b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, style.Render(line)))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if det.NextSteps != nil {
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			lipgloss.NewStyle().
				Width(min(width-8, 70)).
				Foreground(theme.Current.Accent).
				Render(det.NextSteps.Message)))
		b.WriteString("\n")
	}

	return b.String()
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
