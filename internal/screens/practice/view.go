package practice

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/gentaprep/genta-tui/internal/jobs"
	prac "github.com/gentaprep/genta-tui/internal/practice"
	"github.com/gentaprep/genta-tui/internal/ui/theme"
)

func (s *PracticeScreen) View(width, height int) string {
	if s.errMsg != "" {
		return renderError(width, s.errMsg)
	}
	if s.showQuitConfirm {
		return renderQuitConfirm(width)
	}
	switch s.runner.Phase() {
	case prac.PhaseLoading:
		return renderLoading(width)
	case prac.PhaseAnswering:
		return s.renderQuestion(width)
	case prac.PhaseResult:
		return s.renderResult(width)
	case prac.PhaseExhausted:
		return renderExhausted(width)
	}
	return renderLoading(width)
}

// renderInfoLine renders the section banner and progress counters shown
// above the question in both the answering and result phases.
func (s *PracticeScreen) renderInfoLine(width int) string {
	q := s.runner.Question()

	label := "Campuran"
	if sec := s.runner.Section(); sec != "" {
		label = sec.Name()
	}
	if q != nil && q.SubType != nil && *q.SubType != "" {
		label += " · " + *q.SubType
	}

	infoLeft := lipgloss.NewStyle().
		Foreground(theme.Current.Secondary).
		Bold(true).
		Render("  " + label)

	prog := s.runner.Progress()
	elapsed := s.runner.SessionElapsed()
	mins := int(elapsed.Minutes())
	secs := int(elapsed.Seconds()) % 60

	infoRight := lipgloss.NewStyle().
		Foreground(theme.Current.TextDim).
		Render(fmt.Sprintf("Q %d  %s %d  ◷ %d:%02d",
			prog.Attempted+1,
			lipgloss.NewStyle().Foreground(theme.Current.Success).Render("✓"),
			prog.Correct,
			mins, secs,
		))

	line := infoLeft
	rightPad := width - lipgloss.Width(infoLeft) - lipgloss.Width(infoRight) - 4
	if rightPad > 0 {
		line += strings.Repeat(" ", rightPad) + infoRight
	}

	divider := lipgloss.NewStyle().
		Foreground(theme.Current.Line).
		Render(strings.Repeat("─", max(width-4, 0)))

	return line + "\n" + divider + "\n\n"
}

func (s *PracticeScreen) renderQuestion(width int) string {
	q := s.runner.Question()
	if q == nil {
		return renderLoading(width)
	}

	var b strings.Builder
	b.WriteString(s.renderInfoLine(width))

	questionStyle := lipgloss.NewStyle().
		Width(min(width-8, 72)).
		Foreground(theme.Current.Text).
		Bold(true)
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
		questionStyle.Render(q.Text)))
	b.WriteString("\n\n")

	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, s.answers.View()))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Current.TextDim).
		Render("Choose with a-e or arrows, Enter to submit"))

	return b.String()
}

func (s *PracticeScreen) renderResult(width int) string {
	att := s.runner.Attempt()
	if att == nil {
		return renderLoading(width)
	}

	var b strings.Builder
	b.WriteString(s.renderInfoLine(width))

	if att.IsCorrect {
		b.WriteString(lipgloss.NewStyle().
			Width(width).
			Align(lipgloss.Center).
			Foreground(theme.Current.Success).
			Bold(true).
			Render("Benar!"))
	} else {
		b.WriteString(lipgloss.NewStyle().
			Width(width).
			Align(lipgloss.Center).
			Foreground(theme.Current.Danger).
			Bold(true).
			Render("Belum tepat"))
		if det := s.runner.Detail(); det != nil {
			b.WriteString("\n")
			b.WriteString(lipgloss.NewStyle().
				Width(width).
				Align(lipgloss.Center).
				Foreground(theme.Current.TextDim).
				Render(fmt.Sprintf("Jawaban benar: %s", det.CorrectAnswer)))
		}
	}
	b.WriteString("\n")

	if att.ThetaChange != nil {
		delta := *att.ThetaChange
		style := lipgloss.NewStyle().Foreground(theme.Current.Success)
		if delta < 0 {
			style = lipgloss.NewStyle().Foreground(theme.Current.Danger)
		}
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			style.Render(fmt.Sprintf("%+.3f", delta))))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, s.answers.View()))
	b.WriteString("\n")

	if det := s.runner.Detail(); det != nil && det.Question != nil && det.Question.Explanation != nil {
		expStyle := lipgloss.NewStyle().
			Width(min(width-8, 70)).
			Foreground(theme.Current.Text)
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			expStyle.Render(*det.Question.Explanation)))
		b.WriteString("\n\n")
	}

	b.WriteString(s.renderFeedback(width))

	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Current.TextDim).
		Render("Enter untuk lanjut"))

	return b.String()
}

// renderFeedback shows the AI feedback block: the text when it arrived,
// a progress note while the job is still polling, nothing otherwise.
func (s *PracticeScreen) renderFeedback(width int) string {
	var b strings.Builder

	if fb := s.runner.Feedback(); fb != nil {
		fbStyle := lipgloss.NewStyle().
			Width(min(width-8, 70)).
			Foreground(theme.Current.Secondary)
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			fbStyle.Render("Umpan balik: "+fb.Text)))
		b.WriteString("\n")
		switch {
		case fb.IsHelpful == nil:
			b.WriteString(lipgloss.NewStyle().
				Width(width).
				Align(lipgloss.Center).
				Foreground(theme.Current.TextDim).
				Render("[U] membantu   [T] tidak membantu"))
		case *fb.IsHelpful:
			b.WriteString(lipgloss.NewStyle().
				Width(width).
				Align(lipgloss.Center).
				Foreground(theme.Current.Success).
				Render("Dinilai: membantu"))
		default:
			b.WriteString(lipgloss.NewStyle().
				Width(width).
				Align(lipgloss.Center).
				Foreground(theme.Current.TextDim).
				Render("Dinilai: tidak membantu"))
		}
		b.WriteString("\n\n")
		return b.String()
	}

	switch st := s.runner.FeedbackState(); st.Status {
	case jobs.StatusPolling:
		b.WriteString(lipgloss.NewStyle().
			Width(width).
			Align(lipgloss.Center).
			Foreground(theme.Current.TextDim).
			Render("Menyiapkan umpan balik..."))
		b.WriteString("\n\n")
	case jobs.StatusFailed:
		b.WriteString(lipgloss.NewStyle().
			Width(width).
			Align(lipgloss.Center).
			Foreground(theme.Current.TextDim).
			Render("Umpan balik tidak tersedia"))
		b.WriteString("\n\n")
	}

	return b.String()
}

func renderQuitConfirm(width int) string {
	var b strings.Builder
	b.WriteString("\n\n\n")

	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Current.Text).
		Bold(true).
		Render("Akhiri sesi sekarang?"))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Current.TextDim).
		Render("Progresmu tetap tersimpan."))
	b.WriteString("\n\n")

	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Current.Success).
		Render("[Y] Ya, akhiri sesi"))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Current.Primary).
		Render("[N] Tidak, lanjut dulu"))

	return b.String()
}

func renderExhausted(width int) string {
	var b strings.Builder
	b.WriteString("\n\n\n")
	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Current.Accent).
		Bold(true).
		Render("Soal habis untuk sesi ini"))
	b.WriteString("\n\n")
	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Current.TextDim).
		Render("Tekan Enter untuk melihat rangkuman."))
	return b.String()
}

func renderLoading(width int) string {
	return lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Current.TextDim).
		Render("\n\n\n  Mengambil soal...")
}

func renderError(width int, errMsg string) string {
	return lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Current.Danger).
		Render(fmt.Sprintf("\n\n\n  Error: %s\n\n  Press any key to go back.", errMsg))
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
