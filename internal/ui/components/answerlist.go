package components

import (
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/gentaprep/genta-tui/internal/ui/theme"
)

var answerLetters = [5]string{"A", "B", "C", "D", "E"}

// AnswerList is a five-option multiple choice list. After Reveal it
// stops taking input and highlights the correct and chosen options.
type AnswerList struct {
	Options  [5]string
	Selected int

	revealed bool
	correct  int
	chosen   int
}

// NewAnswerList creates an answer list with the cursor on option A.
func NewAnswerList(options [5]string) AnswerList {
	return AnswerList{
		Options: options,
		correct: -1,
		chosen:  -1,
	}
}

// Update handles keyboard navigation. Input is ignored once revealed.
func (a AnswerList) Update(msg tea.Msg) (AnswerList, tea.Cmd) {
	if a.revealed {
		return a, nil
	}

	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return a, nil
	}

	switch kmsg.String() {
	case "up", "k":
		if a.Selected > 0 {
			a.Selected--
		}
	case "down", "j":
		if a.Selected < len(a.Options)-1 {
			a.Selected++
		}
	case "a", "b", "c", "d", "e":
		a.Selected = int(kmsg.String()[0] - 'a')
	}

	return a, nil
}

// Letter returns the selected option letter, "A" through "E".
func (a AnswerList) Letter() string {
	return answerLetters[a.Selected]
}

// Reveal freezes the list and marks the graded outcome. Letters outside
// A..E are ignored for that slot.
func (a *AnswerList) Reveal(correctLetter, chosenLetter string) {
	a.revealed = true
	a.correct = letterIndex(correctLetter)
	a.chosen = letterIndex(chosenLetter)
}

func letterIndex(letter string) int {
	if len(letter) != 1 || letter[0] < 'A' || letter[0] > 'E' {
		return -1
	}
	return int(letter[0] - 'A')
}

// View renders the option rows.
func (a AnswerList) View() string {
	var s string
	for i, opt := range a.Options {
		line := answerLetters[i] + ". " + opt

		switch {
		case a.revealed && i == a.correct:
			s += theme.Correct.Render("  ✓ "+line) + "\n"
		case a.revealed && i == a.chosen:
			s += theme.Incorrect.Render("  ✗ "+line) + "\n"
		case a.revealed:
			s += lipgloss.NewStyle().
				Foreground(theme.Current.TextDim).
				Render("    "+line) + "\n"
		case i == a.Selected:
			s += lipgloss.NewStyle().
				Foreground(theme.Current.Primary).
				Bold(true).
				Render("  ▸ "+line) + "\n"
		default:
			s += lipgloss.NewStyle().
				Foreground(theme.Current.Text).
				Render("    "+line) + "\n"
		}
	}
	return s
}
