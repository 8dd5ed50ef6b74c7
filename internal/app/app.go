// Package app assembles the services and runs the root Bubble Tea
// program.
package app

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"go.uber.org/zap"

	"github.com/gentaprep/genta-tui/internal/analytics"
	"github.com/gentaprep/genta-tui/internal/api"
	"github.com/gentaprep/genta-tui/internal/auth"
	"github.com/gentaprep/genta-tui/internal/config"
	"github.com/gentaprep/genta-tui/internal/jobs"
	prac "github.com/gentaprep/genta-tui/internal/practice"
	"github.com/gentaprep/genta-tui/internal/profile"
	"github.com/gentaprep/genta-tui/internal/readiness"
	"github.com/gentaprep/genta-tui/internal/router"
	"github.com/gentaprep/genta-tui/internal/screen"
	"github.com/gentaprep/genta-tui/internal/screens/home"
	"github.com/gentaprep/genta-tui/internal/screens/login"
	"github.com/gentaprep/genta-tui/internal/screens/onboarding"
	"github.com/gentaprep/genta-tui/internal/store"
	"github.com/gentaprep/genta-tui/internal/ui/layout"
	"github.com/gentaprep/genta-tui/internal/ui/theme"
)

// sessionExpiredMsg is sent by the API client when the bearer token is
// rejected; the whole stack is replaced with the login screen.
type sessionExpiredMsg struct{}

// Options carries what the command layer has already opened: config,
// logging, the token store, and the local history store.
type Options struct {
	Config *config.Config
	Logger *zap.Logger
	Tokens *auth.FileStore
	Store  *store.Store
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	router *router.Router
	width  int
	height int

	user     *profile.User
	newLogin func() screen.Screen
}

func (m AppModel) Init() tea.Cmd {
	return m.router.Active().Init()
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case sessionExpiredMsg:
		return m, func() tea.Msg {
			return router.ReplaceScreenMsg{Screen: m.newLogin()}
		}

	case tea.KeyMsg:
		// Esc is owned by the screens: each one decides between popping
		// and internal state (quit confirm, closing a detail view).
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}

	if layout.IsTooSmall(m.width, m.height) {
		v.SetContent(layout.RenderMinSizeMessage(m.width, m.height))
		return v
	}

	active := m.router.Active()
	title := ""
	if active != nil {
		title = active.Title()
	}

	daysToExam, target := m.headerInfo()
	header := layout.RenderHeader(title, daysToExam, target, m.width)

	var footerHints []layout.KeyHint
	if provider, ok := active.(screen.KeyHintProvider); ok && provider.KeyHints() != nil {
		footerHints = append(provider.KeyHints(),
			layout.KeyHint{Key: "Ctrl+C", Description: "Quit"})
	} else if m.router.Depth() > 1 {
		footerHints = []layout.KeyHint{
			{Key: "Esc", Description: "Back"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	} else {
		footerHints = []layout.KeyHint{
			{Key: "↑↓", Description: "Navigate"},
			{Key: "Enter", Description: "Select"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	}

	footer := layout.RenderFooter(footerHints, m.width)

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := m.height - headerHeight - footerHeight
	if contentHeight < 0 {
		contentHeight = 0
	}

	content := m.router.View(m.width, contentHeight)
	frame := layout.RenderFrame(header, content, footer, m.width, m.height)

	v.SetContent(frame)
	return v
}

// headerInfo derives the countdown and target campus for the header.
func (m AppModel) headerInfo() (int, string) {
	if m.user == nil {
		return 0, ""
	}
	days := 0
	if m.user.ExamDate != nil {
		if d := int(time.Until(*m.user.ExamDate).Hours() / 24); d > 0 {
			days = d
		}
	}
	target := ""
	if m.user.TargetPTN != nil {
		target = *m.user.TargetPTN
	}
	return days, target
}

// Run wires the services and starts the Bubble Tea program.
func Run(opts Options) error {
	cfg := opts.Config
	log := opts.Logger

	theme.Use(cfg.Theme)

	// Filled in below; the unauthorized handler only fires on responses,
	// which cannot arrive before the program starts.
	var prog *tea.Program
	client := api.New(cfg.APIBaseURL, opts.Tokens,
		api.WithLogger(log),
		api.WithUnauthorizedHandler(func() {
			if prog != nil {
				prog.Send(sessionExpiredMsg{})
			}
		}),
	)

	practiceSvc := prac.NewService(client)
	profileSvc := profile.NewService(client)
	readinessSvc := readiness.NewService(client)
	analyticsSvc := analytics.NewService(client)

	events, err := opts.Store.EventRepo()
	if err != nil {
		return fmt.Errorf("open event repo: %w", err)
	}
	recorder := store.NewRecorder(events)

	newRunner := func() *prac.Runner {
		return prac.NewRunner(practiceSvc,
			prac.WithRecorder(recorder),
			prac.WithRunnerLogger(log),
			prac.WithScheduler(jobs.NewScheduler()),
		)
	}

	newHome := func(user *profile.User) screen.Screen {
		return home.New(home.Deps{
			Practice:  practiceSvc,
			NewRunner: newRunner,
			Readiness: readinessSvc,
			Analytics: analyticsSvc,
			Events:    events,
			Config:    cfg,
			Profile:   profileSvc,
			User:      user,
		})
	}

	nextAfterLogin := func(user *profile.User) screen.Screen {
		if user != nil && !user.OnboardingCompleted {
			return onboarding.New(profileSvc, func() screen.Screen {
				return newHome(user)
			})
		}
		return newHome(user)
	}

	newLogin := func() screen.Screen {
		return login.New(opts.Tokens, profileSvc, nextAfterLogin)
	}

	// Decide the first screen with one probe of the saved token.
	var initial screen.Screen
	var user *profile.User
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if _, err := opts.Tokens.Token(ctx); err != nil {
		initial = newLogin()
	} else if user, err = profileSvc.Me(ctx); err != nil {
		log.Info("saved token rejected, showing login", zap.Error(err))
		initial = newLogin()
		user = nil
	} else {
		initial = nextAfterLogin(user)
	}
	cancel()

	model := AppModel{
		router:   router.New(initial),
		user:     user,
		newLogin: newLogin,
	}

	prog = tea.NewProgram(model)
	if _, err := prog.Run(); err != nil {
		fmt.Fprintln(os.Stderr, "Error running program:", err)
		return err
	}
	return nil
}
