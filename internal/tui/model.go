// Package tui renders the Login, SignUp and TaskList screens in the terminal.
// All state lives in the screen controllers; the model only mirrors their
// snapshots and turns key presses into controller calls.
package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"todo/internal/screens"
)

// EmptyListText is shown when there are no tasks.
const EmptyListText = "No tasks yet. Add one!"

// submitDoneMsg is sent when a login or sign up submission resolves
type submitDoneMsg struct {
	err error
}

// tasksDoneMsg is sent when a task list call resolves
type tasksDoneMsg struct {
	err error
}

// formScreen is implemented by the Login and SignUp controllers.
type formScreen interface {
	SetEmail(string)
	SetPassword(string)
	Submit() error
	View() screens.FormView
}

// Model is the root bubbletea model.
type Model struct {
	ctx    context.Context
	router *screens.Router
	login  *screens.Login
	signup *screens.SignUp
	todos  *screens.TodoList
	logger *zap.Logger

	route  screens.Route
	fields [2]textinput.Model // email, password
	focus  int
	draft  textinput.Model
	cursor int

	keys KeyMap
	help help.Model
}

// New creates the root model positioned on the Login screen.
func New(ctx context.Context, auth screens.Authenticator, store screens.TaskStore, log *zap.Logger) Model {
	if log == nil {
		log = zap.NewNop()
	}
	router := screens.NewRouter()
	m := Model{
		ctx:    ctx,
		router: router,
		login:  screens.NewLogin(auth, router, log),
		signup: screens.NewSignUp(auth, router, log),
		todos:  screens.NewTodoList(store, router, log),
		logger: log.Named("tui"),
		route:  router.Route(),
		draft:  newInput("New Task: ", "What needs doing?"),
		keys:   DefaultKeyMap(),
		help:   help.New(),
	}
	m.fields[0] = newInput("Email:    ", "you@example.com")
	m.fields[1] = newInput("Password: ", "")
	m.fields[1].EchoMode = textinput.EchoPassword

	navLog := m.logger
	router.OnNavigate(func(from, to screens.Route) {
		navLog.Debug("navigated", zap.Stringer("from", from), zap.Stringer("to", to))
	})

	m.login.Mount(ctx)
	m.loadFields()
	return m
}

func newInput(prompt, placeholder string) textinput.Model {
	ti := textinput.New()
	ti.Prompt = prompt
	ti.PromptStyle = InputPromptStyle
	ti.Placeholder = placeholder
	ti.CharLimit = 0
	ti.Width = 50
	ti.Cursor.SetMode(cursor.CursorStatic)
	return ti
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return nil
}

// Route returns the screen currently shown.
func (m Model) Route() screens.Route {
	return m.route
}

// Close unmounts the current screen, discarding any pending call.
func (m Model) Close() {
	m.unmount(m.route)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		return m, nil

	case submitDoneMsg:
		if msg.err != nil && !errors.Is(msg.err, screens.ErrBusy) {
			m.logger.Debug("submission failed", zap.Error(msg.err))
		}
		return m.syncRoute()

	case tasksDoneMsg:
		if msg.err != nil && !errors.Is(msg.err, screens.ErrBusy) {
			m.logger.Debug("task call failed", zap.Error(msg.err))
		}
		v := m.todos.View()
		if v.Draft != m.draft.Value() {
			m.draft.SetValue(v.Draft)
		}
		m.clampCursor(len(v.Tasks))
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			m.Close()
			return m, tea.Quit
		}
		if m.route == screens.RouteTaskList {
			return m.updateTaskList(msg)
		}
		return m.updateForm(msg)
	}
	return m, nil
}

func (m Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.NextField):
		m.fields[m.focus].Blur()
		m.focus = (m.focus + 1) % len(m.fields)
		m.fields[m.focus].Focus()
		return m, nil

	case key.Matches(msg, m.keys.Submit):
		form := m.form()
		return m, func() tea.Msg {
			return submitDoneMsg{err: form.Submit()}
		}

	case m.route == screens.RouteLogin && key.Matches(msg, m.keys.ToSignUp):
		m.login.GoToSignUp()
		return m.syncRoute()

	case m.route == screens.RouteSignUp && key.Matches(msg, m.keys.ToLogin):
		m.signup.GoToLogin()
		return m.syncRoute()
	}

	var cmd tea.Cmd
	m.fields[m.focus], cmd = m.fields[m.focus].Update(msg)
	form := m.form()
	form.SetEmail(m.fields[0].Value())
	form.SetPassword(m.fields[1].Value())
	return m, cmd
}

func (m Model) updateTaskList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	v := m.todos.View()

	// An alert blocks the screen until dismissed.
	if v.Alert != nil {
		if key.Matches(msg, m.keys.Dismiss) {
			m.todos.PopAlert()
		}
		return m, nil
	}

	todos := m.todos
	switch {
	case key.Matches(msg, m.keys.Submit):
		todos.SetDraft(m.draft.Value())
		return m, func() tea.Msg {
			return tasksDoneMsg{err: todos.Submit()}
		}

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(v.Tasks)-1 {
			m.cursor++
		}
		return m, nil

	case key.Matches(msg, m.keys.Delete):
		if len(v.Tasks) == 0 {
			return m, nil
		}
		id := v.Tasks[m.cursor].ID
		return m, func() tea.Msg {
			return tasksDoneMsg{err: todos.Delete(id)}
		}

	case key.Matches(msg, m.keys.Refresh):
		return m, func() tea.Msg {
			return tasksDoneMsg{err: todos.Refresh()}
		}
	}

	var cmd tea.Cmd
	m.draft, cmd = m.draft.Update(msg)
	todos.SetDraft(m.draft.Value())
	return m, cmd
}

// syncRoute follows a navigation made by a controller: the old screen is
// unmounted and the new one mounted.
func (m Model) syncRoute() (tea.Model, tea.Cmd) {
	to := m.router.Route()
	if to == m.route {
		return m, nil
	}
	m.unmount(m.route)
	m.route = to

	switch to {
	case screens.RouteLogin:
		m.login.Mount(m.ctx)
		m.loadFields()
	case screens.RouteSignUp:
		m.signup.Mount(m.ctx)
		m.loadFields()
	case screens.RouteTaskList:
		m.cursor = 0
		m.draft.Focus()
		todos, ctx := m.todos, m.ctx
		return m, func() tea.Msg {
			return tasksDoneMsg{err: todos.Mount(ctx)}
		}
	}
	return m, nil
}

func (m Model) unmount(r screens.Route) {
	switch r {
	case screens.RouteLogin:
		m.login.Unmount()
	case screens.RouteSignUp:
		m.signup.Unmount()
	case screens.RouteTaskList:
		m.todos.Unmount()
	}
}

func (m Model) form() formScreen {
	if m.route == screens.RouteSignUp {
		return m.signup
	}
	return m.login
}

// loadFields copies the active form's values into the inputs and focuses
// the email field.
func (m *Model) loadFields() {
	v := m.form().View()
	m.fields[0].SetValue(v.Email)
	m.fields[1].SetValue(v.Password)
	m.fields[1].Blur()
	m.focus = 0
	m.fields[0].Focus()
}

func (m *Model) clampCursor(n int) {
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m Model) View() string {
	switch m.route {
	case screens.RouteLogin:
		return m.formView("Login", m.login.View(), m.keys.LoginHelp())
	case screens.RouteSignUp:
		return m.formView("Sign Up", m.signup.View(), m.keys.SignUpHelp())
	default:
		return m.taskListView()
	}
}

func (m Model) formView(title string, v screens.FormView, bindings []key.Binding) string {
	var b strings.Builder
	b.WriteString(TitleStyle.Render(title))
	b.WriteString("\n")
	b.WriteString(m.fields[0].View())
	b.WriteString("\n")
	b.WriteString(m.fields[1].View())
	b.WriteString("\n")
	if v.State == screens.StateSubmitting {
		b.WriteString(MutedStyle.Render("Working..."))
		b.WriteString("\n")
	}
	if v.Error != "" {
		b.WriteString(ErrorStyle.Render(v.Error))
		b.WriteString("\n")
	}
	b.WriteString(StatusStyle.Render(m.help.ShortHelpView(bindings)))
	return b.String()
}

func (m Model) taskListView() string {
	v := m.todos.View()

	var b strings.Builder
	title := "Tasks"
	if sess := m.router.Session(); sess != nil && sess.User.Email != "" {
		title += " (" + sess.User.Email + ")"
	}
	b.WriteString(TitleStyle.Render(title))
	b.WriteString("\n")
	b.WriteString(m.draft.View())
	b.WriteString("\n\n")

	if v.Refreshing {
		b.WriteString(MutedStyle.Render("Refreshing..."))
		b.WriteString("\n")
	}

	if len(v.Tasks) == 0 {
		b.WriteString(MutedStyle.Render(EmptyListText))
		b.WriteString("\n")
	}
	for i, t := range v.Tasks {
		mark := "[ ]"
		style := TaskStyle
		if t.Completed {
			mark = "[x]"
			style = TaskDoneStyle
		}
		prefix := "  "
		if i == m.cursor {
			prefix = "> "
			style = TaskSelectedStyle
		}
		b.WriteString(prefix)
		b.WriteString(style.Render(fmt.Sprintf("%s %s", mark, t.Title)))
		b.WriteString("\n")
	}

	if v.Alert != nil {
		titleStyle := AlertErrorTitleStyle
		if v.Alert.Title == screens.AlertSuccess {
			titleStyle = AlertInfoTitleStyle
		}
		body := titleStyle.Render(v.Alert.Title) + "\n" + v.Alert.Message + "\n" + MutedStyle.Render("esc to dismiss")
		b.WriteString(AlertStyle.Render(body))
		b.WriteString("\n")
	}

	b.WriteString(StatusStyle.Render(m.help.ShortHelpView(m.keys.TaskListHelp())))
	return b.String()
}

// Options configures Run.
type Options struct {
	Auth   screens.Authenticator
	Tasks  screens.TaskStore
	Logger *zap.Logger

	// In and Out default to the terminal when nil.
	In  io.Reader
	Out io.Writer
}

// Run starts the program and blocks until the user quits or ctx is done.
func Run(ctx context.Context, opts Options) error {
	m := New(ctx, opts.Auth, opts.Tasks, opts.Logger)

	progOpts := []tea.ProgramOption{tea.WithContext(ctx), tea.WithAltScreen()}
	if opts.In != nil {
		progOpts = append(progOpts, tea.WithInput(opts.In))
	}
	if opts.Out != nil {
		progOpts = append(progOpts, tea.WithOutput(opts.Out))
	}

	final, err := tea.NewProgram(m, progOpts...).Run()
	if fm, ok := final.(Model); ok {
		fm.Close()
	}
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
