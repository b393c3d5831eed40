// Package tui implements the Bubble Tea terminal UI for the bank details form.
package tui

import (
	"context"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Azahorscak/remitter-tui/internal/logger"
	"github.com/Azahorscak/remitter-tui/internal/remitter"
)

const defaultTimeout = 30 * time.Second

// RemitterAPI is the subset of the API client the form needs.
type RemitterAPI interface {
	Me(ctx context.Context) (remitter.Profile, error)
	Create(ctx context.Context, p remitter.Profile) (remitter.Profile, error)
	Update(ctx context.Context, p remitter.Profile) (remitter.Profile, error)
}

// profileLoadedMsg carries the outcome of loading the profile from the API.
type profileLoadedMsg struct {
	outcome remitter.Outcome
}

// submitResultMsg carries the result of a create or update call.
type submitResultMsg struct {
	profile remitter.Profile
	err     error
}

// Model is the root Bubble Tea model.
type Model struct {
	client  RemitterAPI
	state   remitter.State
	inputs  [remitter.FieldCount]textinput.Model
	focused int
	spinner spinner.Model
	timeout time.Duration
	log     *slog.Logger
	width   int
	height  int
}

// Option customises a Model.
type Option func(*Model)

// WithLogger sets the logger used for state transitions and API results.
func WithLogger(log *slog.Logger) Option {
	return func(m *Model) {
		if log != nil {
			m.log = log
		}
	}
}

// WithTimeout bounds each API call.
func WithTimeout(d time.Duration) Option {
	return func(m *Model) {
		if d > 0 {
			m.timeout = d
		}
	}
}

// WithReadOnly disables editing; the form only shows the stored record.
func WithReadOnly(readOnly bool) Option {
	return func(m *Model) {
		m.state.ReadOnly = readOnly
	}
}

// New creates the form model. Nothing is fetched until Init runs.
func New(client RemitterAPI, opts ...Option) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	m := Model{
		client:  client,
		state:   remitter.NewState(),
		inputs:  newInputs(),
		spinner: sp,
		timeout: defaultTimeout,
		log:     logger.Discard(),
	}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

// Init starts the spinner and fires the initial profile load.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.fetchProfile())
}

func (m Model) fetchProfile() tea.Cmd {
	client := m.client
	timeout := m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		p, err := client.Me(ctx)
		return profileLoadedMsg{outcome: remitter.Classify(p, err)}
	}
}

func (m Model) saveProfile(cmd remitter.Command) tea.Cmd {
	client := m.client
	timeout := m.timeout
	payload := m.state.Profile
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		var p remitter.Profile
		var err error
		if cmd == remitter.CmdUpdate {
			p, err = client.Update(ctx, payload)
		} else {
			p, err = client.Create(ctx, payload)
		}
		return submitResultMsg{profile: p, err: err}
	}
}

// dispatch runs e through the reducer and turns the requested side effect
// into a tea.Cmd.
func (m Model) dispatch(e remitter.Event) (Model, tea.Cmd) {
	before := m.state.Mode()
	next, command := remitter.Reduce(m.state, e)
	m.state = next
	if after := next.Mode(); after != before {
		m.log.Debug("form state changed", "from", before.String(), "to", after.String(), "command", command.String())
	}
	m.syncInputs()

	switch command {
	case remitter.CmdLoad:
		return m, tea.Batch(m.spinner.Tick, m.fetchProfile())
	case remitter.CmdCreate, remitter.CmdUpdate:
		return m, tea.Batch(m.spinner.Tick, m.saveProfile(command))
	}
	return m, nil
}

func (m Model) busy() bool {
	return m.state.Loading || m.state.Submitting
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case spinner.TickMsg:
		if m.busy() {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	case profileLoadedMsg:
		if f, ok := msg.outcome.(remitter.Failed); ok {
			m.log.Debug("loading remitter details failed", "error", f.Err)
		}
		return m.dispatch(remitter.Loaded{Outcome: msg.outcome})

	case submitResultMsg:
		if msg.err != nil {
			m.log.Debug("saving remitter details failed", "error", msg.err)
		}
		return m.dispatch(remitter.SubmitResult(msg.profile, msg.err))

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	// Controls are disabled while a request is outstanding.
	if m.busy() {
		return m, nil
	}

	if !m.state.Editing {
		switch msg.String() {
		case "e", "a":
			m.focused = 0
			return m.dispatch(remitter.EditRequested{})
		case "q":
			return m, tea.Quit
		}
		return m, nil
	}

	switch msg.String() {
	case "tab", "down":
		m.focused = (m.focused + 1) % focusCount
		m.syncInputs()
		return m, nil
	case "shift+tab", "up":
		m.focused = (m.focused - 1 + focusCount) % focusCount
		m.syncInputs()
		return m, nil
	case "esc":
		return m.dispatch(remitter.CancelRequested{})
	case "enter", "ctrl+s":
		return m.submit()
	}

	if m.focused >= remitter.FieldCount {
		return m, nil
	}
	field := remitter.Field(m.focused)
	var cmd tea.Cmd
	m.inputs[m.focused], cmd = m.inputs[m.focused].Update(msg)
	if v := m.inputs[m.focused].Value(); v != m.state.Profile.Get(field) {
		var dcmd tea.Cmd
		m, dcmd = m.dispatch(remitter.FieldChanged{Field: field, Value: v})
		cmd = tea.Batch(cmd, dcmd)
	}
	return m, cmd
}

// submit asks the reducer to save; a submit blocked by empty required
// fields moves focus to the first of them.
func (m Model) submit() (Model, tea.Cmd) {
	m, cmd := m.dispatch(remitter.SubmitRequested{})
	if len(m.state.Missing) > 0 && !m.state.Submitting {
		m.focused = int(m.state.Missing[0])
		m.syncInputs()
	}
	return m, cmd
}

// State returns the current form state.
func (m Model) State() remitter.State {
	return m.state
}

// Focused returns the index of the focused control; FieldCount is the
// save button.
func (m Model) Focused() int {
	return m.focused
}

// Value returns what the input for f currently shows.
func (m Model) Value(f remitter.Field) string {
	return m.inputs[f].Value()
}
