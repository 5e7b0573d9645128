// Package ui provides the interactive terminal view of the todo list.
package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"aptodo/internal/service"
	"aptodo/internal/session"
)

// Option configures the model.
type Option func(*Model)

// WithClipboard replaces the clipboard writer.
func WithClipboard(write func(string) error) Option {
	return func(m *Model) {
		m.copy = write
	}
}

// WithExplorerURL sets the explorer linked from the header.
func WithExplorerURL(u string) Option {
	return func(m *Model) {
		m.explorer = strings.TrimRight(u, "/")
	}
}

type focus int

const (
	focusInput focus = iota
	focusList
)

// Model is the Bubble Tea model of the todo view.
type Model struct {
	ctx      context.Context
	sess     *session.Session
	changed  chan struct{}
	keys     keyMap
	help     help.Model
	input    textinput.Model
	spinner  spinner.Model
	copy     func(string) error
	explorer string

	snap       session.Snapshot
	cursor     int
	focus      focus
	connecting bool
	status     string
	err        error
	width      int
}

type changedMsg struct{}

type connectedMsg struct{ err error }

type refreshedMsg struct{ err error }

type actionDoneMsg struct {
	intent session.Intent
	err    error
}

type statusMsg struct {
	text string
	err  error
}

// New creates the model and subscribes it to sess.
func New(ctx context.Context, sess *session.Session, opts ...Option) *Model {
	input := textinput.New()
	input.Placeholder = "Add a task"
	input.CharLimit = 280
	input.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = spinnerStyle

	m := &Model{
		ctx:     ctx,
		sess:    sess,
		changed: make(chan struct{}, 1),
		keys:    defaultKeyMap(),
		help:    help.New(),
		input:   input,
		spinner: sp,
		copy:    clipboard.WriteAll,
		snap:    sess.Snapshot(),
	}
	for _, opt := range opts {
		opt(m)
	}

	sess.SetObserver(func(session.Snapshot) {
		select {
		case m.changed <- struct{}{}:
		default:
		}
	})
	return m
}

// Run starts the interactive view and blocks until it exits.
func Run(ctx context.Context, sess *session.Session, opts ...Option) error {
	if !IsTTY(os.Stdout) {
		return fmt.Errorf("ui requires a TTY")
	}
	m := New(ctx, sess, opts...)
	defer sess.SetObserver(nil)

	program := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := program.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

// IsTTY returns true if w is a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}

func (m *Model) Init() tea.Cmd {
	m.connecting = true
	return tea.Batch(m.connectCmd(), m.spinner.Tick, textinput.Blink, m.waitForChange())
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case changedMsg:
		m.sync()
		return m, m.waitForChange()
	case connectedMsg:
		m.connecting = false
		m.sync()
		switch {
		case msg.err == nil:
			m.setStatus("connected", nil)
		case errors.Is(msg.err, session.ErrNoWallet):
			// Stay on the wallet prompt.
			m.setStatus("", nil)
		default:
			m.setStatus("", msg.err)
		}
		return m, nil
	case refreshedMsg:
		m.connecting = false
		m.sync()
		if msg.err != nil {
			m.setStatus("", msg.err)
		} else {
			m.setStatus("refreshed", nil)
		}
		return m, nil
	case actionDoneMsg:
		m.sync()
		if msg.err != nil {
			m.setStatus("", msg.err)
			return m, nil
		}
		// The typed text survives until the ledger confirms the task.
		if _, ok := msg.intent.(session.AddTask); ok {
			m.input.Reset()
		}
		m.setStatus(msg.intent.Name()+": done", nil)
		return m, nil
	case statusMsg:
		m.setStatus(msg.text, msg.err)
		return m, nil
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	switch {
	case !m.snap.Connected():
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Connect):
			if m.connecting {
				return m, nil
			}
			m.connecting = true
			return m, m.connectCmd()
		}
		return m, nil

	case !m.snap.HasList():
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Submit):
			return m, m.dispatch(session.CreateList{})
		case key.Matches(msg, m.keys.Refresh):
			return m, m.refreshCmd()
		case key.Matches(msg, m.keys.Disconnect):
			return m.disconnect()
		case key.Matches(msg, m.keys.Copy):
			return m, m.copyCmd(m.snap.Account)
		}
		return m, nil
	}

	if m.focus == focusInput {
		switch {
		case key.Matches(msg, m.keys.Focus):
			m.focus = focusList
			m.input.Blur()
			return m, nil
		case key.Matches(msg, m.keys.Submit):
			content := m.input.Value()
			if strings.TrimSpace(content) == "" || m.snap.Pending {
				return m, nil
			}
			return m, m.dispatch(session.AddTask{Content: content})
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Focus):
		m.focus = focusInput
		return m, m.input.Focus()
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.snap.List.Tasks)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Complete):
		task, ok := m.selected()
		if !ok || task.Completed {
			return m, nil
		}
		return m, m.dispatch(session.CompleteTask{TaskID: task.TaskID, Checked: true})
	case key.Matches(msg, m.keys.Refresh):
		return m, m.refreshCmd()
	case key.Matches(msg, m.keys.Copy):
		if task, ok := m.selected(); ok {
			return m, m.copyCmd(task.Address)
		}
	case key.Matches(msg, m.keys.Disconnect):
		return m.disconnect()
	}
	return m, nil
}

// dispatch runs intent in the background unless an action is pending.
func (m *Model) dispatch(intent session.Intent) tea.Cmd {
	if m.snap.Pending {
		return nil
	}
	ctx, sess := m.ctx, m.sess
	return func() tea.Msg {
		return actionDoneMsg{intent: intent, err: sess.Dispatch(ctx, intent)}
	}
}

func (m *Model) connectCmd() tea.Cmd {
	ctx, sess := m.ctx, m.sess
	return func() tea.Msg {
		return connectedMsg{err: sess.Connect(ctx)}
	}
}

func (m *Model) refreshCmd() tea.Cmd {
	if m.snap.Pending {
		return nil
	}
	ctx, sess, account := m.ctx, m.sess, m.snap.Account
	return func() tea.Msg {
		_, err := sess.Refresh(ctx, account)
		return refreshedMsg{err: err}
	}
}

func (m *Model) copyCmd(text string) tea.Cmd {
	write := m.copy
	return func() tea.Msg {
		if err := write(text); err != nil {
			return statusMsg{err: fmt.Errorf("copy: %w", err)}
		}
		return statusMsg{text: "copied " + text}
	}
}

func (m *Model) waitForChange() tea.Cmd {
	ch, done := m.changed, m.ctx.Done()
	return func() tea.Msg {
		select {
		case <-ch:
			return changedMsg{}
		case <-done:
			return nil
		}
	}
}

func (m *Model) disconnect() (tea.Model, tea.Cmd) {
	if m.snap.Pending {
		return m, nil
	}
	m.sess.Disconnect()
	m.sync()
	m.focus = focusInput
	m.input.Reset()
	m.setStatus("disconnected", nil)
	return m, m.input.Focus()
}

// sync copies the session state into the model.
func (m *Model) sync() {
	m.snap = m.sess.Snapshot()
	n := 0
	if m.snap.List != nil {
		n = len(m.snap.List.Tasks)
	}
	if m.cursor >= n {
		m.cursor = max(n-1, 0)
	}
}

func (m *Model) selected() (service.Task, bool) {
	if m.snap.List == nil || m.cursor >= len(m.snap.List.Tasks) {
		return service.Task{}, false
	}
	return m.snap.List.Tasks[m.cursor], true
}

func (m *Model) setStatus(text string, err error) {
	m.status = text
	m.err = err
}
