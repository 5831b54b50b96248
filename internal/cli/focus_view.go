package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/studyfocus/internal/cli/formatter"
	"github.com/alexanderramin/studyfocus/internal/domain"
	"github.com/alexanderramin/studyfocus/internal/service"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// focusLevel is the depth of the hierarchy the browser shows.
type focusLevel int

const (
	levelSubjects focusLevel = iota
	levelChapters
	levelTopics
)

type focusKeyMap struct {
	Up   key.Binding
	Down key.Binding
	Open key.Binding
	Back key.Binding
	Stop key.Binding
	Quit key.Binding
	Help key.Binding
}

func newFocusKeyMap() focusKeyMap {
	return focusKeyMap{
		Up:   key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down: key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Open: key.NewBinding(key.WithKeys("enter", "right", "l"), key.WithHelp("enter", "open / start timer")),
		Back: key.NewBinding(key.WithKeys("esc", "left", "h", "backspace"), key.WithHelp("esc", "back")),
		Stop: key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "stop timer")),
		Quit: key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "stop and quit")),
		Help: key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more keys")),
	}
}

func (k focusKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Open, k.Back, k.Stop, k.Quit, k.Help}
}

func (k focusKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Up, k.Down, k.Open, k.Back}, {k.Stop, k.Quit, k.Help}}
}

// refreshMsg redraws the running clock.
type refreshMsg time.Time

const refreshInterval = time.Second

func refreshCmd() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg { return refreshMsg(t) })
}

type focusRow struct {
	id      string
	name    string
	total   int64
	running bool
}

// focusModel browses subjects, chapters and topics and drives the timer.
// Service calls are in-memory and run inline in Update.
type focusModel struct {
	ctx  context.Context
	app  *App
	keys focusKeyMap
	help help.Model

	level   focusLevel
	sel     service.Selection
	cursor  int
	status  service.TimerStatus
	message string
	err     error

	// lastResult is the session finalized by the most recent stop.
	lastResult string
	quitting   bool
}

func newFocusModel(ctx context.Context, app *App) *focusModel {
	m := &focusModel{
		ctx:  ctx,
		app:  app,
		keys: newFocusKeyMap(),
		help: help.New(),
	}
	m.sel = app.Study.Selection(ctx)
	switch {
	case m.sel.ChapterID != "":
		m.level = levelTopics
	case m.sel.SubjectID != "":
		m.level = levelChapters
	}
	m.status = app.Timer.Status(ctx)
	if m.status.Running && m.sel == (service.Selection{}) {
		t := m.status.Target
		m.openAt(service.Selection{SubjectID: t.SubjectID, ChapterID: t.ChapterID}, t.TopicID)
	}
	return m
}

// openAt moves the browser to sel and puts the cursor on id if listed.
func (m *focusModel) openAt(sel service.Selection, id string) {
	if err := m.app.Study.Select(m.ctx, sel); err != nil {
		m.err = err
		return
	}
	m.sel = sel
	switch {
	case sel.ChapterID != "":
		m.level = levelTopics
	case sel.SubjectID != "":
		m.level = levelChapters
	default:
		m.level = levelSubjects
	}
	m.cursor = 0
	for i, r := range m.rows() {
		if r.id == id {
			m.cursor = i
		}
	}
}

func (m *focusModel) Init() tea.Cmd {
	return refreshCmd()
}

// rows lists the children of the current selection.
func (m *focusModel) rows() []focusRow {
	st := m.app.Study.Tree(m.ctx)
	var out []focusRow
	for _, s := range st.Subjects {
		if m.level == levelSubjects {
			out = append(out, focusRow{id: s.ID, name: s.Name, total: s.TotalTime,
				running: m.status.Running && m.status.Target.SubjectID == s.ID})
			continue
		}
		if s.ID != m.sel.SubjectID {
			continue
		}
		for _, c := range s.Chapters {
			if m.level == levelChapters {
				out = append(out, focusRow{id: c.ID, name: c.Name, total: c.TotalTime,
					running: m.status.Running && m.status.Target.SubjectID == s.ID && m.status.Target.ChapterID == c.ID})
				continue
			}
			if c.ID != m.sel.ChapterID {
				continue
			}
			for _, t := range c.Topics {
				target := domain.TimerTarget{SubjectID: s.ID, ChapterID: c.ID, TopicID: t.ID}
				out = append(out, focusRow{id: t.ID, name: t.Name, total: t.TotalTime,
					running: m.status.Running && m.status.Target == target})
			}
			break
		}
		break
	}
	return out
}

func (m *focusModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case refreshMsg:
		if m.quitting {
			return m, nil
		}
		m.status = m.app.Timer.Status(m.ctx)
		return m, refreshCmd()

	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		m.err = nil
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *focusModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	rows := m.rows()
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.stopTimer()
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(rows)-1 {
			m.cursor++
		}

	case key.Matches(msg, m.keys.Open):
		if m.cursor >= len(rows) {
			return m, nil
		}
		row := rows[m.cursor]
		switch m.level {
		case levelSubjects:
			m.openAt(service.Selection{SubjectID: row.id}, "")
		case levelChapters:
			m.openAt(service.Selection{SubjectID: m.sel.SubjectID, ChapterID: row.id}, "")
		case levelTopics:
			m.startTimer(domain.TimerTarget{SubjectID: m.sel.SubjectID, ChapterID: m.sel.ChapterID, TopicID: row.id})
		}

	case key.Matches(msg, m.keys.Back):
		switch m.level {
		case levelTopics:
			m.openAt(service.Selection{SubjectID: m.sel.SubjectID}, m.sel.ChapterID)
		case levelChapters:
			m.openAt(service.Selection{}, m.sel.SubjectID)
		}

	case key.Matches(msg, m.keys.Stop):
		m.stopTimer()

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
	return m, nil
}

func (m *focusModel) startTimer(target domain.TimerTarget) {
	prev, err := m.app.Timer.Start(m.ctx, target)
	if err != nil {
		m.err = err
		return
	}
	m.status = m.app.Timer.Status(m.ctx)
	m.message = "Timing " + m.status.TopicName
	if prev.ElapsedSeconds > 0 {
		m.lastResult = fmt.Sprintf("Logged %s on the previous topic", formatter.FormatDuration(prev.ElapsedSeconds))
		m.message = m.lastResult + ". " + m.message
	}
}

// stopTimer finalizes a running timer and remembers what was logged.
func (m *focusModel) stopTimer() {
	before := m.app.Timer.Status(m.ctx)
	if !before.Running {
		m.status = before
		return
	}
	res, err := m.app.Timer.Stop(m.ctx)
	m.status = m.app.Timer.Status(m.ctx)
	if err != nil {
		m.err = err
		return
	}
	m.lastResult = fmt.Sprintf("Logged %s on %s", formatter.FormatDuration(res.ElapsedSeconds), before.TopicName)
	m.message = m.lastResult
}

func (m *focusModel) breadcrumb() string {
	parts := []string{"Subjects"}
	if m.level >= levelChapters {
		names := pathNames(m.app.Study.Tree(m.ctx), m.sel.SubjectID, m.sel.ChapterID)
		parts = append(parts, names[0])
		if m.level == levelTopics {
			parts = append(parts, names[1])
		}
	}
	return strings.Join(parts, " › ")
}

func (m *focusModel) View() string {
	if m.quitting {
		return ""
	}
	var b strings.Builder
	b.WriteString(formatter.Header(m.breadcrumb()) + "\n\n")

	rows := m.rows()
	if len(rows) == 0 {
		b.WriteString(formatter.Dim("  Nothing here yet. Add entries with the subject, chapter and topic commands.") + "\n")
	}
	for i, r := range rows {
		cursor := "  "
		name := r.name
		if i == m.cursor {
			cursor = formatter.StyleHeader.Render("› ")
			name = formatter.Bold(name)
		}
		if r.running {
			name = formatter.StyleYellowBold.Render("▶ " + r.name)
		}
		fmt.Fprintf(&b, "%s%s  %s\n", cursor, name, formatter.Dim(formatter.FormatDuration(r.total)))
	}

	b.WriteString("\n")
	if m.status.Running {
		b.WriteString(formatter.RenderBox("Timer", formatter.FormatTimerLine(
			m.status.SubjectName, m.status.ChapterName, m.status.TopicName, m.status.ElapsedSeconds)) + "\n")
	} else {
		b.WriteString(formatter.Dim("No timer running.") + "\n")
	}
	if m.err != nil {
		b.WriteString(formatter.StyleRed.Render("Error: "+m.err.Error()) + "\n")
	} else if m.message != "" {
		b.WriteString(m.message + "\n")
	}
	b.WriteString("\n" + m.help.View(m.keys))
	return b.String()
}
