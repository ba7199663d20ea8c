package shell

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/angelmondragon/pharmacy-backoffice/internal/cart"
	"github.com/angelmondragon/pharmacy-backoffice/pkg/notify"
)

// Inbox collects the notifications raised while a command runs so the
// model can show them as toasts.
type Inbox interface {
	notify.Notifier
	Drain() []notify.Notification
}

type resultMsg struct {
	output string
	quit   bool
	notes  []notify.Notification
}

type expireMsg struct {
	id int
}

type cartMsg struct {
	summary cart.Summary
}

type toast struct {
	id   int
	note notify.Notification
}

// Model is the full-screen storefront. Commands run off the update loop;
// keystrokes are ignored while one is in flight, including the catalog load
// Init starts. The header follows the cart through WatchCart.
type Model struct {
	ctx     context.Context
	shell   *Shell
	inbox   Inbox
	title   string
	summary cart.Summary
	input   []rune
	output  string
	toasts  []toast
	nextID  int
	busy    bool
	quit    bool
}

// NewModel wraps s. inbox must be the notifier the checkout and session
// report to.
func NewModel(ctx context.Context, s *Shell, inbox Inbox, title string) Model {
	return Model{
		ctx:     ctx,
		shell:   s,
		inbox:   inbox,
		title:   title,
		summary: s.Cart().Summary(),
		output:  helpText,
		busy:    true,
	}
}

// WatchCart forwards every cart change to send, normally the running
// program's Send. The returned function stops forwarding.
func WatchCart(store *cart.Store, send func(tea.Msg)) func() {
	return store.Subscribe(func(summary cart.Summary) {
		send(cartMsg{summary: summary})
	})
}

func (m Model) Init() tea.Cmd {
	return m.run("produtos")
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.key(msg)
	case resultMsg:
		m.busy = false
		m.output = msg.output
		var cmds []tea.Cmd
		for _, note := range msg.notes {
			m.nextID++
			m.toasts = append(m.toasts, toast{id: m.nextID, note: note})
			cmds = append(cmds, expire(m.nextID, note.Duration))
		}
		if msg.quit {
			m.quit = true
			cmds = append(cmds, tea.Quit)
		}
		return m, tea.Batch(cmds...)
	case cartMsg:
		m.summary = msg.summary
	case expireMsg:
		kept := m.toasts[:0:0]
		for _, t := range m.toasts {
			if t.id != msg.id {
				kept = append(kept, t)
			}
		}
		m.toasts = kept
	}
	return m, nil
}

func (m Model) key(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		m.quit = true
		return m, tea.Quit
	}
	if m.busy {
		return m, nil
	}
	switch msg.Type {
	case tea.KeyEnter:
		line := string(m.input)
		m.input = nil
		if strings.TrimSpace(line) == "" {
			return m, nil
		}
		m.busy = true
		return m, m.run(line)
	case tea.KeyBackspace:
		if len(m.input) > 0 {
			m.input = m.input[:len(m.input)-1]
		}
	case tea.KeySpace:
		m.input = append(m.input, ' ')
	case tea.KeyRunes:
		m.input = append(m.input, msg.Runes...)
	}
	return m, nil
}

func (m Model) run(line string) tea.Cmd {
	return func() tea.Msg {
		output, quit := m.shell.Exec(m.ctx, line)
		return resultMsg{output: output, quit: quit, notes: m.inbox.Drain()}
	}
}

func expire(id int, after time.Duration) tea.Cmd {
	return tea.Tick(after, func(time.Time) tea.Msg {
		return expireMsg{id: id}
	})
}

func (m Model) View() string {
	if m.quit {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s  %s  Total: %s\n\n", m.title, m.summary.Badge(), m.summary.FormatTotal(m.shell.format))
	if m.output != "" {
		fmt.Fprintf(&b, "%s\n\n", m.output)
	}
	for _, t := range m.toasts {
		fmt.Fprintf(&b, "%s %s\n", t.note.Status.Marker(), t.note.Title)
	}
	prompt := Prompt + string(m.input)
	if m.busy {
		prompt = "..."
	}
	fmt.Fprintf(&b, "%s\n", prompt)
	return b.String()
}
