// Package tui is the interactive thread monitor: a ticking list of
// marketplace chat threads with inline selection, a conversation view and
// new-activity alerts. Selection input survives refreshes; a redraw never
// eats half-typed digits.
package tui

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"

	"lotwatch/internal/funpay"
	"lotwatch/internal/notify"
	"lotwatch/internal/watch"
	logx "lotwatch/pkg/logx"
)

// monitorState distinguishes between list and conversation views.
type monitorState int

const (
	listState  monitorState = iota
	convoState              // viewing a single thread
)

const (
	defaultRefreshInterval = 5 * time.Second
	messageLimit           = 50
	maxInputLen            = 500
)

// ThreadSource is the marketplace client surface the monitor needs.
type ThreadSource interface {
	FetchThreads(ctx context.Context) ([]funpay.Thread, error)
	FetchMessages(ctx context.Context, threadURL string, limit int) ([]funpay.Message, funpay.ThreadMeta, error)
	SendMessage(ctx context.Context, meta funpay.ThreadMeta, content string) error
}

// Dispatcher fans thread-activity notifications out. Nil disables alerts
// (browser mode).
type Dispatcher interface {
	Fanout(ctx context.Context, ev notify.Event) []notify.Result
}

// -- messages --

type threadsLoadedMsg struct {
	threads []funpay.Thread
	err     error
}

type messagesLoadedMsg struct {
	threadURL string
	messages  []funpay.Message
	meta      funpay.ThreadMeta
	err       error
}

type sendResultMsg struct {
	err error
}

type dispatchedMsg struct{}

type pollTickMsg time.Time

func pollCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return pollTickMsg(t)
	})
}

// -- model --

type Model struct {
	src      ThreadSource
	disp     Dispatcher
	diff     *watch.ThreadDiff
	interval time.Duration
	log      logx.Logger

	state   monitorState
	threads []funpay.Thread
	loading bool
	width   int
	height  int

	// input is the pending thread selection, preserved across refreshes.
	input  string
	status string

	// tickPending is true while a poll tick is armed. Manual refreshes and
	// view changes start extra loads, but only one tick chain may exist.
	tickPending bool

	// errShown suppresses repeated renders of the same fetch error; the
	// loop keeps polling regardless.
	errShown string

	// convo state
	openURL  string
	openName string
	messages []funpay.Message
	meta     funpay.ThreadMeta
	metaOK   bool
	compose  string
}

func NewModel(src ThreadSource, disp Dispatcher, interval time.Duration, log logx.Logger) Model {
	if interval <= 0 {
		interval = defaultRefreshInterval
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	return Model{
		src:      src,
		disp:     disp,
		diff:     watch.NewThreadDiff(),
		interval: interval,
		log:      log,
		loading:  true,
	}
}

func (m Model) Init() tea.Cmd {
	return m.loadThreads()
}

func (m Model) loadThreads() tea.Cmd {
	src := m.src
	return func() tea.Msg {
		threads, err := src.FetchThreads(context.Background())
		return threadsLoadedMsg{threads: threads, err: err}
	}
}

func (m Model) loadMessages() tea.Cmd {
	src := m.src
	url := m.openURL
	return func() tea.Msg {
		msgs, meta, err := src.FetchMessages(context.Background(), url, messageLimit)
		return messagesLoadedMsg{threadURL: url, messages: msgs, meta: meta, err: err}
	}
}

func (m Model) sendMessage(content string) tea.Cmd {
	src := m.src
	meta := m.meta
	return func() tea.Msg {
		return sendResultMsg{err: src.SendMessage(context.Background(), meta, content)}
	}
}

// alertCmd dispatches a thread-activity notification and rings the terminal
// bell. Runs off the update loop so a slow channel never blocks rendering.
func (m Model) alertCmd(fresh []funpay.Thread) tea.Cmd {
	disp := m.disp
	return func() tea.Msg {
		fmt.Fprint(os.Stderr, "\a")
		if disp != nil {
			for _, t := range fresh {
				disp.Fanout(context.Background(), notify.Event{
					Kind:  notify.KindThreadActivity,
					Title: "New message from " + t.Name,
					Body:  t.LastMessage,
					URL:   t.URL,
				})
			}
		}
		return dispatchedMsg{}
	}
}

// scheduleTick arms the next poll tick unless one is already pending.
func (m Model) scheduleTick() (Model, tea.Cmd) {
	if m.tickPending {
		return m, nil
	}
	m.tickPending = true
	return m, pollCmd(m.interval)
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case pollTickMsg:
		m.tickPending = false
		if m.state == convoState {
			return m, m.loadMessages()
		}
		return m, m.loadThreads()

	case threadsLoadedMsg:
		m.loading = false
		if msg.err != nil {
			if m.errShown != msg.err.Error() {
				m.errShown = msg.err.Error()
				m.log.Warn("thread refresh failed", logx.Err(msg.err))
			}
			return m.scheduleTick()
		}
		m.errShown = ""
		m.threads = msg.threads
		fresh := m.diff.Observe(msg.threads)
		m, tick := m.scheduleTick()
		if m.state == listState && len(fresh) > 0 {
			return m, tea.Batch(m.alertCmd(fresh), tick)
		}
		return m, tick

	case messagesLoadedMsg:
		if msg.threadURL == m.openURL {
			if msg.err != nil {
				m.status = "load failed: " + msg.err.Error()
			} else {
				m.messages = msg.messages
				m.meta = msg.meta
				m.metaOK = true
				m.status = ""
			}
		}
		if m.state == convoState {
			return m.scheduleTick()
		}

	case sendResultMsg:
		if msg.err != nil {
			m.status = "send failed: " + msg.err.Error()
		} else {
			m.status = ""
			return m, m.loadMessages()
		}

	case dispatchedMsg:
		// alert already delivered; nothing to update

	case tea.KeyMsg:
		switch m.state {
		case listState:
			return m.updateList(msg)
		case convoState:
			return m.updateConvo(msg)
		}
	}
	return m, nil
}

func (m Model) updateList(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch key := msg.String(); key {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "enter":
		sel := strings.TrimSpace(m.input)
		m.input = ""
		if sel == "" {
			return m, nil
		}
		if sel == "0" {
			return m, tea.Quit
		}
		idx, err := strconv.Atoi(sel)
		if err != nil || idx < 1 || idx > len(m.threads) {
			m.status = fmt.Sprintf("no thread %q, pick 1-%d or 0 to quit", sel, len(m.threads))
			return m, nil
		}
		t := m.threads[idx-1]
		m.state = convoState
		m.openURL = t.URL
		m.openName = t.Name
		m.messages = nil
		m.metaOK = false
		m.status = ""
		return m, m.loadMessages()
	case "backspace":
		if len(m.input) > 0 {
			runes := []rune(m.input)
			m.input = string(runes[:len(runes)-1])
		}
	case "r":
		return m, m.loadThreads()
	default:
		if utf8.RuneCountInString(key) == 1 && key >= "0" && key <= "9" {
			m.input += key
			m.status = ""
		}
	}
	return m, nil
}

func (m Model) updateConvo(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch key := msg.String(); key {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		// Returning marks everything as caught up: forget the recorded
		// pairs so the freshly read thread is not re-flagged and genuinely
		// new activity elsewhere is re-detected from scratch.
		m.state = listState
		m.openURL = ""
		m.openName = ""
		m.messages = nil
		m.metaOK = false
		m.compose = ""
		m.status = ""
		m.diff.Reset()
		return m, m.loadThreads()
	case "enter":
		content := strings.TrimSpace(m.compose)
		if content == "" {
			return m, nil
		}
		if !m.metaOK {
			m.status = "thread not ready yet"
			return m, nil
		}
		m.compose = ""
		return m, m.sendMessage(content)
	case "backspace":
		if len(m.compose) > 0 {
			runes := []rune(m.compose)
			m.compose = string(runes[:len(runes)-1])
		}
	default:
		if utf8.RuneCountInString(key) == 1 && utf8.RuneCountInString(m.compose) < maxInputLen {
			m.compose += key
		}
	}
	return m, nil
}

func (m Model) View() string {
	switch m.state {
	case convoState:
		return m.viewConvo()
	default:
		return m.viewList()
	}
}

func (m Model) viewList() string {
	var b strings.Builder

	b.WriteString(" " + titleStyle.Render("Threads") + "\n")
	b.WriteString(" " + metaStyle.Render(strings.Repeat("─", maxInt(m.width-2, 4))) + "\n")

	switch {
	case m.loading:
		b.WriteString(" " + dimStyle.Render("loading...") + "\n")
	case m.errShown != "":
		b.WriteString(" " + errStyle.Render("refresh error: "+m.errShown) + "\n")
	case len(m.threads) == 0:
		b.WriteString("\n " + dimStyle.Render("no threads") + "\n")
	default:
		for i, t := range m.threads {
			name := t.Name
			marker := "  "
			if t.Unread {
				marker = unreadStyle.Render("●") + " "
				name = unreadStyle.Render(t.Name)
			} else {
				name = selectedStyle.Render(name)
			}
			preview := truncStr(t.LastMessage, 48)
			if preview == "" {
				preview = "no messages"
			}
			fmt.Fprintf(&b, " %s%2d. %s  %s  %s\n",
				marker, i+1, name, dimStyle.Render(preview), metaStyle.Render(t.LastUpdate))
		}
	}

	b.WriteString("\n " + dimStyle.Render("open # (0 quits): ") + accentStyle.Render(m.input+"█") + "\n")
	if m.status != "" {
		b.WriteString(" " + errStyle.Render(m.status) + "\n")
	}
	b.WriteString(" " + metaStyle.Render("digits+enter open · r refresh · q quit") + "\n")
	return b.String()
}

func truncStr(s string, maxLen int) string {
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxLen-1]) + "…"
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
