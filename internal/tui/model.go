package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/muurk/customers/internal/api"
	"github.com/muurk/customers/internal/feed"
	"github.com/muurk/customers/internal/form"
	"github.com/muurk/customers/internal/logging"
	"github.com/muurk/customers/internal/store"
)

const (
	// SuccessMessage is shown after a customer was created
	SuccessMessage = "Customer added successfully!"

	// FailurePrefix precedes the backend message when a create fails
	FailurePrefix = "Failed to add customer: "

	// DefaultNoticeDuration is how long the success notice stays up
	DefaultNoticeDuration = 3000 * time.Millisecond

	feedRetryDelay = 5 * time.Second
)

type customerSnapshot = store.Snapshot[api.CustomerList]

// Message types for async operations
type snapshotMsg struct {
	snapshot customerSnapshot
}

type createCompleteMsg struct {
	customer *api.Customer
	snapshot customerSnapshot // list after the follow-up revalidation
	err      error
}

type noticeExpiredMsg struct {
	id int
}

type feedEventMsg struct {
	event feed.Event
}

type feedClosedMsg struct {
	err error
}

type feedRetryMsg struct{}

type feedConnectedMsg struct{}

// Options configures a Model
type Options struct {
	Client *api.Client

	// NoticeDuration defaults to DefaultNoticeDuration
	NoticeDuration time.Duration

	// FeedURL is the WebSocket change feed. Empty disables live updates.
	FeedURL string
}

// session owns everything created when the screen mounts and released when
// it unmounts. It is shared by every copy of the Model.
type session struct {
	ctx    context.Context
	cancel context.CancelFunc

	cache       *store.Cache
	list        *store.Store[api.CustomerList]
	unsubscribe func()

	// updates holds at most the newest snapshot not yet seen by the program
	updates   chan customerSnapshot
	events    chan feed.Event
	connected chan struct{}

	once sync.Once
}

func newSession(client *api.Client) (*session, error) {
	cache := store.NewCache()
	list, err := store.Get[api.CustomerList](cache, client.URL(api.CustomersPath), client.ListCustomers)
	if err != nil {
		cache.Close()
		return nil, fmt.Errorf("customer list store: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &session{
		ctx:       ctx,
		cancel:    cancel,
		cache:     cache,
		list:      list,
		updates:   make(chan customerSnapshot, 1),
		events:    make(chan feed.Event, 16),
		connected: make(chan struct{}, 1),
	}
	s.unsubscribe = list.Subscribe(s.publish)
	return s, nil
}

// publish replaces any undelivered snapshot with snap. Store listeners are
// serialized so there is a single writer.
func (s *session) publish(snap customerSnapshot) {
	select {
	case s.updates <- snap:
		return
	default:
	}
	select {
	case <-s.updates:
	default:
	}
	select {
	case s.updates <- snap:
	default:
	}
}

// waitForSnapshot delivers the next store change; the caller re-arms it
// after every snapshotMsg.
func (s *session) waitForSnapshot() tea.Cmd {
	return func() tea.Msg {
		select {
		case snap := <-s.updates:
			return snapshotMsg{snapshot: snap}
		case <-s.ctx.Done():
			return nil
		}
	}
}

// watchFeed runs the change feed subscription until it ends
func (s *session) watchFeed(url string) tea.Cmd {
	return func() tea.Msg {
		err := feed.Subscribe(s.ctx, url, func(ev feed.Event) {
			select {
			case s.events <- ev:
			default:
				// A revalidation is already pending; one more changes nothing
			}
		}, feed.OnConnect(func() {
			select {
			case s.connected <- struct{}{}:
			default:
			}
		}))
		return feedClosedMsg{err: err}
	}
}

func (s *session) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		select {
		case ev := <-s.events:
			return feedEventMsg{event: ev}
		case <-s.connected:
			return feedConnectedMsg{}
		case <-s.ctx.Done():
			return nil
		}
	}
}

func (s *session) close() {
	s.once.Do(func() {
		s.unsubscribe()
		s.cancel()
		s.cache.Close()
	})
}

// Model is the customer screen: a list of customers with an add dialog on top.
type Model struct {
	// UI state
	Width  int
	Height int

	client  *api.Client
	session *session
	flow    *Flow

	snapshot customerSnapshot

	table   table.Model
	inputs  []textinput.Model // indexed like form.Fields
	focus   int
	spinner spinner.Model

	// Success notice and the id of the timer allowed to clear it
	notice         string
	noticeID       int
	noticeDuration time.Duration

	// Blocking failure notice shown over the dialog
	failure string

	feedURL string
	feedErr error

	quitting bool

	// Help
	help       help.Model
	listKeys   listKeyMap
	dialogKeys dialogKeyMap
}

// NewModel creates the customer screen. Nothing is fetched until Init.
func NewModel(opts Options) (Model, error) {
	if opts.Client == nil {
		return Model{}, errors.New("tui: client is required")
	}
	if opts.NoticeDuration <= 0 {
		opts.NoticeDuration = DefaultNoticeDuration
	}

	sess, err := newSession(opts.Client)
	if err != nil {
		return Model{}, err
	}

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	t := table.New(
		table.WithColumns(customerColumns(DefaultWidth)),
		table.WithFocused(true),
		table.WithHeight(tableHeight(DefaultHeight)),
	)
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(BorderColor).
		BorderBottom(true).
		Bold(true)
	styles.Selected = styles.Selected.
		Foreground(TextColor).
		Background(PrimaryColor)
	t.SetStyles(styles)

	inputs := make([]textinput.Model, len(form.Fields))
	for i, f := range form.Fields {
		in := textinput.New()
		in.Placeholder = f.Placeholder()
		in.CharLimit = 120
		in.Width = DialogWidth - 10
		in.Prompt = "  "
		inputs[i] = in
	}

	return Model{
		Width:          DefaultWidth,
		Height:         DefaultHeight,
		client:         opts.Client,
		session:        sess,
		flow:           NewFlow(form.New()),
		table:          t,
		inputs:         inputs,
		spinner:        s,
		noticeDuration: opts.NoticeDuration,
		feedURL:        opts.FeedURL,
		help:           help.New(),
		listKeys:       newListKeyMap(),
		dialogKeys:     newDialogKeyMap(),
	}, nil
}

// Init mounts the list store and starts listening for its changes
func (m Model) Init() tea.Cmd {
	m.session.list.Mount()

	cmds := []tea.Cmd{m.spinner.Tick, m.session.waitForSnapshot()}
	if m.feedURL != "" {
		cmds = append(cmds, m.session.watchFeed(m.feedURL), m.session.waitForEvent())
	}
	return tea.Batch(cmds...)
}

// Close releases the store, its in-flight requests and the change feed.
// Safe to call more than once.
func (m Model) Close() {
	m.session.close()
}

// Phase returns the dialog phase
func (m Model) Phase() Phase {
	return m.flow.Phase()
}

// Snapshot returns the list state the screen is currently showing
func (m Model) Snapshot() store.Snapshot[api.CustomerList] {
	return m.snapshot
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.table.SetColumns(customerColumns(msg.Width))
		m.table.SetHeight(tableHeight(msg.Height))
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case snapshotMsg:
		m.applySnapshot(msg.snapshot)
		return m, m.session.waitForSnapshot()

	case createCompleteMsg:
		return m.handleCreateComplete(msg)

	case noticeExpiredMsg:
		// Only the timer of the notice on screen may clear it
		if msg.id == m.noticeID {
			m.notice = ""
		}
		return m, nil

	case feedEventMsg:
		m.feedErr = nil
		if msg.event.Type == feed.TypeCustomersChanged {
			m.session.list.Revalidate()
		}
		return m, m.session.waitForEvent()

	case feedConnectedMsg:
		if m.feedErr != nil {
			// Changes made while disconnected were never announced
			m.feedErr = nil
			m.session.list.Revalidate()
			logging.Info("Change feed reconnected", zap.String("url", m.feedURL))
		}
		return m, m.session.waitForEvent()

	case feedClosedMsg:
		if m.session.ctx.Err() != nil {
			return m, nil
		}
		m.feedErr = msg.err
		logging.Warn("Change feed disconnected",
			zap.String("url", m.feedURL),
			zap.Error(msg.err),
		)
		return m, tea.Tick(feedRetryDelay, func(time.Time) tea.Msg { return feedRetryMsg{} })

	case feedRetryMsg:
		if m.session.ctx.Err() != nil {
			return m, nil
		}
		return m, m.session.watchFeed(m.feedURL)

	case tea.KeyMsg:
		if key.Matches(msg, forceQuit) {
			return m.quit()
		}
		// Any key dismisses the failure notice
		if m.failure != "" {
			m.failure = ""
			return m, nil
		}

		switch m.flow.Phase() {
		case PhaseDialogClosed:
			return m.updateList(msg)
		case PhaseDialogOpen:
			return m.updateDialog(msg)
		case PhaseSubmitting:
			// Block all input while the create is in flight
			return m, nil
		}
	}

	// Cursor blink and friends belong to the focused input
	if m.flow.Phase() == PhaseDialogOpen {
		var cmd tea.Cmd
		m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
		return m, cmd
	}

	return m, nil
}

// updateList handles input while the dialog is closed
func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.listKeys.Quit):
		return m.quit()

	case key.Matches(msg, m.listKeys.Add):
		if err := m.flow.OpenDialog(); err != nil {
			return m, nil
		}
		m.resetInputs()
		return m, m.focusInput(0)

	case key.Matches(msg, m.listKeys.Refresh):
		seq := m.session.list.Revalidate()
		logging.Debug("Manual refresh", zap.Uint64("seq", seq))
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// updateDialog handles input while the dialog is open
func (m Model) updateDialog(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.dialogKeys.Cancel):
		if err := m.flow.Cancel(); err != nil {
			return m, nil
		}
		m.resetInputs()
		return m, nil

	case key.Matches(msg, m.dialogKeys.Next):
		return m, m.focusInput((m.focus + 1) % len(m.inputs))

	case key.Matches(msg, m.dialogKeys.Prev):
		return m, m.focusInput((m.focus + len(m.inputs) - 1) % len(m.inputs))

	case key.Matches(msg, m.dialogKeys.Submit):
		return m.submit()
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	m.flow.Form().SetField(form.Fields[m.focus], m.inputs[m.focus].Value())
	return m, cmd
}

// submit starts the create when the draft is valid; otherwise the key is ignored
func (m Model) submit() (tea.Model, tea.Cmd) {
	if !m.flow.Form().IsValid() {
		return m, nil
	}

	payload, err := m.flow.BeginSubmit()
	if err != nil {
		logging.Debug("Submit rejected", zap.Error(err))
		return m, nil
	}
	m.inputs[m.focus].Blur()

	logging.Info("Creating customer", zap.String("email", payload.Email))
	return m, createCustomerCmd(m.client, m.session.list, payload)
}

// createCustomerCmd posts the customer and, when that succeeds, refetches
// the list before reporting back so the dialog closes on fresh data.
func createCustomerCmd(client *api.Client, list *store.Store[api.CustomerList], customer api.Customer) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()

		created, err := client.CreateCustomer(ctx, customer)
		if err != nil {
			return createCompleteMsg{err: err}
		}

		snap, err := list.RevalidateWait(ctx)
		if err != nil {
			logging.Warn("Revalidate after create failed", zap.Error(err))
		}
		return createCompleteMsg{customer: created, snapshot: snap}
	}
}

func (m Model) handleCreateComplete(msg createCompleteMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		if err := m.flow.Fail(); err != nil {
			logging.Warn("Unexpected create result", zap.Error(err))
			return m, nil
		}
		m.failure = FailurePrefix + api.UserMessage(msg.err)
		logging.Warn("Create customer failed", zap.Error(msg.err))
		return m, m.focusInput(m.focus)
	}

	if err := m.flow.Succeed(); err != nil {
		logging.Warn("Unexpected create result", zap.Error(err))
		return m, nil
	}
	m.resetInputs()
	m.applySnapshot(msg.snapshot)

	if msg.customer != nil {
		logging.Info("Customer created", zap.String("email", msg.customer.Email))
	}
	return m, m.showNotice(SuccessMessage)
}

// applySnapshot shows snap unless the screen already shows a newer response
func (m *Model) applySnapshot(snap customerSnapshot) {
	if snap.Status == store.StatusIdle || snap.Seq < m.snapshot.Seq {
		return
	}
	m.snapshot = snap
	if snap.HasData() {
		m.table.SetRows(customerRows(snap.Data))
	}
}

// showNotice displays text and schedules its removal
func (m *Model) showNotice(text string) tea.Cmd {
	m.noticeID++
	m.notice = text
	id := m.noticeID
	return tea.Tick(m.noticeDuration, func(time.Time) tea.Msg {
		return noticeExpiredMsg{id: id}
	})
}

func (m *Model) focusInput(i int) tea.Cmd {
	m.inputs[m.focus].Blur()
	m.focus = i
	return m.inputs[i].Focus()
}

func (m *Model) resetInputs() {
	for i := range m.inputs {
		m.inputs[i].Reset()
		m.inputs[i].Blur()
	}
	m.focus = 0
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	m.quitting = true
	m.session.close()
	return m, tea.Quit
}

func customerRows(list api.CustomerList) []table.Row {
	rows := make([]table.Row, 0, len(list))
	for _, c := range list {
		rows = append(rows, table.Row{c.DisplayName(), c.Email})
	}
	return rows
}

func customerColumns(width int) []table.Column {
	available := width - 10
	name := available * 2 / 5
	if name < NameColumnMin {
		name = NameColumnMin
	}
	email := available - name
	if email < EmailColumnMin {
		email = EmailColumnMin
	}
	return []table.Column{
		{Title: "Name", Width: name},
		{Title: "Email", Width: email},
	}
}

func tableHeight(height int) int {
	// header, title, notice and footer rows
	h := height - 14
	if h < 3 {
		return 3
	}
	return h
}

// View renders the screen
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.flow.Phase() != PhaseDialogClosed {
		return RenderModal(m.renderDialog(), m.Width, m.Height)
	}
	return RenderApplicationContainer(m.renderList(), m.footerText(), m.Width, m.Height)
}

// Title returns the list header: the count when a list is loaded
func (m Model) Title() string {
	if m.snapshot.HasData() {
		return fmt.Sprintf("%d Customers", len(m.snapshot.Data))
	}
	return "Customers"
}

func (m Model) renderList() string {
	title := m.Title()
	if m.snapshot.Revalidating && m.snapshot.Status != store.StatusLoading {
		title += " " + m.spinner.View()
	}
	parts := []string{TitleStyle.Render(title)}

	if m.notice != "" {
		parts = append(parts, SuccessNoticeStyle.Render("✓ "+m.notice), "")
	}

	switch m.snapshot.Status {
	case store.StatusSuccess:
		parts = append(parts, m.table.View())
		if len(m.snapshot.Data) == 0 {
			parts = append(parts, "", StatusStyle.Render("No customers yet. Press a to add one."))
		}
	case store.StatusFailure:
		parts = append(parts, ListErrorStyle.Render("Error: "+api.UserMessage(m.snapshot.Err)))
	default:
		parts = append(parts, StatusStyle.Render(m.spinner.View()+" Loading..."))
	}

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) footerText() string {
	text := m.help.View(m.listKeys)
	if m.feedURL == "" {
		return text
	}
	if m.feedErr != nil {
		return text + "  •  live: reconnecting"
	}
	return text + "  •  live"
}

func (m Model) renderDialog() string {
	width := SafeModalWidth(DialogWidth, m.Width)
	submitting := m.flow.Phase() == PhaseSubmitting

	var b strings.Builder
	b.WriteString(TitleStyle.Render("Add Customer"))
	b.WriteString("\n")

	for i := range m.inputs {
		marker := "  "
		style := BlurredInputStyle
		if i == m.focus && !submitting {
			marker = "▸ "
			style = FocusedInputStyle
		}
		b.WriteString(style.Render(marker))
		b.WriteString(m.inputs[i].View())
		b.WriteString("\n\n")
	}

	if submitting {
		b.WriteString(m.spinner.View() + " Creating...")
	} else {
		b.WriteString(RenderButton("Create", m.flow.Form().IsValid()))
	}
	b.WriteString("\n\n")
	b.WriteString(m.help.View(m.dialogKeys))

	dialog := DialogStyle.Width(width).Render(b.String())
	if m.failure == "" {
		return dialog
	}

	notice := ErrorNoticeStyle.Width(width).Render("✗ " + m.failure + "\n\nPress any key to continue")
	return lipgloss.JoinVertical(lipgloss.Center, notice, dialog)
}
