package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"todo-sync/internal/models"
	"todo-sync/internal/view"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// listItem adapts a Todo to bubbles/list.Item
type listItem struct {
	todo models.Todo
}

func (i listItem) Title() string       { return i.todo.Title }
func (i listItem) Description() string { return "" }
func (i listItem) FilterValue() string { return i.todo.Title }

// Custom delegate to control how items render (single line)
type itemDelegate struct{}

func (d itemDelegate) Height() int                               { return 1 }
func (d itemDelegate) Spacing() int                              { return 0 }
func (d itemDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }
func (d itemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, _ := item.(listItem)
	box := mutedStyle.Render(boxUnchecked)
	text := truncate(it.todo.Title)
	if it.todo.Completed {
		box = successStyle.Render(boxChecked)
		text = doneStyle.Render(text)
	}
	prefix := "  "
	if index == m.Index() {
		prefix = selectedStyle.Render("> ")
	}
	fmt.Fprint(w, prefix+box+" "+text)
}

// commandMsg reports the outcome of one API command.
type commandMsg struct {
	op  string
	err error
}

type modelTUI struct {
	ctx  context.Context
	view *view.View
	list list.Model

	// Inline add / edit share one text input
	ti       textinput.Model
	adding   bool
	editing  bool
	editID   string
	inputErr string

	busy   bool
	status string
	width  int
	height int
}

var (
	toggleBind = key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "toggle"))
	addBind    = key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add"))
	editBind   = key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit"))
	deleteBind = key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete"))
	reloadBind = key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload"))
	quitBind   = key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit"))
)

func newModel(ctx context.Context, v *view.View) modelTUI {
	l := list.New(nil, itemDelegate{}, 0, 0)
	l.SetShowHelp(true)
	l.SetShowPagination(true)
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.Styles.Title = titleStyle
	l.Styles.HelpStyle = helpStyle
	l.Styles.PaginationStyle = helpStyle
	l.FilterInput.Prompt = "/ "
	l.SetStatusBarItemName("item", "items")
	l.DisableQuitKeybindings()

	extra := func() []key.Binding {
		return []key.Binding{toggleBind, addBind, editBind, deleteBind, reloadBind}
	}
	l.AdditionalShortHelpKeys = extra
	l.AdditionalFullHelpKeys = extra

	ti := textinput.New()
	ti.Prompt = "> "
	ti.CharLimit = 200

	m := modelTUI{ctx: ctx, view: v, list: l, ti: ti, width: 80, height: 24}
	m.list.Title = m.header()
	return m
}

// RunInteractive starts the Bubble Tea list over the replica.
func RunInteractive(ctx context.Context, v *view.View) error {
	p := tea.NewProgram(newModel(ctx, v), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

// run executes an API command off the event loop.
func (m modelTUI) run(op string, fn func(ctx context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return commandMsg{op: op, err: fn(ctx)}
	}
}

func (m modelTUI) selected() (models.Todo, bool) {
	it, ok := m.list.SelectedItem().(listItem)
	return it.todo, ok
}

func (m modelTUI) header() string {
	d, p := m.view.Stats()
	return fmt.Sprintf("%s   %s %d  %s %d  %s %d",
		titleStyle.Render("Todos"),
		successStyle.Render("✔"), d,
		pendingStyle.Render("•"), p,
		accentStyle.Render("Total"), d+p,
	)
}

// refresh rebuilds list items from the replica, keeping the cursor in range.
func (m *modelTUI) refresh() tea.Cmd {
	todos := m.view.Ordered()
	items := make([]list.Item, 0, len(todos))
	for _, t := range todos {
		items = append(items, listItem{todo: t})
	}
	idx := m.list.Index()
	cmd := m.list.SetItems(items)
	if idx >= len(items) {
		idx = len(items) - 1
	}
	if idx >= 0 {
		m.list.Select(idx)
	}
	m.list.Title = m.header()
	return cmd
}

// Init loads the replica from the server.
func (m modelTUI) Init() tea.Cmd {
	return m.run("load", m.view.Load)
}

func (m modelTUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch x := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = x.Width, x.Height
		return m, nil
	case commandMsg:
		m.busy = false
		if x.err != nil {
			m.status = errorStyle.Render(x.op + " failed: " + x.err.Error())
		} else {
			m.status = ""
		}
		return m, m.refresh()
	}

	if m.adding || m.editing {
		return m.updateInput(msg)
	}

	if k, isKey := msg.(tea.KeyMsg); isKey && m.list.FilterState() != list.Filtering {
		switch {
		case key.Matches(k, quitBind):
			return m, tea.Quit
		case key.Matches(k, toggleBind):
			if t, ok := m.selected(); ok && !m.busy {
				m.busy = true
				return m, m.run("toggle", func(ctx context.Context) error {
					_, err := m.view.Toggle(ctx, t.ID)
					return err
				})
			}
			return m, nil
		case key.Matches(k, deleteBind):
			if t, ok := m.selected(); ok && !m.busy {
				m.busy = true
				return m, m.run("delete", func(ctx context.Context) error {
					return m.view.Delete(ctx, t.ID)
				})
			}
			return m, nil
		case key.Matches(k, reloadBind):
			m.busy = true
			return m, m.run("load", m.view.Load)
		case key.Matches(k, addBind):
			m.adding = true
			m.inputErr = ""
			m.ti.SetValue("")
			m.ti.Placeholder = "New item title..."
			return m, m.ti.Focus()
		case key.Matches(k, editBind):
			if t, ok := m.selected(); ok {
				m.editing = true
				m.editID = t.ID
				m.inputErr = ""
				m.ti.SetValue(t.Title)
				m.ti.CursorEnd()
				m.ti.Placeholder = "Edit item title..."
				return m, m.ti.Focus()
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m modelTUI) updateInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, isKey := msg.(tea.KeyMsg); isKey {
		switch k.String() {
		case "enter":
			title := strings.TrimSpace(m.ti.Value())
			if title == "" {
				m.inputErr = "Title cannot be empty"
				return m, nil
			}
			var cmd tea.Cmd
			if m.adding {
				cmd = m.run("add", func(ctx context.Context) error {
					_, err := m.view.Add(ctx, title)
					return err
				})
			} else {
				id := m.editID
				cmd = m.run("edit", func(ctx context.Context) error {
					_, err := m.view.Edit(ctx, id, title)
					return err
				})
			}
			m.closeInput()
			m.busy = true
			return m, cmd
		case "esc":
			m.closeInput()
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.ti, cmd = m.ti.Update(msg)
	return m, cmd
}

func (m *modelTUI) closeInput() {
	m.adding = false
	m.editing = false
	m.editID = ""
	m.inputErr = ""
	m.ti.SetValue("")
	m.ti.Blur()
}

func (m modelTUI) View() string {
	listHeight := m.height - 4
	if m.adding || m.editing {
		listHeight = m.height - 7
	}
	if m.status != "" {
		listHeight--
	}
	m.list.SetSize(m.width-4, max(listHeight, 3))

	content := m.list.View()
	if m.status != "" {
		content += "\n" + m.status
	}
	if m.adding || m.editing {
		title := "Add new item"
		if m.editing {
			title = "Edit item"
		}
		if m.inputErr != "" {
			title += " - " + errorStyle.Render(m.inputErr)
		}
		content += "\n" + panelStyle.Render(title+"\n"+m.ti.View())
	}
	return panelStyle.Render(content)
}
