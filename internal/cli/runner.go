package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"todo-sync/internal/models"
	"todo-sync/internal/view"
)

// Options tune output behavior from root flags.
type Options struct {
	Group bool // list grouped by pending/done
	Out   io.Writer
	Err   io.Writer
}

func (o Options) out() io.Writer {
	if o.Out == nil {
		return os.Stdout
	}
	return o.Out
}

func (o Options) err() io.Writer {
	if o.Err == nil {
		return os.Stderr
	}
	return o.Err
}

// Run dispatches subcommands and returns an exit code (0 ok, 1 error, 2 usage).
// Indexes are 1-based positions in the displayed (pending-first) order.
func Run(ctx context.Context, v *view.View, args []string, opt Options) int {
	if len(args) == 0 {
		PrintHelp(opt.err())
		return 2
	}
	cmd, a := args[0], args[1:]

	switch cmd {
	case "help", "-h", "--help":
		PrintHelp(opt.out())
		return 0

	case "ls":
		return doList(ctx, v, opt)

	case "add":
		if len(a) == 0 {
			fail(opt.err(), "usage: todo add <title...>")
			return 2
		}
		return doAdd(ctx, v, strings.Join(a, " "), opt)

	case "done":
		if len(a) != 1 {
			fail(opt.err(), "usage: todo done <index>")
			return 2
		}
		n, err := strconv.Atoi(a[0])
		if err != nil {
			fail(opt.err(), "done: not a number: "+a[0])
			return 2
		}
		return doToggle(ctx, v, n, opt)

	case "edit":
		if len(a) < 2 {
			fail(opt.err(), "usage: todo edit <index> <title...>")
			return 2
		}
		n, err := strconv.Atoi(a[0])
		if err != nil {
			fail(opt.err(), "edit: not a number: "+a[0])
			return 2
		}
		return doEdit(ctx, v, n, strings.Join(a[1:], " "), opt)

	case "rm":
		if len(a) != 1 {
			fail(opt.err(), "usage: todo rm <index>")
			return 2
		}
		n, err := strconv.Atoi(a[0])
		if err != nil {
			fail(opt.err(), "rm: not a number: "+a[0])
			return 2
		}
		return doRemove(ctx, v, n, opt)

	case "tui":
		if err := RunInteractive(ctx, v); err != nil {
			fail(opt.err(), "tui: "+err.Error())
			return 1
		}
		return 0
	}

	fail(opt.err(), "unknown subcommand: "+cmd)
	fmt.Fprintln(opt.err())
	PrintHelp(opt.err())
	return 2
}

func PrintHelp(w io.Writer) {
	fmt.Fprint(w, `todo - terminal client for the todo API

Usage:
  todo [-group] <subcommand> [args]

Subcommands:
  add <title...>           Add a new item (title can be multiple words)
  ls                       List items, pending first
  done <index>             Toggle done for item at 1-based index
  edit <index> <title...>  Rename item at 1-based index
  rm <index>               Remove item at 1-based index
  tui                      Interactive list

Environment:
  TODO_API_URL             API base URL (default http://localhost:5001/api)

Examples:
  todo add "Buy milk"
  todo ls
  todo done 2
  todo rm 3
`)
}

// -------------- subcommand impls ----------------

func load(ctx context.Context, v *view.View, opt Options) bool {
	if err := v.Load(ctx); err != nil {
		fail(opt.err(), "load: "+err.Error())
		return false
	}
	return true
}

// pick resolves a 1-based display index against a freshly loaded replica.
func pick(ctx context.Context, v *view.View, userIndex int, opt Options) (models.Todo, int) {
	if !load(ctx, v, opt) {
		return models.Todo{}, 1
	}
	items := v.Ordered()
	if userIndex < 1 || userIndex > len(items) {
		fail(opt.err(), fmt.Sprintf("index out of range: have %d, got %d", len(items), userIndex))
		fmt.Fprintln(opt.err(), mutedStyle.Render("Hint: run `todo ls` to see valid indexes"))
		return models.Todo{}, 2
	}
	return items[userIndex-1], 0
}

func doList(ctx context.Context, v *view.View, opt Options) int {
	if !load(ctx, v, opt) {
		return 1
	}
	items := v.Ordered()

	// Header + progress
	d, p := v.Stats()
	header := fmt.Sprintf("%s  %s %d  %s %d  %s %d",
		titleStyle.Render("Todos"),
		successStyle.Render("✔"), d,
		pendingStyle.Render("•"), p,
		accentStyle.Render("Total"), len(items),
	)

	var lines []string
	lines = append(lines, header)
	lines = append(lines, mutedStyle.Render(progressBar(d, d+p, 28)))
	lines = append(lines, "")

	if opt.Group {
		lines = append(lines, groupLines(items)...)
	} else {
		lines = append(lines, flatLines(items, 1)...)
	}
	lines = append(lines, "")
	lines = append(lines, mutedStyle.Render("Tip: add with `todo add \"Buy milk\"`"))
	fmt.Fprintln(opt.out(), panel(lines))
	return 0
}

func doAdd(ctx context.Context, v *view.View, title string, opt Options) int {
	if strings.TrimSpace(title) == "" {
		fail(opt.err(), "add: empty title")
		return 2
	}
	if _, err := v.Add(ctx, title); err != nil {
		fail(opt.err(), err.Error())
		return 1
	}
	ok(opt.out(), "added")
	return 0
}

func doToggle(ctx context.Context, v *view.View, userIndex int, opt Options) int {
	todo, code := pick(ctx, v, userIndex, opt)
	if code != 0 {
		return code
	}
	if _, err := v.Toggle(ctx, todo.ID); err != nil {
		fail(opt.err(), err.Error())
		return 1
	}
	ok(opt.out(), "toggled")
	return 0
}

func doEdit(ctx context.Context, v *view.View, userIndex int, title string, opt Options) int {
	if strings.TrimSpace(title) == "" {
		fail(opt.err(), "edit: empty title")
		return 2
	}
	todo, code := pick(ctx, v, userIndex, opt)
	if code != 0 {
		return code
	}
	if _, err := v.Edit(ctx, todo.ID, title); err != nil {
		fail(opt.err(), err.Error())
		return 1
	}
	ok(opt.out(), "renamed")
	return 0
}

func doRemove(ctx context.Context, v *view.View, userIndex int, opt Options) int {
	todo, code := pick(ctx, v, userIndex, opt)
	if code != 0 {
		return code
	}
	if err := v.Delete(ctx, todo.ID); err != nil {
		fail(opt.err(), err.Error())
		return 1
	}
	ok(opt.out(), "removed")
	return 0
}

// -------------- rendering helpers --------------

func flatLines(items []models.Todo, start int) []string {
	if len(items) == 0 {
		return []string{mutedStyle.Render("no items")}
	}
	out := make([]string, 0, len(items))
	for i, it := range items {
		idx := fmt.Sprintf("%2d.", start+i)
		box := mutedStyle.Render(boxUnchecked)
		title := truncate(it.Title)
		if it.Completed {
			box = successStyle.Render(boxChecked)
			title = doneStyle.Render(title)
		}
		out = append(out, fmt.Sprintf("%s %s %s", mutedStyle.Render(idx), box, title))
	}
	return out
}

// groupLines expects items already partitioned pending-first, so numbering
// stays continuous across both sections.
func groupLines(items []models.Todo) []string {
	var pend, done []models.Todo
	for _, it := range items {
		if it.Completed {
			done = append(done, it)
		} else {
			pend = append(pend, it)
		}
	}
	var lines []string
	lines = append(lines, accentStyle.Render("Pending"))
	if len(pend) == 0 {
		lines = append(lines, mutedStyle.Render("(none)"))
	} else {
		lines = append(lines, flatLines(pend, 1)...)
	}
	lines = append(lines, "")
	lines = append(lines, accentStyle.Render("Done"))
	if len(done) == 0 {
		lines = append(lines, mutedStyle.Render("(none)"))
	} else {
		lines = append(lines, flatLines(done, len(pend)+1)...)
	}
	return lines
}
