// Package cli implements the one-shot note commands: list, show, new, delete,
// transform and import.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/starford/lumina/internal/ai"
	"github.com/starford/lumina/internal/apperr"
	"github.com/starford/lumina/internal/models"
	"github.com/starford/lumina/internal/notes"
	"github.com/starford/lumina/internal/parser"
)

// ErrNotApplied is returned when a transform produced fallback text and
// --apply was requested.
var ErrNotApplied = errors.New("result not applied")

// Option configures a Runner.
type Option func(*Runner)

// WithInput sets where delete confirmations are read from.
func WithInput(r io.Reader) Option {
	return func(c *Runner) {
		if r != nil {
			c.in = bufio.NewReader(r)
		}
	}
}

// WithOutput sets where command output goes.
func WithOutput(w io.Writer) Option {
	return func(c *Runner) {
		if w != nil {
			c.out = w
		}
	}
}

// WithClock replaces time.Now for new notes, imports and list ages.
func WithClock(now func() time.Time) Option {
	return func(c *Runner) {
		if now != nil {
			c.now = now
		}
	}
}

// Runner executes commands against an initialized store.
type Runner struct {
	store       *notes.Store
	transformer ai.Transformer
	in          *bufio.Reader
	out         io.Writer
	now         func() time.Time

	cyan   *color.Color
	green  *color.Color
	yellow *color.Color
	red    *color.Color
	dim    *color.Color
}

// New creates a Runner reading from stdin and writing to stdout.
func New(store *notes.Store, transformer ai.Transformer, opts ...Option) *Runner {
	c := &Runner{
		store:       store,
		transformer: transformer,
		in:          bufio.NewReader(os.Stdin),
		out:         os.Stdout,
		now:         time.Now,
		cyan:        color.New(color.FgCyan),
		green:       color.New(color.FgGreen),
		yellow:      color.New(color.FgYellow),
		red:         color.New(color.FgRed),
		dim:         color.New(color.Faint),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// List prints notes matching query, most recent first. The active note is
// marked with an arrow.
func (c *Runner) List(query string) error {
	list := c.store.Filter(query)
	if len(list) == 0 {
		if query != "" {
			c.dim.Fprintf(c.out, "  no notes match %q\n", query)
		} else {
			c.dim.Fprintln(c.out, "  no notes")
		}
		return nil
	}

	active := c.store.ActiveID()
	for _, n := range list {
		if n.ID == active {
			c.green.Fprint(c.out, "▶ ")
		} else {
			fmt.Fprint(c.out, "  ")
		}
		c.cyan.Fprintf(c.out, "%-36s ", n.ID)
		fmt.Fprint(c.out, n.DisplayTitle())
		c.dim.Fprintf(c.out, "  %s", formatTime(n.UpdatedAt))
		if len(n.Tags) > 0 {
			c.yellow.Fprintf(c.out, "  #%s", strings.Join(n.Tags, " #"))
		}
		fmt.Fprintln(c.out)
	}
	return nil
}

// Show prints a single note with its metadata header.
func (c *Runner) Show(id string) error {
	n, err := c.store.Get(id)
	if err != nil {
		return fmt.Errorf("cli: show: %w", err)
	}
	c.cyan.Fprintln(c.out, n.DisplayTitle())
	c.dim.Fprintf(c.out, "id: %s  updated: %s\n", n.ID, formatTime(n.UpdatedAt))
	if len(n.Tags) > 0 {
		c.yellow.Fprintf(c.out, "tags: %s\n", strings.Join(n.Tags, ", "))
	}
	fmt.Fprintln(c.out)
	fmt.Fprintln(c.out, n.Content)
	return nil
}

// Create adds a note with the given fields and prints its id.
func (c *Runner) Create(title, content string) (models.Note, error) {
	n := c.store.Create()
	if title != "" || content != "" {
		ts := c.now().UnixMilli()
		if err := c.store.Update(n.ID, models.Patch{Title: &title, Content: &content, UpdatedAt: &ts}); err != nil {
			return models.Note{}, fmt.Errorf("cli: create: %w", err)
		}
	}
	n, err := c.store.Get(n.ID)
	if err != nil {
		return models.Note{}, fmt.Errorf("cli: create: %w", err)
	}
	c.green.Fprint(c.out, "created ")
	fmt.Fprintln(c.out, n.ID)
	return n, nil
}

// Delete removes a note. Unless yes is set the user is asked first; a
// declined prompt is not an error.
func (c *Runner) Delete(id string, yes bool) (bool, error) {
	n, err := c.store.Get(id)
	if err != nil {
		return false, fmt.Errorf("cli: delete: %w", err)
	}

	var confirm notes.Confirmer = notes.ConfirmFunc(c.ask)
	if yes {
		confirm = notes.Always
	}
	deleted, err := c.store.Delete(id, confirm)
	if err != nil {
		return false, fmt.Errorf("cli: delete: %w", err)
	}
	if !deleted {
		c.dim.Fprintln(c.out, "cancelled")
		return false, nil
	}
	c.green.Fprint(c.out, "deleted ")
	fmt.Fprintln(c.out, n.DisplayTitle())
	return true, nil
}

// ask prints prompt and reads a y/N answer.
func (c *Runner) ask(prompt string) bool {
	c.yellow.Fprintf(c.out, "%s [y/N] ", prompt)
	line, err := c.in.ReadString('\n')
	if err != nil && line == "" {
		fmt.Fprintln(c.out)
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}

// Transform runs an AI action over a note's content and prints the result.
// With apply set, the result is appended to the note unless it is one of
// the fallback messages.
func (c *Runner) Transform(ctx context.Context, id, action string, apply bool) (string, error) {
	a, err := ai.ParseAction(action)
	if err != nil {
		return "", fmt.Errorf("cli: transform: %w", err)
	}
	n, err := c.store.Get(id)
	if err != nil {
		return "", fmt.Errorf("cli: transform: %w", err)
	}

	c.dim.Fprintf(c.out, "%s: %s\n\n", a.Label(), n.DisplayTitle())
	text := c.transformer.Transform(ctx, n.Content, a)
	if ai.IsFallback(text) {
		c.red.Fprintln(c.out, text)
		if apply {
			return text, fmt.Errorf("cli: transform %s: %w", id, ErrNotApplied)
		}
		return text, nil
	}
	fmt.Fprintln(c.out, text)

	if !apply {
		return text, nil
	}
	if err := c.store.ApplyResult(id, text); err != nil {
		return text, fmt.Errorf("cli: transform: %w", err)
	}
	fmt.Fprintln(c.out)
	c.green.Fprintln(c.out, "result added to note")
	return text, nil
}

// Import creates one note per Markdown file. Files that cannot be read are
// reported and skipped; the joined errors are returned after the rest are
// imported.
func (c *Runner) Import(paths ...string) (int, error) {
	if len(paths) == 0 {
		return 0, fmt.Errorf("cli: import: no files given: %w", apperr.ErrInvalid)
	}

	var (
		imported int
		errs     []error
	)
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			c.red.Fprintf(c.out, "skip %s: %v\n", path, err)
			errs = append(errs, fmt.Errorf("cli: import %s: %w", path, err))
			continue
		}

		draft := parser.Parse(data).ToNote(path)
		n := c.store.Create()
		ts := c.now().UnixMilli()
		if err := c.store.Update(n.ID, models.Patch{
			Title:     &draft.Title,
			Content:   &draft.Content,
			Tags:      &draft.Tags,
			UpdatedAt: &ts,
		}); err != nil {
			errs = append(errs, fmt.Errorf("cli: import %s: %w", path, err))
			continue
		}
		imported++
		c.green.Fprint(c.out, "imported ")
		fmt.Fprintf(c.out, "%s ", path)
		c.dim.Fprintf(c.out, "→ %s\n", draft.Title)
	}
	return imported, errors.Join(errs...)
}

func formatTime(ms int64) string {
	return time.UnixMilli(ms).Format("2006-01-02 15:04")
}
