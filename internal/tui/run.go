package tui

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/starford/lumina/internal/ai"
	"github.com/starford/lumina/internal/notes"
)

// Run shows the UI until the user quits or ctx is cancelled.
func Run(ctx context.Context, store *notes.Store, transformer ai.Transformer, opts ...Option) error {
	p := tea.NewProgram(New(ctx, store, transformer, opts...),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)
	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return err
	}
	return nil
}
