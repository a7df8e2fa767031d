package internal

import (
	"io"

	"github.com/starford/lumina/internal/ai"
)

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config    *Config
	version   string
	logOutput io.Writer
	generator ai.Generator
	stdin     io.Reader
	stdout    io.Writer
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithVersion sets the version reported to MCP clients.
func WithVersion(v string) Option {
	return func(a *application) {
		a.version = v
	}
}

// WithLogOutput overrides where logs are written. By default the HTTP server
// logs to stdout, the terminal UI to the configured log file and every other
// mode to stderr.
func WithLogOutput(w io.Writer) Option {
	return func(a *application) {
		a.logOutput = w
	}
}

// WithGenerator replaces the Gemini generator built from the AI config.
func WithGenerator(g ai.Generator) Option {
	return func(a *application) {
		a.generator = g
	}
}

// WithIO sets the streams used by one-shot commands.
func WithIO(in io.Reader, out io.Writer) Option {
	return func(a *application) {
		a.stdin = in
		a.stdout = out
	}
}
