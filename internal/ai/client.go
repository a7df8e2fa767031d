// Package ai turns a note and a transform action into one text-generation call.
package ai

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/starford/lumina/internal/apperr"
)

// Fixed strings returned to the user.
const (
	MsgEmptyContent = "Please add some content first."
	MsgNoOutput     = "I couldn't process that. Please try again."
	MsgFailed       = "An error occurred while communicating with the AI. Please ensure your environment is configured correctly."
)

// IsFallback reports whether text is one of the fixed messages Transform
// returns instead of generated output.
func IsFallback(text string) bool {
	switch text {
	case MsgEmptyContent, MsgNoOutput, MsgFailed:
		return true
	}
	return false
}

// SystemInstruction frames every request.
const SystemInstruction = "You are a helpful writing assistant within a notebook application. Your goal is to help users improve their notes."

// Request defaults.
const (
	DefaultModel       = "gemini-3-flash-preview"
	DefaultTemperature = float32(0.7)
	DefaultTimeout     = 60 * time.Second
)

// Request is the provider-neutral shape of one generation call.
type Request struct {
	Model             string
	SystemInstruction string
	Prompt            string
	Temperature       float32
}

// Generator performs a single generation call against a provider.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(ctx context.Context, req Request) (string, error)

// Generate calls f.
func (f GeneratorFunc) Generate(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}

// Transformer is what presentation layers depend on. *Client implements it.
type Transformer interface {
	Transform(ctx context.Context, content string, action Action) string
}

// Option configures a Client.
type Option func(*Client)

// WithModel overrides the model identifier.
func WithModel(m string) Option {
	return func(c *Client) {
		if m != "" {
			c.model = m
		}
	}
}

// WithTemperature overrides the sampling temperature.
func WithTemperature(t float32) Option {
	return func(c *Client) { c.temperature = t }
}

// WithTimeout bounds a single call. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithLogger sets the logger for provider failures.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// Client composes prompts and hides provider failures behind fixed strings.
type Client struct {
	gen         Generator
	model       string
	temperature float32
	timeout     time.Duration
	logger      *slog.Logger
}

// New creates a client over gen.
func New(gen Generator, opts ...Option) *Client {
	c := &Client{
		gen:         gen,
		model:       DefaultModel,
		temperature: DefaultTemperature,
		timeout:     DefaultTimeout,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Prompt builds the user prompt for action over content.
func Prompt(action Action, content string) string {
	return action.Template() + "\n\nContent:\n" + content
}

// Transform runs action over content and always yields displayable text.
// Blank content short-circuits without a remote call.
func (c *Client) Transform(ctx context.Context, content string, action Action) string {
	if strings.TrimSpace(content) == "" {
		return MsgEmptyContent
	}
	if !action.Valid() {
		c.logger.Error("ai: transform rejected",
			slog.String("action", string(action)),
			slog.String("error", apperr.ErrInvalid.Error()))
		return MsgFailed
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	text, err := c.generate(ctx, Request{
		Model:             c.model,
		SystemInstruction: SystemInstruction,
		Prompt:            Prompt(action, content),
		Temperature:       c.temperature,
	})
	if err != nil {
		c.logger.Error("ai: processing error",
			slog.String("action", string(action)),
			slog.String("model", c.model),
			slog.String("error", err.Error()))
		return MsgFailed
	}
	c.logger.Debug("ai: transform done",
		slog.String("action", string(action)),
		slog.Duration("took", time.Since(start)))

	if strings.TrimSpace(text) == "" {
		return MsgNoOutput
	}
	return text
}

// generate converts provider panics into errors.
func (c *Client) generate(ctx context.Context, req Request) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("ai: provider panic: %v", r)
		}
	}()
	if c.gen == nil {
		return "", ErrNotConfigured
	}
	return c.gen.Generate(ctx, req)
}
