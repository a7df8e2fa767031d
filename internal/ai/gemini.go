package ai

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

// ErrNotConfigured is returned when no API key was provided.
var ErrNotConfigured = errors.New("ai: no API key configured")

// Gemini calls the Gemini API through the genai SDK.
type Gemini struct {
	client *genai.Client
}

var _ Generator = (*Gemini)(nil)

// NewGemini builds a generator for apiKey. An empty key yields a generator
// whose every call fails with ErrNotConfigured.
func NewGemini(ctx context.Context, apiKey string) (Generator, error) {
	if apiKey == "" {
		return GeneratorFunc(func(context.Context, Request) (string, error) {
			return "", ErrNotConfigured
		}), nil
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("ai: new genai client: %w", err)
	}
	return &Gemini{client: client}, nil
}

// Generate sends one non-streaming GenerateContent request.
func (g *Gemini) Generate(ctx context.Context, req Request) (string, error) {
	temp := req.Temperature
	resp, err := g.client.Models.GenerateContent(ctx, req.Model, genai.Text(req.Prompt), &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(req.SystemInstruction, genai.RoleUser),
		Temperature:       &temp,
	})
	if err != nil {
		return "", fmt.Errorf("ai: generate content: %w", err)
	}
	return resp.Text(), nil
}
