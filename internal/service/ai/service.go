// Package ai adapts the structured conversation context to the provider
// backends and streams assistant completions.
package ai

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog/log"

	"github.com/parleychat/parley/internal/config"
	"github.com/parleychat/parley/internal/model/chat"
)

// Service invokes a model selected by id over an assembled context.
type Service struct {
	registry *Registry
	cfg      config.AIConfig
}

func NewService(registry *Registry, cfg config.AIConfig) *Service {
	return &Service{registry: registry, cfg: cfg}
}

// StreamingEnabled indicates whether responses stream incrementally.
func (s *Service) StreamingEnabled() bool {
	return s.cfg.StreamResponse
}

// Invoke starts a streaming completion over the given context. Cancellation
// is cooperative: cancel ctx and close the reader, nothing further is
// emitted.
func (s *Service) Invoke(ctx context.Context, msgs []chat.Structured, modelID string) (*schema.StreamReader[*schema.Message], error) {
	chatModel, err := s.registry.Resolve(ctx, modelID)
	if err != nil {
		return nil, err
	}

	input := s.buildInput(msgs, modelID)
	stream, err := chatModel.Stream(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("stream model %s: %w", modelID, err)
	}
	return stream, nil
}

// Generate produces the full completion in one call, for deployments with
// streaming disabled.
func (s *Service) Generate(ctx context.Context, msgs []chat.Structured, modelID string) (*schema.Message, error) {
	chatModel, err := s.registry.Resolve(ctx, modelID)
	if err != nil {
		return nil, err
	}

	input := s.buildInput(msgs, modelID)
	response, err := chatModel.Generate(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("generate with model %s: %w", modelID, err)
	}
	return response, nil
}

// buildInput converts the context, falling back to flattened text when a
// message carries a shape the provider format cannot express. The system
// prompt is always first.
func (s *Service) buildInput(msgs []chat.Structured, modelID string) []*schema.Message {
	converted, err := ConvertMessages(msgs)
	if err != nil {
		log.Warn().Err(err).Str("model", modelID).Msg("falling back to flattened message context")
		converted = FlattenMessages(msgs)
	}

	input := make([]*schema.Message, 0, len(converted)+1)
	input = append(input, schema.SystemMessage(SystemPrompt))
	input = append(input, converted...)
	return input
}
