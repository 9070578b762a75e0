package ai

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"

	"github.com/parleychat/parley/internal/config"
)

// Factory builds a chat model bound to a concrete model id.
type Factory func(ctx context.Context, modelID string) (model.BaseChatModel, error)

type registryEntry struct {
	prefix  string
	factory Factory
}

// Registry selects a provider backend by model-id prefix. First matching
// prefix wins; ids matching nothing go to the fallback. Resolved models are
// cached per id.
type Registry struct {
	entries  []registryEntry
	fallback Factory

	mu    sync.Mutex
	cache map[string]model.BaseChatModel
}

func NewRegistry(fallback Factory) *Registry {
	return &Registry{
		fallback: fallback,
		cache:    make(map[string]model.BaseChatModel),
	}
}

// Register maps a model-id prefix to a provider factory.
func (r *Registry) Register(prefix string, factory Factory) {
	r.entries = append(r.entries, registryEntry{prefix: prefix, factory: factory})
}

// Resolve returns the chat model for the given id.
func (r *Registry) Resolve(ctx context.Context, modelID string) (model.BaseChatModel, error) {
	if modelID == "" {
		return nil, fmt.Errorf("model id is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if cached, ok := r.cache[modelID]; ok {
		return cached, nil
	}

	factory := r.fallback
	for _, entry := range r.entries {
		if strings.HasPrefix(modelID, entry.prefix) {
			factory = entry.factory
			break
		}
	}
	if factory == nil {
		return nil, fmt.Errorf("no provider registered for model %q", modelID)
	}

	m, err := factory(ctx, modelID)
	if err != nil {
		return nil, fmt.Errorf("create chat model %q: %w", modelID, err)
	}
	r.cache[modelID] = m
	return m, nil
}

// NewRegistryFromConfig wires the providers the deployment has credentials
// for: Volc Ark for ark/doubao ids, the OpenRouter-compatible endpoint for
// everything else.
func NewRegistryFromConfig(cfg config.AIConfig) *Registry {
	registry := NewRegistry(openRouterFactory(cfg))
	registry.Register("ark/", arkFactory(cfg, true))
	registry.Register("doubao", arkFactory(cfg, false))
	return registry
}

func openRouterFactory(cfg config.AIConfig) Factory {
	return func(ctx context.Context, modelID string) (model.BaseChatModel, error) {
		if cfg.OpenRouterAPIKey == "" {
			return nil, fmt.Errorf("OPENROUTER_API_KEY is not configured")
		}

		var temperature *float32
		if cfg.Temperature != nil {
			val := float32(*cfg.Temperature)
			temperature = &val
		}
		var topP *float32
		if cfg.TopP != nil {
			val := float32(*cfg.TopP)
			topP = &val
		}

		return openai.NewChatModel(ctx, &openai.ChatModelConfig{
			BaseURL:     cfg.OpenRouterBaseURL,
			APIKey:      cfg.OpenRouterAPIKey,
			Model:       modelID,
			Temperature: temperature,
			TopP:        topP,
			MaxTokens:   cfg.MaxTokens,
		})
	}
}

// arkFactory builds Volc Ark models. stripPrefix removes the routing "ark/"
// prefix before handing the id to the provider.
func arkFactory(cfg config.AIConfig, stripPrefix bool) Factory {
	return func(ctx context.Context, modelID string) (model.BaseChatModel, error) {
		if cfg.ArkAPIKey == "" && (cfg.ArkAccessKey == "" || cfg.ArkSecretKey == "") {
			return nil, fmt.Errorf("Ark credentials are not configured")
		}

		if stripPrefix {
			modelID = strings.TrimPrefix(modelID, "ark/")
		}

		var temperature *float32
		if cfg.Temperature != nil {
			val := float32(*cfg.Temperature)
			temperature = &val
		}
		var topP *float32
		if cfg.TopP != nil {
			val := float32(*cfg.TopP)
			topP = &val
		}

		return ark.NewChatModel(ctx, &ark.ChatModelConfig{
			BaseURL:     cfg.ArkBaseURL,
			Region:      cfg.ArkRegion,
			APIKey:      cfg.ArkAPIKey,
			AccessKey:   cfg.ArkAccessKey,
			SecretKey:   cfg.ArkSecretKey,
			Model:       modelID,
			MaxTokens:   cfg.MaxTokens,
			Temperature: temperature,
			TopP:        topP,
		})
	}
}
