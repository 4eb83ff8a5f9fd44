package provider

import (
	"fmt"
	"sort"
	"sync"

	"github.com/redink-ai/redink/internal/models"
)

// builderFunc constructs a vendor client from a validated credential.
type builderFunc func(cred Credential) (Client, error)

var (
	registryMu sync.RWMutex
	registry   = map[string]builderFunc{
		models.ProviderOpenAI:  newOpenAIClient,
		models.ProviderClaude:  newClaudeClient,
		models.ProviderVolcano: newVolcanoClient,
	}
)

// Register adds or replaces a client builder for a provider type. It exists
// so tests can install stub vendors.
func Register(providerType string, builder builderFunc) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[providerType] = builder
}

// New resolves the provider type against the registry, validates the
// credential's auth shape, and constructs a client.
func New(providerType string, cred Credential) (Client, error) {
	registryMu.RLock()
	builder, ok := registry[providerType]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s (supported: %v)", ErrUnsupportedProvider, providerType, SupportedTypes())
	}

	cred.ProviderType = providerType
	if errShape := cred.validateShape(); errShape != nil {
		return nil, errShape
	}
	return builder(cred)
}

// SupportedTypes lists the registered provider types in stable order.
func SupportedTypes() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	types := make([]string, 0, len(registry))
	for t := range registry {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}
