package adapters

import (
	"fmt"
	"sort"
	"strings"

	"github.com/smallbiznis/movieshop/internal/payment/domain"
)

// Registry maps a PAYMENT_PROVIDER name to the factory that builds its charger.
type Registry struct {
	factories map[string]domain.AdapterFactory
}

func NewRegistry(factories ...domain.AdapterFactory) *Registry {
	registry := &Registry{factories: map[string]domain.AdapterFactory{}}
	for _, factory := range factories {
		_ = registry.Register(factory)
	}
	return registry
}

// Register adds factory under its provider name. A name can only be taken once.
func (r *Registry) Register(factory domain.AdapterFactory) error {
	if factory == nil {
		return domain.ErrProviderNotFound
	}
	name := providerKey(factory.Provider())
	if name == "" {
		return domain.ErrProviderNotFound
	}
	if _, taken := r.factories[name]; taken {
		return fmt.Errorf("payment provider %q registered twice", name)
	}
	r.factories[name] = factory
	return nil
}

// Providers lists the registered names in order.
func (r *Registry) Providers() []string {
	if r == nil {
		return nil
	}
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) NewCharger(cfg domain.AdapterConfig) (domain.Charger, error) {
	if r == nil {
		return nil, domain.ErrProviderNotFound
	}
	factory, ok := r.factories[providerKey(cfg.Provider)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrProviderNotFound, cfg.Provider)
	}
	return factory.NewCharger(cfg)
}

func providerKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
