package provider

import (
	"context"
	"fmt"
)

// Registry resolves provider names to adapters and API keys to use for a
// request. The name→adapter mapping is an explicit table built at startup.
type Registry struct {
	adapters map[string]Adapter
	order    []string
	keys     KeyStore
}

// NewRegistry creates a Registry over the given key store and adapters.
func NewRegistry(keys KeyStore, adapters ...Adapter) *Registry {
	r := &Registry{
		adapters: make(map[string]Adapter, len(adapters)),
		keys:     keys,
	}
	for _, a := range adapters {
		r.adapters[a.Name()] = a
		r.order = append(r.order, a.Name())
	}
	return r
}

// AdapterFor returns the adapter registered under the given provider name,
// or nil if the name is unknown.
func (r *Registry) AdapterFor(name string) Adapter {
	return r.adapters[name]
}

// ResolveEnabledKey scans stored key configs for an enabled, video-capable
// key with a registered adapter. If preferred is non-empty the scan is
// restricted to that provider; otherwise the first enabled match in stored
// order wins. A nil key with nil error means no provider is configured —
// the caller surfaces that as service-unavailable, not a crash.
func (r *Registry) ResolveEnabledKey(ctx context.Context, preferred string) (*KeyConfig, Adapter, error) {
	keys, err := r.keys.List(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("list provider keys: %w", err)
	}

	for i := range keys {
		k := keys[i]
		if !k.Enabled || !k.VideoCapable {
			continue
		}
		if preferred != "" && k.Provider != preferred {
			continue
		}
		adapter := r.adapters[k.Provider]
		if adapter == nil {
			continue
		}
		return &k, adapter, nil
	}

	return nil, nil, nil
}

// ModelsForKey intersects the adapter's full catalog with the key's
// optional model allowlist.
func (r *Registry) ModelsForKey(key KeyConfig) []Model {
	adapter := r.adapters[key.Provider]
	if adapter == nil {
		return nil
	}
	all := adapter.Models()
	models := make([]Model, 0, len(all))
	for _, m := range all {
		if key.AllowsModel(m.ID) {
			models = append(models, m)
		}
	}
	return models
}

// EnabledModels returns the models available across every enabled,
// video-capable key. Models are namespaced by provider, so no
// deduplication is needed.
func (r *Registry) EnabledModels(ctx context.Context) ([]Model, error) {
	keys, err := r.keys.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list provider keys: %w", err)
	}

	var models []Model
	for _, k := range keys {
		if !k.Enabled || !k.VideoCapable {
			continue
		}
		models = append(models, r.ModelsForKey(k)...)
	}
	return models, nil
}
