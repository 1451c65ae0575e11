package asset

import (
	"fmt"
	"sync"
)

// Registry is a thread-safe registry of known assets.
type Registry struct {
	byID     map[AssetID]*Asset
	bySymbol map[string][]*Asset // symbol -> assets (symbols are not unique across mints)
	mu       sync.RWMutex
}

// NewRegistry creates a new empty asset registry.
func NewRegistry() *Registry {
	return &Registry{
		byID:     make(map[AssetID]*Asset),
		bySymbol: make(map[string][]*Asset),
	}
}

// Register adds an asset to the registry.
// Panics if an asset with the same ID is already registered.
func (r *Registry) Register(a *Asset) {
	if err := r.Add(a); err != nil {
		panic(err.Error())
	}
}

// Add is Register for assets coming from configuration.
func (r *Registry) Add(a *Asset) error {
	if a == nil {
		return ErrNilAsset
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	id := a.ID()
	if _, exists := r.byID[id]; exists {
		return fmt.Errorf("asset: %s already registered", id)
	}

	r.byID[id] = a
	r.bySymbol[a.Symbol()] = append(r.bySymbol[a.Symbol()], a)
	return nil
}

// Get retrieves an asset by its ID.
func (r *Registry) Get(id AssetID) (*Asset, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.byID[id]
	return a, ok
}

// MustGet retrieves an asset by its ID, panics if not found.
func (r *Registry) MustGet(id AssetID) *Asset {
	a, ok := r.Get(id)
	if !ok {
		panic(fmt.Sprintf("asset: %s not found in registry", id))
	}
	return a
}

// GetBySymbol retrieves all assets with the given symbol.
// Returns nil if no assets found.
func (r *Registry) GetBySymbol(symbol string) []*Asset {
	r.mu.RLock()
	defer r.mu.RUnlock()

	assets := r.bySymbol[symbol]
	if len(assets) == 0 {
		return nil
	}

	result := make([]*Asset, len(assets))
	copy(result, assets)
	return result
}

// Lookup resolves a user-supplied reference: a base58 mint or a symbol that
// maps to exactly one registered asset.
func (r *Registry) Lookup(ref string) (*Asset, error) {
	if id, err := ParseAssetID(ref); err == nil {
		if a, ok := r.Get(id); ok {
			return a, nil
		}
	}

	matches := r.GetBySymbol(ref)
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("asset: %q not found", ref)
	case 1:
		return matches[0], nil
	default:
		return nil, fmt.Errorf("asset: symbol %q is ambiguous (%d mints), use the mint address", ref, len(matches))
	}
}

// All returns all registered assets.
func (r *Registry) All() []*Asset {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*Asset, 0, len(r.byID))
	for _, a := range r.byID {
		result = append(result, a)
	}
	return result
}

// Count returns the number of registered assets.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}

// Has returns true if an asset with the given ID is registered.
func (r *Registry) Has(id AssetID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.byID[id]
	return ok
}
