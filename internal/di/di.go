// Package di is a small lazy service container with typed tokens.
package di

import (
	"fmt"
	"sync"
)

// ServiceRegistry resolves services by name.
type ServiceRegistry interface {
	Get(name string) any
}

// Container is a ServiceRegistry that also accepts registrations.
type Container interface {
	ServiceRegistry
	Register(name string, service any)
	RegisterFactory(name string, factory func(ServiceRegistry) any)
}

type entry struct {
	once     sync.Once
	factory  func(ServiceRegistry) any
	instance any
}

type container struct {
	mu      sync.RWMutex
	entries map[string]*entry
}

// NewContainer creates an empty container.
func NewContainer() Container {
	return &container{entries: make(map[string]*entry)}
}

// Register stores an already-built service.
func (c *container) Register(name string, service any) {
	c.RegisterFactory(name, func(ServiceRegistry) any { return service })
}

// RegisterFactory stores a factory that runs once, on first Get.
func (c *container) RegisterFactory(name string, factory func(ServiceRegistry) any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[name] = &entry{factory: factory}
}

// Get resolves name, building it on first use. Panics on unknown names,
// which always indicates a wiring bug at startup.
func (c *container) Get(name string) any {
	c.mu.RLock()
	e, ok := c.entries[name]
	c.mu.RUnlock()
	if !ok {
		panic(fmt.Sprintf("di: service %q not registered", name))
	}

	e.once.Do(func() {
		e.instance = e.factory(c)
	})
	return e.instance
}

// Token names a service of type T.
type Token[T any] struct {
	name string
}

// NewToken creates a typed token.
func NewToken[T any](name string) Token[T] {
	return Token[T]{name: name}
}

// Name returns the registry key.
func (t Token[T]) Name() string {
	return t.name
}

// RegisterToken registers a typed factory under the token's name.
func RegisterToken[T any](c Container, t Token[T], factory func(ServiceRegistry) T) {
	c.RegisterFactory(t.name, func(sr ServiceRegistry) any { return factory(sr) })
}

// GetToken resolves a typed service.
func GetToken[T any](sr ServiceRegistry, t Token[T]) T {
	v, ok := sr.Get(t.name).(T)
	if !ok {
		panic(fmt.Sprintf("di: service %q has unexpected type", t.name))
	}
	return v
}
