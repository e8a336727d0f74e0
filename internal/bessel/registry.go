package bessel

import (
	"fmt"
	"sort"
	"sync"
)

// EvaluatorFactory creates and caches Evaluator instances by method key.
// It allows dependency injection of custom strategies and easier testing.
type EvaluatorFactory interface {
	// Get returns the cached Evaluator for a method key.
	Get(method string) (Evaluator, error)

	// List returns the sorted registered method keys.
	List() []string

	// Register adds or replaces a strategy.
	Register(method string, creator func() coreEvaluator) error

	// GetAll returns every registered evaluator keyed by method.
	GetAll() map[string]Evaluator
}

// DefaultFactory is the default implementation of EvaluatorFactory.
// It maintains a thread-safe registry of creators and caches the Evaluator
// instances built from them.
type DefaultFactory struct {
	mu         sync.RWMutex
	creators   map[string]func() coreEvaluator
	evaluators map[string]Evaluator
}

// NewDefaultFactory creates a factory with the two recurrence strategies
// pre-registered:
//   - "up": UpwardEvaluator
//   - "down": DownwardEvaluator
func NewDefaultFactory() *DefaultFactory {
	f := &DefaultFactory{
		creators:   make(map[string]func() coreEvaluator),
		evaluators: make(map[string]Evaluator),
	}
	_ = f.Register(MethodUp, func() coreEvaluator { return UpwardEvaluator{} })
	_ = f.Register(MethodDown, func() coreEvaluator { return DownwardEvaluator{} })
	return f
}

// Register adds a strategy. A strategy registered under an existing key
// replaces it, and the cached instance is dropped.
func (f *DefaultFactory) Register(method string, creator func() coreEvaluator) error {
	if method == "" {
		return fmt.Errorf("bessel: empty method key")
	}
	if creator == nil {
		return fmt.Errorf("bessel: nil creator for method %q", method)
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	f.creators[method] = creator
	delete(f.evaluators, method)
	return nil
}

// Get returns the Evaluator registered under method.
func (f *DefaultFactory) Get(method string) (Evaluator, error) {
	f.mu.RLock()
	if ev, exists := f.evaluators[method]; exists {
		f.mu.RUnlock()
		return ev, nil
	}
	f.mu.RUnlock()

	f.mu.Lock()
	defer f.mu.Unlock()

	// Double-check after acquiring write lock
	if ev, exists := f.evaluators[method]; exists {
		return ev, nil
	}
	creator, ok := f.creators[method]
	if !ok {
		return nil, fmt.Errorf("unknown method: %s", method)
	}
	ev := NewEvaluator(creator())
	f.evaluators[method] = ev
	return ev, nil
}

// List returns the registered method keys in alphabetical order.
func (f *DefaultFactory) List() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()

	names := make([]string, 0, len(f.creators))
	for name := range f.creators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetAll returns a copy of the registry with every evaluator initialised.
func (f *DefaultFactory) GetAll() map[string]Evaluator {
	f.mu.Lock()
	defer f.mu.Unlock()

	for name, creator := range f.creators {
		if _, exists := f.evaluators[name]; !exists {
			f.evaluators[name] = NewEvaluator(creator())
		}
	}
	result := make(map[string]Evaluator, len(f.evaluators))
	for name, ev := range f.evaluators {
		result[name] = ev
	}
	return result
}

// Has reports whether method is registered.
func (f *DefaultFactory) Has(method string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	_, exists := f.creators[method]
	return exists
}

var globalFactory = NewDefaultFactory()

// GlobalFactory returns the process-wide factory.
func GlobalFactory() *DefaultFactory {
	return globalFactory
}
