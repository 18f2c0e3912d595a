package extract

import (
	"sort"
	"sync"

	"github.com/bonial-oss/change-monitor/pkg/models"
	"github.com/pkg/errors"
)

// Extractor is the interface for a value extraction strategy.
type Extractor interface {
	// Extract pulls the raw value out of content. Must return an error of
	// kind models.KindExtraction if no value exists. An empty string is a
	// valid value.
	Extract(content string) (string, error)
}

// ExtractorFunc adapts a function to the Extractor interface.
type ExtractorFunc func(content string) (string, error)

// Extract implements Extractor.
func (f ExtractorFunc) Extract(content string) (string, error) {
	return f(content)
}

// Factory creates an Extractor for the configured expression.
type Factory func(expression string) (Extractor, error)

// Registry maps monitor types to extractor factories.
type Registry struct {
	mu        sync.RWMutex
	factories map[models.MonitorType]Factory
}

// NewRegistry creates an empty *Registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[models.MonitorType]Factory),
	}
}

// Register adds factory for monitorType, replacing any factory that was
// registered before.
func (r *Registry) Register(monitorType models.MonitorType, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.factories[monitorType] = factory
}

// New creates the extractor for monitorType and expression. Returns an error
// if the monitor type is not registered.
func (r *Registry) New(monitorType models.MonitorType, expression string) (Extractor, error) {
	r.mu.RLock()
	factory, ok := r.factories[monitorType]
	r.mu.RUnlock()

	if !ok {
		return nil, errors.Errorf("unsupported monitor type %q", monitorType)
	}

	return factory(expression)
}

// Types returns the sorted list of registered monitor types.
func (r *Registry) Types() []models.MonitorType {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]models.MonitorType, 0, len(r.factories))
	for t := range r.factories {
		types = append(types, t)
	}

	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })

	return types
}

// Default is the registry containing all built-in strategies.
var Default = NewRegistry()

func init() {
	Default.Register(models.MonitorTypeXPath, NewXPath)
	Default.Register(models.MonitorTypeCSS, NewCSS)
	Default.Register(models.MonitorTypeJSONPath, NewJSONPath)
	Default.Register(models.MonitorTypeRegex, NewRegex)
}

// New creates an extractor using the Default registry.
func New(monitorType models.MonitorType, expression string) (Extractor, error) {
	return Default.New(monitorType, expression)
}
