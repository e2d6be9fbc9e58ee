package logger

import (
	"slices"
	"sync"
)

// Component loggers live here once registered. Unregistered names resolve
// to the global logger tagged with the component.
var components = struct {
	mu      sync.RWMutex
	loggers map[string]*Logger
}{loggers: make(map[string]*Logger)}

// Register stores l as the logger of component name.
func Register(name string, l *Logger) {
	components.mu.Lock()
	components.loggers[name] = l
	components.mu.Unlock()
}

// Get returns the logger of component name.
func Get(name string) *Logger {
	components.mu.RLock()
	l, ok := components.loggers[name]
	components.mu.RUnlock()
	if ok {
		return l
	}
	return GetGlobalLogger().WithComponent(name)
}

// Registered returns the names with a registered logger, sorted.
func Registered() []string {
	components.mu.RLock()
	defer components.mu.RUnlock()
	names := make([]string, 0, len(components.loggers))
	for name := range components.loggers {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// registerLevels registers a component logger derived from base for every
// per-component level override.
func registerLevels(base *Logger, levels map[string]string) {
	for name, level := range levels {
		Register(name, base.WithComponent(name).WithLevel(level))
	}
}
