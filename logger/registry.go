package logger

import (
	"sync"
)

// named holds loggers registered per component, e.g. "di".
var named = struct {
	mu      sync.RWMutex
	loggers map[string]*Logger
}{loggers: make(map[string]*Logger)}

// Register stores a named logger. A nil logger removes the entry.
func Register(name string, l *Logger) {
	named.mu.Lock()
	defer named.mu.Unlock()
	if l == nil {
		delete(named.loggers, name)
		return
	}
	named.loggers[name] = l
}

// Get retrieves a named logger. If the name is not registered it returns the
// global logger tagged with the requested component name, so changes made
// through SetGlobalLogger are picked up by later calls.
func Get(name string) *Logger {
	named.mu.RLock()
	l, ok := named.loggers[name]
	named.mu.RUnlock()
	if ok {
		return l
	}
	return GetGlobalLogger().WithComponent(name)
}
