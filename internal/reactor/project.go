package reactor

import (
	"path/filepath"
	"strings"
)

// Project is the run-context shared by every task of one run. Tasks run sequentially, so
// the property store carries no locking.
type Project struct {
	Name       string
	BasePath   string
	properties map[string]Value
	closed     bool
}

// NewProject creates a run-context seeded with the provided properties.
func NewProject(name string, basePath string, properties map[string]Value) *Project {
	project := &Project{
		Name:       strings.TrimSpace(name),
		BasePath:   basePath,
		properties: make(map[string]Value, len(properties)),
	}
	for propertyName, value := range properties {
		trimmedName := strings.TrimSpace(propertyName)
		if len(trimmedName) == 0 {
			continue
		}
		project.properties[trimmedName] = value
	}
	return project
}

// Get returns the property stored under name.
func (project *Project) Get(name string) (Value, error) {
	value, exists := project.properties[strings.TrimSpace(name)]
	if !exists {
		return Value{}, UndefinedPropertyError{Name: name}
	}
	return value, nil
}

// Has reports whether a property is defined.
func (project *Project) Has(name string) bool {
	_, exists := project.properties[strings.TrimSpace(name)]
	return exists
}

// Set stores a property, replacing any previous value.
func (project *Project) Set(name string, value Value) error {
	if project.closed {
		return ErrProjectClosed
	}
	trimmedName := strings.TrimSpace(name)
	if len(trimmedName) == 0 {
		return ErrInvalidPropertyName
	}
	project.properties[trimmedName] = value
	return nil
}

// SetDefault stores a property only when it is not yet defined.
func (project *Project) SetDefault(name string, value Value) error {
	if project.Has(name) {
		return nil
	}
	return project.Set(name, value)
}

// GetString returns a string property.
func (project *Project) GetString(name string) (string, error) {
	value, lookupError := project.Get(name)
	if lookupError != nil {
		return "", lookupError
	}
	text, matches := value.AsString()
	if !matches {
		return "", PropertyTypeError{Name: name, Expected: KindString, Actual: value.Kind()}
	}
	return text, nil
}

// GetBool returns a boolean property.
func (project *Project) GetBool(name string) (bool, error) {
	value, lookupError := project.Get(name)
	if lookupError != nil {
		return false, lookupError
	}
	flag, matches := value.AsBool()
	if !matches {
		return false, PropertyTypeError{Name: name, Expected: KindBool, Actual: value.Kind()}
	}
	return flag, nil
}

// GetInt returns an integer property.
func (project *Project) GetInt(name string) (int64, error) {
	value, lookupError := project.Get(name)
	if lookupError != nil {
		return 0, lookupError
	}
	integer, matches := value.AsInt()
	if !matches {
		return 0, PropertyTypeError{Name: name, Expected: KindInt, Actual: value.Kind()}
	}
	return integer, nil
}

// Snapshot copies the current properties.
func (project *Project) Snapshot() map[string]Value {
	snapshot := make(map[string]Value, len(project.properties))
	for name, value := range project.properties {
		snapshot[name] = value
	}
	return snapshot
}

// ExpandPath joins parts onto BasePath. Absolute first parts are returned unchanged.
func (project *Project) ExpandPath(parts ...string) string {
	joined := filepath.Join(parts...)
	if filepath.IsAbs(joined) || len(project.BasePath) == 0 {
		return joined
	}
	return filepath.Join(project.BasePath, joined)
}

// close discards the properties and rejects further writes.
func (project *Project) close() {
	project.closed = true
	project.properties = make(map[string]Value)
}
