package tiledlib

import (
	"fmt"
	"strconv"
)

// Properties holds the custom name/value pairs of a map, layer, object or tile.
type Properties map[string]string

// NewProperties builds a property table from a <properties> element.
//
// The editor is known to write verbatim copies of a property block, so an
// exact repeat of a name and value is dropped with a warning. The same name
// with a different value is a conflict and fails the parse.
func NewProperties(node *Node, diag Diagnostics) (Properties, error) {
	props := make(Properties)
	if node == nil {
		return props, nil
	}

	for _, p := range node.ChildrenNamed("property") {
		name, err := p.String("name")
		if err != nil {
			return nil, err
		}

		value, ok := p.Attr("value")
		if !ok {
			value = p.Text
		}

		if existing, found := props[name]; found {
			if existing != value {
				return nil, &PropertyConflictError{Name: name, Existing: existing, Value: value}
			}
			diag.Warn(fmt.Sprintf("duplicate property suppressed: %q with value %q", name, value))
			continue
		}

		props[name] = value
	}

	return props, nil
}

// Get returns the value for name and whether it was set.
func (p Properties) Get(name string) (string, bool) {
	v, ok := p[name]
	return v, ok
}

func (p Properties) String(name string) string {
	return p[name]
}

// Int returns the value for name as an int, or 0 when absent or not a number.
func (p Properties) Int(name string) int {
	v, err := strconv.Atoi(p[name])
	if err != nil {
		return 0
	}
	return v
}

// Float returns the value for name as a float64, or 0 when absent or not a number.
func (p Properties) Float(name string) float64 {
	v, err := strconv.ParseFloat(p[name], 64)
	if err != nil {
		return 0
	}
	return v
}

// Bool returns the value for name as a bool, or false when absent or not a bool.
func (p Properties) Bool(name string) bool {
	v, err := strconv.ParseBool(p[name])
	if err != nil {
		return false
	}
	return v
}
