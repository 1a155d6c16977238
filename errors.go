package tiledlib

import (
	"errors"
	"fmt"
)

var (
	ErrMalformedAttribute  = errors.New("malformed attribute")
	ErrConflictingProperty = errors.New("conflicting property")
	ErrSizeMismatch        = errors.New("cell data size mismatch")
	ErrParse               = errors.New("malformed cell data")
	ErrUnsupportedFormat   = errors.New("unsupported format")
	ErrUnresolvedTileID    = errors.New("unresolved tile id")
	ErrUnknownLayerType    = errors.New("unknown layer type")
)

// AttributeError reports a required attribute that is missing or does not
// parse as its expected type.
type AttributeError struct {
	Element string
	Attr    string
	Value   string
	Err     error // underlying parse error, nil when the attribute is missing
}

func (e *AttributeError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: <%s> is missing required attribute %q", ErrMalformedAttribute, e.Element, e.Attr)
	}
	return fmt.Sprintf("%s: <%s %s=%q>: %v", ErrMalformedAttribute, e.Element, e.Attr, e.Value, e.Err)
}

func (e *AttributeError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrMalformedAttribute}
	}
	return []error{ErrMalformedAttribute, e.Err}
}

// PropertyConflictError is returned when a properties block defines the same
// name twice with different values.
type PropertyConflictError struct {
	Name     string
	Existing string
	Value    string
}

func (e *PropertyConflictError) Error() string {
	return fmt.Sprintf("%s: property %q has values %q and %q", ErrConflictingProperty, e.Name, e.Existing, e.Value)
}

func (e *PropertyConflictError) Unwrap() error {
	return ErrConflictingProperty
}

// UnresolvedTileError is returned when a non-empty tile id falls outside the
// range of every tileset in the map.
type UnresolvedTileError struct {
	GID    uint32 // raw id, flip flags included
	TileID uint32 // bare id
}

func (e *UnresolvedTileError) Error() string {
	return fmt.Sprintf("%s: %d (raw %#08x) matches no tileset", ErrUnresolvedTileID, e.TileID, e.GID)
}

func (e *UnresolvedTileError) Unwrap() error {
	return ErrUnresolvedTileID
}
