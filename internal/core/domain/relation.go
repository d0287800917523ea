// Package domain holds the core types of the override index.
package domain

import (
	"fmt"
	"path/filepath"
)

// RelationKind tells which side of an override a relation describes.
type RelationKind string

const (
	// KindChildOverride marks a method that overrides a method of a named base class.
	KindChildOverride RelationKind = "child_override"
	// KindParentOverridden marks a method that is overridden by a method of a named subclass.
	KindParentOverridden RelationKind = "parent_overridden"
)

// Valid reports whether k is one of the known relation kinds.
func (k RelationKind) Valid() bool {
	return k == KindChildOverride || k == KindParentOverridden
}

// OverrideRelation is one discovered relationship for a source line of the owning file.
type OverrideRelation struct {
	OwningClass string       `json:"owningClass"`
	Method      string       `json:"method"`
	Line        int          `json:"line"`
	Signature   string       `json:"signature,omitempty"`
	Kind        RelationKind `json:"kind"`

	// Peer is the base class for KindChildOverride and the subclass for KindParentOverridden.
	PeerClassName string `json:"peerClassName"`
	PeerFilePath  string `json:"peerFilePath"`
	PeerLine      int    `json:"peerLine"`
	PeerSignature string `json:"peerSignature,omitempty"`
}

// Overrides reports whether the relation points from a subclass method up to its base.
func (r OverrideRelation) Overrides() bool {
	return r.Kind == KindChildOverride
}

// Peer returns the location on the other side of the relation.
func (r OverrideRelation) Peer() Location {
	return Location{FilePath: r.PeerFilePath, Line: r.PeerLine}
}

// Describe renders a one-line, human-readable summary of the relation.
func (r OverrideRelation) Describe() string {
	peer := fmt.Sprintf("%s.%s (%s:%d)", r.PeerClassName, r.Method, filepath.Base(r.PeerFilePath), r.PeerLine)
	if r.Overrides() {
		return fmt.Sprintf("%s.%s overrides %s", r.OwningClass, r.Method, peer)
	}
	return fmt.Sprintf("%s.%s is overridden by %s", r.OwningClass, r.Method, peer)
}

// Location is an absolute file path and a 1-based line.
type Location struct {
	FilePath string `json:"filePath"`
	Line     int    `json:"line"`
}

// PeerFiles returns the distinct, non-empty peer file paths referenced by relations,
// in first-seen order.
func PeerFiles(relations []OverrideRelation) []string {
	seen := make(map[string]struct{}, len(relations))
	peers := make([]string, 0, len(relations))
	for _, r := range relations {
		if r.PeerFilePath == "" {
			continue
		}
		if _, ok := seen[r.PeerFilePath]; ok {
			continue
		}
		seen[r.PeerFilePath] = struct{}{}
		peers = append(peers, r.PeerFilePath)
	}
	return peers
}
