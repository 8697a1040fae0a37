// Package models contains domain entities and business models for the store platform
package models

import (
	"fmt"
	"strconv"

	"github.com/google/uuid"
)

// RefKind discriminates the two identifier spaces a cross-reference may use.
type RefKind string

const (
	// RefKindID marks a reference holding a sequential integer id.
	RefKindID RefKind = "id"
	// RefKindKey marks a legacy reference holding a storage-native UUID key.
	// Only records written before the id migration carry this kind.
	RefKindKey RefKind = "key"
)

// EntityRef is a tagged cross-reference to an identified entity. New records
// always reference by sequential id; the key kind survives only for rows the
// rewriter has not yet visited. Resolution of either kind goes through a
// single per-entity resolver, never through type-sniffing a raw value.
type EntityRef struct {
	Kind  RefKind `gorm:"size:8;not null" json:"kind"`
	Value string  `gorm:"size:64;not null" json:"value"`
}

// NewIDRef builds a reference by sequential integer id.
func NewIDRef(id int64) EntityRef {
	return EntityRef{Kind: RefKindID, Value: strconv.FormatInt(id, 10)}
}

// NewKeyRef builds a legacy reference by storage-native key.
func NewKeyRef(key uuid.UUID) EntityRef {
	return EntityRef{Kind: RefKindKey, Value: key.String()}
}

// ParseEntityRef classifies an externally supplied identifier of unknown
// provenance. A value that parses as a non-negative integer is always treated
// as a sequential id, even if it could pass for a storage key; this precedence
// is load-bearing for compatibility with pre-migration clients.
func ParseEntityRef(raw string) (EntityRef, error) {
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil && n >= 0 {
		return NewIDRef(n), nil
	}
	if key, err := uuid.Parse(raw); err == nil {
		return NewKeyRef(key), nil
	}
	return EntityRef{}, fmt.Errorf("value %q is neither a sequential id nor a storage key", raw)
}

// SequentialID returns the integer id and true when the reference is id-kind.
func (r EntityRef) SequentialID() (int64, bool) {
	if r.Kind != RefKindID {
		return 0, false
	}
	n, err := strconv.ParseInt(r.Value, 10, 64)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// Key returns the storage-native key and true when the reference is key-kind.
func (r EntityRef) Key() (uuid.UUID, bool) {
	if r.Kind != RefKindKey {
		return uuid.Nil, false
	}
	key, err := uuid.Parse(r.Value)
	if err != nil {
		return uuid.Nil, false
	}
	return key, true
}

// IsLegacy reports whether the reference still uses the storage-native key.
func (r EntityRef) IsLegacy() bool {
	return r.Kind == RefKindKey
}

// IsZero reports whether the reference is unset.
func (r EntityRef) IsZero() bool {
	return r.Kind == "" && r.Value == ""
}

func (r EntityRef) String() string {
	return string(r.Kind) + ":" + r.Value
}

// Sequenced is implemented by every entity that carries a sequential integer
// id next to its storage-native key. The repository layer uses it to stamp
// freshly allocated ids onto inserted entities.
type Sequenced interface {
	// SequenceName names the counter this entity type allocates from.
	SequenceName() string
	// SequentialID returns the assigned integer id, zero when unassigned.
	SequentialID() int64
	// SetSequentialID stamps the allocated integer id onto the entity.
	SetSequentialID(id int64)
}
