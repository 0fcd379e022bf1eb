package domain

import "fmt"

// EntityType names the table/bucket a record lives in.
type EntityType string

// EntityKey identifies a record by (entity type, primary key). It is a plain
// comparable value and is used as a map key by stores and identity caches.
type EntityKey struct {
	Type EntityType `json:"type"`
	ID   int64      `json:"id"`
}

func (k EntityKey) String() string {
	return fmt.Sprintf("%s#%d", k.Type, k.ID)
}

// Record is a mutable row with a reassignable primary key.
//
// Implementations must be pointer types: identity caches hand the same pointer
// to every caller when sharing, and CloneRecord must return an independent
// deep copy.
type Record interface {
	EntityType() EntityType
	PrimaryKey() int64
	SetPrimaryKey(id int64)
	CloneRecord() Record
}

// KeyOf derives the key from the record's current primary key.
func KeyOf(r Record) EntityKey {
	if r == nil {
		return EntityKey{}
	}
	return EntityKey{Type: r.EntityType(), ID: r.PrimaryKey()}
}

// NewRecord returns an empty record for the entity type, used by stores to
// decode rows.
func NewRecord(t EntityType) (Record, error) {
	switch t {
	case EntityProduct:
		return &Product{}, nil
	default:
		return nil, fmt.Errorf("unknown entity type %q", t)
	}
}

// Models lists every record model a SQL store must migrate.
func Models() []any {
	return []any{&Product{}}
}
