// Package db implements the column-keyed store backing the light client.
// The store lives entirely in memory and is carried between invocations as
// a canonical byte encoding, so everything about it — key order, column
// order, the transaction protocol — is deterministic.
package db

import (
	"github.com/pkg/errors"
)

// ErrNoSuchColumn is returned when a store is accessed with a column id it
// was not created with.
var ErrNoSuchColumn = errors.New("no such column family")

// Store is a multi-column key-value store with atomic batched writes and
// ordered iteration.
type Store interface {
	// Get returns the value stored under key in the given column, or nil
	// if the key is absent.
	Get(col uint32, key []byte) ([]byte, error)
	// GetByPrefix returns the value of the first key (in ascending key
	// order) carrying the given prefix, or nil if there is none.
	GetByPrefix(col uint32, prefix []byte) []byte
	// Write applies the transaction's operations atomically, in order.
	Write(tx *Transaction) error
	// Iter calls fn for every entry of the column in ascending key order
	// until fn returns false.
	Iter(col uint32, fn func(key, value []byte) bool) error
	// IterFromPrefix is Iter restricted to keys carrying the prefix.
	IterFromPrefix(col uint32, prefix []byte, fn func(key, value []byte) bool) error
	// NumColumns reports how many columns the store was created with.
	NumColumns() uint32
}
