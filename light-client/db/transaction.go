package db

import "github.com/ChorusOne/substrate-light-client/shared/bytesutil"

type operation struct {
	delete bool
	col    uint32
	key    []byte
	value  []byte
}

// Transaction is an ordered batch of puts and deletes applied atomically by
// Store.Write. Later operations win over earlier ones on the same key.
type Transaction struct {
	ops []operation
}

// NewTransaction returns an empty transaction.
func NewTransaction() *Transaction {
	return &Transaction{}
}

// Put schedules a write of value under key in the given column. The key and
// value are copied, so callers may reuse their buffers.
func (t *Transaction) Put(col uint32, key, value []byte) {
	t.ops = append(t.ops, operation{
		col:   col,
		key:   bytesutil.SafeCopyBytes(key),
		value: bytesutil.SafeCopyBytes(value),
	})
}

// Delete schedules a removal of key from the given column.
func (t *Transaction) Delete(col uint32, key []byte) {
	t.ops = append(t.ops, operation{
		delete: true,
		col:    col,
		key:    bytesutil.SafeCopyBytes(key),
	})
}

// Len reports the number of queued operations.
func (t *Transaction) Len() int {
	return len(t.ops)
}
