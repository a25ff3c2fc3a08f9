package db

import (
	"bytes"
	"sync"

	"github.com/google/btree"

	"github.com/ChorusOne/substrate-light-client/shared/bytesutil"
)

const btreeDegree = 8

type entry struct {
	key   []byte
	value []byte
}

func (e *entry) Less(than btree.Item) bool {
	return bytes.Compare(e.key, than.(*entry).key) < 0
}

// MemoryStore is the in-memory Store implementation. Columns are ordered
// trees, so iteration and the canonical encoding are deterministic. The
// lock only serves the guard shape the typed views expect; calls are never
// actually concurrent inside the sandbox.
type MemoryStore struct {
	mu      sync.RWMutex
	columns []*btree.BTree
}

var _ = Store(&MemoryStore{})

// NewMemoryStore creates a store with numColumns empty columns.
func NewMemoryStore(numColumns uint32) *MemoryStore {
	columns := make([]*btree.BTree, numColumns)
	for i := range columns {
		columns[i] = btree.New(btreeDegree)
	}
	return &MemoryStore{columns: columns}
}

func (s *MemoryStore) column(col uint32) (*btree.BTree, error) {
	if col >= uint32(len(s.columns)) {
		return nil, ErrNoSuchColumn
	}
	return s.columns[col], nil
}

// Get returns the value stored under key, or nil if absent.
func (s *MemoryStore) Get(col uint32, key []byte) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tree, err := s.column(col)
	if err != nil {
		return nil, err
	}
	item := tree.Get(&entry{key: key})
	if item == nil {
		return nil, nil
	}
	return bytesutil.SafeCopyBytes(item.(*entry).value), nil
}

// GetByPrefix returns the value of the first key carrying prefix, or nil.
func (s *MemoryStore) GetByPrefix(col uint32, prefix []byte) []byte {
	var found []byte
	_ = s.IterFromPrefix(col, prefix, func(_, value []byte) bool {
		found = value
		return false
	})
	return found
}

// Write applies the transaction atomically, in order.
func (s *MemoryStore) Write(tx *Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, op := range tx.ops {
		tree, err := s.column(op.col)
		if err != nil {
			return err
		}
		if op.delete {
			tree.Delete(&entry{key: op.key})
			continue
		}
		tree.ReplaceOrInsert(&entry{key: op.key, value: op.value})
	}
	return nil
}

// Iter visits every entry of the column in ascending key order.
func (s *MemoryStore) Iter(col uint32, fn func(key, value []byte) bool) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tree, err := s.column(col)
	if err != nil {
		return err
	}
	tree.Ascend(func(item btree.Item) bool {
		e := item.(*entry)
		return fn(bytesutil.SafeCopyBytes(e.key), bytesutil.SafeCopyBytes(e.value))
	})
	return nil
}

// IterFromPrefix visits, in ascending key order, every entry whose key
// carries the prefix.
func (s *MemoryStore) IterFromPrefix(col uint32, prefix []byte, fn func(key, value []byte) bool) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tree, err := s.column(col)
	if err != nil {
		return err
	}
	tree.AscendGreaterOrEqual(&entry{key: prefix}, func(item btree.Item) bool {
		e := item.(*entry)
		if !bytes.HasPrefix(e.key, prefix) {
			return false
		}
		return fn(bytesutil.SafeCopyBytes(e.key), bytesutil.SafeCopyBytes(e.value))
	})
	return nil
}

// NumColumns reports how many columns the store was created with.
func (s *MemoryStore) NumColumns() uint32 {
	return uint32(len(s.columns))
}
