package db

import (
	"bytes"
	"io"

	"github.com/centrifuge/go-substrate-rpc-client/v4/scale"
	"github.com/google/btree"
	"github.com/pkg/errors"
)

// Canonical store encoding: a little-endian u32 column count, then for each
// column in id order a u32 entry count followed by the entries in ascending
// key order, each entry as (u32 key length, key, u32 value length, value).
// Two stores with equal logical contents encode to equal bytes; that
// property is what lets the state blob round-trip through the host.

// Encode serializes the store into its canonical byte form.
func (s *MemoryStore) Encode() ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var buf bytes.Buffer
	encoder := scale.NewEncoder(&buf)
	if err := encoder.Encode(uint32(len(s.columns))); err != nil {
		return nil, errors.Wrap(err, "encode column count")
	}
	for _, tree := range s.columns {
		if err := encoder.Encode(uint32(tree.Len())); err != nil {
			return nil, errors.Wrap(err, "encode entry count")
		}
		var encodeErr error
		tree.Ascend(func(item btree.Item) bool {
			e := item.(*entry)
			encodeErr = encodeEntry(encoder, e)
			return encodeErr == nil
		})
		if encodeErr != nil {
			return nil, errors.Wrap(encodeErr, "encode column entry")
		}
	}
	return buf.Bytes(), nil
}

func encodeEntry(encoder *scale.Encoder, e *entry) error {
	if err := encoder.Encode(uint32(len(e.key))); err != nil {
		return err
	}
	if err := encoder.Write(e.key); err != nil {
		return err
	}
	if err := encoder.Encode(uint32(len(e.value))); err != nil {
		return err
	}
	return encoder.Write(e.value)
}

// DecodeStore rebuilds a store from its canonical byte form. Trailing bytes
// after the last column are rejected as corruption.
func DecodeStore(data []byte) (*MemoryStore, error) {
	reader := bytes.NewReader(data)
	decoder := scale.NewDecoder(reader)

	var numColumns uint32
	if err := decoder.Decode(&numColumns); err != nil {
		return nil, errors.Wrap(err, "decode column count")
	}
	store := NewMemoryStore(numColumns)
	for col := uint32(0); col < numColumns; col++ {
		var numEntries uint32
		if err := decoder.Decode(&numEntries); err != nil {
			return nil, errors.Wrap(err, "decode entry count")
		}
		for i := uint32(0); i < numEntries; i++ {
			e, err := decodeEntry(decoder)
			if err != nil {
				return nil, errors.Wrapf(err, "decode entry %d of column %d", i, col)
			}
			store.columns[col].ReplaceOrInsert(e)
		}
	}
	if reader.Len() != 0 {
		return nil, errors.Errorf("store encoding has %d trailing bytes", reader.Len())
	}
	return store, nil
}

func decodeEntry(decoder *scale.Decoder) (*entry, error) {
	key, err := decodeBytes(decoder)
	if err != nil {
		return nil, err
	}
	value, err := decodeBytes(decoder)
	if err != nil {
		return nil, err
	}
	return &entry{key: key, value: value}, nil
}

func decodeBytes(decoder *scale.Decoder) ([]byte, error) {
	var length uint32
	if err := decoder.Decode(&length); err != nil {
		return nil, err
	}
	b := make([]byte, length)
	if length == 0 {
		return b, nil
	}
	if err := decoder.Read(b); err != nil {
		if err == io.EOF {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}
	return b, nil
}
