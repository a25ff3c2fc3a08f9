// Package types holds the wire types of the tracked chain together with
// their canonical SCALE encodings. Every value that crosses the host
// boundary or lands in the state blob is encoded through this package, so
// two runs over the same inputs produce byte-identical output.
package types

import (
	"bytes"
	"math/big"

	"github.com/centrifuge/go-substrate-rpc-client/v4/scale"
	"github.com/pkg/errors"
)

// Hash is a blake2b-256 digest.
type Hash [32]byte

// IsEmpty returns true for the all-zero hash, which marks "no block" in the
// store metadata.
func (h Hash) IsEmpty() bool {
	return h == Hash{}
}

// NewHash converts a byte slice into a Hash. Slices longer than 32 bytes are
// truncated, shorter ones are right-padded with zeros.
func NewHash(b []byte) Hash {
	var h Hash
	copy(h[:], b)
	return h
}

// BlockNumber is a block height. On the wire it uses the chain's compact
// integer encoding rather than a fixed-width u32.
type BlockNumber uint32

// Encode implements encoding for BlockNumber.
func (b BlockNumber) Encode(encoder scale.Encoder) error {
	return encoder.EncodeUintCompact(*new(big.Int).SetUint64(uint64(b)))
}

// Decode implements decoding for BlockNumber.
func (b *BlockNumber) Decode(decoder scale.Decoder) error {
	u, err := decoder.DecodeUintCompact()
	if err != nil {
		return err
	}
	*b = BlockNumber(u.Uint64())
	return nil
}

// AuthorityID is the 32-byte ed25519 public key of a GRANDPA voter.
type AuthorityID [32]byte

// AuthoritySignature is an ed25519 signature over a localized GRANDPA
// message.
type AuthoritySignature [64]byte

// Authority is a single entry of an authority set. Weight is the voting
// power carried by the key.
type Authority struct {
	ID     AuthorityID
	Weight uint64
}

// AuthorityList is an ordered authority set. Order is kept on the wire;
// commit precommits are matched to authorities by key, not by position.
type AuthorityList []Authority

// TotalWeight sums the voting power of the whole list.
func (l AuthorityList) TotalWeight() uint64 {
	var total uint64
	for _, a := range l {
		total += a.Weight
	}
	return total
}

// LightAuthoritySet is the authority set the light client currently trusts.
// SetID increases by exactly one with every enacted change.
type LightAuthoritySet struct {
	SetID       uint64
	Authorities AuthorityList
}

// NewLightAuthoritySet builds a set with the given id and members.
func NewLightAuthoritySet(setID uint64, authorities AuthorityList) LightAuthoritySet {
	return LightAuthoritySet{SetID: setID, Authorities: authorities}
}

// NextAuthoritySet derives the successor of prev after an enacted change.
func NextAuthoritySet(prev LightAuthoritySet, authorities AuthorityList) LightAuthoritySet {
	return LightAuthoritySet{SetID: prev.SetID + 1, Authorities: authorities}
}

// ScheduledChange is an authority-set change announced in a header digest,
// taking effect Delay blocks after the announcing header.
type ScheduledChange struct {
	NextAuthorities AuthorityList
	Delay           uint32
}

// NextAuthorityChange is the persisted, not-yet-enacted form of a scheduled
// change. NextChangeAt is the height at which it takes effect.
type NextAuthorityChange struct {
	NextChangeAt uint32
	Change       ScheduledChange
}

// EncodeToBytes SCALE-encodes value.
func EncodeToBytes(value interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := scale.NewEncoder(&buf).Encode(value); err != nil {
		return nil, errors.Wrap(err, "scale encode")
	}
	return buf.Bytes(), nil
}

// DecodeFromBytes SCALE-decodes data into target, which must be a pointer.
func DecodeFromBytes(data []byte, target interface{}) error {
	if err := scale.NewDecoder(bytes.NewReader(data)).Decode(target); err != nil {
		return errors.Wrap(err, "scale decode")
	}
	return nil
}
