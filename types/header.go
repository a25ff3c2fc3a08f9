package types

import (
	"github.com/centrifuge/go-substrate-rpc-client/v4/scale"
	"github.com/pkg/errors"
	"golang.org/x/crypto/blake2b"
)

// ConsensusEngineID tags a digest item with the engine that produced it.
type ConsensusEngineID [4]byte

var (
	// GrandpaEngineID tags GRANDPA consensus logs.
	GrandpaEngineID = ConsensusEngineID{'F', 'R', 'N', 'K'}
	// BabeEngineID tags BABE consensus logs.
	BabeEngineID = ConsensusEngineID{'B', 'A', 'B', 'E'}
)

// Digest item discriminants, matching the chain's generic digest encoding.
const (
	digestItemOther           byte = 0
	digestItemChangesTrieRoot byte = 2
	digestItemConsensus       byte = 4
	digestItemSeal            byte = 5
	digestItemPreRuntime      byte = 6
)

// Consensus is an engine-tagged opaque consensus log.
type Consensus struct {
	ConsensusEngineID ConsensusEngineID
	Bytes             []byte
}

// Seal is an engine-tagged block seal.
type Seal struct {
	ConsensusEngineID ConsensusEngineID
	Bytes             []byte
}

// PreRuntime is an engine-tagged pre-runtime digest, e.g. a BABE slot claim.
type PreRuntime struct {
	ConsensusEngineID ConsensusEngineID
	Bytes             []byte
}

// DigestItem is one entry of a header digest. Exactly one Is* flag is set.
type DigestItem struct {
	IsOther           bool
	AsOther           []byte
	IsChangesTrieRoot bool
	AsChangesTrieRoot Hash
	IsConsensus       bool
	AsConsensus       Consensus
	IsSeal            bool
	AsSeal            Seal
	IsPreRuntime      bool
	AsPreRuntime      PreRuntime
}

// Encode implements encoding for DigestItem.
func (d DigestItem) Encode(encoder scale.Encoder) error {
	switch {
	case d.IsOther:
		if err := encoder.PushByte(digestItemOther); err != nil {
			return err
		}
		return encoder.Encode(d.AsOther)
	case d.IsChangesTrieRoot:
		if err := encoder.PushByte(digestItemChangesTrieRoot); err != nil {
			return err
		}
		return encoder.Encode(d.AsChangesTrieRoot)
	case d.IsConsensus:
		if err := encoder.PushByte(digestItemConsensus); err != nil {
			return err
		}
		return encoder.Encode(d.AsConsensus)
	case d.IsSeal:
		if err := encoder.PushByte(digestItemSeal); err != nil {
			return err
		}
		return encoder.Encode(d.AsSeal)
	case d.IsPreRuntime:
		if err := encoder.PushByte(digestItemPreRuntime); err != nil {
			return err
		}
		return encoder.Encode(d.AsPreRuntime)
	}
	return errors.New("no digest item variant set")
}

// Decode implements decoding for DigestItem.
func (d *DigestItem) Decode(decoder scale.Decoder) error {
	tag, err := decoder.ReadOneByte()
	if err != nil {
		return err
	}
	*d = DigestItem{}
	switch tag {
	case digestItemOther:
		d.IsOther = true
		return decoder.Decode(&d.AsOther)
	case digestItemChangesTrieRoot:
		d.IsChangesTrieRoot = true
		return decoder.Decode(&d.AsChangesTrieRoot)
	case digestItemConsensus:
		d.IsConsensus = true
		return decoder.Decode(&d.AsConsensus)
	case digestItemSeal:
		d.IsSeal = true
		return decoder.Decode(&d.AsSeal)
	case digestItemPreRuntime:
		d.IsPreRuntime = true
		return decoder.Decode(&d.AsPreRuntime)
	}
	return errors.Errorf("unknown digest item tag %d", tag)
}

// NewConsensusDigest wraps an encoded consensus log into a digest item for
// the given engine.
func NewConsensusDigest(engine ConsensusEngineID, payload []byte) DigestItem {
	return DigestItem{
		IsConsensus: true,
		AsConsensus: Consensus{ConsensusEngineID: engine, Bytes: payload},
	}
}

// Header is a block header of the tracked chain. Field order is part of the
// wire format; Number is compact-encoded.
type Header struct {
	ParentHash     Hash
	Number         BlockNumber
	StateRoot      Hash
	ExtrinsicsRoot Hash
	Digest         []DigestItem
}

// Hash returns the blake2b-256 hash of the SCALE-encoded header.
func (h *Header) Hash() (Hash, error) {
	encoded, err := EncodeToBytes(*h)
	if err != nil {
		return Hash{}, errors.Wrap(err, "hash header")
	}
	return blake2b.Sum256(encoded), nil
}
