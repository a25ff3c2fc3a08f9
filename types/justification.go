package types

import (
	"bytes"

	"github.com/centrifuge/go-substrate-rpc-client/v4/scale"
	"github.com/pkg/errors"
)

// grandpaMsgPrecommit is the discriminant of a precommit inside a localized
// GRANDPA vote message (prevote = 0, precommit = 1, primary propose = 2).
const grandpaMsgPrecommit byte = 1

// Precommit is a GRANDPA vote for a block. TargetNumber is fixed-width on
// the wire.
type Precommit struct {
	TargetHash   Hash
	TargetNumber uint32
}

// SignedPrecommit is a precommit with the signature and identity of the
// voter that cast it.
type SignedPrecommit struct {
	Precommit Precommit
	Signature AuthoritySignature
	ID        AuthorityID
}

// Commit is a set of signed precommits for a single target block.
type Commit struct {
	TargetHash   Hash
	TargetNumber uint32
	Precommits   []SignedPrecommit
}

// GrandpaJustification proves finality of its commit target to anyone who
// trusts the authority set it was signed under.
type GrandpaJustification struct {
	Round           uint64
	Commit          Commit
	VotesAncestries []Header
}

// PrecommitSignedMessage is the exact byte string a voter signs for the
// given precommit: the localized encoding of (precommit message, round,
// set id). Round and set id bind the signature to one voting round of one
// authority set.
func PrecommitSignedMessage(precommit Precommit, round, setID uint64) ([]byte, error) {
	var buf bytes.Buffer
	encoder := scale.NewEncoder(&buf)
	if err := encoder.PushByte(grandpaMsgPrecommit); err != nil {
		return nil, err
	}
	if err := encoder.Encode(precommit); err != nil {
		return nil, err
	}
	if err := encoder.Encode(round); err != nil {
		return nil, err
	}
	if err := encoder.Encode(setID); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeGrandpaJustification decodes a raw justification, rejecting
// trailing garbage.
func DecodeGrandpaJustification(data []byte) (*GrandpaJustification, error) {
	reader := bytes.NewReader(data)
	justification := new(GrandpaJustification)
	if err := scale.NewDecoder(reader).Decode(justification); err != nil {
		return nil, errors.Wrap(err, "decode justification")
	}
	if reader.Len() != 0 {
		return nil, errors.Errorf("justification has %d trailing bytes", reader.Len())
	}
	return justification, nil
}
