package types

import (
	"github.com/centrifuge/go-substrate-rpc-client/v4/scale"
)

// Extrinsic is an opaque, already-encoded extrinsic. The light client never
// executes block bodies; it only carries them across decode boundaries.
type Extrinsic []byte

// Block pairs a header with its (opaque) body.
type Block struct {
	Header     Header
	Extrinsics []Extrinsic
}

// SignedBlock is the form in which the host hands blocks to the contract: a
// block plus an optional GRANDPA justification.
type SignedBlock struct {
	Block         Block
	Justification []byte
}

// Encode implements encoding for SignedBlock. The justification is an
// optional value on the wire.
func (b SignedBlock) Encode(encoder scale.Encoder) error {
	if err := encoder.Encode(b.Block); err != nil {
		return err
	}
	return encoder.EncodeOption(b.Justification != nil, b.Justification)
}

// Decode implements decoding for SignedBlock.
func (b *SignedBlock) Decode(decoder scale.Decoder) error {
	if err := decoder.Decode(&b.Block); err != nil {
		return err
	}
	b.Justification = nil
	var hasJustification bool
	return decoder.DecodeOption(&hasJustification, &b.Justification)
}
