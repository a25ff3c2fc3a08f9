package verification

import (
	"crypto/ed25519"

	"github.com/pkg/errors"

	"github.com/ChorusOne/substrate-light-client/types"
)

// ErrBadJustification marks a justification that failed to decode or is not
// valid within the current authority set: wrong target, unknown voters, bad
// signatures or not enough voting weight. Callers treat it as a signal to
// fetch a finality proof rather than as a hard failure.
var ErrBadJustification = errors.New("bad justification")

// VerifyJustification checks an encoded GRANDPA justification against the
// authority set identified by setID. To pass, the commit must target
// exactly (targetHash, targetNumber) and carry valid precommit signatures
// from distinct set members holding strictly more than 2/3 of the total
// weight. Returns the decoded justification on success.
func VerifyJustification(
	encoded []byte,
	setID uint64,
	authorities types.AuthorityList,
	targetHash types.Hash,
	targetNumber uint32,
) (*types.GrandpaJustification, error) {
	justification, err := types.DecodeGrandpaJustification(encoded)
	if err != nil {
		return nil, errors.Wrap(ErrBadJustification, err.Error())
	}

	if justification.Commit.TargetHash != targetHash ||
		justification.Commit.TargetNumber != targetNumber {
		return nil, errors.Wrapf(ErrBadJustification,
			"commit targets block %d (%x), expected %d (%x)",
			justification.Commit.TargetNumber, justification.Commit.TargetHash,
			targetNumber, targetHash)
	}

	weightOf := make(map[types.AuthorityID]uint64, len(authorities))
	for _, authority := range authorities {
		weightOf[authority.ID] = authority.Weight
	}

	seen := make(map[types.AuthorityID]bool, len(justification.Commit.Precommits))
	var signedWeight uint64
	for _, signed := range justification.Commit.Precommits {
		weight, isMember := weightOf[signed.ID]
		if !isMember {
			return nil, errors.Wrapf(ErrBadJustification,
				"precommit from unknown voter %x", signed.ID)
		}
		message, err := types.PrecommitSignedMessage(signed.Precommit, justification.Round, setID)
		if err != nil {
			return nil, err
		}
		if !ed25519.Verify(ed25519.PublicKey(signed.ID[:]), message, signed.Signature[:]) {
			return nil, errors.Wrapf(ErrBadJustification,
				"invalid precommit signature from voter %x", signed.ID)
		}
		if seen[signed.ID] {
			continue
		}
		seen[signed.ID] = true
		signedWeight += weight
	}

	totalWeight := authorities.TotalWeight()
	if signedWeight*3 <= totalWeight*2 {
		return nil, errors.Wrapf(ErrBadJustification,
			"insufficient voting weight: signed %d of %d", signedWeight, totalWeight)
	}
	return justification, nil
}
