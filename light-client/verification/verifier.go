// Package verification holds the pre-import header checks and the GRANDPA
// justification verifier.
package verification

import (
	"github.com/pkg/errors"

	"github.com/ChorusOne/substrate-light-client/light-client/digest"
	"github.com/ChorusOne/substrate-light-client/types"
)

var (
	// ErrScheduledChangeExists is returned when a header schedules an
	// authority change while an earlier one is still pending.
	ErrScheduledChangeExists = errors.New("Scheduled change already exists.")

	// ErrForcedChange is returned for headers carrying a forced
	// authority change, which the light client refuses to follow.
	ErrForcedChange = errors.New("forced authority change is not supported")
)

// AuxRegistry is the slice of the storage layer the verifier needs: reading
// and consuming the pending authority change.
type AuxRegistry interface {
	NextAuthorityChange() (*types.NextAuthorityChange, error)
	DeleteNextAuthorityChange() error
}

// BlockImportParams is the verifier's instruction sheet for the importer:
// the header to store, a freshly scheduled change to persist after the
// header is accepted, and a matured change ready to be enacted.
type BlockImportParams struct {
	Header              types.Header
	NextAuthorityChange *types.NextAuthorityChange
	EnactingChange      *types.NextAuthorityChange
}

// Verifier runs the pre-import protocol of the authority-set lifecycle.
type Verifier struct {
	aux AuxRegistry
}

// NewVerifier returns a verifier over the given aux registry.
func NewVerifier(aux AuxRegistry) *Verifier {
	return &Verifier{aux: aux}
}

// Verify decides the fate of the pending authority change for one header
// and screens the header's digest. When the pending change matures at this
// exact height it is consumed from the registry and handed to the importer
// for enactment; a header that schedules a change while another is still
// pending is rejected.
func (v *Verifier) Verify(header *types.Header) (*BlockImportParams, error) {
	var enacting *types.NextAuthorityChange
	scheduledChangeExists := false

	pending, err := v.aux.NextAuthorityChange()
	if err != nil {
		return nil, err
	}
	if pending != nil {
		if pending.NextChangeAt == uint32(header.Number) {
			if err := v.aux.DeleteNextAuthorityChange(); err != nil {
				return nil, err
			}
			enacting = pending
		} else {
			scheduledChangeExists = true
		}
	}

	if forced, _ := digest.FindForcedChange(header); forced != nil {
		return nil, ErrForcedChange
	}

	var next *types.NextAuthorityChange
	if scheduled := digest.FindScheduledChange(header); scheduled != nil {
		if scheduledChangeExists {
			return nil, ErrScheduledChangeExists
		}
		next = &types.NextAuthorityChange{
			NextChangeAt: uint32(header.Number) + scheduled.Delay,
			Change:       *scheduled,
		}
	}

	return &BlockImportParams{
		Header:              *header,
		NextAuthorityChange: next,
		EnactingChange:      enacting,
	}, nil
}
