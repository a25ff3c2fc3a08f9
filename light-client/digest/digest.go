// Package digest extracts consensus logs from header digests.
package digest

import (
	"github.com/pkg/errors"

	"github.com/ChorusOne/substrate-light-client/types"
)

// ErrMultipleEpochDigests is returned when a header announces more than one
// BABE epoch change.
var ErrMultipleEpochDigests = errors.New("multiple epoch change digest detected")

// grandpaLogs yields every decodable GRANDPA consensus log of the header,
// in digest order.
func grandpaLogs(header *types.Header) []types.GrandpaConsensusLog {
	var logs []types.GrandpaConsensusLog
	for _, item := range header.Digest {
		if !item.IsConsensus || item.AsConsensus.ConsensusEngineID != types.GrandpaEngineID {
			continue
		}
		var log types.GrandpaConsensusLog
		if err := types.DecodeFromBytes(item.AsConsensus.Bytes, &log); err != nil {
			// A log another engine version produced; not ours to reject.
			continue
		}
		logs = append(logs, log)
	}
	return logs
}

// FindScheduledChange returns the first scheduled authority-set change in
// the header's digest, or nil.
func FindScheduledChange(header *types.Header) *types.ScheduledChange {
	for _, log := range grandpaLogs(header) {
		if log.IsScheduledChange {
			change := log.AsScheduledChange
			return &change
		}
	}
	return nil
}

// FindForcedChange returns the first forced authority-set change in the
// header's digest together with the block number the log carries
// (AsForcedChangeAt), or nil and 0.
func FindForcedChange(header *types.Header) (*types.ScheduledChange, uint32) {
	for _, log := range grandpaLogs(header) {
		if log.IsForcedChange {
			change := log.AsForcedChange
			return &change, log.AsForcedChangeAt
		}
	}
	return nil, 0
}

// FindNextEpochDigest returns the BABE next-epoch descriptor of the header,
// or nil if the header does not announce an epoch change. A header carrying
// more than one epoch digest is malformed.
func FindNextEpochDigest(header *types.Header) (*types.NextEpochDescriptor, error) {
	var epochDigest *types.NextEpochDescriptor
	for _, item := range header.Digest {
		if !item.IsConsensus || item.AsConsensus.ConsensusEngineID != types.BabeEngineID {
			continue
		}
		var log types.BabeConsensusLog
		if err := types.DecodeFromBytes(item.AsConsensus.Bytes, &log); err != nil {
			continue
		}
		if !log.IsNextEpochData {
			continue
		}
		if epochDigest != nil {
			return nil, ErrMultipleEpochDigests
		}
		descriptor := log.AsNextEpochData
		epochDigest = &descriptor
	}
	return epochDigest, nil
}
