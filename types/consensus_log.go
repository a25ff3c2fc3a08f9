package types

import (
	"github.com/centrifuge/go-substrate-rpc-client/v4/scale"
	"github.com/pkg/errors"
)

// GRANDPA consensus log discriminants. The chain assigns explicit indices
// starting at 1.
const (
	grandpaLogScheduledChange byte = 1
	grandpaLogForcedChange    byte = 2
	grandpaLogOnDisabled      byte = 3
	grandpaLogPause           byte = 4
	grandpaLogResume          byte = 5
)

// GrandpaConsensusLog is a GRANDPA log entry carried in a consensus digest
// item. Exactly one Is* flag is set.
type GrandpaConsensusLog struct {
	IsScheduledChange bool
	AsScheduledChange ScheduledChange
	IsForcedChange    bool
	AsForcedChangeAt  uint32
	AsForcedChange    ScheduledChange
	IsOnDisabled      bool
	AsOnDisabled      uint64
	IsPause           bool
	AsPause           uint32
	IsResume          bool
	AsResume          uint32
}

// Encode implements encoding for GrandpaConsensusLog.
func (l GrandpaConsensusLog) Encode(encoder scale.Encoder) error {
	switch {
	case l.IsScheduledChange:
		if err := encoder.PushByte(grandpaLogScheduledChange); err != nil {
			return err
		}
		return encoder.Encode(l.AsScheduledChange)
	case l.IsForcedChange:
		if err := encoder.PushByte(grandpaLogForcedChange); err != nil {
			return err
		}
		if err := encoder.Encode(l.AsForcedChangeAt); err != nil {
			return err
		}
		return encoder.Encode(l.AsForcedChange)
	case l.IsOnDisabled:
		if err := encoder.PushByte(grandpaLogOnDisabled); err != nil {
			return err
		}
		return encoder.Encode(l.AsOnDisabled)
	case l.IsPause:
		if err := encoder.PushByte(grandpaLogPause); err != nil {
			return err
		}
		return encoder.Encode(l.AsPause)
	case l.IsResume:
		if err := encoder.PushByte(grandpaLogResume); err != nil {
			return err
		}
		return encoder.Encode(l.AsResume)
	}
	return errors.New("no GRANDPA consensus log variant set")
}

// Decode implements decoding for GrandpaConsensusLog.
func (l *GrandpaConsensusLog) Decode(decoder scale.Decoder) error {
	tag, err := decoder.ReadOneByte()
	if err != nil {
		return err
	}
	*l = GrandpaConsensusLog{}
	switch tag {
	case grandpaLogScheduledChange:
		l.IsScheduledChange = true
		return decoder.Decode(&l.AsScheduledChange)
	case grandpaLogForcedChange:
		l.IsForcedChange = true
		if err := decoder.Decode(&l.AsForcedChangeAt); err != nil {
			return err
		}
		return decoder.Decode(&l.AsForcedChange)
	case grandpaLogOnDisabled:
		l.IsOnDisabled = true
		return decoder.Decode(&l.AsOnDisabled)
	case grandpaLogPause:
		l.IsPause = true
		return decoder.Decode(&l.AsPause)
	case grandpaLogResume:
		l.IsResume = true
		return decoder.Decode(&l.AsResume)
	}
	return errors.Errorf("unknown GRANDPA consensus log tag %d", tag)
}

// BABE consensus log discriminants.
const (
	babeLogNextEpochData byte = 1
	babeLogOnDisabled    byte = 2
)

// NextEpochDescriptor announces the authorities and randomness of the next
// BABE epoch. The light client only does digest bookkeeping with it.
type NextEpochDescriptor struct {
	Authorities AuthorityList
	Randomness  Hash
}

// BabeConsensusLog is a BABE log entry carried in a consensus digest item.
type BabeConsensusLog struct {
	IsNextEpochData bool
	AsNextEpochData NextEpochDescriptor
	IsOnDisabled    bool
	AsOnDisabled    uint32
}

// Encode implements encoding for BabeConsensusLog.
func (l BabeConsensusLog) Encode(encoder scale.Encoder) error {
	switch {
	case l.IsNextEpochData:
		if err := encoder.PushByte(babeLogNextEpochData); err != nil {
			return err
		}
		return encoder.Encode(l.AsNextEpochData)
	case l.IsOnDisabled:
		if err := encoder.PushByte(babeLogOnDisabled); err != nil {
			return err
		}
		return encoder.Encode(l.AsOnDisabled)
	}
	return errors.New("no BABE consensus log variant set")
}

// Decode implements decoding for BabeConsensusLog.
func (l *BabeConsensusLog) Decode(decoder scale.Decoder) error {
	tag, err := decoder.ReadOneByte()
	if err != nil {
		return err
	}
	*l = BabeConsensusLog{}
	switch tag {
	case babeLogNextEpochData:
		l.IsNextEpochData = true
		return decoder.Decode(&l.AsNextEpochData)
	case babeLogOnDisabled:
		l.IsOnDisabled = true
		return decoder.Decode(&l.AsOnDisabled)
	}
	return errors.Errorf("unknown BABE consensus log tag %d", tag)
}
