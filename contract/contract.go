// Package contract is the host-facing message layer of the light client.
// It validates and decodes the host's hex-wrapped arguments, drives the
// state machine in light-client/client and persists the contract singleton
// through the host's byte-slot store.
package contract

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/ChorusOne/substrate-light-client/light-client/client"
	"github.com/ChorusOne/substrate-light-client/types"
)

// Init bootstraps the contract from a trusted signed block and authority
// set and persists the resulting state singleton.
func Init(store Store, msg *InitMsg) (*Response, error) {
	if !isValidIdentifier(msg.Name) {
		return nil, parseErr("name", "name is not in the expected format (8-20 lowercase ascii bytes)")
	}
	block, err := decodeSignedBlock("block", msg.Block)
	if err != nil {
		return nil, err
	}
	authorities, err := decodeAuthorityList("authority_set", msg.AuthoritySet)
	if err != nil {
		return nil, err
	}

	authoritySet := types.NewLightAuthoritySet(0, authorities)
	lightClientData, err := client.Initialize(block.Block.Header, authoritySet, msg.MaxNonFinalizedBlocksAllowed)
	if err != nil {
		return nil, contractErr(err.Error())
	}

	state := &State{
		Name:                         msg.Name,
		MaxNonFinalizedBlocksAllowed: msg.MaxNonFinalizedBlocksAllowed,
	}
	if err := refreshState(state, lightClientData); err != nil {
		return nil, err
	}
	if err := saveState(store, state); err != nil {
		return nil, err
	}
	log.WithField("name", msg.Name).Info("Initialized light client contract")
	return &Response{}, nil
}

// Handle dispatches a state-changing message.
func Handle(store Store, msg *HandleMsg) (*Response, error) {
	if msg.UpdateClient == nil {
		return nil, contractErr("unknown handle message")
	}
	return updateClient(store, msg.UpdateClient)
}

// Query dispatches a read-only message and returns the encoded reply.
func Query(store Store, msg *QueryMsg) ([]byte, error) {
	if msg.LatestHeight == nil {
		return nil, contractErr("unknown query message")
	}
	state, err := loadState(store)
	if err != nil {
		return nil, err
	}
	status, err := client.CurrentStatus(state.LightClientData)
	if err != nil {
		return nil, contractErr(err.Error())
	}
	currentAuthoritySet := ""
	if status.AuthoritySet != nil {
		encoded, err := types.EncodeToBytes(*status.AuthoritySet)
		if err != nil {
			return nil, contractErr(err.Error())
		}
		currentAuthoritySet = "0x" + hex.EncodeToString(encoded)
	}
	reply, err := json.Marshal(&LatestHeightResponse{
		BestHeaderHeight:         state.Height,
		BestHeaderHash:           state.BestHeaderHash,
		LastFinalizedHeaderHash:  state.LastFinalizedHeaderHash,
		BestHeaderCommitmentRoot: state.BestHeaderCommitmentRoot,
		CurrentAuthoritySet:      currentAuthoritySet,
	})
	if err != nil {
		return nil, errors.Wrap(err, "encode query reply")
	}
	return reply, nil
}

// updateClient ingests one signed block; the block's own justification, if
// any, drives finalization. The message's authority_set field is reserved
// and not consulted.
func updateClient(store Store, msg *UpdateClientMsg) (*Response, error) {
	state, err := loadState(store)
	if err != nil {
		return nil, err
	}
	block, err := decodeSignedBlock("block", msg.Block)
	if err != nil {
		return nil, err
	}

	_, lightClientData, err := client.IngestFinalizedHeader(
		state.LightClientData,
		block.Block.Header,
		block.Justification,
		state.MaxNonFinalizedBlocksAllowed,
	)
	if err != nil {
		return nil, contractErr(err.Error())
	}

	if err := refreshState(state, lightClientData); err != nil {
		return nil, err
	}
	if err := saveState(store, state); err != nil {
		return nil, err
	}
	log.WithFields(logrus.Fields{
		"name":   state.Name,
		"height": state.Height,
	}).Info("Updated light client")
	return &Response{
		Log: []LogAttribute{
			{Key: "action", Value: "block"},
			{Key: "height", Value: fmt.Sprintf("%d", state.Height)},
		},
	}, nil
}

// refreshState re-derives the denormalized query fields from a new light
// client blob and stores the blob itself.
func refreshState(state *State, lightClientData []byte) error {
	status, err := client.CurrentStatus(lightClientData)
	if err != nil {
		return contractErr(err.Error())
	}
	state.LightClientData = lightClientData
	state.Height = 0
	state.BestHeaderHash = nil
	state.BestHeaderCommitmentRoot = nil
	state.LastFinalizedHeaderHash = nil
	if status.BestHeader != nil {
		hash, err := status.BestHeader.Hash()
		if err != nil {
			return contractErr(err.Error())
		}
		state.Height = uint32(status.BestHeader.Number)
		state.BestHeaderHash = hash[:]
		state.BestHeaderCommitmentRoot = status.BestHeader.StateRoot[:]
	}
	if status.FinalizedHeader != nil {
		hash, err := status.FinalizedHeader.Hash()
		if err != nil {
			return contractErr(err.Error())
		}
		state.LastFinalizedHeaderHash = hash[:]
	}
	return nil
}

func decodeHex(target, value string) ([]byte, error) {
	if !strings.HasPrefix(value, "0x") {
		return nil, parseErr(target, "missing 0x prefix")
	}
	decoded, err := hex.DecodeString(value[2:])
	if err != nil {
		return nil, parseErr(target, "unable to decode hex")
	}
	return decoded, nil
}

func decodeSignedBlock(target, value string) (*types.SignedBlock, error) {
	raw, err := decodeHex(target, value)
	if err != nil {
		return nil, err
	}
	block := new(types.SignedBlock)
	if err := types.DecodeFromBytes(raw, block); err != nil {
		return nil, parseErr(target, "unable to decode signed block")
	}
	return block, nil
}

func decodeAuthorityList(target, value string) (types.AuthorityList, error) {
	raw, err := decodeHex(target, value)
	if err != nil {
		return nil, err
	}
	var authorities types.AuthorityList
	if err := types.DecodeFromBytes(raw, &authorities); err != nil {
		return nil, parseErr(target, "unable to decode authority list")
	}
	return authorities, nil
}

// isValidIdentifier accepts 8 to 20 bytes of lowercase ascii letters.
func isValidIdentifier(name string) bool {
	if len(name) < 8 || len(name) > 20 {
		return false
	}
	for i := 0; i < len(name); i++ {
		if name[i] < 'a' || name[i] > 'z' {
			return false
		}
	}
	return true
}
