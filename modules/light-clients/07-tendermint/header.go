package tendermint

import (
	"bytes"
	"time"

	errorsmod "cosmossdk.io/errors"
	"github.com/ethereum/go-ethereum/rlp"
	tmproto "github.com/tendermint/tendermint/proto/tendermint/types"
	tmtypes "github.com/tendermint/tendermint/types"
	dbm "github.com/tendermint/tm-db"

	clienttypes "github.com/cosmos/ibc-lightcore/modules/core/02-client/types"
)

// Header defines the Tendermint client consensus Header.
// It encapsulates all the information necessary to update from a trusted
// Tendermint ConsensusState. The inclusion of TrustedHeight and
// TrustedValidators allows this update to process correctly, so long as the
// ConsensusState for the TrustedHeight exists, this removes race conditions
// among relayers. The SignedHeader and ValidatorSet are the new untrusted
// update fields for the client. The TrustedHeight is the height of a stored
// ConsensusState on the client that will be used to verify the new untrusted
// header. The Trusted ConsensusState must be within the unbonding period of
// current time in order to correctly verify, and the TrustedValidators must
// hash to TrustedConsensusState.NextValidatorsHash since that is the last
// trusted validator set at the TrustedHeight.
//
// Either validator set may be replaced on the wire by the key of a validator
// set cached with StoreValidatorSet.
type Header struct {
	SignedHeader      *tmtypes.SignedHeader
	ValidatorSet      *tmtypes.ValidatorSet
	TrustedHeight     uint64
	TrustedValidators *tmtypes.ValidatorSet

	ValidatorSetKey        []byte
	TrustedValidatorSetKey []byte
}

// headerRecord is the wire form of a Header. Validator sets are protobuf
// encoded, or empty when the matching cache key is set.
type headerRecord struct {
	SignedHeader           []byte
	ValidatorSet           []byte
	ValidatorSetKey        []byte
	TrustedHeight          uint64
	TrustedValidators      []byte
	TrustedValidatorSetKey []byte
}

// GetHeight returns the block height of the signed header.
func (h Header) GetHeight() uint64 {
	return uint64(h.SignedHeader.Height)
}

// GetTime returns the current block timestamp. It returns a zero time if
// the tendermint header is nil.
// NOTE: the header.Header is checked to be non nil in ValidateBasic.
func (h Header) GetTime() time.Time {
	if h.SignedHeader == nil || h.SignedHeader.Header == nil {
		return time.Time{}
	}
	return h.SignedHeader.Time
}

// ConsensusState returns the updated consensus state associated with the header
func (h Header) ConsensusState() *ConsensusState {
	return NewConsensusState(h.GetTime(), h.SignedHeader.AppHash, h.SignedHeader.NextValidatorsHash)
}

// ValidateBasic calls the SignedHeader ValidateBasic function and checks
// that validatorsets are not nil.
func (h Header) ValidateBasic() error {
	if h.SignedHeader == nil {
		return errorsmod.Wrap(clienttypes.ErrInvalidHeader, "tendermint signed header cannot be nil")
	}
	if h.SignedHeader.Header == nil {
		return errorsmod.Wrap(clienttypes.ErrInvalidHeader, "tendermint header cannot be nil")
	}

	// NOTE: SignedHeader ValidateBasic checks that the commit is for the header's
	// height and block id.
	if err := h.SignedHeader.ValidateBasic(h.SignedHeader.ChainID); err != nil {
		return errorsmod.Wrap(clienttypes.ErrInvalidHeader, err.Error())
	}

	// TrustedHeight is less than Header for updates and misbehaviour
	if h.TrustedHeight >= h.GetHeight() {
		return errorsmod.Wrapf(ErrInvalidHeaderHeight, "TrustedHeight %d must be less than header height %d",
			h.TrustedHeight, h.GetHeight())
	}

	if h.ValidatorSet == nil {
		return errorsmod.Wrap(ErrInvalidValidatorSet, "validator set is nil")
	}
	if h.TrustedValidators == nil {
		return errorsmod.Wrap(ErrInvalidValidatorSet, "trusted validator set is nil")
	}
	if !bytes.Equal(h.SignedHeader.ValidatorsHash, h.ValidatorSet.Hash()) {
		return errorsmod.Wrap(ErrInvalidValidatorSet, "validator set does not match hash")
	}
	return nil
}

// Marshal encodes the header. A validator set whose cache key is set is
// omitted from the encoding.
func (h Header) Marshal() ([]byte, error) {
	if h.SignedHeader == nil {
		return nil, errorsmod.Wrap(clienttypes.ErrInvalidHeader, "tendermint signed header cannot be nil")
	}

	signedHeader, err := h.SignedHeader.ToProto().Marshal()
	if err != nil {
		return nil, err
	}

	record := headerRecord{
		SignedHeader:           signedHeader,
		ValidatorSetKey:        h.ValidatorSetKey,
		TrustedHeight:          h.TrustedHeight,
		TrustedValidatorSetKey: h.TrustedValidatorSetKey,
	}

	if len(h.ValidatorSetKey) == 0 && h.ValidatorSet != nil {
		if record.ValidatorSet, err = EncodeValidatorSet(h.ValidatorSet); err != nil {
			return nil, err
		}
	}
	if len(h.TrustedValidatorSetKey) == 0 && h.TrustedValidators != nil {
		if record.TrustedValidators, err = EncodeValidatorSet(h.TrustedValidators); err != nil {
			return nil, err
		}
	}

	return rlp.EncodeToBytes(record)
}

// unmarshalHeader decodes a header and resolves cached validator set references
// from the module store. Malformed encodings are reported as ErrInvalidHeader.
func unmarshalHeader(moduleStore dbm.DB, bz []byte) (*Header, error) {
	var record headerRecord
	if err := rlp.DecodeBytes(bz, &record); err != nil {
		return nil, errorsmod.Wrapf(clienttypes.ErrInvalidHeader, "failed to decode header: %v", err)
	}

	var protoSignedHeader tmproto.SignedHeader
	if err := protoSignedHeader.Unmarshal(record.SignedHeader); err != nil {
		return nil, errorsmod.Wrapf(clienttypes.ErrInvalidHeader, "failed to decode signed header: %v", err)
	}

	signedHeader, err := tmtypes.SignedHeaderFromProto(&protoSignedHeader)
	if err != nil {
		return nil, errorsmod.Wrap(clienttypes.ErrInvalidHeader, err.Error())
	}

	header := &Header{
		SignedHeader:           signedHeader,
		TrustedHeight:          record.TrustedHeight,
		ValidatorSetKey:        record.ValidatorSetKey,
		TrustedValidatorSetKey: record.TrustedValidatorSetKey,
	}

	if header.ValidatorSet, err = resolveValidatorSet(moduleStore, record.ValidatorSet, record.ValidatorSetKey); err != nil {
		return nil, errorsmod.Wrap(err, "header validator set")
	}
	if header.TrustedValidators, err = resolveValidatorSet(moduleStore, record.TrustedValidators, record.TrustedValidatorSetKey); err != nil {
		return nil, errorsmod.Wrap(err, "trusted validator set")
	}

	return header, nil
}

// resolveValidatorSet decodes an inline validator set, or loads it from the
// cache when key is set.
func resolveValidatorSet(moduleStore dbm.DB, raw, key []byte) (*tmtypes.ValidatorSet, error) {
	switch {
	case len(key) != 0 && len(raw) != 0:
		return nil, errorsmod.Wrap(clienttypes.ErrInvalidHeader, "validator set and cache key are mutually exclusive")
	case len(key) != 0:
		return getCachedValidatorSet(moduleStore, key)
	case len(raw) == 0:
		return nil, errorsmod.Wrap(clienttypes.ErrInvalidHeader, "validator set cannot be empty")
	}

	valSet, err := DecodeValidatorSet(raw)
	if err != nil {
		return nil, errorsmod.Wrap(clienttypes.ErrInvalidHeader, err.Error())
	}
	return valSet, nil
}
