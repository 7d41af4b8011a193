package tendermint

import (
	errorsmod "cosmossdk.io/errors"
	"github.com/ethereum/go-ethereum/rlp"
	tmtypes "github.com/tendermint/tendermint/types"
	dbm "github.com/tendermint/tm-db"

	clienttypes "github.com/cosmos/ibc-lightcore/modules/core/02-client/types"
)

// Misbehaviour is a wrapper over two conflicting Headers
// that implements Misbehaviour interface expected by ICS-02
type Misbehaviour struct {
	Header1 *Header
	Header2 *Header
}

type misbehaviourRecord struct {
	Header1 []byte
	Header2 []byte
}

// NewMisbehaviour creates a new Misbehaviour instance.
func NewMisbehaviour(header1, header2 *Header) *Misbehaviour {
	return &Misbehaviour{
		Header1: header1,
		Header2: header2,
	}
}

// Marshal encodes both headers as an RLP list.
func (misbehaviour Misbehaviour) Marshal() ([]byte, error) {
	if misbehaviour.Header1 == nil || misbehaviour.Header2 == nil {
		return nil, errorsmod.Wrap(clienttypes.ErrInvalidMisbehaviour, "misbehaviour headers cannot be nil")
	}

	header1, err := misbehaviour.Header1.Marshal()
	if err != nil {
		return nil, err
	}
	header2, err := misbehaviour.Header2.Marshal()
	if err != nil {
		return nil, err
	}
	return rlp.EncodeToBytes(misbehaviourRecord{Header1: header1, Header2: header2})
}

func unmarshalMisbehaviour(moduleStore dbm.DB, bz []byte) (*Misbehaviour, error) {
	var record misbehaviourRecord
	if err := rlp.DecodeBytes(bz, &record); err != nil {
		return nil, errorsmod.Wrapf(clienttypes.ErrInvalidMisbehaviour, "failed to decode misbehaviour: %v", err)
	}

	header1, err := unmarshalHeader(moduleStore, record.Header1)
	if err != nil {
		return nil, errorsmod.Wrap(clienttypes.ErrInvalidMisbehaviour, errorsmod.Wrap(err, "header 1").Error())
	}
	header2, err := unmarshalHeader(moduleStore, record.Header2)
	if err != nil {
		return nil, errorsmod.Wrap(clienttypes.ErrInvalidMisbehaviour, errorsmod.Wrap(err, "header 2").Error())
	}

	return NewMisbehaviour(header1, header2), nil
}

// ValidateBasic implements Misbehaviour interface
func (misbehaviour Misbehaviour) ValidateBasic() error {
	if misbehaviour.Header1 == nil {
		return errorsmod.Wrap(ErrInvalidHeader, "misbehaviour Header1 cannot be nil")
	}
	if misbehaviour.Header2 == nil {
		return errorsmod.Wrap(ErrInvalidHeader, "misbehaviour Header2 cannot be nil")
	}

	// ValidateBasic on both validators
	if err := misbehaviour.Header1.ValidateBasic(); err != nil {
		return errorsmod.Wrap(
			clienttypes.ErrInvalidMisbehaviour,
			errorsmod.Wrap(err, "header 1 failed validation").Error(),
		)
	}
	if err := misbehaviour.Header2.ValidateBasic(); err != nil {
		return errorsmod.Wrap(
			clienttypes.ErrInvalidMisbehaviour,
			errorsmod.Wrap(err, "header 2 failed validation").Error(),
		)
	}

	if misbehaviour.Header1.SignedHeader.ChainID != misbehaviour.Header2.SignedHeader.ChainID {
		return errorsmod.Wrap(clienttypes.ErrInvalidMisbehaviour, "headers must have identical chainIDs")
	}

	// Ensure that Height1 is greater than or equal to Height2
	if misbehaviour.Header1.GetHeight() < misbehaviour.Header2.GetHeight() {
		return errorsmod.Wrapf(clienttypes.ErrInvalidMisbehaviour, "Header1 height is less than Header2 height (%d < %d)", misbehaviour.Header1.GetHeight(), misbehaviour.Header2.GetHeight())
	}

	if err := validCommit(misbehaviour.Header1); err != nil {
		return err
	}
	return validCommit(misbehaviour.Header2)
}

// validCommit checks if the given commit is a valid commit from the passed-in validatorset
func validCommit(header *Header) error {
	commit := header.SignedHeader.Commit
	if err := header.ValidatorSet.VerifyCommitLight(header.SignedHeader.ChainID, commit.BlockID, commit.Height, commit); err != nil {
		return errorsmod.Wrapf(clienttypes.ErrInvalidMisbehaviour, "validator set did not commit to header: %v", err)
	}
	return nil
}

// blockID returns the block id committed to by the header.
func blockID(header *Header) tmtypes.BlockID {
	return header.SignedHeader.Commit.BlockID
}
