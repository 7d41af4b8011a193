package tendermint

import (
	"encoding/binary"
	"errors"
	"strings"

	errorsmod "cosmossdk.io/errors"
	"github.com/tendermint/tendermint/crypto/merkle"
	"github.com/tendermint/tendermint/crypto/tmhash"
	tmproto "github.com/tendermint/tendermint/proto/tendermint/types"
	tmtypes "github.com/tendermint/tendermint/types"
	dbm "github.com/tendermint/tm-db"

	clienttypes "github.com/cosmos/ibc-lightcore/modules/core/02-client/types"
	host "github.com/cosmos/ibc-lightcore/modules/core/24-host"
)

// ValidatorSetRecord is a validator set stored in the cache together with the
// hashes derived from it. Records are written once and never modified.
type ValidatorSetRecord struct {
	// protobuf encoded tendermint validator set
	Raw []byte `json:"raw"`
	// merkle root over the encoded validators and the total voting power
	AggregateHash []byte `json:"aggregate_hash"`
	// the hash committed to by headers, see tmtypes.ValidatorSet.Hash
	ValidatorsHash []byte `json:"validators_hash"`
	Submitter      string `json:"submitter"`
}

// ValidatorSetCacheKey returns the key under which the validator set raw is
// cached for submitter.
func ValidatorSetCacheKey(submitter string, raw []byte) []byte {
	salt := make([]byte, 4, 4+len(submitter)+len(raw))
	binary.BigEndian.PutUint32(salt, uint32(len(submitter)))
	salt = append(salt, submitter...)
	return tmhash.Sum(append(salt, raw...))
}

// DecodeValidatorSet decodes a protobuf encoded validator set. Empty validator
// sets are rejected.
func DecodeValidatorSet(raw []byte) (*tmtypes.ValidatorSet, error) {
	if len(raw) == 0 {
		return nil, errorsmod.Wrap(ErrInvalidValidatorSet, "validator set cannot be empty")
	}

	var protoValSet tmproto.ValidatorSet
	if err := protoValSet.Unmarshal(raw); err != nil {
		return nil, errorsmod.Wrapf(ErrInvalidValidatorSet, "failed to decode validator set: %v", err)
	}

	valSet, err := tmtypes.ValidatorSetFromProto(&protoValSet)
	if err != nil {
		return nil, errorsmod.Wrap(ErrInvalidValidatorSet, err.Error())
	}
	return valSet, nil
}

// EncodeValidatorSet returns the protobuf encoding of valSet.
func EncodeValidatorSet(valSet *tmtypes.ValidatorSet) ([]byte, error) {
	protoValSet, err := valSet.ToProto()
	if err != nil {
		return nil, errorsmod.Wrap(ErrInvalidValidatorSet, err.Error())
	}
	return protoValSet.Marshal()
}

// AggregateHash returns the merkle root over the protobuf encoding of every
// validator, in set order, followed by the big endian total voting power.
func AggregateHash(valSet *tmtypes.ValidatorSet) ([]byte, error) {
	leaves := make([][]byte, 0, len(valSet.Validators)+1)
	for _, val := range valSet.Validators {
		protoVal, err := val.ToProto()
		if err != nil {
			return nil, errorsmod.Wrap(ErrInvalidValidatorSet, err.Error())
		}
		bz, err := protoVal.Marshal()
		if err != nil {
			return nil, err
		}
		leaves = append(leaves, bz)
	}

	totalPower := make([]byte, 8)
	binary.BigEndian.PutUint64(totalPower, uint64(valSet.TotalVotingPower()))
	leaves = append(leaves, totalPower)

	return merkle.HashFromByteSlices(leaves), nil
}

// storeValidatorSet decodes raw, computes its hashes and caches the record under
// the submitter salted key. Storing the same set again returns the existing record.
func storeValidatorSet(moduleStore dbm.DB, submitter string, raw []byte) ([]byte, *ValidatorSetRecord, error) {
	if strings.TrimSpace(submitter) == "" {
		return nil, nil, errorsmod.Wrap(ErrInvalidSubmitter, "submitter cannot be blank")
	}

	key := ValidatorSetCacheKey(submitter, raw)
	existing, err := getValidatorSetRecord(moduleStore, key)
	switch {
	case err == nil:
		return key, existing, nil
	case !errors.Is(err, ErrValidatorSetNotFound):
		return nil, nil, err
	}

	valSet, err := DecodeValidatorSet(raw)
	if err != nil {
		return nil, nil, err
	}

	aggregateHash, err := AggregateHash(valSet)
	if err != nil {
		return nil, nil, err
	}

	record := &ValidatorSetRecord{
		Raw:            raw,
		AggregateHash:  aggregateHash,
		ValidatorsHash: valSet.Hash(),
		Submitter:      submitter,
	}
	if err := moduleStore.Set(host.ValidatorSetKey(key), clienttypes.MustMarshal(record)); err != nil {
		return nil, nil, err
	}

	return key, record, nil
}

// getValidatorSetRecord returns the record cached under key.
func getValidatorSetRecord(moduleStore dbm.DB, key []byte) (*ValidatorSetRecord, error) {
	bz, err := moduleStore.Get(host.ValidatorSetKey(key))
	if err != nil {
		return nil, err
	}
	if len(bz) == 0 {
		return nil, errorsmod.Wrapf(ErrValidatorSetNotFound, "key %X", key)
	}

	var record ValidatorSetRecord
	if err := clienttypes.Unmarshal(bz, &record); err != nil {
		return nil, errorsmod.Wrapf(ErrInvalidValidatorSet, "failed to decode cached validator set: %v", err)
	}
	return &record, nil
}

// getCachedValidatorSet returns the decoded validator set cached under key.
func getCachedValidatorSet(moduleStore dbm.DB, key []byte) (*tmtypes.ValidatorSet, error) {
	record, err := getValidatorSetRecord(moduleStore, key)
	if err != nil {
		return nil, err
	}
	return DecodeValidatorSet(record.Raw)
}

// deleteValidatorSet removes the record cached under key.
func deleteValidatorSet(moduleStore dbm.DB, key []byte) error {
	has, err := moduleStore.Has(host.ValidatorSetKey(key))
	if err != nil {
		return err
	}
	if !has {
		return errorsmod.Wrapf(ErrValidatorSetNotFound, "key %X", key)
	}
	return moduleStore.Delete(host.ValidatorSetKey(key))
}
