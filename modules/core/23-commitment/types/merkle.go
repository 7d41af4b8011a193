package types

import (
	"bytes"
	"fmt"

	errorsmod "cosmossdk.io/errors"
	ics23 "github.com/confio/ics23/go"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/gogo/protobuf/proto"

	"github.com/cosmos/ibc-lightcore/modules/core/exported"
)

// Supported proof spec names.
const (
	SpecIAVL       = "iavl"
	SpecTendermint = "tendermint"
)

var _ exported.Path = (*MerklePath)(nil)

// MerklePath is the path used to verify commitment proofs, which can be an
// arbitrary structured object (defined by a commitment type).
type MerklePath struct {
	KeyPath [][]byte
}

// NewMerklePath creates a new MerklePath instance
// The keys must be passed in from root-to-leaf order
func NewMerklePath(keyPath ...[]byte) MerklePath {
	return MerklePath{
		KeyPath: keyPath,
	}
}

// GetKey will return a byte representation of the key
func (mp MerklePath) GetKey(i uint64) ([]byte, error) {
	if i >= uint64(len(mp.KeyPath)) {
		return nil, fmt.Errorf("index out of range. %d (index) >= %d (len)", i, len(mp.KeyPath))
	}
	return mp.KeyPath[i], nil
}

// Empty returns true if the path is empty
func (mp MerklePath) Empty() bool {
	return len(mp.KeyPath) == 0
}

// Segments returns the keys of the path in root-to-leaf order.
func (mp MerklePath) Segments() [][]byte {
	return mp.KeyPath
}

// ValidateAsPath validates the MerklePath as a fully constructed path.
// Every element must be non-empty.
func (mp MerklePath) ValidateAsPath() error {
	if mp.Empty() {
		return errorsmod.Wrap(ErrInvalidPrefix, "path cannot have length 0")
	}

	for i, key := range mp.KeyPath {
		if len(key) == 0 {
			return errorsmod.Wrapf(ErrInvalidPrefix, "key at index %d cannot be empty", i)
		}
	}
	return nil
}

// GetProofSpec returns the ics23 proof spec registered under name.
func GetProofSpec(name string) (*ics23.ProofSpec, error) {
	switch name {
	case SpecIAVL:
		return ics23.IavlSpec, nil
	case SpecTendermint:
		return ics23.TendermintSpec, nil
	default:
		return nil, errorsmod.Wrapf(ErrInvalidProofSpec, "unknown proof spec %q", name)
	}
}

// MerkleProof is a chain of ics23 commitment proofs, ordered leaf-to-root.
// Proofs[0] proves the last key of the path against the root of the innermost
// store, and every following proof proves the previous subroot one level up.
type MerkleProof struct {
	Proofs []*ics23.CommitmentProof
}

// merkleProofRecord is the wire form of a MerkleProof.
type merkleProofRecord struct {
	Proofs [][]byte
}

// Marshal encodes the proof as an RLP list of protobuf encoded commitment proofs.
func (proof MerkleProof) Marshal() ([]byte, error) {
	record := merkleProofRecord{Proofs: make([][]byte, len(proof.Proofs))}
	for i, p := range proof.Proofs {
		bz, err := proto.Marshal(p)
		if err != nil {
			return nil, err
		}
		record.Proofs[i] = bz
	}
	return rlp.EncodeToBytes(record)
}

// UnmarshalMerkleProof decodes a MerkleProof encoded with Marshal.
func UnmarshalMerkleProof(bz []byte) (MerkleProof, error) {
	var record merkleProofRecord
	if err := rlp.DecodeBytes(bz, &record); err != nil {
		return MerkleProof{}, errorsmod.Wrapf(ErrInvalidProof, "failed to decode merkle proof: %v", err)
	}

	proof := MerkleProof{Proofs: make([]*ics23.CommitmentProof, len(record.Proofs))}
	for i, pbz := range record.Proofs {
		var commitmentProof ics23.CommitmentProof
		if err := proto.Unmarshal(pbz, &commitmentProof); err != nil {
			return MerkleProof{}, errorsmod.Wrapf(ErrInvalidProof, "failed to decode commitment proof %d: %v", i, err)
		}
		proof.Proofs[i] = &commitmentProof
	}

	return proof, proof.ValidateBasic()
}

// ValidateBasic checks that the proof is non-empty and that no proof is nil.
func (proof MerkleProof) ValidateBasic() error {
	if len(proof.Proofs) == 0 {
		return errorsmod.Wrap(ErrInvalidMerkleProof, "proof cannot be empty")
	}
	for i, p := range proof.Proofs {
		if p == nil || p.GetProof() == nil {
			return errorsmod.Wrapf(ErrInvalidMerkleProof, "proof at index %d cannot be empty", i)
		}
	}
	return nil
}

// VerifyMembership verifies the membership of a merkle proof against the given root, path, and value.
func (proof MerkleProof) VerifyMembership(specs []*ics23.ProofSpec, root []byte, path MerklePath, value []byte) error {
	if err := proof.ValidateBasic(); err != nil {
		return err
	}
	if err := path.ValidateAsPath(); err != nil {
		return err
	}
	if len(root) == 0 {
		return errorsmod.Wrap(ErrInvalidProof, "root cannot be empty")
	}
	if len(value) == 0 {
		return errorsmod.Wrap(ErrInvalidProof, "value cannot be empty")
	}
	if len(specs) != len(proof.Proofs) {
		return errorsmod.Wrapf(ErrInvalidMerkleProof,
			"length of specs: %d not equal to length of proof: %d", len(specs), len(proof.Proofs))
	}
	if len(path.KeyPath) != len(proof.Proofs) {
		return errorsmod.Wrapf(ErrInvalidProof,
			"path length %d not same as proof %d", len(path.KeyPath), len(proof.Proofs))
	}

	return verifyChainedMembershipProof(root, specs, proof.Proofs, path, value)
}

// verifyChainedMembershipProof takes a list of proofs and specs and verifies each proof sequentially ensuring that the value is committed to
// by first proof and each subsequent subroot is committed to by the next subroot and checking that the final calculated root is equal to the given roothash.
func verifyChainedMembershipProof(root []byte, specs []*ics23.ProofSpec, proofs []*ics23.CommitmentProof, keys MerklePath, value []byte) error {
	subroot := value
	for i := 0; i < len(proofs); i++ {
		if _, ok := proofs[i].GetProof().(*ics23.CommitmentProof_Exist); !ok {
			return errorsmod.Wrapf(ErrInvalidProof,
				"expected proof type: %T, got: %T", &ics23.CommitmentProof_Exist{}, proofs[i].GetProof())
		}

		var err error
		subroot, err = proofs[i].Calculate()
		if err != nil {
			return errorsmod.Wrapf(ErrInvalidProof, "could not calculate proof root at index %d: %v", i, err)
		}

		key, err := keys.GetKey(uint64(len(keys.KeyPath) - 1 - i))
		if err != nil {
			return errorsmod.Wrapf(ErrInvalidProof, "could not retrieve key bytes for key %s: %v", keys.KeyPath[len(keys.KeyPath)-1-i], err)
		}

		if ok := ics23.VerifyMembership(specs[i], subroot, proofs[i], key, value); !ok {
			return errorsmod.Wrapf(ErrInvalidProof,
				"chained membership proof failed to verify membership of value: %X in subroot %X at index %d",
				value, subroot, i)
		}
		value = subroot
	}

	if !bytes.Equal(root, subroot) {
		return errorsmod.Wrapf(ErrInvalidProof,
			"proof did not commit to expected root: %X, got: %X. Please ensure proof was submitted with correct proofHeight and to the correct chain.",
			root, subroot)
	}
	return nil
}
