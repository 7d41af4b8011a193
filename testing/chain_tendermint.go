package ibctesting

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/tendermint/tendermint/crypto/tmhash"
	tmproto "github.com/tendermint/tendermint/proto/tendermint/types"
	tmprotoversion "github.com/tendermint/tendermint/proto/tendermint/version"
	tmtypes "github.com/tendermint/tendermint/types"
	tmversion "github.com/tendermint/tendermint/version"

	clienttypes "github.com/cosmos/ibc-lightcore/modules/core/02-client/types"
	ibctm "github.com/cosmos/ibc-lightcore/modules/light-clients/07-tendermint"
)

// TestChainTendermint is a counterparty chain which produces signed tendermint
// headers for a 07-tendermint client. It holds no application state: the app
// hash of every header is derived from its height and time.
type TestChainTendermint struct {
	TB      testing.TB
	ChainID string

	Vals    *tmtypes.ValidatorSet
	Signers map[string]tmtypes.PrivValidator
}

// NewTestChainTendermint creates a chain with numVals validators of equal power.
func NewTestChainTendermint(tb testing.TB, chainID string, numVals int) *TestChainTendermint {
	tb.Helper()

	vals, signers := GenerateValidatorSet(tb, numVals)
	return &TestChainTendermint{
		TB:      tb,
		ChainID: chainID,
		Vals:    vals,
		Signers: signers,
	}
}

// GenerateValidatorSet creates a validator set of n mock validators and the
// signers keyed by validator address.
func GenerateValidatorSet(tb testing.TB, n int) (*tmtypes.ValidatorSet, map[string]tmtypes.PrivValidator) {
	tb.Helper()

	validators := make([]*tmtypes.Validator, n)
	signers := make(map[string]tmtypes.PrivValidator, n)
	for i := range validators {
		privVal := tmtypes.NewMockPV()
		pubKey, err := privVal.GetPubKey()
		require.NoError(tb, err)

		validators[i] = tmtypes.NewValidator(pubKey, DefaultValidatorPower)
		signers[pubKey.Address().String()] = privVal
	}

	return tmtypes.NewValidatorSet(validators), signers
}

// ClientState returns an encoded 07-tendermint client state trusting the chain at latestHeight.
func (chain *TestChainTendermint) ClientState(cfg *TendermintConfig, latestHeight uint64) []byte {
	return clienttypes.MustMarshal(ibctm.NewClientState(
		chain.ChainID, cfg.TrustLevel, cfg.TrustingPeriod, cfg.UnbondingPeriod, cfg.MaxClockDrift,
		latestHeight, cfg.ProofSpecs, cfg.MaxConsensusStates,
	))
}

// ConsensusState returns the encoded consensus state of a header produced at
// height and timestamp by the current validator set.
func (chain *TestChainTendermint) ConsensusState(height int64, timestamp time.Time) []byte {
	return clienttypes.MustMarshal(ibctm.NewConsensusState(timestamp, AppHash(height, timestamp), chain.Vals.Hash()))
}

// UpdateHeader returns a header at height signed by the chain's current
// validator set, trusting the consensus state stored at trustedHeight.
func (chain *TestChainTendermint) UpdateHeader(height int64, trustedHeight uint64, timestamp time.Time) *ibctm.Header {
	return chain.CreateTMClientHeader(chain.ChainID, height, trustedHeight, timestamp, chain.Vals, chain.Vals, chain.Vals, chain.Signers)
}

// CreateTMClientHeader creates a TM header to update the TM client. Args are passed in to allow
// caller flexibility to use params that differ from the chain.
func (chain *TestChainTendermint) CreateTMClientHeader(
	chainID string, blockHeight int64, trustedHeight uint64, timestamp time.Time,
	tmValSet, nextVals, tmTrustedVals *tmtypes.ValidatorSet, signers map[string]tmtypes.PrivValidator,
) *ibctm.Header {
	require.NotNil(chain.TB, tmValSet)

	tmHeader := tmtypes.Header{
		Version:            tmprotoversion.Consensus{Block: tmversion.BlockProtocol, App: 2},
		ChainID:            chainID,
		Height:             blockHeight,
		Time:               timestamp,
		LastBlockID:        MakeBlockID(make([]byte, tmhash.Size), 10_000, make([]byte, tmhash.Size)),
		LastCommitHash:     tmhash.Sum([]byte("last_commit_hash")),
		DataHash:           tmhash.Sum([]byte("data_hash")),
		ValidatorsHash:     tmValSet.Hash(),
		NextValidatorsHash: nextVals.Hash(),
		ConsensusHash:      tmhash.Sum([]byte("consensus_hash")),
		AppHash:            AppHash(blockHeight, timestamp),
		LastResultsHash:    tmhash.Sum([]byte("last_results_hash")),
		EvidenceHash:       tmhash.Sum([]byte("evidence_hash")),
		ProposerAddress:    tmValSet.Proposer.Address,
	}

	hhash := tmHeader.Hash()
	blockID := MakeBlockID(hhash, 3, tmhash.Sum([]byte("part_set")))
	voteSet := tmtypes.NewVoteSet(chainID, blockHeight, 1, tmproto.PrecommitType, tmValSet)

	commit, err := tmtypes.MakeCommit(blockID, blockHeight, 1, voteSet, SignerArray(chain.TB, tmValSet, signers), timestamp)
	require.NoError(chain.TB, err)

	return &ibctm.Header{
		SignedHeader: &tmtypes.SignedHeader{
			Header: &tmHeader,
			Commit: commit,
		},
		ValidatorSet:      tmValSet,
		TrustedHeight:     trustedHeight,
		TrustedValidators: tmTrustedVals,
	}
}

// SignerArray returns the signers ordered as the validators of valSet, which
// is the order expected by tmtypes.MakeCommit.
func SignerArray(tb testing.TB, valSet *tmtypes.ValidatorSet, signers map[string]tmtypes.PrivValidator) []tmtypes.PrivValidator {
	tb.Helper()

	ordered := make([]tmtypes.PrivValidator, len(valSet.Validators))
	for i, val := range valSet.Validators {
		signer, ok := signers[val.Address.String()]
		require.True(tb, ok, "missing signer for validator %s", val.Address)
		ordered[i] = signer
	}
	return ordered
}

// MakeBlockID copied unimported test functions from tmtypes to use them here
func MakeBlockID(hash []byte, partSetSize uint32, partSetHash []byte) tmtypes.BlockID {
	return tmtypes.BlockID{
		Hash: hash,
		PartSetHeader: tmtypes.PartSetHeader{
			Total: partSetSize,
			Hash:  partSetHash,
		},
	}
}

// AppHash returns the app hash of test chain headers at height and timestamp.
func AppHash(height int64, timestamp time.Time) []byte {
	return tmhash.Sum([]byte(fmt.Sprintf("app_hash/%d/%d", height, timestamp.UnixNano())))
}

// MarshalHeader encodes header and fails the test on error.
func MarshalHeader(tb testing.TB, header *ibctm.Header) []byte {
	tb.Helper()

	bz, err := header.Marshal()
	require.NoError(tb, err)
	return bz
}
