/*
This file contains the variables, constants, and default values
used in the testing package and commonly defined in tests.
*/
package ibctesting

import (
	"time"

	"github.com/tendermint/tendermint/crypto/tmhash"

	commitmenttypes "github.com/cosmos/ibc-lightcore/modules/core/23-commitment/types"
	ibctm "github.com/cosmos/ibc-lightcore/modules/light-clients/07-tendermint"
)

const (
	// Default params constants used to create a TM client
	TrustingPeriod  time.Duration = time.Hour * 24 * 7 * 2
	UnbondingPeriod time.Duration = time.Hour * 24 * 7 * 3
	MaxClockDrift   time.Duration = time.Second * 10

	// MaxConsensusStates is the default retention of test clients
	MaxConsensusStates uint64 = 10

	// DefaultMinRequiredSigs is the attestation threshold of test clients
	DefaultMinRequiredSigs uint32 = 2

	// DefaultValidatorPower is the voting power of every generated validator
	DefaultValidatorPower int64 = 10
)

var (
	DefaultTrustLevel = ibctm.DefaultTrustLevel

	// DefaultProofSpecs are the proof specs of a Cosmos SDK chain: an IAVL store
	// committed to by the tendermint app hash.
	DefaultProofSpecs = []string{commitmenttypes.SpecIAVL, commitmenttypes.SpecTendermint}

	// DefaultTime is the timestamp of the first header produced by test chains.
	DefaultTime = time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC)

	MockCommitment = tmhash.Sum([]byte("mock commitment"))
)
