package ibctesting

import (
	"time"

	"github.com/cosmos/ibc-lightcore/modules/core/exported"
	ibctm "github.com/cosmos/ibc-lightcore/modules/light-clients/07-tendermint"
)

type ClientConfig interface {
	GetClientType() string
}

type TendermintConfig struct {
	TrustLevel         ibctm.Fraction
	TrustingPeriod     time.Duration
	UnbondingPeriod    time.Duration
	MaxClockDrift      time.Duration
	ProofSpecs         []string
	MaxConsensusStates uint64
}

func NewTendermintConfig() *TendermintConfig {
	return &TendermintConfig{
		TrustLevel:         DefaultTrustLevel,
		TrustingPeriod:     TrustingPeriod,
		UnbondingPeriod:    UnbondingPeriod,
		MaxClockDrift:      MaxClockDrift,
		ProofSpecs:         DefaultProofSpecs,
		MaxConsensusStates: MaxConsensusStates,
	}
}

func (tmcfg *TendermintConfig) GetClientType() string {
	return exported.Tendermint
}

type AttestationsConfig struct {
	MinRequiredSigs    uint32
	MaxConsensusStates uint64
}

func NewAttestationsConfig() *AttestationsConfig {
	return &AttestationsConfig{
		MinRequiredSigs:    DefaultMinRequiredSigs,
		MaxConsensusStates: MaxConsensusStates,
	}
}

func (cfg *AttestationsConfig) GetClientType() string {
	return exported.Attestations
}
