package tendermint_test

import (
	"time"

	tmtypes "github.com/tendermint/tendermint/types"

	clienttypes "github.com/cosmos/ibc-lightcore/modules/core/02-client/types"
	"github.com/cosmos/ibc-lightcore/modules/core/exported"
	ibctm "github.com/cosmos/ibc-lightcore/modules/light-clients/07-tendermint"
	ibctesting "github.com/cosmos/ibc-lightcore/testing"
)

func (s *TendermintTestSuite) TestUpdateState() {
	var (
		clientMsg []byte
		expHeight uint64
	)

	// Setup different validators and signers for testing different types of updates
	altVals, altSigners := ibctesting.GenerateValidatorSet(s.T(), 1)

	testCases := []struct {
		name      string
		malleate  func()
		expNoOp   bool
		expErr    error
		expFrozen bool
	}{
		{
			"success: adjacent header",
			func() {},
			false,
			nil,
			false,
		},
		{
			"success: non-adjacent header",
			func() {
				expHeight = initialHeight + 5
				clientMsg = s.header(expHeight, initialHeight, 50*time.Second)
			},
			false,
			nil,
			false,
		},
		{
			"success: identical header is a no-op",
			func() {
				s.update(initialHeight+1, initialHeight, 10*time.Second)
			},
			true,
			nil,
			false,
		},
		{
			"success: fills a gap between stored heights",
			func() {
				s.update(initialHeight+5, initialHeight, 50*time.Second)
			},
			false,
			nil,
			false,
		},
		{
			"success: header trusting a later consensus state",
			func() {
				s.update(initialHeight+1, initialHeight, 10*time.Second)
				expHeight = initialHeight + 2
				clientMsg = s.header(expHeight, initialHeight+1, 20*time.Second)
			},
			false,
			nil,
			false,
		},
		{
			"failure: trusted consensus state not found",
			func() {
				clientMsg = s.header(initialHeight+2, initialHeight+1, 10*time.Second)
			},
			false,
			clienttypes.ErrConsensusStateNotFound,
			false,
		},
		{
			"failure: trusted validators do not hash to the trusted next validators hash",
			func() {
				header := s.chain.CreateTMClientHeader(chainID, int64(initialHeight+1), initialHeight, ibctesting.DefaultTime.Add(10*time.Second), s.chain.Vals, s.chain.Vals, altVals, s.chain.Signers)
				clientMsg = ibctesting.MarshalHeader(s.T(), header)
			},
			false,
			ibctm.ErrInvalidValidatorSet,
			false,
		},
		{
			"failure: adjacent header signed by an untrusted validator set",
			func() {
				header := s.chain.CreateTMClientHeader(chainID, int64(initialHeight+1), initialHeight, ibctesting.DefaultTime.Add(10*time.Second), altVals, altVals, s.chain.Vals, altSigners)
				clientMsg = ibctesting.MarshalHeader(s.T(), header)
			},
			false,
			ibctm.ErrHeaderVerificationFailed,
			false,
		},
		{
			"failure: non-adjacent header with too much change in the validator set",
			func() {
				header := s.chain.CreateTMClientHeader(chainID, int64(initialHeight+5), initialHeight, ibctesting.DefaultTime.Add(10*time.Second), altVals, altVals, s.chain.Vals, altSigners)
				clientMsg = ibctesting.MarshalHeader(s.T(), header)
			},
			false,
			ibctm.ErrHeaderVerificationFailed,
			false,
		},
		{
			"failure: header with incorrect chain-id",
			func() {
				header := s.chain.CreateTMClientHeader("osmosis", int64(initialHeight+1), initialHeight, ibctesting.DefaultTime.Add(10*time.Second), s.chain.Vals, s.chain.Vals, s.chain.Vals, s.chain.Signers)
				clientMsg = ibctesting.MarshalHeader(s.T(), header)
			},
			false,
			ibctm.ErrHeaderVerificationFailed,
			false,
		},
		{
			"failure: trusting period has passed since the trusted consensus state",
			func() {
				s.now = ibctesting.DefaultTime.Add(ibctesting.TrustingPeriod).Add(time.Hour)
				clientMsg = s.header(initialHeight+1, initialHeight, ibctesting.TrustingPeriod+time.Minute)
			},
			false,
			ibctm.ErrHeaderVerificationFailed,
			false,
		},
		{
			"failure: header time is past the max clock drift",
			func() {
				clientMsg = s.header(initialHeight+1, initialHeight, 2*time.Hour)
			},
			false,
			ibctm.ErrHeaderVerificationFailed,
			false,
		},
		{
			"failure: malformed header",
			func() {
				clientMsg = []byte("header")
			},
			false,
			clienttypes.ErrInvalidHeader,
			false,
		},
		{
			"failure: header height is not greater than the trusted height",
			func() {
				clientMsg = s.header(initialHeight, initialHeight, 10*time.Second)
			},
			false,
			clienttypes.ErrInvalidHeader,
			false,
		},
		{
			"failure: commit height does not match header height",
			func() {
				header := s.chain.UpdateHeader(int64(initialHeight+1), initialHeight, ibctesting.DefaultTime.Add(10*time.Second))
				header.SignedHeader.Commit.Height--
				clientMsg = ibctesting.MarshalHeader(s.T(), header)
			},
			false,
			clienttypes.ErrInvalidHeader,
			false,
		},
		{
			"failure: header time equal to the trusted time freezes the client",
			func() {
				clientMsg = s.header(initialHeight+1, initialHeight, 0)
			},
			false,
			clienttypes.ErrNonIncreasingTime,
			true,
		},
		{
			"failure: header time before the trusted time from an untrusted validator set does not freeze",
			func() {
				header := s.chain.CreateTMClientHeader(chainID, int64(initialHeight+5), initialHeight, ibctesting.DefaultTime.Add(-time.Second), altVals, altVals, s.chain.Vals, altSigners)
				clientMsg = ibctesting.MarshalHeader(s.T(), header)
			},
			false,
			ibctm.ErrHeaderVerificationFailed,
			false,
		},
		{
			"failure: header time not before the next stored consensus state freezes the client",
			func() {
				s.update(initialHeight+5, initialHeight, 50*time.Second)
				clientMsg = s.header(initialHeight+3, initialHeight, 60*time.Second)
			},
			false,
			clienttypes.ErrNonIncreasingTime,
			true,
		},
		{
			"failure: conflicting consensus state freezes the client",
			func() {
				s.update(initialHeight+1, initialHeight, 10*time.Second)
				clientMsg = s.header(initialHeight+1, initialHeight, 20*time.Second)
			},
			false,
			clienttypes.ErrConflictingState,
			true,
		},
		{
			"failure: client frozen",
			func() {
				_, err := s.lightClientModule.UpdateState(s.now, clientID, s.header(initialHeight+1, initialHeight, 0))
				s.Require().ErrorIs(err, clienttypes.ErrNonIncreasingTime)
			},
			false,
			clienttypes.ErrClientFrozen,
			true,
		},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			s.SetupTest()
			s.initialize()

			expHeight = initialHeight + 1
			clientMsg = s.header(expHeight, initialHeight, 10*time.Second)

			tc.malleate()

			result, err := s.lightClientModule.UpdateState(s.now, clientID, clientMsg)
			if tc.expErr == nil {
				s.Require().NoError(err)
				s.Require().Equal(expHeight, result.Height)
				s.Require().Equal(tc.expNoOp, result.NoOp)

				_, err := s.lightClientModule.TimestampAtHeight(clientID, expHeight)
				s.Require().NoError(err)
			} else {
				s.Require().ErrorIs(err, tc.expErr)
			}

			if tc.expFrozen {
				s.Require().Equal(exported.Frozen, s.lightClientModule.Status(s.now, clientID))
			} else {
				s.Require().NotEqual(exported.Frozen, s.lightClientModule.Status(s.now, clientID))
			}
		})
	}
}

func (s *TendermintTestSuite) TestUpdateStateNonIncreasingTimeScenario() {
	s.initialize()

	// T+10 at height 101 is accepted
	s.update(initialHeight+1, initialHeight, 10*time.Second)
	s.Require().Equal(initialHeight+1, s.lightClientModule.LatestHeight(clientID))

	// T+5 at height 102 goes back in time
	_, err := s.lightClientModule.UpdateState(s.now, clientID, s.header(initialHeight+2, initialHeight+1, 5*time.Second))
	s.Require().ErrorIs(err, clienttypes.ErrNonIncreasingTime)
	s.Require().Equal(exported.Frozen, s.lightClientModule.Status(s.now, clientID))

	_, err = s.lightClientModule.TimestampAtHeight(clientID, initialHeight+2)
	s.Require().ErrorIs(err, clienttypes.ErrConsensusStateNotFound, "misbehaving state must not be stored")

	// a valid later header is rejected once the client is frozen
	_, err = s.lightClientModule.UpdateState(s.now, clientID, s.header(initialHeight+3, initialHeight+1, 20*time.Second))
	s.Require().ErrorIs(err, clienttypes.ErrClientFrozen)
	s.Require().Equal(initialHeight+1, s.lightClientModule.LatestHeight(clientID))
}

func (s *TendermintTestSuite) TestUpdateStateLatestHeight() {
	s.initialize()

	s.update(initialHeight+5, initialHeight, 50*time.Second)
	s.update(initialHeight+2, initialHeight, 20*time.Second)

	s.Require().Equal(initialHeight+5, s.lightClientModule.LatestHeight(clientID))

	timestamp, err := s.lightClientModule.TimestampAtHeight(clientID, initialHeight+2)
	s.Require().NoError(err)
	s.Require().Equal(uint64(ibctesting.DefaultTime.Add(20*time.Second).UnixNano()), timestamp)
}

func (s *TendermintTestSuite) TestUpdateStateWithValidatorSetChange() {
	s.initialize()

	// the next validator set adds a validator, signed by both sets
	newVal, newSigners := ibctesting.GenerateValidatorSet(s.T(), 1)
	_, val := newVal.GetByIndex(0)
	bothVals := tmtypes.NewValidatorSet(append(s.chain.Vals.Copy().Validators, val))
	bothSigners := make(map[string]tmtypes.PrivValidator)
	for addr, signer := range s.chain.Signers {
		bothSigners[addr] = signer
	}
	for addr, signer := range newSigners {
		bothSigners[addr] = signer
	}

	// header 101 announces the new set as next validators
	header := s.chain.CreateTMClientHeader(chainID, int64(initialHeight+1), initialHeight, ibctesting.DefaultTime.Add(10*time.Second), s.chain.Vals, bothVals, s.chain.Vals, s.chain.Signers)
	_, err := s.lightClientModule.UpdateState(s.now, clientID, ibctesting.MarshalHeader(s.T(), header))
	s.Require().NoError(err)

	// header 102 is signed by the new set and trusts 101
	header = s.chain.CreateTMClientHeader(chainID, int64(initialHeight+2), initialHeight+1, ibctesting.DefaultTime.Add(20*time.Second), bothVals, bothVals, bothVals, bothSigners)
	result, err := s.lightClientModule.UpdateState(s.now, clientID, ibctesting.MarshalHeader(s.T(), header))
	s.Require().NoError(err)
	s.Require().Equal(initialHeight+2, result.Height)
}

func (s *TendermintTestSuite) TestPruneConsensusStates() {
	s.initialize()

	// max consensus states is 10, so two extra updates make the two lowest prunable
	for i := uint64(1); i <= 11; i++ {
		s.update(initialHeight+i, initialHeight, time.Duration(i)*time.Second)
	}

	pruned, err := s.lightClientModule.PruneConsensusStates(clientID)
	s.Require().NoError(err)
	s.Require().Equal(2, pruned)

	_, err = s.lightClientModule.TimestampAtHeight(clientID, initialHeight+1)
	s.Require().ErrorIs(err, clienttypes.ErrConsensusStateNotFound)
	_, err = s.lightClientModule.TimestampAtHeight(clientID, initialHeight+2)
	s.Require().NoError(err)

	// the pruned trusted state can no longer anchor updates
	_, err = s.lightClientModule.UpdateState(s.now, clientID, s.header(initialHeight+12, initialHeight, 12*time.Second))
	s.Require().ErrorIs(err, clienttypes.ErrConsensusStateNotFound)

	s.update(initialHeight+12, initialHeight+11, 12*time.Second)
}
