package tendermint_test

import (
	"time"

	"pgregory.net/rapid"

	ibctm "github.com/cosmos/ibc-lightcore/modules/light-clients/07-tendermint"
	ibctesting "github.com/cosmos/ibc-lightcore/testing"
)

func (s *TendermintTestSuite) TestStoreValidatorSet() {
	raw, err := ibctm.EncodeValidatorSet(s.chain.Vals)
	s.Require().NoError(err)

	key, aggregateHash, err := s.lightClientModule.StoreValidatorSet("relayer", raw)
	s.Require().NoError(err)
	s.Require().Equal(ibctm.ValidatorSetCacheKey("relayer", raw), key)

	expHash, err := ibctm.AggregateHash(s.chain.Vals)
	s.Require().NoError(err)
	s.Require().Equal(expHash, aggregateHash)

	// storing again returns the cached record
	key2, aggregateHash2, err := s.lightClientModule.StoreValidatorSet("relayer", raw)
	s.Require().NoError(err)
	s.Require().Equal(key, key2)
	s.Require().Equal(aggregateHash, aggregateHash2)

	// the key is salted by the submitter, the aggregate hash is not
	key3, aggregateHash3, err := s.lightClientModule.StoreValidatorSet("other-relayer", raw)
	s.Require().NoError(err)
	s.Require().NotEqual(key, key3)
	s.Require().Equal(aggregateHash, aggregateHash3)

	s.Require().NoError(s.lightClientModule.PruneValidatorSet(key))
	s.Require().ErrorIs(s.lightClientModule.PruneValidatorSet(key), ibctm.ErrValidatorSetNotFound)
	s.Require().NoError(s.lightClientModule.PruneValidatorSet(key3))
}

func (s *TendermintTestSuite) TestStoreValidatorSetInvalid() {
	raw, err := ibctm.EncodeValidatorSet(s.chain.Vals)
	s.Require().NoError(err)

	testCases := []struct {
		name      string
		submitter string
		raw       []byte
		expErr    error
	}{
		{"blank submitter", " ", raw, ibctm.ErrInvalidSubmitter},
		{"empty validator set", "relayer", nil, ibctm.ErrInvalidValidatorSet},
		{"garbage validator set", "relayer", []byte("validators"), ibctm.ErrInvalidValidatorSet},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			_, _, err := s.lightClientModule.StoreValidatorSet(tc.submitter, tc.raw)
			s.Require().ErrorIs(err, tc.expErr)
		})
	}
}

func (s *TendermintTestSuite) TestAggregateHashDeterministic() {
	sets := make([][]byte, 4)
	for i := range sets {
		vals, _ := ibctesting.GenerateValidatorSet(s.T(), i+1)
		raw, err := ibctm.EncodeValidatorSet(vals)
		s.Require().NoError(err)
		sets[i] = raw
	}

	rapid.Check(s.T(), func(t *rapid.T) {
		raw := rapid.SampledFrom(sets).Draw(t, "validatorSet")
		submitter := rapid.StringMatching(`[a-z]{1,12}`).Draw(t, "submitter")
		repeats := rapid.IntRange(1, 3).Draw(t, "repeats")

		valSet, err := ibctm.DecodeValidatorSet(raw)
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		expHash, err := ibctm.AggregateHash(valSet)
		if err != nil {
			t.Fatalf("aggregate hash: %v", err)
		}

		for i := 0; i < repeats; i++ {
			key, aggregateHash, err := s.lightClientModule.StoreValidatorSet(submitter, raw)
			if err != nil {
				t.Fatalf("store: %v", err)
			}
			if string(key) != string(ibctm.ValidatorSetCacheKey(submitter, raw)) {
				t.Fatalf("unexpected key %X", key)
			}
			if string(aggregateHash) != string(expHash) {
				t.Fatalf("aggregate hash %X differs from %X", aggregateHash, expHash)
			}
		}
	})
}

func (s *TendermintTestSuite) TestUpdateStateWithCachedValidatorSets() {
	s.initialize()

	raw, err := ibctm.EncodeValidatorSet(s.chain.Vals)
	s.Require().NoError(err)
	key, _, err := s.lightClientModule.StoreValidatorSet("relayer", raw)
	s.Require().NoError(err)

	header := s.chain.UpdateHeader(int64(initialHeight+1), initialHeight, ibctesting.DefaultTime.Add(10*time.Second))
	header.ValidatorSetKey = key
	header.TrustedValidatorSetKey = key

	inline := ibctesting.MarshalHeader(s.T(), s.chain.UpdateHeader(int64(initialHeight+1), initialHeight, ibctesting.DefaultTime.Add(10*time.Second)))
	referenced := ibctesting.MarshalHeader(s.T(), header)
	s.Require().Less(len(referenced), len(inline))

	result, err := s.lightClientModule.UpdateState(s.now, clientID, referenced)
	s.Require().NoError(err)
	s.Require().Equal(initialHeight+1, result.Height)

	// a pruned validator set can no longer be referenced
	s.Require().NoError(s.lightClientModule.PruneValidatorSet(key))

	header = s.chain.UpdateHeader(int64(initialHeight+2), initialHeight+1, ibctesting.DefaultTime.Add(20*time.Second))
	header.TrustedValidatorSetKey = key
	_, err = s.lightClientModule.UpdateState(s.now, clientID, ibctesting.MarshalHeader(s.T(), header))
	s.Require().ErrorIs(err, ibctm.ErrValidatorSetNotFound)

	header.TrustedValidatorSetKey = nil
	result, err = s.lightClientModule.UpdateState(s.now, clientID, ibctesting.MarshalHeader(s.T(), header))
	s.Require().NoError(err)
	s.Require().Equal(initialHeight+2, result.Height)
}
