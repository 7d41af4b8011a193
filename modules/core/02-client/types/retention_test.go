package types_test

import (
	"github.com/cosmos/ibc-lightcore/modules/core/02-client/types"
)

func (suite *TypesTestSuite) TestRetentionValidate() {
	suite.Require().NoError(types.NewRetention(1).Validate())
	suite.Require().ErrorIs(types.NewRetention(0).Validate(), types.ErrInvalidRetentionParams)
}

func (suite *TypesTestSuite) TestRetentionWatermark() {
	retention := types.NewRetention(3)

	for height := uint64(1); height <= 5; height++ {
		suite.Require().NoError(suite.store.Set(height, encodeTimestamp(height)))
		suite.Require().NoError(retention.RecordInsert(suite.store))
	}

	suite.Require().Equal(uint64(5), retention.ConsensusStateCount)
	suite.Require().Equal(uint64(3), retention.EarliestHeight)

	// nothing is deleted until pruning is triggered
	suite.Require().Equal([]uint64{1, 2, 3, 4, 5}, suite.heights())

	pruned, err := retention.Prune(suite.store)
	suite.Require().NoError(err)
	suite.Require().Equal(2, pruned)
	suite.Require().Equal(uint64(3), retention.ConsensusStateCount)
	suite.Require().Equal([]uint64{3, 4, 5}, suite.heights())

	pruned, err = retention.Prune(suite.store)
	suite.Require().NoError(err)
	suite.Require().Zero(pruned)
}

func (suite *TypesTestSuite) TestRetentionWatermarkNeverDecreases() {
	retention := types.NewRetention(2)
	suite.setTimestamps(map[uint64]uint64{10: 1, 20: 2})
	retention.ConsensusStateCount = 2

	suite.Require().NoError(suite.store.Set(30, encodeTimestamp(3)))
	suite.Require().NoError(retention.RecordInsert(suite.store))
	suite.Require().Equal(uint64(20), retention.EarliestHeight)

	// an entry inserted below the watermark does not move it back
	suite.Require().NoError(suite.store.Set(5, encodeTimestamp(0)))
	suite.Require().NoError(retention.RecordInsert(suite.store))
	suite.Require().Equal(uint64(20), retention.EarliestHeight)

	pruned, err := retention.Prune(suite.store)
	suite.Require().NoError(err)
	suite.Require().Equal(2, pruned)
	suite.Require().Equal([]uint64{20, 30}, suite.heights())
}
