package types_test

import (
	"time"

	dbm "github.com/tendermint/tm-db"

	"github.com/cosmos/ibc-lightcore/modules/core/02-client/types"
	"github.com/cosmos/ibc-lightcore/modules/core/exported"
)

type stubModule struct {
	storeProvider exported.ClientStoreProvider
}

func (m *stubModule) RegisterStoreProvider(storeProvider exported.ClientStoreProvider) {
	m.storeProvider = storeProvider
}

func (*stubModule) Initialize(string, []byte, []byte) error { return nil }

func (*stubModule) UpdateState(time.Time, string, []byte) (exported.UpdateResult, error) {
	return exported.UpdateResult{}, nil
}

func (*stubModule) VerifyMembership(time.Time, string, uint64, exported.Path, []byte, []byte) error {
	return nil
}

func (*stubModule) Status(time.Time, string) exported.Status { return exported.Active }

func (*stubModule) LatestHeight(string) uint64 { return 0 }

func (*stubModule) TimestampAtHeight(string, uint64) (uint64, error) { return 0, nil }

func (*stubModule) PruneConsensusStates(string) (int, error) { return 0, nil }

func (suite *TypesTestSuite) TestAddRoute() {
	router := types.NewRouter(dbm.NewMemDB())
	module := &stubModule{}

	router.AddRoute(exported.Tendermint, module)
	suite.Require().True(router.HasRoute(exported.Tendermint))
	suite.Require().NotNil(module.storeProvider)

	suite.Require().Panics(func() {
		router.AddRoute(exported.Tendermint, &stubModule{})
	})
	suite.Require().Panics(func() {
		router.AddRoute(" ", &stubModule{})
	})
}

func (suite *TypesTestSuite) TestGetRoute() {
	router := types.NewRouter(dbm.NewMemDB())
	router.AddRoute(exported.Attestations, &stubModule{})

	testCases := []struct {
		name     string
		clientID string
		expFound bool
	}{
		{"success", "10-attestations-0", true},
		{"failure: unregistered client type", "07-tendermint-0", false},
		{"failure: invalid client identifier", "10-attestations", false},
		{"failure: identifier with separator", "10-attestations/0-1", false},
	}

	for _, tc := range testCases {
		suite.Run(tc.name, func() {
			_, found := router.GetRoute(tc.clientID)
			suite.Require().Equal(tc.expFound, found)
		})
	}
}

func (suite *TypesTestSuite) TestGetModule() {
	router := types.NewRouter(dbm.NewMemDB())
	module := &stubModule{}
	router.AddRoute(exported.Attestations, module)

	found, ok := router.GetModule(exported.Attestations)
	suite.Require().True(ok)
	suite.Require().Same(module, found)

	_, ok = router.GetModule(exported.Tendermint)
	suite.Require().False(ok)
}

func (suite *TypesTestSuite) TestClientStoreIsolation() {
	db := dbm.NewMemDB()
	provider := types.NewStoreProvider(db)

	suite.Require().NoError(provider.ClientStore("07-tendermint-0").Set([]byte("key"), []byte("a")))
	suite.Require().NoError(provider.ClientStore("07-tendermint-1").Set([]byte("key"), []byte("b")))

	bz, err := provider.ClientStore("07-tendermint-0").Get([]byte("key"))
	suite.Require().NoError(err)
	suite.Require().Equal([]byte("a"), bz)

	bz, err = db.Get([]byte("clients/07-tendermint-1/key"))
	suite.Require().NoError(err)
	suite.Require().Equal([]byte("b"), bz)
}

func (suite *TypesTestSuite) TestParseClientIdentifier() {
	clientType, sequence, err := types.ParseClientIdentifier(types.FormatClientIdentifier(exported.Tendermint, 12))
	suite.Require().NoError(err)
	suite.Require().Equal(exported.Tendermint, clientType)
	suite.Require().Equal(uint64(12), sequence)

	_, _, err = types.ParseClientIdentifier("-1")
	suite.Require().ErrorIs(err, types.ErrInvalidClientIdentifier)

	_, _, err = types.ParseClientIdentifier("tendermint")
	suite.Require().ErrorIs(err, types.ErrInvalidClientIdentifier)
}
