package keeper_test

import (
	"crypto/sha256"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"pgregory.net/rapid"

	"github.com/cosmos/ibc-lightcore/modules/core/02-client/keeper"
	"github.com/cosmos/ibc-lightcore/modules/core/02-client/types"
	commitmenttypes "github.com/cosmos/ibc-lightcore/modules/core/23-commitment/types"
	chunktypes "github.com/cosmos/ibc-lightcore/modules/core/chunks/types"
	"github.com/cosmos/ibc-lightcore/modules/core/exported"
	ibctm "github.com/cosmos/ibc-lightcore/modules/light-clients/07-tendermint"
	attestations "github.com/cosmos/ibc-lightcore/modules/light-clients/10-attestations"
	ibctesting "github.com/cosmos/ibc-lightcore/testing"
)

const relayer = "relayer"

func (suite *KeeperTestSuite) TestCreateClient() {
	var (
		clientType        string
		clientState       []byte
		consensusState    []byte
		expClientIDPrefix string
	)

	testCases := []struct {
		name     string
		malleate func()
		expErr   error
	}{
		{
			"success: 07-tendermint client",
			func() {},
			nil,
		},
		{
			"success: 10-attestations client",
			func() {
				clientType = exported.Attestations
				clientState = ibctesting.AttestationsClientState(ibctesting.NewAttestationsConfig(), suite.attestors, initialHeight)
				consensusState = ibctesting.AttestationsConsensusState(ibctesting.DefaultTime)
				expClientIDPrefix = exported.Attestations
			},
			nil,
		},
		{
			"failure: client type not in the allowlist",
			func() {
				suite.keeper = suite.newKeeper(keeper.WithParams(types.NewParams(exported.Attestations)))
			},
			types.ErrInvalidClientType,
		},
		{
			"failure: allowed client type without a route",
			func() {
				suite.keeper = suite.newKeeper(keeper.WithParams(types.NewParams("06-solomachine")))
				clientType = "06-solomachine"
			},
			types.ErrRouteNotFound,
		},
		{
			"failure: invalid client state",
			func() {
				cfg := ibctesting.NewTendermintConfig()
				cfg.TrustingPeriod = 0
				clientState = suite.chain.ClientState(cfg, initialHeight)
			},
			ibctm.ErrInvalidTrustingPeriod,
		},
		{
			"failure: consensus state for another client type",
			func() {
				consensusState = ibctesting.AttestationsConsensusState(ibctesting.DefaultTime)
			},
			types.ErrInvalidConsensus,
		},
		{
			"failure: attestations client without attestors",
			func() {
				clientType = exported.Attestations
				clientState = ibctesting.AttestationsClientState(ibctesting.NewAttestationsConfig(), nil, initialHeight)
				consensusState = ibctesting.AttestationsConsensusState(ibctesting.DefaultTime)
			},
			types.ErrInvalidClient,
		},
		{
			"failure: tendermint client created from an expired consensus state",
			func() {
				suite.now = ibctesting.DefaultTime.Add(ibctesting.TrustingPeriod + time.Hour)
			},
			types.ErrClientNotActive,
		},
	}

	for _, tc := range testCases {
		suite.Run(tc.name, func() {
			suite.SetupTest()

			clientType = exported.Tendermint
			clientState = suite.chain.ClientState(ibctesting.NewTendermintConfig(), initialHeight)
			consensusState = suite.chain.ConsensusState(int64(initialHeight), ibctesting.DefaultTime)
			expClientIDPrefix = exported.Tendermint

			tc.malleate()

			clientID, err := suite.keeper.CreateClient(clientType, clientState, consensusState)
			if tc.expErr == nil {
				suite.Require().NoError(err)
				suite.Require().Equal(types.FormatClientIdentifier(expClientIDPrefix, 0), clientID)
				suite.Require().Equal(exported.Active, suite.keeper.GetClientStatus(clientID))
				suite.Require().Equal(initialHeight, suite.keeper.GetClientLatestHeight(clientID))
			} else {
				suite.Require().ErrorIs(err, tc.expErr)
				suite.Require().Empty(clientID)
			}
		})
	}
}

// TestNonIncreasingTimeScenario initializes a client at height 100 and time T,
// updates it to 101 at T+10 and then submits 102 at T+5.
func (suite *KeeperTestSuite) TestNonIncreasingTimeScenario() {
	clientID := suite.createTendermintClient()

	result, err := suite.keeper.UpdateClient(clientID, suite.tendermintHeader(initialHeight+1, initialHeight, 10*time.Second))
	suite.Require().NoError(err)
	suite.Require().Equal(exported.UpdateResult{Height: initialHeight + 1}, result)

	_, err = suite.keeper.UpdateClient(clientID, suite.tendermintHeader(initialHeight+2, initialHeight+1, 5*time.Second))
	suite.Require().ErrorIs(err, types.ErrNonIncreasingTime)
	suite.Require().Equal(exported.Frozen, suite.keeper.GetClientStatus(clientID))

	_, err = suite.keeper.UpdateClient(clientID, suite.tendermintHeader(initialHeight+3, initialHeight+1, 20*time.Second))
	suite.Require().ErrorIs(err, types.ErrClientFrozen)

	// the freeze holds for every operation and across time
	suite.now = suite.now.Add(ibctesting.TrustingPeriod)
	suite.Require().Equal(exported.Frozen, suite.keeper.GetClientStatus(clientID))
	suite.Require().ErrorIs(suite.keeper.SubmitChunk(relayer, clientID, 1, 0, 1, []byte("chunk")), types.ErrClientFrozen)
	suite.Require().Equal(initialHeight+1, suite.keeper.GetClientLatestHeight(clientID))
}

func (suite *KeeperTestSuite) TestUpdateClientIdempotent() {
	clientID := suite.createTendermintClient()
	header := suite.tendermintHeader(initialHeight+1, initialHeight, 10*time.Second)

	result, err := suite.keeper.UpdateClient(clientID, header)
	suite.Require().NoError(err)
	suite.Require().False(result.NoOp)

	result, err = suite.keeper.UpdateClient(clientID, header)
	suite.Require().NoError(err)
	suite.Require().Equal(exported.UpdateResult{Height: initialHeight + 1, NoOp: true}, result)

	suite.Require().Equal(exported.Active, suite.keeper.GetClientStatus(clientID))
}

func (suite *KeeperTestSuite) TestUpdateClientConcurrent() {
	const relayers = 8

	tmClientID := suite.createTendermintClient()
	attClientID := suite.createAttestationsClient()

	header := suite.tendermintHeader(initialHeight+1, initialHeight, 10*time.Second)
	attestation := suite.stateProof(initialHeight+1, 10*time.Second, suite.attestors...)

	var updated, noOps atomic.Int32
	var g errgroup.Group
	for i := 0; i < relayers; i++ {
		for _, update := range []struct {
			clientID  string
			clientMsg []byte
		}{{tmClientID, header}, {attClientID, attestation}} {
			update := update
			g.Go(func() error {
				result, err := suite.keeper.UpdateClient(update.clientID, update.clientMsg)
				if err != nil {
					return err
				}
				if result.NoOp {
					noOps.Add(1)
				} else {
					updated.Add(1)
				}
				return nil
			})
		}
	}
	suite.Require().NoError(g.Wait())

	suite.Require().Equal(int32(2), updated.Load())
	suite.Require().Equal(int32(2*relayers-2), noOps.Load())
	suite.Require().Equal(exported.Active, suite.keeper.GetClientStatus(tmClientID))
	suite.Require().Equal(exported.Active, suite.keeper.GetClientStatus(attClientID))
}

func (suite *KeeperTestSuite) TestUpdateClientWithChunks() {
	var (
		clientID   string
		blobID     uint64
		total      uint8
		commitment []byte
	)

	testCases := []struct {
		name     string
		malleate func()
		expErr   error
		expKept  bool
	}{
		{
			"success",
			func() {},
			nil,
			false,
		},
		{
			"failure: total does not match the submitted chunks",
			func() {
				total++
			},
			chunktypes.ErrTotalChunksMismatch,
			true,
		},
		{
			"failure: commitment does not match the assembled message",
			func() {
				commitment = chunktypes.Commitment([]byte("other message"))
			},
			chunktypes.ErrCommitmentMismatch,
			true,
		},
		{
			"failure: unknown blob",
			func() {
				blobID++
			},
			chunktypes.ErrBlobNotFound,
			true,
		},
		{
			"failure: client frozen",
			func() {
				_, err := suite.keeper.UpdateClient(clientID, suite.tendermintHeader(initialHeight+1, initialHeight, 0))
				suite.Require().ErrorIs(err, types.ErrNonIncreasingTime)
			},
			types.ErrClientFrozen,
			true,
		},
	}

	for _, tc := range testCases {
		suite.Run(tc.name, func() {
			suite.SetupTest()
			clientID = suite.createTendermintClient()

			header := suite.tendermintHeader(initialHeight+1, initialHeight, 10*time.Second)
			chunks, err := chunktypes.Split(header, len(header)/3)
			suite.Require().NoError(err)

			blobID = 1
			total = uint8(len(chunks))
			commitment = chunktypes.Commitment(header)

			// chunks may arrive in any order
			for i := len(chunks) - 1; i >= 0; i-- {
				suite.Require().NoError(suite.keeper.SubmitChunk(relayer, clientID, blobID, uint8(i), total, chunks[i]))
			}

			tc.malleate()

			result, err := suite.keeper.UpdateClientWithChunks(relayer, clientID, blobID, total, commitment)
			if tc.expErr == nil {
				suite.Require().NoError(err)
				suite.Require().Equal(exported.UpdateResult{Height: initialHeight + 1}, result)

				// the blob is consumed by the update
				_, err = suite.keeper.UpdateClientWithChunks(relayer, clientID, blobID, total, commitment)
				suite.Require().ErrorIs(err, chunktypes.ErrBlobNotFound)
			} else {
				suite.Require().ErrorIs(err, tc.expErr)
			}

			hasChunks, err := suite.keeper.HasChunks(relayer, clientID, 1)
			suite.Require().NoError(err)
			suite.Require().Equal(tc.expKept, hasChunks)
		})
	}
}

func (suite *KeeperTestSuite) TestUpdateClientWithMissingChunk() {
	clientID := suite.createTendermintClient()

	header := suite.tendermintHeader(initialHeight+1, initialHeight, 10*time.Second)
	chunks, err := chunktypes.Split(header, len(header)/3)
	suite.Require().NoError(err)
	total := uint8(len(chunks))

	for i := 1; i < len(chunks); i++ {
		suite.Require().NoError(suite.keeper.SubmitChunk(relayer, clientID, 7, uint8(i), total, chunks[i]))
	}

	_, err = suite.keeper.UpdateClientWithChunks(relayer, clientID, 7, total, chunktypes.Commitment(header))
	suite.Require().ErrorIs(err, chunktypes.ErrMissingChunk)

	// submitting the missing chunk completes the blob
	suite.Require().NoError(suite.keeper.SubmitChunk(relayer, clientID, 7, 0, total, chunks[0]))
	result, err := suite.keeper.UpdateClientWithChunks(relayer, clientID, 7, total, chunktypes.Commitment(header))
	suite.Require().NoError(err)
	suite.Require().Equal(initialHeight+1, result.Height)
}

func (suite *KeeperTestSuite) TestCleanupChunks() {
	clientID := suite.createTendermintClient()

	suite.Require().NoError(suite.keeper.SubmitChunk(relayer, clientID, 1, 0, 2, []byte("first")))
	suite.Require().NoError(suite.keeper.SubmitChunk(relayer, clientID, 1, 1, 2, []byte("second")))

	// a frozen client does not prevent removing orphaned chunks
	_, err := suite.keeper.UpdateClient(clientID, suite.tendermintHeader(initialHeight+1, initialHeight, 0))
	suite.Require().ErrorIs(err, types.ErrNonIncreasingTime)

	refund, err := suite.keeper.CleanupChunks(relayer, clientID, 1)
	suite.Require().NoError(err)
	suite.Require().Equal(chunktypes.Refund{Submitter: relayer, Bytes: uint64(len("first") + len("second"))}, refund)

	_, err = suite.keeper.CleanupChunks(relayer, clientID, 1)
	suite.Require().ErrorIs(err, chunktypes.ErrBlobNotFound)
}

func (suite *KeeperTestSuite) TestSubmitChunk() {
	clientID := suite.createTendermintClient()

	suite.Require().ErrorIs(suite.keeper.SubmitChunk(relayer, "07-tendermint-9", 1, 0, 1, []byte("chunk")), types.ErrClientNotFound)
	suite.Require().ErrorIs(suite.keeper.SubmitChunk(relayer, clientID, 1, 0, 0, []byte("chunk")), chunktypes.ErrInvalidChunkCount)

	large := make([]byte, 16)
	suite.keeper = suite.newKeeper(keeper.WithChunkParams(chunktypes.Params{MaxChunkSize: 8, MaxChunks: 4}))
	suite.Require().Equal(uint64(8), suite.keeper.ChunkParams().MaxChunkSize)
	suite.Require().ErrorIs(suite.keeper.SubmitChunk(relayer, clientID, 1, 0, 1, large), chunktypes.ErrChunkTooLarge)
	suite.Require().ErrorIs(suite.keeper.SubmitChunk(relayer, clientID, 1, 0, 5, large[:8]), chunktypes.ErrInvalidChunkCount)
	suite.Require().NoError(suite.keeper.SubmitChunk(relayer, clientID, 1, 0, 4, large[:8]))
}

func (suite *KeeperTestSuite) TestVerifyAttestation() {
	clientID := suite.createAttestationsClient()
	a, b, c := suite.attestors[0], suite.attestors[1], suite.attestors[2]

	data, err := attestations.StateAttestation{Height: initialHeight, Timestamp: uint64(ibctesting.DefaultTime.UnixNano())}.Encode()
	suite.Require().NoError(err)

	testCases := []struct {
		name    string
		signers []ibctesting.Attestor
		expErr  error
	}{
		{"success: quorum", []ibctesting.Attestor{a, b}, nil},
		{"success: more signatures than required", []ibctesting.Attestor{a, b, c}, nil},
		{"failure: duplicate signer", []ibctesting.Attestor{a, a}, attestations.ErrDuplicateSigner},
		{"failure: unknown signer", []ibctesting.Attestor{a, suite.outsider}, attestations.ErrUnknownSigner},
		{"failure: unknown signer next to a quorum", []ibctesting.Attestor{a, b, suite.outsider}, attestations.ErrUnknownSigner},
		{"failure: threshold not met", []ibctesting.Attestor{a}, attestations.ErrThresholdNotMet},
		{"failure: no signatures", nil, attestations.ErrEmptySignatures},
	}

	for _, tc := range testCases {
		suite.Run(tc.name, func() {
			signatures, err := ibctesting.SignAttestation(data, tc.signers...)
			suite.Require().NoError(err)

			height, err := suite.keeper.VerifyAttestation(clientID, data, signatures)
			if tc.expErr == nil {
				suite.Require().NoError(err)
				suite.Require().Equal(initialHeight, height)
			} else {
				suite.Require().ErrorIs(err, tc.expErr)
			}
		})
	}

	tmClientID := suite.createTendermintClient()
	signatures, err := ibctesting.SignAttestation(data, a, b)
	suite.Require().NoError(err)
	_, err = suite.keeper.VerifyAttestation(tmClientID, data, signatures)
	suite.Require().ErrorIs(err, types.ErrInvalidClientType)
}

func (suite *KeeperTestSuite) TestVerifyMembership() {
	clientID := suite.createAttestationsClient()

	packet := func(path, commitment string) attestations.PacketCommitment {
		return attestations.PacketCommitment{PathHash: sha256.Sum256([]byte(path)), Commitment: sha256.Sum256([]byte(commitment))}
	}
	data, err := attestations.PacketAttestation{Height: initialHeight, Packets: []attestations.PacketCommitment{packet("p1", "c1"), packet("p2", "c2")}}.Encode()
	suite.Require().NoError(err)
	signatures, err := ibctesting.SignAttestation(data, suite.attestors[:2]...)
	suite.Require().NoError(err)
	proof, err := attestations.AttestationProof{AttestationData: data, Signatures: signatures}.Marshal()
	suite.Require().NoError(err)

	c2 := sha256.Sum256([]byte("c2"))
	other := sha256.Sum256([]byte("c3"))

	suite.Require().NoError(suite.keeper.VerifyMembership(clientID, initialHeight, commitmenttypes.NewMerklePath([]byte("p2")), c2[:], proof))

	err = suite.keeper.VerifyMembership(clientID, initialHeight, commitmenttypes.NewMerklePath([]byte("p2")), other[:], proof)
	suite.Require().ErrorIs(err, attestations.ErrCommitmentMismatch)

	err = suite.keeper.VerifyMembership(clientID, initialHeight, commitmenttypes.NewMerklePath([]byte("p3")), c2[:], proof)
	suite.Require().ErrorIs(err, attestations.ErrNotMember)

	err = suite.keeper.VerifyMembership("10-attestations-9", initialHeight, commitmenttypes.NewMerklePath([]byte("p2")), c2[:], proof)
	suite.Require().ErrorIs(err, types.ErrClientNotFound)

	// a conflicting attestation at the client height freezes the client
	_, err = suite.keeper.UpdateClient(clientID, suite.stateProof(initialHeight, time.Minute, suite.attestors...))
	suite.Require().ErrorIs(err, types.ErrConflictingState)

	err = suite.keeper.VerifyMembership(clientID, initialHeight, commitmenttypes.NewMerklePath([]byte("p2")), c2[:], proof)
	suite.Require().ErrorIs(err, types.ErrClientFrozen)
}

func (suite *KeeperTestSuite) TestSubmitMisbehaviour() {
	clientID := suite.createTendermintClient()

	misbehaviour := ibctm.NewMisbehaviour(
		suite.chain.UpdateHeader(int64(initialHeight+1), initialHeight, ibctesting.DefaultTime.Add(10*time.Second)),
		suite.chain.UpdateHeader(int64(initialHeight+1), initialHeight, ibctesting.DefaultTime.Add(20*time.Second)),
	)
	bz, err := misbehaviour.Marshal()
	suite.Require().NoError(err)

	suite.Require().NoError(suite.keeper.SubmitMisbehaviour(clientID, bz))
	suite.Require().Equal(exported.Frozen, suite.keeper.GetClientStatus(clientID))

	suite.Require().ErrorIs(suite.keeper.SubmitMisbehaviour(clientID, bz), types.ErrClientFrozen)

	attClientID := suite.createAttestationsClient()
	suite.Require().ErrorIs(suite.keeper.SubmitMisbehaviour(attClientID, bz), types.ErrInvalidClientType)
	suite.Require().ErrorIs(suite.keeper.SubmitMisbehaviour("07-tendermint-9", bz), types.ErrClientNotFound)
}

func (suite *KeeperTestSuite) TestPruneConsensusStates() {
	clientID := suite.createAttestationsClient()

	pruned, err := suite.keeper.PruneConsensusStates(clientID)
	suite.Require().NoError(err)
	suite.Require().Zero(pruned)

	for i := uint64(1); i <= ibctesting.MaxConsensusStates; i++ {
		_, err := suite.keeper.UpdateClient(clientID, suite.stateProof(initialHeight+i, time.Duration(i)*time.Second, suite.attestors...))
		suite.Require().NoError(err)
	}

	pruned, err = suite.keeper.PruneConsensusStates(clientID)
	suite.Require().NoError(err)
	suite.Require().Equal(1, pruned)

	_, err = suite.keeper.GetTimestampAtHeight(clientID, initialHeight)
	suite.Require().ErrorIs(err, types.ErrConsensusStateNotFound)

	// heights below the watermark can not be written again
	_, err = suite.keeper.UpdateClient(clientID, suite.stateProof(initialHeight, 0, suite.attestors...))
	suite.Require().ErrorIs(err, types.ErrInvalidHeight)
	suite.Require().Equal(exported.Active, suite.keeper.GetClientStatus(clientID))

	_, err = suite.keeper.PruneConsensusStates("07-tendermint-9")
	suite.Require().ErrorIs(err, types.ErrClientNotFound)
}

func (suite *KeeperTestSuite) TestStoreValidatorSet() {
	raw, err := ibctm.EncodeValidatorSet(suite.chain.Vals)
	suite.Require().NoError(err)

	key, aggregateHash, err := suite.keeper.StoreValidatorSet(exported.Tendermint, relayer, raw)
	suite.Require().NoError(err)

	_, otherHash, err := suite.keeper.StoreValidatorSet(exported.Tendermint, "other-relayer", raw)
	suite.Require().NoError(err)
	suite.Require().Equal(aggregateHash, otherHash)

	_, _, err = suite.keeper.StoreValidatorSet(exported.Attestations, relayer, raw)
	suite.Require().ErrorIs(err, types.ErrInvalidClientType)
	_, _, err = suite.keeper.StoreValidatorSet("06-solomachine", relayer, raw)
	suite.Require().ErrorIs(err, types.ErrRouteNotFound)

	// headers referencing the cached set update the client
	clientID := suite.createTendermintClient()
	header := suite.chain.UpdateHeader(int64(initialHeight+1), initialHeight, ibctesting.DefaultTime.Add(10*time.Second))
	header.ValidatorSetKey = key
	header.TrustedValidatorSetKey = key
	_, err = suite.keeper.UpdateClient(clientID, ibctesting.MarshalHeader(suite.T(), header))
	suite.Require().NoError(err)

	suite.Require().NoError(suite.keeper.PruneValidatorSet(exported.Tendermint, key))
	suite.Require().ErrorIs(suite.keeper.PruneValidatorSet(exported.Tendermint, key), ibctm.ErrValidatorSetNotFound)
}

// TestMonotonicHeight submits arbitrary attested updates and checks that stored
// consensus timestamps strictly increase with height.
func (suite *KeeperTestSuite) TestMonotonicHeight() {
	rapid.Check(suite.T(), func(t *rapid.T) {
		suite.SetupTest()
		clientID := suite.createAttestationsClient()

		steps := rapid.IntRange(1, 12).Draw(t, "steps")
		latest := suite.keeper.GetClientLatestHeight(clientID)
		for i := 0; i < steps; i++ {
			height := rapid.Uint64Range(initialHeight-5, initialHeight+20).Draw(t, "height")
			seconds := rapid.IntRange(-30, 120).Draw(t, "seconds")

			bz, err := ibctesting.StateAttestationProof(height, ibctesting.DefaultTime.Add(time.Duration(seconds)*time.Second), suite.attestors...)
			if err != nil {
				t.Fatalf("attestation: %v", err)
			}
			_, _ = suite.keeper.UpdateClient(clientID, bz)

			next := suite.keeper.GetClientLatestHeight(clientID)
			if next < latest {
				t.Fatalf("latest height decreased from %d to %d", latest, next)
			}
			latest = next
		}

		var prevTimestamp uint64
		for height := initialHeight - 5; height <= initialHeight+20; height++ {
			timestamp, err := suite.keeper.GetTimestampAtHeight(clientID, height)
			if err != nil {
				continue
			}
			if timestamp <= prevTimestamp {
				t.Fatalf("timestamp %d at height %d is not after %d", timestamp, height, prevTimestamp)
			}
			prevTimestamp = timestamp
		}
	})
}
