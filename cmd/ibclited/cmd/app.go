package cmd

import (
	"io"
	"sort"
	"time"

	metrics "github.com/armon/go-metrics"
	"github.com/pkg/errors"
	"github.com/tendermint/tendermint/libs/log"
	dbm "github.com/tendermint/tm-db"

	"github.com/cosmos/ibc-lightcore/modules/core/02-client/keeper"
	"github.com/cosmos/ibc-lightcore/modules/core/exported"
	ibctm "github.com/cosmos/ibc-lightcore/modules/light-clients/07-tendermint"
	attestations "github.com/cosmos/ibc-lightcore/modules/light-clients/10-attestations"
)

const dbName = "clients"

// app holds what a command needs once the configuration is loaded.
type app struct {
	cfg    Config
	logger log.Logger
	sink   *metrics.InmemSink
}

func newLogger(cfg Config, w io.Writer) (log.Logger, error) {
	var logger log.Logger
	if cfg.LogFormat == LogFormatJSON {
		logger = log.NewTMJSONLogger(log.NewSyncWriter(w))
	} else {
		logger = log.NewTMLogger(log.NewSyncWriter(w))
	}

	option, err := log.AllowLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	return log.NewFilter(logger, option), nil
}

func (a *app) setup(cfg Config, logWriter io.Writer) error {
	logger, err := newLogger(cfg, logWriter)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = logger

	if cfg.Telemetry.Enabled {
		a.sink = metrics.NewInmemSink(10*time.Second, time.Minute)

		metricsConfig := metrics.DefaultConfig(appName)
		metricsConfig.EnableHostname = false
		metricsConfig.EnableRuntimeMetrics = false
		if _, err := metrics.NewGlobal(metricsConfig, a.sink); err != nil {
			return errors.Wrap(err, "failed to set up telemetry")
		}
	}
	return nil
}

// withKeeper opens the client database, runs fn with a keeper routing to every
// light client module and closes the database afterwards.
func (a *app) withKeeper(fn func(k keeper.Keeper) error) (err error) {
	db, err := dbm.NewDB(dbName, dbm.BackendType(a.cfg.DBBackend), a.cfg.DataDir())
	if err != nil {
		return errors.Wrapf(err, "failed to open %s database in %s", a.cfg.DBBackend, a.cfg.DataDir())
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil && err == nil {
			err = errors.Wrap(closeErr, "failed to close database")
		}
		a.logMetrics()
	}()

	k := keeper.NewKeeper(
		db, a.logger,
		keeper.WithParams(a.cfg.ClientParams()),
		keeper.WithChunkParams(a.cfg.ChunkParams()),
	)
	k.AddRoute(exported.Tendermint, ibctm.NewLightClientModule())
	k.AddRoute(exported.Attestations, attestations.NewLightClientModule())

	return fn(k)
}

// logMetrics logs the counters collected by the in-memory sink.
func (a *app) logMetrics() {
	if a.sink == nil {
		return
	}

	logger := a.logger.With("module", "telemetry")
	for _, interval := range a.sink.Data() {
		interval.RLock()
		names := make([]string, 0, len(interval.Counters))
		for name := range interval.Counters {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			counter := interval.Counters[name]
			logger.Info("counter", "name", name, "count", counter.Count, "sum", counter.Sum)
		}
		interval.RUnlock()
	}
}
