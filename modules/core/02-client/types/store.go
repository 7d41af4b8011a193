package types

import (
	dbm "github.com/tendermint/tm-db"

	host "github.com/cosmos/ibc-lightcore/modules/core/24-host"
	"github.com/cosmos/ibc-lightcore/modules/core/exported"
)

var _ exported.ClientStoreProvider = (*storeProvider)(nil)

// storeProvider implements the exported.ClientStoreProvider interface and encapsulates the IBC core database.
type storeProvider struct {
	db dbm.DB
}

// NewStoreProvider creates and returns a new ClientStoreProvider.
func NewStoreProvider(db dbm.DB) exported.ClientStoreProvider {
	return storeProvider{
		db: db,
	}
}

// ClientStore returns isolated prefix store for each client so they can read/write in separate namespaces.
func (s storeProvider) ClientStore(clientID string) dbm.DB {
	return dbm.NewPrefixDB(s.db, host.PrefixedClientStoreKey([]byte(clientID)))
}

// ClientModuleStore returns the module store for a provided client type.
func (s storeProvider) ClientModuleStore(clientType string) dbm.DB {
	return dbm.NewPrefixDB(s.db, host.PrefixedClientStoreKey([]byte(clientType+"-module")))
}
