package types

import (
	"errors"
	"fmt"
	"strings"

	dbm "github.com/tendermint/tm-db"

	"github.com/cosmos/ibc-lightcore/modules/core/exported"
)

// The router is a map from client type to the LightClientModule which verifies
// every client of that type.
type Router struct {
	routes        map[string]exported.LightClientModule
	storeProvider exported.ClientStoreProvider
}

// NewRouter returns a router whose modules store their state in db.
func NewRouter(db dbm.DB) *Router {
	return &Router{
		routes:        make(map[string]exported.LightClientModule),
		storeProvider: NewStoreProvider(db),
	}
}

// AddRoute adds LightClientModule for a given client type. It returns the Router
// so AddRoute calls can be linked. It will panic if the route is already registered.
func (rtr *Router) AddRoute(clientType string, module exported.LightClientModule) *Router {
	if strings.TrimSpace(clientType) == "" {
		panic(errors.New("failed to add route: client type cannot be blank"))
	}
	if rtr.HasRoute(clientType) {
		panic(fmt.Errorf("route %s has already been registered", clientType))
	}

	rtr.routes[clientType] = module

	module.RegisterStoreProvider(rtr.storeProvider)
	return rtr
}

// HasRoute returns true if the Router has a module registered or false otherwise.
func (rtr *Router) HasRoute(clientType string) bool {
	_, ok := rtr.routes[clientType]
	return ok
}

// GetRoute returns the LightClientModule registered for the client type of the
// provided client identifier.
func (rtr *Router) GetRoute(clientID string) (exported.LightClientModule, bool) {
	clientType, _, err := ParseClientIdentifier(clientID)
	if err != nil {
		return nil, false
	}

	return rtr.GetModule(clientType)
}

// GetModule returns the LightClientModule registered for clientType.
func (rtr *Router) GetModule(clientType string) (exported.LightClientModule, bool) {
	module, ok := rtr.routes[clientType]
	return module, ok
}

// StoreProvider returns the store provider handed to every registered module.
func (rtr *Router) StoreProvider() exported.ClientStoreProvider {
	return rtr.storeProvider
}
