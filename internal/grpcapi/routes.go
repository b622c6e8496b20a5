package grpcapi

import (
	"github.com/nrjais/aerostore/internal/db"
	"github.com/nrjais/aerostore/internal/resources"
	"github.com/nrjais/aerostore/internal/sqlgen"
	"github.com/nrjais/aerostore/internal/store"
)

// ResourceServices builds the service of every resource over pool.
func ResourceServices(pool db.PostgresPool, limits sqlgen.PageLimits) ([]Service, error) {
	vertiports := store.NewRepository(pool, resources.Vertiport, limits)
	vertipads := store.NewRepository(pool, resources.Vertipad, limits)
	vehicles := store.NewRepository(pool, resources.Vehicle, limits)
	users := store.NewRepository(pool, resources.User, limits)

	services := []Service{
		NewSimpleService(vertiports),
		NewSimpleService(vertipads),
		NewSimpleService(vehicles),
		NewSimpleService(store.NewRepository(pool, resources.Pilot, limits)),
		NewSimpleService(users),
		NewSimpleService(store.NewRepository(pool, resources.Group, limits)),
		NewSimpleService(store.NewRepository(pool, resources.Scanner, limits)),
		NewSimpleService(store.NewRepository(pool, resources.FlightPlan, limits)),
		NewSimpleService(store.NewRepository(pool, resources.Parcel, limits)),
		NewSimpleLinkedService(store.NewRepository(pool, resources.FlightPlanParcel, limits)),
	}

	groupUsers, err := store.NewLinkRepository(pool, resources.GroupUser.Definition, "group_id", "user_id")
	if err != nil {
		return nil, err
	}
	groupVehicles, err := store.NewLinkRepository(pool, resources.GroupVehicle.Definition, "group_id", "vehicle_id")
	if err != nil {
		return nil, err
	}
	groupVertiports, err := store.NewLinkRepository(pool, resources.GroupVertiport.Definition, "group_id", "vertiport_id")
	if err != nil {
		return nil, err
	}
	groupVertipads, err := store.NewLinkRepository(pool, resources.GroupVertipad.Definition, "group_id", "vertipad_id")
	if err != nil {
		return nil, err
	}

	return append(services,
		NewLinkService(groupUsers, users),
		NewLinkService(groupVehicles, vehicles),
		NewLinkService(groupVertiports, vertiports),
		NewLinkService(groupVertipads, vertipads),
	), nil
}
