// README: Live vehicle position index backed by Redis GEO.
package vehicle

import (
	"context"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/SabaShahdin/ms/internal/types"
)

const vehicleGeoKey = "vehicles:geo"

// GeoIndex holds the freshest reported position per vehicle. Postgres stays
// the system of record; the index only overrides stale stored coordinates
// when a vehicle has reported a live position.
type GeoIndex struct {
	redis *redis.Client
}

func NewGeoIndex(redis *redis.Client) *GeoIndex {
	return &GeoIndex{redis: redis}
}

func (g *GeoIndex) Set(ctx context.Context, vehicleID int64, p types.Point) error {
	return g.redis.GeoAdd(ctx, vehicleGeoKey, &redis.GeoLocation{
		Name:      strconv.FormatInt(vehicleID, 10),
		Longitude: p.Lng,
		Latitude:  p.Lat,
	}).Err()
}

func (g *GeoIndex) Remove(ctx context.Context, vehicleID int64) error {
	return g.redis.ZRem(ctx, vehicleGeoKey, strconv.FormatInt(vehicleID, 10)).Err()
}

// Positions returns the live position for each requested vehicle that has
// one. Vehicles absent from the index are simply missing from the map.
func (g *GeoIndex) Positions(ctx context.Context, vehicleIDs []int64) (map[int64]types.Point, error) {
	if len(vehicleIDs) == 0 {
		return nil, nil
	}
	members := make([]string, len(vehicleIDs))
	for i, id := range vehicleIDs {
		members[i] = strconv.FormatInt(id, 10)
	}
	pos, err := g.redis.GeoPos(ctx, vehicleGeoKey, members...).Result()
	if err != nil {
		return nil, err
	}
	out := make(map[int64]types.Point, len(vehicleIDs))
	for i, p := range pos {
		if p == nil {
			continue
		}
		out[vehicleIDs[i]] = types.Point{Lat: p.Latitude, Lng: p.Longitude}
	}
	return out, nil
}
