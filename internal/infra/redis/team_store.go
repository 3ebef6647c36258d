package redis

import (
	"github.com/redis/go-redis/v9"

	"gincana-service/internal/app"
	"gincana-service/internal/domain"
)

// TeamStore keeps teams in gincana:teams with their creation order in gincana:teams:order.
type TeamStore struct {
	*hashStore[domain.Team]
}

var _ app.TeamRepository = (*TeamStore)(nil)

func NewTeamStore(client *redis.Client) *TeamStore {
	return &TeamStore{&hashStore[domain.Team]{
		client:   client,
		hashKey:  keyPrefix + "teams",
		orderKey: keyPrefix + "teams:order",
		kind:     "team",
		idOf:     func(t domain.Team) string { return t.ID },
		notFound: domain.ErrTeamNotFound,
	}}
}
