package redis

import (
	"github.com/redis/go-redis/v9"

	"gincana-service/internal/app"
	"gincana-service/internal/domain"
)

// QuestionStore is the catalog for deployments that run on Redis alone. Instances
// sharing it agree on question ids, which matches store in their asked history.
type QuestionStore struct {
	*hashStore[domain.Question]
}

var _ app.QuestionRepository = (*QuestionStore)(nil)

func NewQuestionStore(client *redis.Client) *QuestionStore {
	return &QuestionStore{&hashStore[domain.Question]{
		client:   client,
		hashKey:  keyPrefix + "questions",
		orderKey: keyPrefix + "questions:order",
		kind:     "question",
		idOf:     func(q domain.Question) string { return q.ID },
		notFound: domain.ErrQuestionNotFound,
	}}
}
