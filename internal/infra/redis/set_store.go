package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"edulearn-engine/internal/domain"

	"github.com/redis/go-redis/v9"
)

// SetStore keeps QuestionSets in Redis, one hash per quiz:
//
//	HSET quiz:set:{id} status {open|graded} data {json}
//
// The expiry window maps onto the key TTL, so an expired quiz simply
// disappears and surfaces as ErrNotFound. Consume runs as a Lua script: the
// status check and the Open -> Graded flip happen in one atomic step, which
// is what makes grading at-most-once across instances.
type SetStore struct {
	client *redis.Client
	expiry time.Duration
}

func NewSetStore(client *redis.Client, expiry time.Duration) *SetStore {
	return &SetStore{client: client, expiry: expiry}
}

var consumeScript = redis.NewScript(`
local status = redis.call('HGET', KEYS[1], 'status')
if not status then
  return {'missing', ''}
end
if status ~= 'open' then
  return {status, ''}
end
redis.call('HSET', KEYS[1], 'status', 'graded')
return {'open', redis.call('HGET', KEYS[1], 'data')}
`)

func (s *SetStore) Create(ctx context.Context, set domain.QuestionSet) error {
	data, err := json.Marshal(set)
	if err != nil {
		return fmt.Errorf("marshal quiz: %w", err)
	}

	key := s.key(set.ID)
	pipe := s.client.Pipeline()
	pipe.HSet(ctx, key, "status", string(set.Status), "data", data)
	if s.expiry > 0 {
		pipe.Expire(ctx, key, s.expiry)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("store quiz: %w", err)
	}
	return nil
}

func (s *SetStore) Fetch(ctx context.Context, id string) (domain.QuestionSet, error) {
	fields, err := s.client.HGetAll(ctx, s.key(id)).Result()
	if err != nil {
		return domain.QuestionSet{}, fmt.Errorf("fetch quiz: %w", err)
	}
	if len(fields) == 0 {
		return domain.QuestionSet{}, domain.ErrNotFound
	}
	set, err := decodeSet(fields["data"])
	if err != nil {
		return domain.QuestionSet{}, err
	}
	set.Status = domain.SetStatus(fields["status"])
	return set, nil
}

func (s *SetStore) Consume(ctx context.Context, id string) (domain.QuestionSet, error) {
	raw, err := consumeScript.Run(ctx, s.client, []string{s.key(id)}).Result()
	if err != nil {
		return domain.QuestionSet{}, fmt.Errorf("consume quiz: %w", err)
	}
	reply, ok := raw.([]interface{})
	if !ok || len(reply) != 2 {
		return domain.QuestionSet{}, fmt.Errorf("consume quiz: unexpected reply %v", raw)
	}

	switch reply[0] {
	case "open":
		set, err := decodeSet(fmt.Sprint(reply[1]))
		if err != nil {
			return domain.QuestionSet{}, err
		}
		set.Status = domain.SetGraded
		return set, nil
	case "graded":
		return domain.QuestionSet{}, domain.ErrAlreadyGraded
	case "expired":
		return domain.QuestionSet{}, domain.ErrExpired
	default:
		return domain.QuestionSet{}, domain.ErrNotFound
	}
}

// Reopen undoes a consume whose ledger append failed. Best effort: if the
// key's TTL lapsed in between, the quiz is gone and stays gone.
func (s *SetStore) Reopen(ctx context.Context, id string) error {
	exists, err := s.client.Exists(ctx, s.key(id)).Result()
	if err != nil {
		return fmt.Errorf("reopen quiz: %w", err)
	}
	if exists == 0 {
		return domain.ErrNotFound
	}
	if err := s.client.HSet(ctx, s.key(id), "status", string(domain.SetOpen)).Err(); err != nil {
		return fmt.Errorf("reopen quiz: %w", err)
	}
	return nil
}

func (s *SetStore) key(id string) string {
	return "quiz:set:" + id
}

func decodeSet(data string) (domain.QuestionSet, error) {
	var set domain.QuestionSet
	if err := json.Unmarshal([]byte(data), &set); err != nil {
		return domain.QuestionSet{}, fmt.Errorf("unmarshal quiz: %w", err)
	}
	return set, nil
}
