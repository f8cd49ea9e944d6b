package redis_session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/adhikar-ai/adhikar/models"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Store keeps each session as a JSON document under session:<id> with a TTL
// of the configured max age, refreshed on every turn. Redis expiry handles
// most eviction on its own; Sweep exists to satisfy the store contract and to
// evict sessions whose TTL outlived a shortened max age.
type Store struct {
	client *redis.Client
	maxAge time.Duration
}

func NewStore(addr, password string, db int, maxAge time.Duration) *Store {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &Store{client: rdb, maxAge: maxAge}
}

func key(id string) string { return fmt.Sprintf("session:%s", id) }

func (store *Store) Create() (models.Session, error) {
	ctx := context.Background()
	now := time.Now().UTC()
	sess := models.Session{
		ID:         uuid.NewString(),
		Title:      "New Chat",
		History:    []models.Turn{},
		CreatedAt:  now,
		LastActive: now,
	}
	if err := store.put(ctx, sess); err != nil {
		return models.Session{}, err
	}
	return sess, nil
}

func (store *Store) Get(id string) (models.Session, bool) {
	ctx := context.Background()
	val, err := store.client.Get(ctx, key(id)).Result()
	if err != nil {
		return models.Session{}, false
	}
	var sess models.Session
	if err := json.Unmarshal([]byte(val), &sess); err != nil {
		return models.Session{}, false
	}
	return sess, true
}

func (store *Store) Append(id string, role models.Role, content string) (models.Session, error) {
	ctx := context.Background()
	sess, ok := store.Get(id)
	if !ok {
		now := time.Now().UTC()
		sess = models.Session{ID: id, Title: "New Chat", History: []models.Turn{}, CreatedAt: now, LastActive: now}
	}
	sess.History = append(sess.History, models.Turn{Role: role, Content: content})
	sess.LastActive = time.Now().UTC()
	if err := store.put(ctx, sess); err != nil {
		return models.Session{}, err
	}
	return sess, nil
}

func (store *Store) History(id string) []models.Turn {
	sess, ok := store.Get(id)
	if !ok {
		return nil
	}
	return sess.History
}

func (store *Store) SetTitle(id, title string) error {
	ctx := context.Background()
	sess, ok := store.Get(id)
	if !ok {
		return fmt.Errorf("unknown session: %s", id)
	}
	sess.Title = title
	return store.put(ctx, sess)
}

func (store *Store) Sweep(maxAge time.Duration) int {
	ctx := context.Background()
	cutoff := time.Now().UTC().Add(-maxAge)
	evicted := 0
	iter := store.client.Scan(ctx, 0, "session:*", 0).Iterator()
	for iter.Next(ctx) {
		val, err := store.client.Get(ctx, iter.Val()).Result()
		if err != nil {
			continue
		}
		var sess models.Session
		if err := json.Unmarshal([]byte(val), &sess); err != nil {
			continue
		}
		if sess.LastActive.Before(cutoff) {
			if store.client.Del(ctx, iter.Val()).Err() == nil {
				evicted++
			}
		}
	}
	return evicted
}

func (store *Store) put(ctx context.Context, sess models.Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	return store.client.Set(ctx, key(sess.ID), data, store.maxAge).Err()
}
