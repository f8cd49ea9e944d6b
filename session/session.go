package session

import (
	"fmt"
	"time"

	"github.com/adhikar-ai/adhikar/config"
	"github.com/adhikar-ai/adhikar/models"
	"github.com/adhikar-ai/adhikar/session/inmemory"
	redis_session "github.com/adhikar-ai/adhikar/session/redis"
)

// DefaultTitle is what a fresh session is labelled until the first user turn.
const DefaultTitle = "New Chat"

// Store holds per-session conversation history and metadata.
//
// Append auto-creates the session when the id is unknown. History returns an
// empty slice for unknown ids. Sweep removes every session idle longer than
// maxAge and reports how many it evicted; it is meant for a background loop,
// never the request path.
type Store interface {
	Create() (models.Session, error)
	Get(id string) (models.Session, bool)
	Append(id string, role models.Role, content string) (models.Session, error)
	History(id string) []models.Turn
	SetTitle(id, title string) error
	Sweep(maxAge time.Duration) int
}

type StoreType string

const (
	InMemoryStore StoreType = "inmemory"
	RedisStore    StoreType = "redis"
)

// NewStore builds the configured session store backend.
func NewStore(cfg config.SessionConfig) (Store, error) {
	switch StoreType(cfg.Store) {
	case InMemoryStore:
		return inmemory.NewStore(cfg.SnapshotPath)
	case RedisStore:
		return redis_session.NewStore(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.MaxAge), nil
	default:
		return nil, fmt.Errorf("unsupported session store type: %s", cfg.Store)
	}
}
