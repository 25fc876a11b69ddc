package admin

import (
	"time"

	"emperror.dev/errors"
	"github.com/ReneKroon/ttlcache/v2"
	"github.com/diamondburned/arikawa/v3/discord"
)

// sendState is what a channel's @everyone overwrite says about sending messages.
type sendState int

const (
	sendNeutral sendState = iota
	sendAllowed
	sendDenied
)

func (s sendState) String() string {
	switch s {
	case sendAllowed:
		return "allowed"
	case sendDenied:
		return "denied"
	default:
		return "neutral"
	}
}

// DefaultLockTTL is how long a lock remembers the state it replaced.
const DefaultLockTTL = 7 * 24 * time.Hour

// LockStore remembers each locked channel's Send Messages state from before the lock,
// so unlocking can put it back. Entries expire, and are lost on restart.
type LockStore struct {
	cache *ttlcache.Cache
	ttl   time.Duration
}

// NewLockStore returns a LockStore whose entries live for ttl.
func NewLockStore(ttl time.Duration) *LockStore {
	c := ttlcache.NewCache()
	c.SkipTTLExtensionOnHit(true)

	return &LockStore{cache: c, ttl: ttl}
}

func (s *LockStore) remember(id discord.ChannelID, prior sendState) error {
	err := s.cache.SetWithTTL(id.String(), prior, s.ttl)
	if err != nil {
		return errors.Wrapf(err, "remembering state of channel %v", id)
	}
	return nil
}

func (s *LockStore) recall(id discord.ChannelID) (sendState, bool) {
	v, err := s.cache.Get(id.String())
	if err != nil {
		return sendNeutral, false
	}
	st, ok := v.(sendState)
	return st, ok
}

func (s *LockStore) forget(id discord.ChannelID) {
	// the entry may already have expired
	_ = s.cache.Remove(id.String())
}

// Close stops the store's expiry goroutine.
func (s *LockStore) Close() error {
	return s.cache.Close()
}
