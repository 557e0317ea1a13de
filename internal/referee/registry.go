package referee

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/danmuck/scorchedearth/internal/channel"
	"github.com/danmuck/scorchedearth/internal/observability"
	"github.com/danmuck/scorchedearth/internal/protocol"
	"github.com/google/uuid"
)

var (
	ErrChannelNotFound = errors.New("referee: channel not found")
	ErrRegistryFull    = errors.New("referee: channel limit reached")
)

// Registry holds the open channels of one referee, keyed by uuid.
type Registry struct {
	mu       sync.RWMutex
	channels map[string]*channel.Channel
	max      int
}

// NewRegistry returns a registry admitting at most max channels; max <= 0
// means unlimited.
func NewRegistry(max int) *Registry {
	return &Registry{
		channels: make(map[string]*channel.Channel),
		max:      max,
	}
}

func (r *Registry) Open(opening protocol.State) (string, *channel.Channel, error) {
	id := uuid.NewString()
	ch, err := channel.Open(opening, channel.WithName(id))
	if err != nil {
		return "", nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.max > 0 && len(r.channels) >= r.max {
		return "", nil, fmt.Errorf("%w: %d", ErrRegistryFull, r.max)
	}
	r.channels[id] = ch
	observability.SetOpenChannels(len(r.channels))
	return id, ch, nil
}

func (r *Registry) Get(id string) (*channel.Channel, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ch, ok := r.channels[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrChannelNotFound, id)
	}
	return ch, nil
}

func (r *Registry) Close(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.channels[id]; !ok {
		return fmt.Errorf("%w: %s", ErrChannelNotFound, id)
	}
	delete(r.channels, id)
	observability.SetOpenChannels(len(r.channels))
	return nil
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.channels)
}

// IDs returns the open channel ids in sorted order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	ids := make([]string, 0, len(r.channels))
	for id := range r.channels {
		ids = append(ids, id)
	}
	r.mu.RUnlock()
	sort.Strings(ids)
	return ids
}
