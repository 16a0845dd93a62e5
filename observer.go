package dispatchcache

import (
	"github.com/apex/log"
)

// Event identifies a cache state transition.
type Event int

const (
	// EventHit: Dispatch served an existing entry.
	EventHit Event = iota
	// EventMiss: Dispatch created a new entry and started the underlying call.
	EventMiss
	// EventExpire: a stale entry was lazily swept during Dispatch.
	EventExpire
	// EventEvict: an entry was removed by Delete or by a failed dispatch.
	EventEvict
	// EventClear: the whole store was emptied.
	EventClear
)

func (e Event) String() string {
	switch e {
	case EventHit:
		return "hit"
	case EventMiss:
		return "miss"
	case EventExpire:
		return "expire"
	case EventEvict:
		return "evict"
	case EventClear:
		return "clear"
	}
	return "unknown"
}

// EventData describes one cache event. Key is empty for EventClear.
type EventData struct {
	Event Event
	Key   string
}

// Observer receives cache events. Implementations must be safe for
// concurrent use; On is called synchronously from cache operations and
// should return quickly.
type Observer interface {
	On(EventData)
}

type logObserver struct{}

// NewLogObserver returns an Observer that emits one debug-level line per
// cache event through apex/log.
func NewLogObserver() Observer {
	return logObserver{}
}

func (logObserver) On(d EventData) {
	log.WithFields(log.Fields{
		"event": d.Event.String(),
		"key":   d.Key,
	}).Debug("dispatchcache")
}
