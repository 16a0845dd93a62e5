package dispatchcache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEventString(t *testing.T) {
	assert.Equal(t, "hit", EventHit.String())
	assert.Equal(t, "miss", EventMiss.String())
	assert.Equal(t, "expire", EventExpire.String())
	assert.Equal(t, "evict", EventEvict.String())
	assert.Equal(t, "clear", EventClear.String())
	assert.Equal(t, "unknown", Event(99).String())
}

func TestLogObserver(t *testing.T) {
	// Smoke test: the adapter must accept every event shape.
	o := NewLogObserver()
	for _, ev := range []Event{EventHit, EventMiss, EventExpire, EventEvict, EventClear} {
		o.On(EventData{Event: ev, Key: "k"})
	}
}
