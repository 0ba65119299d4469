package events

import (
	"testing"

	"github.com/cuemby/rolecfg/pkg/types"
	"github.com/stretchr/testify/assert"
)

func TestBroker_StopFlushesQueuedEvents(t *testing.T) {
	b := NewBroker()
	sub := b.Subscribe()
	b.Start()

	cmd := &types.ServiceRoleCommand{ServiceName: "RANGER", ServiceRoleName: "RangerAdmin"}
	Emit(b, EventReceived, cmd, "")
	Emit(b, EventDone, cmd, "ok")
	b.Stop()

	var got []EventType
	for e := range sub {
		assert.Equal(t, "RangerAdmin", e.Role)
		assert.NotEmpty(t, e.ID)
		assert.False(t, e.Timestamp.IsZero())
		got = append(got, e.Type)
	}
	assert.Equal(t, []EventType{EventReceived, EventDone}, got)
}

func TestBroker_Unsubscribe(t *testing.T) {
	b := NewBroker()
	b.Start()
	defer b.Stop()

	sub := b.Subscribe()
	b.Unsubscribe(sub)
	b.Unsubscribe(sub)

	_, open := <-sub
	assert.False(t, open)

	// publishing to no subscribers does not block
	Emit(b, EventReceived, &types.ServiceRoleCommand{}, "")
}

func TestEmit_NilPublisher(t *testing.T) {
	Emit(nil, EventReceived, &types.ServiceRoleCommand{}, "")
}
