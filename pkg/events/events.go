package events

import (
	"sync"
	"time"

	"github.com/cuemby/rolecfg/pkg/types"
	"github.com/google/uuid"
)

// EventType is a stage of a role command
type EventType string

const (
	EventReceived           EventType = "command.received"
	EventCredentialsFetched EventType = "credentials.fetched"
	EventCredentialsSkipped EventType = "credentials.skipped"
	EventConfigured         EventType = "role.configured"
	EventStarted            EventType = "role.started"
	EventDone               EventType = "command.done"
	EventFailed             EventType = "command.failed"
)

// Event reports one stage transition of a role command
type Event struct {
	ID        string
	Type      EventType
	Timestamp time.Time
	Service   string
	Role      string
	Message   string
}

// Publisher accepts events. A nil Publisher drops them.
type Publisher interface {
	Publish(event *Event)
}

// Emit publishes a stage event for cmd when p is non-nil
func Emit(p Publisher, typ EventType, cmd *types.ServiceRoleCommand, message string) {
	if p == nil {
		return
	}
	p.Publish(&Event{
		ID:      uuid.NewString(),
		Type:    typ,
		Service: cmd.ServiceName,
		Role:    cmd.ServiceRoleName,
		Message: message,
	})
}

// Subscriber is a channel that receives events
type Subscriber chan *Event

// Broker fans events out to subscribers
type Broker struct {
	subscribers map[Subscriber]bool
	mu          sync.RWMutex
	eventCh     chan *Event
	stopCh      chan struct{}
	doneCh      chan struct{}
	stopOnce    sync.Once
}

// NewBroker creates a new event broker
func NewBroker() *Broker {
	return &Broker{
		subscribers: make(map[Subscriber]bool),
		eventCh:     make(chan *Event, 100),
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}
}

// Start begins the broker's distribution loop
func (b *Broker) Start() {
	go b.run()
}

// Stop delivers the events already published, closes every subscriber and
// waits for the distribution loop to exit
func (b *Broker) Stop() {
	b.stopOnce.Do(func() { close(b.stopCh) })
	<-b.doneCh
}

// Subscribe creates a new subscription and returns a channel
func (b *Broker) Subscribe() Subscriber {
	b.mu.Lock()
	defer b.mu.Unlock()

	sub := make(Subscriber, 50)
	b.subscribers[sub] = true
	return sub
}

// Unsubscribe removes a subscription
func (b *Broker) Unsubscribe(sub Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.subscribers[sub] {
		delete(b.subscribers, sub)
		close(sub)
	}
}

// Publish queues an event for every subscriber. Events published after
// Stop are dropped.
func (b *Broker) Publish(event *Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	select {
	case b.eventCh <- event:
	case <-b.stopCh:
	}
}

func (b *Broker) run() {
	defer close(b.doneCh)
	defer b.closeAll()

	for {
		select {
		case event := <-b.eventCh:
			b.broadcast(event)
		case <-b.stopCh:
			for {
				select {
				case event := <-b.eventCh:
					b.broadcast(event)
				default:
					return
				}
			}
		}
	}
}

func (b *Broker) broadcast(event *Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for sub := range b.subscribers {
		select {
		case sub <- event:
		default:
			// subscriber buffer full, skip
		}
	}
}

func (b *Broker) closeAll() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for sub := range b.subscribers {
		delete(b.subscribers, sub)
		close(sub)
	}
}
