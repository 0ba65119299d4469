/*
Package events carries the stage transitions of a role command to
interested subscribers.

The strategy dispatcher publishes one event per stage it passes:

	command.received
	   │
	   ├─ credentials.fetched | credentials.skipped   (Ranger Admin only)
	   ├─ role.configured                             (when a request is embedded)
	   ├─ role.started
	   ▼
	command.done | command.failed

Events go through a Broker: Publish queues onto a buffered channel (100),
a single loop broadcasts to every subscriber channel (50 each), and a
subscriber whose buffer is full misses the event rather than blocking the
command. Stop flushes what was already queued and closes every subscriber,
so a reader can simply range over its channel:

	broker := events.NewBroker()
	broker.Start()
	sub := broker.Subscribe()
	go func() {
		for e := range sub {
			logger.Info().Str("stage", string(e.Type)).Msg(e.Message)
		}
	}()
	...
	broker.Stop()

Emit is the nil-safe helper used by publishers that may run without a
broker.
*/
package events
