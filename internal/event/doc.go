// Package event provides a pub-sub event bus that makes transport and
// engine activity observable inside one Firefly process.
//
// The mailbox transport has no acknowledgment channel, so conditions such
// as an overwritten slot or a malformed payload are otherwise invisible.
// Components publish them on a [Bus]; logging, tests, and the TUI status
// line subscribe without the publisher knowing about them.
//
// # Main Types
//
//   - [Event]: Interface that all events implement, providing EventType() and Timestamp()
//   - [Bus]: Synchronous pub-sub dispatcher, safe for concurrent use
//   - [Handler]: Function type for event handlers (func(Event))
//
// # Event Types
//
// Transport:
//   - [MessageOverwrittenEvent] ("mailbox.overwritten"): a write replaced an unconsumed message
//   - [MessageRejectedEvent] ("mailbox.rejected"): a payload did not fit the mailbox
//
// Engine and front end:
//   - [DecodeFailedEvent] ("message.decode_failed"): inbound bytes were not a valid message
//   - [OperationAppliedEvent] ("operation.applied"): the engine applied an operation
//   - [LineRenderedEvent] ("line.rendered"): a RenderLine command was produced or consumed
//
// # Basic Usage
//
//	bus := event.NewBus()
//	bus.Subscribe(event.TypeMessageOverwritten, func(e event.Event) {
//	    lost := e.(event.MessageOverwrittenEvent)
//	    log.Printf("lost %d bytes on %s", lost.LostBytes, lost.Mailbox)
//	})
//
// Event types follow the pattern "category.action".
package event
