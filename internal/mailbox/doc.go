// Package mailbox provides the single-slot shared-memory transport that
// carries messages between the Firefly front end and its document engine.
//
// The front end and the engine are separate processes. Each direction of
// traffic gets its own Mailbox: a fixed-capacity region of shared memory
// that holds at most one message at a time.
//
// # Slot Layout
//
//	offset 0        4                      4+len            C
//	       +--------+----------------------+----------------+
//	       |  len   |  payload (len bytes) |    unused      |
//	       +--------+----------------------+----------------+
//
// len is a little-endian uint32. len == 0 means Empty; len > 0 means one
// undelivered message of that length is present. 4+len <= C always holds:
// a payload that would not fit is rejected before anything is written.
//
// # Handshake
//
// The length word is the only synchronization between the two processes.
// It is read and written with sync/atomic so that a payload is always
// visible before the length that announces it:
//
//	Empty --Post/Write--> Full --Clear--> Empty
//
// [Mailbox.Post] only writes into an Empty slot and returns
// errors.ErrSlotFull otherwise, so no message is ever lost. [Mailbox.Write]
// overwrites unconditionally; if the slot was still Full the previous
// message is lost and, when a bus is attached, a
// event.MessageOverwrittenEvent is published.
//
// # Main Types
//
//   - [Mailbox]: typed handle over one region exposing Write, Post, TryRead and Clear
//   - [Option]: functional options (event bus, doorbell ringer)
//
// # Basic Usage
//
//	mb, err := mailbox.Create(dir, "ff-ui-1234", 4096)
//	if err := mb.Post(payload); errors.Is(err, errors.ErrSlotFull) {
//	    // retry after the consumer clears
//	}
//
//	peer, err := mailbox.Open(dir, "ff-ui-1234")
//	if payload, ok := peer.TryRead(); ok {
//	    handle(payload)
//	    peer.Clear()
//	}
//
// # Thread Safety
//
// Each Mailbox expects exactly one writer and one reader, normally in
// different processes. Nothing enforces that convention.
package mailbox
