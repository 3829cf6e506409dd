// Package channel pairs two mailboxes into the bidirectional link between
// the front end and the engine.
//
// The front end creates the pair with fresh names and hands the names to
// the engine on its command line; the engine opens the same regions. Each
// side writes one mailbox and reads the other:
//
//	front end ── UIToEngine (operations) ──▶ engine
//	front end ◀── EngineToUI (draw commands) ── engine
//
// Each mailbox may have a doorbell file beside it. The writer rings it
// after every write and the reader's Wait returns as soon as it rings.
//
// Outbox queues payloads in front of a mailbox and posts them one at a
// time, so a producer that outruns its consumer never overwrites an
// unconsumed message.
package channel
