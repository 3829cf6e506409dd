// Package doorbell wakes a mailbox consumer in another process as soon as
// the producer has written a message.
//
// A poll loop that only sleeps a fixed interval trades latency against
// wasted wake-ups. A doorbell is a small sidecar file next to the mailbox
// region: the producer rewrites one byte of it after every mailbox write,
// and the consumer watches it with fsnotify. Waiting returns on the first
// ring or after the fallback interval, whichever comes first, so a missed
// notification only costs one interval of latency.
//
// Rings are coalesced: any number of rings between two waits wake the
// consumer once. That is sufficient because the consumer re-checks the
// mailbox after every wake-up.
package doorbell
