// Package shm maps named, fixed-size shared memory regions.
//
// A region is a regular file (normally under /dev/shm, a tmpfs) mapped
// MAP_SHARED into the address space of every process that opens it. The
// front end creates the region; the engine opens it by name. Writes through
// one mapping are visible through every other mapping of the same file
// without any system call.
//
// The package is internal to mailbox so that the raw byte view of a region
// never leaves the typed Mailbox wrapper.
package shm
