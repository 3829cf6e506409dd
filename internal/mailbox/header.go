package mailbox

import (
	"encoding/binary"
	"math/bits"
	"sync/atomic"
	"unsafe"
)

// headerSize is the size of the little-endian length prefix.
const headerSize = 4

// hostBigEndian reports whether native byte order differs from the wire order.
var hostBigEndian = binary.NativeEndian.Uint16([]byte{0x00, 0x01}) == 0x0001

// header addresses the length word at the start of a slot. The slot's
// backing memory is page-aligned (mmap) or at least word-aligned (heap),
// so the word can be accessed atomically.
type header struct {
	word *uint32
}

func newHeader(buf []byte) header {
	return header{word: (*uint32)(unsafe.Pointer(&buf[0]))}
}

// load reads the length with acquire semantics.
func (h header) load() uint32 {
	v := atomic.LoadUint32(h.word)
	if hostBigEndian {
		v = bits.ReverseBytes32(v)
	}
	return v
}

// store writes the length with release semantics.
func (h header) store(n uint32) {
	if hostBigEndian {
		n = bits.ReverseBytes32(n)
	}
	atomic.StoreUint32(h.word, n)
}

// unsafeBytes views a word slice as bytes.
func unsafeBytes(words []uint32) []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(&words[0])), len(words)*headerSize)
}
