// Package codec is the CBOR wire codec for mailbox payloads.
//
// CBOR is self-describing, so a truncated or corrupted payload is detected
// by the decoder instead of being misread. Encoding uses Core Deterministic
// Encoding (RFC 8949 §4.2): the same message always produces the same
// bytes, which keeps payload sizes predictable against the mailbox
// capacity. Decoding rejects trailing bytes, duplicate map keys, and
// oversized containers.
package codec

import (
	"github.com/fxamacker/cbor/v2"
)

// maxContainerLength bounds arrays, maps, and strings in a single message.
// No legitimate payload comes close; the bound keeps a corrupted length
// from allocating arbitrarily.
const maxContainerLength = 1 << 16

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error

	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("codec: CBOR encoder initialization failed: " + err.Error())
	}

	decMode, err = cbor.DecOptions{
		DupMapKey:         cbor.DupMapKeyEnforcedAPF,
		IndefLength:       cbor.IndefLengthForbidden,
		MaxArrayElements:  maxContainerLength,
		MaxMapPairs:       maxContainerLength,
		ExtraReturnErrors: cbor.ExtraDecErrorUnknownField,
	}.DecMode()
	if err != nil {
		panic("codec: CBOR decoder initialization failed: " + err.Error())
	}
}

// Marshal encodes v to CBOR using Core Deterministic Encoding.
func Marshal(v any) ([]byte, error) {
	return encMode.Marshal(v)
}

// Unmarshal decodes exactly one CBOR data item from data into v. Trailing
// bytes, unknown struct fields, and malformed input are errors.
func Unmarshal(data []byte, v any) error {
	return decMode.Unmarshal(data, v)
}

// Diagnose returns the CBOR diagnostic notation (RFC 8949 §8) for data.
// It is used to log payloads that failed to decode.
func Diagnose(data []byte) (string, error) {
	return cbor.Diagnose(data)
}
