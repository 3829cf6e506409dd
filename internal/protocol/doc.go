// Package protocol defines the two closed message sets exchanged over the
// mailboxes and their wire encoding.
//
// Operations flow from the front end to the engine; draw commands flow
// back. Each direction carries exactly one family, so a payload found in a
// mailbox is decoded as that family only.
//
//	Operation:   InsertChar(char)
//	DrawCommand: RenderLine(line, text)
//
// # Wire Format
//
// Every message is a CBOR map tagged by "kind":
//
//	{"kind": "insert_char", "char": "h"}
//	{"kind": "render_line", "line": 0, "text": "hi"}
//
// Decoding never panics. Malformed, truncated, unknown-kind, or
// wrong-family payloads yield an *errors.DecodeError matching
// errors.ErrDecodeFailed. Size limits are enforced by the mailbox, not here.
package protocol
