// Package frontend is the client side of the editor link.
//
// A Client submits operations to the engine and drains draw commands
// into a LineCache, the front end's only copy of the document. The cache
// holds whatever the engine last said about each line:
//
//	client := frontend.New(pair)
//	_ = client.Submit(protocol.InsertChar{Char: 'h'})
//	...
//	client.Sync()            // apply everything the engine has sent
//	lines := client.Lines()  // ["h"]
//
// Client is safe for concurrent use: the TUI submits from its update loop
// while Run drains on another goroutine.
package frontend
