// Package tui is the terminal front end: a bubbletea program that turns
// key presses into InsertChar operations and paints the line cache.
//
// The program never blocks on the engine. Submissions go through the
// front-end client's queue, and a background loop drains draw commands
// and pokes the program with a redraw message whenever lines changed.
package tui
