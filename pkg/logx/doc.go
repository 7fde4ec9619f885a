// Package logx is printbot's logging layer: a small value-type Logger over
// zerolog whose sinks and level can be swapped at runtime.
//
// Console output is human readable (short timestamp and caller); the file
// sink and the "json" console format write one JSON object per line.
package logx
