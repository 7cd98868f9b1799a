// Package logging turns component events into zap log entries.
//
// Output goes to two cores: a human console core on stderr (coloured when
// stderr is a terminal) and a JSON file core rotated by lumberjack.
package logging
