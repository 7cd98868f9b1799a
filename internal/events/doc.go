// Package events carries progress and diagnostic messages from the
// pipeline components to whatever presents them.
//
// Components never log directly. They emit Events to a Sink supplied by
// the caller:
//
//	sink := events.SinkFunc(func(e events.Event) {
//	    fmt.Println(e.Level, e.Message)
//	})
//	mgr, err := convert.NewManager(settings, encoder, sink)
//
// The CLI plugs in a zap-backed sink (see package logging), the TUI a
// channel-backed one, and tests use Collector.
package events
