// Package sse streams Server-Sent Events to connected clients.
//
// A Hub owns the set of connected clients and fans events out to those whose
// ID matches a glob pattern. ServeSSE attaches one HTTP response to the hub
// and writes frames until the request ends.
//
//	c := sse.NewComponent("/api/events")
//	registry.Register(c)
//	sse.PublishJSON(c.Hub(), "events:*", sse.EventTypeNotification, n)
package sse
