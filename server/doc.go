// Package server is the HTTP bridge process: a gin engine served with h2c
// and wrapped in the middleware chain from server/middleware.
//
// Probe endpoints live in server/endpoint:
//
//   - /health: aggregated component health
//   - /alive: liveness
//   - /ready: readiness
//   - /info: build information
//
// Application routes are registered on GinEngine by the api package.
package server
