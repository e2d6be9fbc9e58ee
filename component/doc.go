// Package component manages the lifecycle of long-running parts of the
// process: the HTTP bridge, the notification hub and periodic refreshers.
//
// Components start in registration order and stop in reverse order.
package component
