// Package api exposes the counter client over HTTP.
//
// Every route lives under the group passed to Handler.Register. Failures are
// written as errors.ErrorResponse with the status carried by the AppError,
// so NOT_CONNECTED is 412, ACTION_IN_PROGRESS is 409 and UNAUTHORIZED is 403.
// Notifications and action outcomes are pushed to GET /events as
// Server-Sent Events.
package api
