// Package errors provides the error taxonomy shared by every chaincounter
// component.
//
// All failures that cross a package boundary are *AppError values carrying a
// machine-readable code, a user-facing message, an HTTP status for the
// bridge, and the underlying cause. Callers classify with HasCode or CodeOf
// rather than comparing messages.
package errors
