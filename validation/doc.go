// Package validation provides input validation for configuration, HTTP
// payloads and ledger import records.
//
// Struct tag validation uses go-playground/validator:
//
//	type GoalRequest struct {
//	    Target string `json:"target" validate:"required,numeric"`
//	}
//	err := validation.Validate(req)
//
// Programmatic validation collects field errors:
//
//	v := validation.New()
//	v.Required("action", rec.Action).OneOf("action", rec.Action, kinds)
//	if err := v.Validate(); err != nil { ... }
package validation
