// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package transport

import "fmt"

// ReasonMissingID is the ProtocolError reason for a success response that
// carries neither an error nor a conversion identifier.
const ReasonMissingID = "missing id"

// ServerError reports a non-2xx HTTP status. Detail holds the backend's
// error text when the body carried one.
type ServerError struct {
	Status int
	Detail string
}

func (e *ServerError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("Server error: %d (%s)", e.Status, e.Detail)
	}
	return fmt.Sprintf("Server error: %d", e.Status)
}

// ApplicationError is a logical failure reported by the backend in the body
// of a success response. Message is surfaced to the user verbatim.
type ApplicationError struct {
	Message string
}

func (e *ApplicationError) Error() string { return e.Message }

// ProtocolError reports a success response that cannot be used: malformed
// JSON, or a body missing the expected fields.
type ProtocolError struct {
	Reason string
}

func (e *ProtocolError) Error() string {
	return "protocol error: " + e.Reason
}
