// Package httputil provides shared HTTP utilities for consistent Redfish
// response handling.
package httputil

import (
	"encoding/json"
	"net/http"
)

// Content types used by the service.
const (
	ContentTypeJSON = "application/json"
	ContentTypeXML  = "application/xml"
)

// ODataVersion is sent in the OData-Version header of every response.
const ODataVersion = "4.0"

// Redfish Base message identifiers used in error responses.
const (
	MessageGeneralError         = "GeneralError"
	MessageMalformedJSON        = "MalformedJSON"
	MessageResourceMissingAtURI = "ResourceMissingAtURI"
	MessageOperationNotAllowed  = "OperationNotAllowed"
	MessageNotAcceptable        = "NotAcceptable"
	MessageInternalError        = "InternalError"
)

// baseRegistry prefixes message identifiers in error codes.
const baseRegistry = "Base.1.0."

// WriteJSON writes a JSON response with the given status code, indented by
// four spaces. It sets the Content-Type header to application/json.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", ContentTypeJSON)
	w.WriteHeader(status)
	if data != nil {
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "    ")
		_ = enc.Encode(data)
	}
}

// WriteXML writes an already encoded XML body with the given status code.
func WriteXML(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", ContentTypeXML)
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// RedfishError is the body of a Redfish error response.
type RedfishError struct {
	Error RedfishErrorBody `json:"error"`
}

// RedfishErrorBody carries the message identifier and text.
type RedfishErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// WriteRedfishError writes a Redfish error envelope:
//
//	{"error": {"code": "Base.1.0.<messageID>", "message": "..."}}
func WriteRedfishError(w http.ResponseWriter, status int, messageID, message string) {
	WriteJSON(w, status, RedfishError{
		Error: RedfishErrorBody{
			Code:    baseRegistry + messageID,
			Message: message,
		},
	})
}

// WriteMethodNotAllowed writes a 405 response listing the allowed methods.
func WriteMethodNotAllowed(w http.ResponseWriter, allow string) {
	w.Header().Set("Allow", allow)
	WriteRedfishError(w, http.StatusMethodNotAllowed, MessageOperationNotAllowed, "Method not allowed; allowed: "+allow)
}

// WriteCreated writes a 201 Created response with a Location header.
func WriteCreated(w http.ResponseWriter, location string, data any) {
	if location != "" {
		w.Header().Set("Location", location)
	}
	WriteJSON(w, http.StatusCreated, data)
}

// WriteOK writes a 200 OK response with data.
func WriteOK(w http.ResponseWriter, data any) {
	WriteJSON(w, http.StatusOK, data)
}

// WriteBadRequest writes a 400 Bad Request error response.
func WriteBadRequest(w http.ResponseWriter, messageID, message string) {
	WriteRedfishError(w, http.StatusBadRequest, messageID, message)
}

// WriteNotFound writes a 404 Not Found error response.
func WriteNotFound(w http.ResponseWriter, message string) {
	WriteRedfishError(w, http.StatusNotFound, MessageResourceMissingAtURI, message)
}

// WriteInternalError writes a 500 Internal Server Error response.
func WriteInternalError(w http.ResponseWriter, message string) {
	WriteRedfishError(w, http.StatusInternalServerError, MessageInternalError, message)
}
