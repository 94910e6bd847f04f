package actor

import (
	"encoding/json"
)

// Actor messaging protocol identifier. Must match between peers.
const (
	ProtocolID = "/kameo-ping/actor/1.0.0"
)

// Request is the wire envelope carrying a message to a named actor
type Request struct {
	ID      string          `json:"id"`    // Correlation ID
	Actor   string          `json:"actor"` // Registered actor name
	Payload json.RawMessage `json:"payload"`
}

// Response is the wire envelope carrying an actor's reply
type Response struct {
	ID      string          `json:"id"`
	Payload json.RawMessage `json:"payload,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// Marshal serializes a request to JSON
func (r *Request) Marshal() ([]byte, error) {
	return json.Marshal(r)
}

// Unmarshal deserializes a request from JSON
func (r *Request) Unmarshal(data []byte) error {
	return json.Unmarshal(data, r)
}

// Marshal serializes a response to JSON
func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}

// Unmarshal deserializes a response from JSON
func (r *Response) Unmarshal(data []byte) error {
	return json.Unmarshal(data, r)
}
