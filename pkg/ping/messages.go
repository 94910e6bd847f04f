package ping

import (
	"encoding/json"
)

// Ping is a numbered request from the initiator
type Ping struct {
	Message  string `json:"message"`
	Sequence uint64 `json:"sequence"`
}

// Pong is the responder's reply carrying the running total
type Pong struct {
	Message    string `json:"message"`
	Sequence   uint64 `json:"sequence"`
	TotalPings uint64 `json:"total_pings"`
}

// Marshal serializes a ping to JSON
func (p *Ping) Marshal() ([]byte, error) {
	return json.Marshal(p)
}

// Unmarshal deserializes a ping from JSON
func (p *Ping) Unmarshal(data []byte) error {
	return json.Unmarshal(data, p)
}

// Marshal serializes a pong to JSON
func (p *Pong) Marshal() ([]byte, error) {
	return json.Marshal(p)
}

// Unmarshal deserializes a pong from JSON
func (p *Pong) Unmarshal(data []byte) error {
	return json.Unmarshal(data, p)
}
