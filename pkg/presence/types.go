package presence

import (
	"encoding/json"
	"time"
)

// Announcement is published periodically by a responder so that peers on the
// same topic can learn about a registered actor without waiting for DHT
// propagation.
type Announcement struct {
	Actor     string    `json:"actor"`   // Registered actor name
	PeerID    string    `json:"peer_id"` // Host peer ID
	Addrs     []string  `json:"addrs"`   // Listen multiaddrs
	Timestamp time.Time `json:"timestamp"`
}

// Marshal serializes an announcement to JSON
func (a *Announcement) Marshal() ([]byte, error) {
	return json.Marshal(a)
}

// Unmarshal deserializes an announcement from JSON
func (a *Announcement) Unmarshal(data []byte) error {
	return json.Unmarshal(data, a)
}
