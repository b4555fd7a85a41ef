package protocol

import (
	"encoding/json"
	"fmt"
)

// Version of the message envelope.
const Version = "v0"

// Event - versioned envelope carried in queue message bodies by the example
// programs. The consumer core treats bodies as opaque; this framing is an
// application-level convention only.
type Event struct {
	Version string `json:"version"`
	ID      string `json:"id,omitempty"`
	Source  string `json:"source"`
	Text    string `json:"text"`
}

// JSON - convert struct to json
func (e *Event) JSON() (string, error) {
	e.Version = Version
	bin, err := json.Marshal(e)
	return string(bin), err
}

// FromJSON - convert json to struct
func (e *Event) FromJSON(jsonString string) error {
	return json.Unmarshal([]byte(jsonString), e)
}

// String representation
func (e *Event) String() string {
	return fmt.Sprintf("id=%s source=%s text=%q", e.ID, e.Source, e.Text)
}
