package player

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/pixil98/go-arena/internal/session"
)

const (
	DefaultMaxHandshakeBytes = 1024

	// NameTakenMarker starts the rejection sent when a name is already in use,
	// so clients can tell it apart from other failures.
	NameTakenMarker = "USERNAME_TAKEN"

	InvalidNameMessage = "Invalid name."
	NameTakenMessage   = NameTakenMarker + " Name already in use. Please reconnect with a different name."
	WelcomeMessage     = "Welcome, %s! You are at %d %d."
)

// Request is the handshake a client sends before any command.
type Request struct {
	Name string `json:"name"`
}

func (r *Request) Validate() error {
	if session.NormalizeName(r.Name) == "" {
		return session.ErrInvalidName
	}
	return nil
}

// ReadRequest decodes the first JSON value on r, reading at most limit bytes.
// The returned reader yields whatever followed the request on the stream.
func ReadRequest(r io.Reader, limit int64) (*Request, io.Reader, error) {
	dec := json.NewDecoder(io.LimitReader(r, limit))

	var req Request
	err := dec.Decode(&req)
	if err != nil {
		return nil, nil, fmt.Errorf("decoding handshake: %w", err)
	}

	return &req, io.MultiReader(dec.Buffered(), r), nil
}
