package chat

import (
	"fmt"
	"strings"
)

// ProfanityMode selects what happens to a message the ContentPolicy flags.
type ProfanityMode string

const (
	// ProfanityCensor relays the cleaned text to the room, warns the sender
	// privately and still acknowledges with ErrProfane.
	ProfanityCensor ProfanityMode = "censor"
	// ProfanityReject drops the message and acknowledges with ErrProfane.
	ProfanityReject ProfanityMode = "reject"
)

// ParseProfanityMode accepts "censor" or "reject", case-insensitively.
// An empty string selects ProfanityCensor.
func ParseProfanityMode(s string) (ProfanityMode, error) {
	switch ProfanityMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ProfanityCensor:
		return ProfanityCensor, nil
	case ProfanityReject:
		return ProfanityReject, nil
	default:
		return "", fmt.Errorf("unknown profanity mode %q", s)
	}
}

// Options tunes the SessionController.
type Options struct {
	ProfanityMode ProfanityMode
}
