package chat

import "errors"

// Errors reported back to the originating connection through its acknowledgement.
var (
	ErrMissingField  = errors.New("username and room are required")
	ErrNameTaken     = errors.New("username is in use")
	ErrNotJoined     = errors.New("connection has not joined a room")
	ErrProfane       = errors.New("profanity is not allowed")
	ErrAlreadyJoined = errors.New("connection has already joined a room")
)

// Wire codes sent alongside the error message.
const (
	CodeMissingField  = "MISSING_FIELD"
	CodeNameTaken     = "NAME_TAKEN"
	CodeNotJoined     = "NOT_JOINED"
	CodeProfane       = "PROFANE"
	CodeAlreadyJoined = "ALREADY_JOINED"
	CodeInternal      = "INTERNAL"
)

var userMessages = map[string]string{
	CodeMissingField:  "Username and room are required!",
	CodeNameTaken:     "Username is in use!",
	CodeNotJoined:     "You must join a room first!",
	CodeProfane:       "Profanity is not allowed!",
	CodeAlreadyJoined: "You have already joined a room!",
	CodeInternal:      "Something went wrong.",
}

// Code maps an error returned by the controller to its wire code.
func Code(err error) string {
	switch {
	case errors.Is(err, ErrMissingField):
		return CodeMissingField
	case errors.Is(err, ErrNameTaken):
		return CodeNameTaken
	case errors.Is(err, ErrNotJoined):
		return CodeNotJoined
	case errors.Is(err, ErrProfane):
		return CodeProfane
	case errors.Is(err, ErrAlreadyJoined):
		return CodeAlreadyJoined
	default:
		return CodeInternal
	}
}

// UserMessage returns the text shown to the end user for err.
func UserMessage(err error) string {
	return userMessages[Code(err)]
}
