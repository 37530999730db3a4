package chat

import (
	"strconv"
	"time"
)

// Sender labels that are not usernames.
const (
	AdminSender = "Admin"
	SelfSender  = "Me"
)

// Message is a text message as delivered to a connection.
type Message struct {
	Username  string `json:"username"`
	Text      string `json:"text"`
	CreatedAt int64  `json:"createdAt"`
}

// LocationMessage carries a map link instead of text.
type LocationMessage struct {
	Username  string `json:"username"`
	URL       string `json:"url"`
	CreatedAt int64  `json:"createdAt"`
}

const mapsURL = "https://google.com/maps?q="

// MessageFactory stamps outgoing messages. It is safe for concurrent use: the
// only state is the clock, which is never reassigned after construction.
type MessageFactory struct {
	now func() time.Time
}

// NewMessageFactory returns a factory using the wall clock.
func NewMessageFactory() *MessageFactory {
	return NewMessageFactoryWithClock(time.Now)
}

// NewMessageFactoryWithClock returns a factory that reads time from now.
func NewMessageFactoryWithClock(now func() time.Time) *MessageFactory {
	return &MessageFactory{now: now}
}

// GenerateMessage builds a text message from sender.
func (f *MessageFactory) GenerateMessage(sender, text string) Message {
	return Message{
		Username:  sender,
		Text:      text,
		CreatedAt: f.now().UnixMilli(),
	}
}

// GenerateLocationMessage builds a message linking to the given coordinates.
func (f *MessageFactory) GenerateLocationMessage(sender string, latitude, longitude float64) LocationMessage {
	return LocationMessage{
		Username:  sender,
		URL:       LocationURL(latitude, longitude),
		CreatedAt: f.now().UnixMilli(),
	}
}

// LocationURL renders coordinates as a map query link.
func LocationURL(latitude, longitude float64) string {
	return mapsURL +
		strconv.FormatFloat(latitude, 'f', -1, 64) + "," +
		strconv.FormatFloat(longitude, 'f', -1, 64)
}
