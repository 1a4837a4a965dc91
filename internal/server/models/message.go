package models

// Message is one chat line. ID carries the storage insertion order and is
// assigned on append; messages are never edited or deleted.
type Message struct {
	ID      int64
	Content string
	Sender  User
}
