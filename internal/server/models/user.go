// Package models defines the server-side domain types.
package models

// User identifies a chat participant. Identity is immutable after creation;
// two users are equal iff their usernames match.
type User struct {
	Username      string
	Authenticated bool
}

// Unauthenticated returns the sentinel user that exists only while a
// connection is between channel setup and login.
func Unauthenticated() User {
	return User{}
}

// Authenticated returns a logged-in user for the given username.
func Authenticated(username string) User {
	return User{Username: username, Authenticated: true}
}
