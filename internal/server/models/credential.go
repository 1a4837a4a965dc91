package models

// Credential stores a username with its password digest. A record is
// written on the first successful login with a non-empty password and is
// never updated afterwards.
type Credential struct {
	ID           int64
	Username     string
	PasswordHash string
}
