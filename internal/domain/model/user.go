package model

// User holds a registered user credential. PasswordHash and Salt are
// hex-encoded PBKDF2 material written by the offline admin CLI; the server
// never reads this table (authentication enforcement is not wired yet).
type User struct {
	Email        string
	PasswordHash string
	Salt         string
}
