// Package user is the credential store: a flat list of user records
// kept in memory and mirrored to a JSON file. The file is rewritten in
// full on every signup; there is no incremental update and no protection
// against concurrent writers of the same file.
package user

import (
	"regexp"

	"golang.org/x/crypto/bcrypt"
)

// Usernames and passwords are 4-9 word characters.
var (
	usernamePattern = regexp.MustCompile(`^\w{4,9}$`)
	passwordPattern = regexp.MustCompile(`^\w{4,9}$`)
)

// User is one credential record. Passwords are stored as bcrypt hashes;
// the record is otherwise immutable once created.
type User struct {
	ID           string `json:"user_id"`
	Username     string `json:"username"`
	PasswordHash string `json:"password_hash"`
}

// Validate reports whether the username and password are acceptable for
// a new account.
func Validate(username, password string) bool {
	return usernamePattern.MatchString(username) && passwordPattern.MatchString(password)
}

// matches reports whether the given credentials belong to this record.
func (u *User) matches(username, password string) bool {
	if u.Username != username {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}
