// Command validate is a small CLI that checks a users JSON file before
// deploying it. It checks:
//   - JSON structure and required fields (user_id, username, password_hash)
//   - Username format (4 to 9 word characters)
//   - Duplicate user IDs and usernames
//   - Password hash shape (bcrypt)
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strings"
)

// User mirrors the credential store's JSON schema.
type User struct {
	ID           string `json:"user_id"`
	Username     string `json:"username"`
	PasswordHash string `json:"password_hash"`
}

// ValidationResult captures the outcome of validating one users file.
// If Valid is true, Errors contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
}

var (
	usernameRe = regexp.MustCompile(`^\w{4,9}$`)
	bcryptRe   = regexp.MustCompile(`^\$2[aby]\$\d{2}\$[./A-Za-z0-9]{53}$`)
)

// validateUsersFile loads and validates a users JSON file.
func validateUsersFile(filePath string) ValidationResult {
	result := ValidationResult{
		File:   filePath,
		Valid:  true,
		Errors: []string{},
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Failed to read file: %v", err))
		return result
	}

	var users []User
	if err := json.Unmarshal(data, &users); err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Invalid JSON: %v", err))
		return result
	}

	seenIDs := make(map[string]bool)
	seenNames := make(map[string]bool)

	for i, u := range users {
		where := fmt.Sprintf("entry %d", i+1)
		if u.Username != "" {
			where = fmt.Sprintf("entry %d (%s)", i+1, u.Username)
		}

		if u.ID == "" {
			result.Valid = false
			result.Errors = append(result.Errors, fmt.Sprintf("%s: missing user_id", where))
		} else if seenIDs[u.ID] {
			result.Valid = false
			result.Errors = append(result.Errors, fmt.Sprintf("%s: duplicate user_id %q", where, u.ID))
		}
		seenIDs[u.ID] = true

		if !usernameRe.MatchString(u.Username) {
			result.Valid = false
			result.Errors = append(result.Errors, fmt.Sprintf("%s: username must be 4-9 word characters", where))
		} else if seenNames[u.Username] {
			result.Valid = false
			result.Errors = append(result.Errors, fmt.Sprintf("%s: duplicate username %q", where, u.Username))
		}
		seenNames[u.Username] = true

		if !bcryptRe.MatchString(u.PasswordHash) {
			result.Valid = false
			result.Errors = append(result.Errors, fmt.Sprintf("%s: password_hash is not a bcrypt hash", where))
		}
	}

	if result.Valid {
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Users: %d", len(users)))
	}
	return result
}

// main validates the users file given as the first argument, defaulting
// to users.json, and exits non-zero when it is invalid.
func main() {
	path := "users.json"
	if len(os.Args) > 1 {
		path = os.Args[1]
	}

	result := validateUsersFile(path)

	fmt.Printf("%s %s\n", strings.Repeat("=", 20), result.File)
	if result.Valid {
		fmt.Println("✅ VALID")
		for _, info := range result.Errors {
			fmt.Println("  " + info)
		}
		return
	}

	fmt.Println("❌ INVALID")
	for _, err := range result.Errors {
		fmt.Println("  ❌ " + err)
	}
	os.Exit(1)
}
