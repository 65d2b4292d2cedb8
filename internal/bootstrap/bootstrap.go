// Package bootstrap prepares a new database: schema, first admin account
// and optional sample data.
package bootstrap

import (
	"context"
	"crypto/rand"
	"database/sql"
	"fmt"
	"math/big"
	"os"

	"golang.org/x/crypto/bcrypt"

	"github.com/erazemk/opis/internal/db"
	"github.com/erazemk/opis/internal/model"
	"github.com/erazemk/opis/internal/store"
)

// PasswordLength is the length of generated admin passwords.
const PasswordLength = 16

// InitDatabase creates the database at path with the schema and an admin
// account, and returns the admin's generated password. The file is
// removed again when any step fails.
func InitDatabase(ctx context.Context, path, adminUsername string) (string, error) {
	database, err := db.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening database: %w", err)
	}

	fail := func(err error) (string, error) {
		database.Close()
		os.Remove(path)
		return "", err
	}

	if err := db.EnsureSchema(database); err != nil {
		return fail(fmt.Errorf("ensuring schema: %w", err))
	}

	password, err := CreateAdmin(ctx, database, adminUsername)
	if err != nil {
		return fail(err)
	}

	if err := database.Close(); err != nil {
		return "", fmt.Errorf("closing database: %w", err)
	}
	return password, nil
}

// CreateAdmin creates an admin account with a random password and returns
// the password.
func CreateAdmin(ctx context.Context, database *sql.DB, username string) (string, error) {
	password, err := GeneratePassword(PasswordLength)
	if err != nil {
		return "", fmt.Errorf("generating password: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}

	if _, err := store.CreateUser(ctx, database, username, string(hash), model.RoleAdmin); err != nil {
		return "", fmt.Errorf("creating admin user: %w", err)
	}
	return password, nil
}

// GeneratePassword creates a random password of the given length.
func GeneratePassword(length int) (string, error) {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%&*"
	result := make([]byte, length)
	for i := range result {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		result[i] = charset[n.Int64()]
	}
	return string(result), nil
}
