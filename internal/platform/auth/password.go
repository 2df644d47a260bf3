package auth

import "github.com/alexedwards/argon2id"

// HashPassword is the only way a plaintext password turns into a stored
// value; nothing outside this boundary reads or writes hashes directly.
func HashPassword(plain string) (string, error) {
	return argon2id.CreateHash(plain, argon2id.DefaultParams)
}

func CheckPassword(plain, hash string) bool {
	ok, err := argon2id.ComparePasswordAndHash(plain, hash)
	return err == nil && ok
}
