package ports

// PasswordHasher isolates the hashing algorithm from callers. All password
// hashing and comparison in the system routes through this interface; no
// other component implements hashing independently.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	// Verify reports whether plaintext matches the stored hash. Comparison
	// is constant-time safe.
	Verify(plaintext, hash string) bool
}
