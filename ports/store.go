package ports

// SessionStore persists a single session credential slot in client-durable
// storage. It never inspects the credential; expiry is the issuer's job.
type SessionStore interface {
	// Save writes the credential, replacing any previous one.
	Save(token string) error

	// Load returns the stored credential, or core.ErrNoSession if the
	// slot is empty.
	Load() (string, error)

	// Clear empties the slot. Clearing an empty slot is not an error.
	Clear() error
}
