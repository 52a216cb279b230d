package registry

// Registry maps authenticated user ids to their live connection. At most
// one entry exists per user; a newer connection for the same user
// overwrites the older one.
type Registry interface {
	// Register upserts the entry for userID. Last write wins.
	Register(userID, connID string)

	// Lookup resolves the connection currently on record for userID.
	Lookup(userID string) (string, bool)

	// Unregister removes the entry for userID, but only when connID is
	// the connection on record. A disconnect of a superseded connection
	// must not evict the newer session's entry.
	Unregister(userID, connID string) bool

	// Snapshot returns a copy of the current user -> connection mapping.
	Snapshot() map[string]string
}
