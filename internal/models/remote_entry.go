package models

import "time"

// RemoteEntry is one immutable snapshot of a file or directory reported by a
// remote directory listing. A new snapshot is produced every polling cycle
// for every path still present.
type RemoteEntry struct {
	Path        string    // Full path within the remote tree, unique per listing
	Name        string    // Base name as reported by the listing
	Size        int64     // Size in bytes, non-negative
	ModifiedAt  time.Time // Last modification time reported by the remote
	IsDirectory bool
}
