package util

import "strings"

// Storage-key layout. Data and lock markers live in disjoint keyspaces so
// prefix scans over data never observe lock markers:
//
//	data/<ns>/<key>       - cache entries
//	lock/<ns>/<key>_Lock  - recompute mutex markers
const (
	dataSeg = "data/"
	lockSeg = "lock/"

	// LockSuffix marks recompute mutex keys.
	LockSuffix = "_Lock"
)

// DataKey returns the storage key for a cache entry.
func DataKey(ns, key string) string {
	return dataSeg + ns + "/" + key
}

// DataPrefix returns the storage prefix covering all entries of ns whose
// user key starts with prefix.
func DataPrefix(ns, prefix string) string {
	return dataSeg + ns + "/" + prefix
}

// LockKey returns the mutex marker key for a cache entry.
func LockKey(ns, key string) string {
	return lockSeg + ns + "/" + key + LockSuffix
}

// UserKey strips the storage prefix of ns from a data key, recovering the
// key the caller supplied.
func UserKey(ns, storageKey string) string {
	return strings.TrimPrefix(storageKey, dataSeg+ns+"/")
}
