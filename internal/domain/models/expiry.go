package models

// ExpiryBucket groups items by how soon they expire, relative to local midnight.
type ExpiryBucket string

const (
	ExpiryToday    ExpiryBucket = "today"
	ExpiryTomorrow ExpiryBucket = "tomorrow"
	ExpiryLater    ExpiryBucket = "later"
)

// ParseExpiryBucket validates a bucket name supplied by a caller.
func ParseExpiryBucket(s string) (ExpiryBucket, bool) {
	switch b := ExpiryBucket(s); b {
	case ExpiryToday, ExpiryTomorrow, ExpiryLater:
		return b, true
	default:
		return "", false
	}
}
