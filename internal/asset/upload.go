package asset

import "fmt"

const DefaultMaxUploadBytes int64 = 10 << 20

// ValidateUpload rejects payloads that cannot be stored as a blob: empty
// ones and ones larger than limit. A limit of zero uses DefaultMaxUploadBytes.
func ValidateUpload(b []byte, limit int64) error {
	if limit <= 0 {
		limit = DefaultMaxUploadBytes
	}
	switch {
	case len(b) == 0:
		return fmt.Errorf("%w: empty payload", ErrMalformedUpload)
	case int64(len(b)) > limit:
		return fmt.Errorf("%w: %d bytes exceeds limit of %d", ErrMalformedUpload, len(b), limit)
	}
	return nil
}
