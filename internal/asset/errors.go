package asset

import "errors"

var (
	ErrEmptyRef        = errors.New("asset reference is empty")
	ErrNotFound        = errors.New("asset not found")
	ErrDefaultMissing  = errors.New("default asset missing")
	ErrMalformedUpload = errors.New("malformed upload")
	ErrUnknownKind     = errors.New("unknown asset kind")
	ErrMisaligned      = errors.New("gallery references and blobs differ in length")
)
