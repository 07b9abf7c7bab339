package asset

import "context"

// Field is a single asset attribute of an entity: the reference plus the
// materialized blob cached next to it. The blob may be absent or stale.
type Field struct {
	Ref  Ref
	Blob []byte
}

func (f Field) Cached() bool {
	return len(f.Blob) > 0
}

// Hydrate returns the field with its blob materialized. hydrated reports
// whether resolve was called, in which case the caller should persist the
// result. A field without a reference stays absent and is not an error.
func (f Field) Hydrate(ctx context.Context, resolve func(context.Context, Ref) ([]byte, error)) (next Field, hydrated bool, err error) {
	if f.Cached() || f.Ref.IsZero() {
		return f, false, nil
	}
	b, err := resolve(ctx, f.Ref)
	if err != nil {
		return f, false, err
	}
	return Field{Ref: f.Ref, Blob: b}, true, nil
}
