package asset

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"
)

// Store is a read-only byte source. A missing name must be reported with
// an error matching fs.ErrNotExist.
type Store interface {
	ReadFile(ctx context.Context, name string) ([]byte, error)
}

// Roots maps the virtual reference namespace onto the store namespace,
// e.g. "/assets" onto "static/assets".
type Roots struct {
	Virtual string
	Store   string
}

type Resolved struct {
	Bytes    []byte
	Name     string
	Fallback bool
}

// Locator resolves references to bytes, failing over to a default asset
// when the primary store has no content for the reference. It never
// mutates persisted state.
type Locator struct {
	primary  Store
	defaults Store
	roots    Roots
}

type LocatorOption func(*Locator)

// WithDefaults reads default assets from s instead of the primary store.
func WithDefaults(s Store) LocatorOption {
	return func(l *Locator) {
		l.defaults = s
	}
}

func NewLocator(primary Store, roots Roots, opts ...LocatorOption) *Locator {
	l := &Locator{
		primary:  primary,
		defaults: primary,
		roots:    roots,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Name rewrites ref into a store name. ok is false when ref does not live
// under the virtual root, including paths that escape it with "..".
func (l *Locator) Name(ref Ref) (string, bool) {
	if ref.IsZero() {
		return "", false
	}
	clean := path.Clean("/" + strings.TrimSpace(string(ref)))
	prefix := strings.TrimSuffix(path.Clean("/"+l.roots.Virtual), "/") + "/"
	if !strings.HasPrefix(clean, prefix) {
		return "", false
	}
	rest := strings.TrimPrefix(clean, prefix)
	if rest == "" {
		return "", false
	}
	name := path.Join(strings.Trim(l.roots.Store, "/"), rest)
	if !fs.ValidPath(name) {
		return "", false
	}
	return name, true
}

// Resolve returns the content of ref, or of def when the primary store
// misses. Only a missing resource triggers the fallback; any other store
// error is returned as is.
func (l *Locator) Resolve(ctx context.Context, ref Ref, def Ref) (Resolved, error) {
	if ref.IsZero() {
		return Resolved{}, ErrEmptyRef
	}

	if name, ok := l.Name(ref); ok {
		b, err := l.primary.ReadFile(ctx, name)
		switch {
		case err == nil:
			return Resolved{Bytes: b, Name: name}, nil
		case !errors.Is(err, fs.ErrNotExist):
			return Resolved{}, fmt.Errorf("read %s: %w", name, err)
		}
	}

	if def.IsZero() {
		return Resolved{}, fmt.Errorf("%w: %s", ErrNotFound, ref)
	}

	name, ok := l.Name(def)
	if !ok {
		return Resolved{}, fmt.Errorf("%w: %s is outside %s", ErrDefaultMissing, def, l.roots.Virtual)
	}
	b, err := l.defaults.ReadFile(ctx, name)
	if err != nil {
		return Resolved{}, fmt.Errorf("%w: %s: %w", ErrDefaultMissing, name, err)
	}
	return Resolved{Bytes: b, Name: name, Fallback: true}, nil
}

// ResolveKind resolves ref falling back to the default of k.
func (l *Locator) ResolveKind(ctx context.Context, k Kind, ref Ref) (Resolved, error) {
	return l.Resolve(ctx, ref, k.Default)
}
