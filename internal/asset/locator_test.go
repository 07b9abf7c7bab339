package asset

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"testing"
	"testing/fstest"
)

type mapStore struct {
	fsys  fstest.MapFS
	reads []string
	err   error
}

func (m *mapStore) ReadFile(_ context.Context, name string) ([]byte, error) {
	m.reads = append(m.reads, name)
	if m.err != nil {
		return nil, m.err
	}
	return fs.ReadFile(m.fsys, name)
}

func newTestStore() *mapStore {
	fsys := fstest.MapFS{}
	for _, p := range Profiles() {
		for _, k := range p.Kinds {
			name := "static" + string(k.Default)
			fsys[name] = &fstest.MapFile{Data: []byte("default:" + k.String())}
		}
	}
	fsys["static/assets/logo.png"] = &fstest.MapFile{Data: []byte("logo")}
	return &mapStore{fsys: fsys}
}

var testRoots = Roots{Virtual: "/assets", Store: "static/assets"}

func TestLocatorName(t *testing.T) {
	l := NewLocator(newTestStore(), testRoots)

	tests := []struct {
		ref  Ref
		want string
		ok   bool
	}{
		{"/assets/logo.png", "static/assets/logo.png", true},
		{"assets/logo.png", "static/assets/logo.png", true},
		{"/assets/nested/a.png", "static/assets/nested/a.png", true},
		{"/assets/../etc/passwd", "", false},
		{"/assets", "", false},
		{"/assets/", "", false},
		{"/api/v1/projects/1/header", "", false},
		{"/assetsx/logo.png", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := l.Name(tt.ref)
		if got != tt.want || ok != tt.ok {
			t.Errorf("Name(%q) = %q, %v; want %q, %v", tt.ref, got, ok, tt.want, tt.ok)
		}
	}
}

func TestLocatorResolvePrimary(t *testing.T) {
	store := newTestStore()
	l := NewLocator(store, testRoots)

	got, err := l.Resolve(context.Background(), "/assets/logo.png", ProjectHeader.Default)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if string(got.Bytes) != "logo" || got.Fallback {
		t.Fatalf("Resolve = %q fallback=%v, want primary bytes", got.Bytes, got.Fallback)
	}
}

func TestLocatorFallbackPerKind(t *testing.T) {
	for _, p := range Profiles() {
		for _, k := range p.Kinds {
			t.Run(k.String(), func(t *testing.T) {
				l := NewLocator(newTestStore(), testRoots)
				got, err := l.ResolveKind(context.Background(), k, "/assets/missing.png")
				if err != nil {
					t.Fatalf("ResolveKind: %v", err)
				}
				want := []byte("default:" + k.String())
				if !bytes.Equal(got.Bytes, want) {
					t.Fatalf("bytes = %q, want %q", got.Bytes, want)
				}
				if !got.Fallback {
					t.Fatal("expected fallback")
				}
			})
		}
	}
}

func TestLocatorUnrecognizedPrefixFallsBack(t *testing.T) {
	l := NewLocator(newTestStore(), testRoots)
	got, err := l.ResolveKind(context.Background(), UserPfp, "/api/v1/users/abc/pfp")
	if err != nil {
		t.Fatalf("ResolveKind: %v", err)
	}
	if !got.Fallback {
		t.Fatal("expected fallback for served path")
	}
}

func TestLocatorDefaultMissing(t *testing.T) {
	store := &mapStore{fsys: fstest.MapFS{}}
	l := NewLocator(store, testRoots)

	_, err := l.ResolveKind(context.Background(), PostCover, "/assets/missing.png")
	if !errors.Is(err, ErrDefaultMissing) {
		t.Fatalf("err = %v, want ErrDefaultMissing", err)
	}
}

func TestLocatorNoDefault(t *testing.T) {
	l := NewLocator(newTestStore(), testRoots)
	_, err := l.Resolve(context.Background(), "/assets/missing.png", "")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestLocatorEmptyRef(t *testing.T) {
	l := NewLocator(newTestStore(), testRoots)
	_, err := l.Resolve(context.Background(), "  ", ProjectIcon.Default)
	if !errors.Is(err, ErrEmptyRef) {
		t.Fatalf("err = %v, want ErrEmptyRef", err)
	}
}

func TestLocatorStoreErrorIsNotAMiss(t *testing.T) {
	boom := errors.New("disk offline")
	store := newTestStore()
	store.err = boom
	l := NewLocator(store, testRoots)

	_, err := l.Resolve(context.Background(), "/assets/logo.png", ProjectIcon.Default)
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}
	if len(store.reads) != 1 {
		t.Fatalf("reads = %v, want a single primary read", store.reads)
	}
}

func TestLocatorSeparateDefaultsStore(t *testing.T) {
	primary := &mapStore{fsys: fstest.MapFS{}}
	defaults := newTestStore()
	l := NewLocator(primary, testRoots, WithDefaults(defaults))

	got, err := l.ResolveKind(context.Background(), CourseImg, "/assets/course.png")
	if err != nil {
		t.Fatalf("ResolveKind: %v", err)
	}
	if string(got.Bytes) != "default:"+CourseImg.String() {
		t.Fatalf("bytes = %q", got.Bytes)
	}
	if len(primary.reads) != 1 || len(defaults.reads) != 1 {
		t.Fatalf("primary reads %v, default reads %v", primary.reads, defaults.reads)
	}
}

func TestFieldHydrate(t *testing.T) {
	calls := 0
	resolve := func(_ context.Context, ref Ref) ([]byte, error) {
		calls++
		return []byte("resolved:" + ref), nil
	}
	ctx := context.Background()

	f := Field{Ref: "/assets/a.png"}
	got, hydrated, err := f.Hydrate(ctx, resolve)
	if err != nil || !hydrated || string(got.Blob) != "resolved:/assets/a.png" {
		t.Fatalf("Hydrate = %q, %v, %v", got.Blob, hydrated, err)
	}

	again, hydrated, err := got.Hydrate(ctx, resolve)
	if err != nil || hydrated || !bytes.Equal(again.Blob, got.Blob) {
		t.Fatalf("second Hydrate = %q, %v, %v", again.Blob, hydrated, err)
	}
	if calls != 1 {
		t.Fatalf("resolve calls = %d, want 1", calls)
	}

	absent, hydrated, err := Field{}.Hydrate(ctx, resolve)
	if err != nil || hydrated || absent.Cached() {
		t.Fatalf("absent Hydrate = %+v, %v, %v", absent, hydrated, err)
	}
}
