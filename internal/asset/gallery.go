package asset

import "fmt"

// Item is one gallery entry: its served reference and its blob.
type Item struct {
	Ref  Ref
	Blob []byte
}

// Gallery is an ordered list of items. References and blobs are kept in
// one slice so the two sequences cannot drift apart.
type Gallery struct {
	items []Item
}

func NewGallery(refs []Ref, blobs [][]byte) (Gallery, error) {
	if len(refs) != len(blobs) {
		return Gallery{}, fmt.Errorf("%w: %d refs, %d blobs", ErrMisaligned, len(refs), len(blobs))
	}
	items := make([]Item, len(refs))
	for i := range refs {
		items[i] = Item{Ref: refs[i], Blob: blobs[i]}
	}
	return Gallery{items: items}, nil
}

func GalleryOf(items ...Item) Gallery {
	return Gallery{items: append([]Item(nil), items...)}
}

func (g Gallery) Len() int {
	return len(g.items)
}

func (g Gallery) Items() []Item {
	return append([]Item(nil), g.items...)
}

func (g Gallery) Refs() []Ref {
	refs := make([]Ref, len(g.items))
	for i, it := range g.items {
		refs[i] = it.Ref
	}
	return refs
}

func (g Gallery) Blobs() [][]byte {
	blobs := make([][]byte, len(g.items))
	for i, it := range g.items {
		blobs[i] = it.Blob
	}
	return blobs
}

// Indexed reports whether every reference equals served(i).
func (g Gallery) Indexed(served func(int) Ref) bool {
	for i, it := range g.items {
		if it.Ref != served(i) {
			return false
		}
	}
	return true
}

func (g Gallery) reindex(served func(int) Ref) Gallery {
	for i := range g.items {
		g.items[i].Ref = served(i)
	}
	return g
}

// Synchronizer computes the next state of a gallery. It never modifies the
// gallery it is given; the result replaces it as a whole.
type Synchronizer struct {
	MaxBytes int64
}

// Sync keeps the items whose reference is not in del, appends one item per
// payload in add, and regenerates every reference from its final index.
// Deleting an unknown reference is a no-op. A malformed payload fails the
// whole call and no gallery is returned.
func (s Synchronizer) Sync(current Gallery, del []Ref, add [][]byte, served func(int) Ref) (Gallery, error) {
	for i, b := range add {
		if err := ValidateUpload(b, s.MaxBytes); err != nil {
			return Gallery{}, fmt.Errorf("gallery item %d: %w", i, err)
		}
	}

	drop := make(map[Ref]struct{}, len(del))
	for _, r := range del {
		drop[r] = struct{}{}
	}

	next := make([]Item, 0, len(current.items)+len(add))
	for _, it := range current.items {
		if _, ok := drop[it.Ref]; ok {
			continue
		}
		next = append(next, it)
	}
	for _, b := range add {
		next = append(next, Item{Blob: append([]byte(nil), b...)})
	}

	return Gallery{items: next}.reindex(served), nil
}

// RemoveAt drops the item at index i and regenerates the references of the
// remaining items. ok is false, and current is returned, when i is out of range.
func (s Synchronizer) RemoveAt(current Gallery, i int, served func(int) Ref) (Gallery, bool) {
	if i < 0 || i >= len(current.items) {
		return current, false
	}
	next := make([]Item, 0, len(current.items)-1)
	next = append(next, current.items[:i]...)
	next = append(next, current.items[i+1:]...)
	return Gallery{items: next}.reindex(served), true
}
