package asset

import (
	"fmt"
	"strconv"
	"strings"
)

// Ref is a logical asset path such as "/assets/foo.png" or a served path
// such as "/api/v1/projects/<id>/header".
type Ref string

func (r Ref) IsZero() bool {
	return strings.TrimSpace(string(r)) == ""
}

func (r Ref) String() string {
	return string(r)
}

// OrDefault returns def when r is empty.
func (r Ref) OrDefault(def Ref) Ref {
	if r.IsZero() {
		return def
	}
	return r
}

type Resource string

const (
	Projects     Resource = "projects"
	Users        Resource = "users"
	Posts        Resource = "posts"
	Certificates Resource = "certificates"
	Courses      Resource = "courses"
	Technologies Resource = "technologies"
)

type Slot string

const (
	SlotHeader Slot = "header"
	SlotIcon   Slot = "icon"
	SlotPfp    Slot = "pfp"
	SlotCover  Slot = "cover"
	SlotImage  Slot = "image"
)

// Kind is a single-asset field of one entity kind together with the
// default served when its reference cannot be resolved.
type Kind struct {
	Resource Resource
	Slot     Slot
	Default  Ref
}

func (k Kind) String() string {
	return string(k.Resource) + "/" + string(k.Slot)
}

// Profile describes which asset fields an entity kind owns.
// The first kind is the primary one; galleries fall back to its default.
type Profile struct {
	Resource Resource
	Kinds    []Kind
	Gallery  bool
}

var (
	ProjectHeader   = Kind{Projects, SlotHeader, "/assets/defaultProjectHeader.png"}
	ProjectIcon     = Kind{Projects, SlotIcon, "/assets/defaultProjectIcon.png"}
	UserPfp         = Kind{Users, SlotPfp, "/assets/defaultProfilePicture.png"}
	PostCover       = Kind{Posts, SlotCover, "/assets/defaultPostCover.png"}
	CertificateImg  = Kind{Certificates, SlotImage, "/assets/defaultCertificate.png"}
	CourseImg       = Kind{Courses, SlotImage, "/assets/defaultCourse.png"}
	TechnologyIcon  = Kind{Technologies, SlotIcon, "/assets/defaultTechnologyIcon.png"}
	defaultProfiles = []Profile{
		{Resource: Projects, Kinds: []Kind{ProjectHeader, ProjectIcon}, Gallery: true},
		{Resource: Users, Kinds: []Kind{UserPfp}, Gallery: true},
		{Resource: Posts, Kinds: []Kind{PostCover}, Gallery: true},
		{Resource: Certificates, Kinds: []Kind{CertificateImg}},
		{Resource: Courses, Kinds: []Kind{CourseImg}},
		{Resource: Technologies, Kinds: []Kind{TechnologyIcon}},
	}
)

// Profiles returns the profiles of every entity kind in a stable order.
func Profiles() []Profile {
	out := make([]Profile, len(defaultProfiles))
	copy(out, defaultProfiles)
	return out
}

func Lookup(r Resource) (Profile, error) {
	for _, p := range defaultProfiles {
		if p.Resource == r {
			return p, nil
		}
	}
	return Profile{}, fmt.Errorf("%w: resource %q", ErrUnknownKind, r)
}

func LookupKind(r Resource, s Slot) (Kind, error) {
	p, err := Lookup(r)
	if err != nil {
		return Kind{}, err
	}
	return p.Kind(s)
}

func (p Profile) Kind(s Slot) (Kind, error) {
	for _, k := range p.Kinds {
		if k.Slot == s {
			return k, nil
		}
	}
	return Kind{}, fmt.Errorf("%w: %s has no %q asset", ErrUnknownKind, p.Resource, s)
}

func (p Profile) Primary() Kind {
	return p.Kinds[0]
}

// Paths builds the served paths of assets. They are index addressed and
// stable for a given id/index pair.
type Paths struct {
	Prefix string
}

func (p Paths) base(r Resource, id string) string {
	return strings.TrimSuffix(p.Prefix, "/") + "/" + string(r) + "/" + id
}

func (p Paths) Asset(k Kind, id string) Ref {
	return Ref(p.base(k.Resource, id) + "/" + string(k.Slot))
}

func (p Paths) GalleryItem(r Resource, id string, i int) Ref {
	return Ref(p.base(r, id) + "/gallery/" + strconv.Itoa(i))
}

// Gallery returns the served path function for one entity's gallery.
func (p Paths) Gallery(r Resource, id string) func(int) Ref {
	return func(i int) Ref {
		return p.GalleryItem(r, id, i)
	}
}
