package database

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/exo/showcase/internal/asset"
	"github.com/exo/showcase/internal/usecase"
)

// AssetColumns is one single-asset field, embedded with a slot prefix
// such as header_path, header_blob, header_colors.
type AssetColumns struct {
	Path   string         `gorm:"column:path;type:varchar(512)"`
	Blob   []byte         `gorm:"column:blob;type:bytea"`
	Colors datatypes.JSON `gorm:"column:colors"`
}

func assetColumn(s asset.Slot, name string) string {
	return string(s) + "_" + name
}

type Base struct {
	ID             uuid.UUID `gorm:"column:id;primaryKey;type:uuid;default:uuid_generate_v4()"`
	Name           string    `gorm:"column:name;type:varchar(255)"`
	GalleryVersion int       `gorm:"column:gallery_version;not null;default:0"`
	CreatedAt      time.Time `gorm:"column:created_at"`
	UpdatedAt      time.Time `gorm:"column:updated_at"`
}

// owner is a row model carrying asset columns.
type owner interface {
	TableName() string
	base() *Base
	columns() map[asset.Slot]*AssetColumns
}

type Project struct {
	Base   `gorm:"embedded"`
	Header AssetColumns `gorm:"embedded;embeddedPrefix:header_"`
	Icon   AssetColumns `gorm:"embedded;embeddedPrefix:icon_"`
}

func (Project) TableName() string { return "projects" }
func (p *Project) base() *Base    { return &p.Base }
func (p *Project) columns() map[asset.Slot]*AssetColumns {
	return map[asset.Slot]*AssetColumns{asset.SlotHeader: &p.Header, asset.SlotIcon: &p.Icon}
}

type User struct {
	Base `gorm:"embedded"`
	Pfp  AssetColumns `gorm:"embedded;embeddedPrefix:pfp_"`
}

func (User) TableName() string { return "users" }
func (u *User) base() *Base    { return &u.Base }
func (u *User) columns() map[asset.Slot]*AssetColumns {
	return map[asset.Slot]*AssetColumns{asset.SlotPfp: &u.Pfp}
}

type Post struct {
	Base  `gorm:"embedded"`
	Cover AssetColumns `gorm:"embedded;embeddedPrefix:cover_"`
}

func (Post) TableName() string { return "posts" }
func (p *Post) base() *Base    { return &p.Base }
func (p *Post) columns() map[asset.Slot]*AssetColumns {
	return map[asset.Slot]*AssetColumns{asset.SlotCover: &p.Cover}
}

type Certificate struct {
	Base  `gorm:"embedded"`
	Image AssetColumns `gorm:"embedded;embeddedPrefix:image_"`
}

func (Certificate) TableName() string { return "certificates" }
func (c *Certificate) base() *Base    { return &c.Base }
func (c *Certificate) columns() map[asset.Slot]*AssetColumns {
	return map[asset.Slot]*AssetColumns{asset.SlotImage: &c.Image}
}

type Course struct {
	Base  `gorm:"embedded"`
	Image AssetColumns `gorm:"embedded;embeddedPrefix:image_"`
}

func (Course) TableName() string { return "courses" }
func (c *Course) base() *Base    { return &c.Base }
func (c *Course) columns() map[asset.Slot]*AssetColumns {
	return map[asset.Slot]*AssetColumns{asset.SlotImage: &c.Image}
}

type Technology struct {
	Base `gorm:"embedded"`
	Icon AssetColumns `gorm:"embedded;embeddedPrefix:icon_"`
}

func (Technology) TableName() string { return "technologies" }
func (t *Technology) base() *Base    { return &t.Base }
func (t *Technology) columns() map[asset.Slot]*AssetColumns {
	return map[asset.Slot]*AssetColumns{asset.SlotIcon: &t.Icon}
}

var (
	owners = map[asset.Resource]func() owner{
		asset.Projects:     func() owner { return &Project{} },
		asset.Users:        func() owner { return &User{} },
		asset.Posts:        func() owner { return &Post{} },
		asset.Certificates: func() owner { return &Certificate{} },
		asset.Courses:      func() owner { return &Course{} },
		asset.Technologies: func() owner { return &Technology{} },
	}
	ownerOrder = []asset.Resource{
		asset.Projects, asset.Users, asset.Posts,
		asset.Certificates, asset.Courses, asset.Technologies,
	}
)

func newOwner(r asset.Resource) (owner, asset.Profile, error) {
	p, err := asset.Lookup(r)
	if err != nil {
		return nil, asset.Profile{}, err
	}
	f, ok := owners[r]
	if !ok {
		return nil, asset.Profile{}, fmt.Errorf("%w: no table for %q", asset.ErrUnknownKind, r)
	}
	return f(), p, nil
}

// GalleryItem is one gallery entry of any owner, addressed by position.
type GalleryItem struct {
	ID        uuid.UUID `gorm:"column:id;primaryKey;type:uuid;default:uuid_generate_v4()"`
	OwnerType string    `gorm:"column:owner_type;type:varchar(50);not null;uniqueIndex:idx_gallery_owner_position,priority:1"`
	OwnerID   uuid.UUID `gorm:"column:owner_id;type:uuid;not null;uniqueIndex:idx_gallery_owner_position,priority:2"`
	Position  int       `gorm:"column:position;type:int;not null;uniqueIndex:idx_gallery_owner_position,priority:3"`
	Path      string    `gorm:"column:path;type:varchar(512);not null"`
	Blob      []byte    `gorm:"column:blob;type:bytea"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (GalleryItem) TableName() string {
	return "gallery_items"
}

// Convert core model to Usecase
func convertToUsecase(r asset.Resource, p asset.Profile, o owner, items []GalleryItem) usecase.Entity {
	b := o.base()
	e := usecase.Entity{
		ID:             b.ID,
		Resource:       r,
		Name:           b.Name,
		GalleryVersion: b.GalleryVersion,
		CreatedAt:      b.CreatedAt,
		UpdatedAt:      b.UpdatedAt,
	}
	cols := o.columns()
	for _, k := range p.Kinds {
		c := cols[k.Slot]
		e.Assets = append(e.Assets, usecase.Asset{
			Slot:   k.Slot,
			Path:   asset.Ref(c.Path),
			Blob:   c.Blob,
			Colors: []byte(c.Colors),
		})
	}
	gi := make([]asset.Item, len(items))
	for i, it := range items {
		gi[i] = asset.Item{Ref: asset.Ref(it.Path), Blob: it.Blob}
	}
	e.Gallery = asset.GalleryOf(gi...)
	return e
}
