package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"ragtime/internal/pkg"
	"ragtime/internal/slug"

	"gorm.io/gorm"
)

type ReleaseType int

const (
	ReleaseSingle       ReleaseType = 1
	ReleaseExtendedPlay ReleaseType = 2
	ReleaseAlbum        ReleaseType = 3
)

func (t ReleaseType) Valid() bool {
	return t >= ReleaseSingle && t <= ReleaseAlbum
}

func (t ReleaseType) String() string {
	switch t {
	case ReleaseSingle:
		return "Single"
	case ReleaseExtendedPlay:
		return "EP"
	case ReleaseAlbum:
		return "Album"
	}
	return fmt.Sprintf("ReleaseType(%d)", int(t))
}

var ErrSlugBeforePersist = errors.New("composition must be persisted before its slug is generated")

// ValidationError 输入不完整或格式错误
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

type Composition struct {
	ID              uint64      `gorm:"primaryKey"`
	ArtistID        uint64      `gorm:"not null;index"`
	Artist          *User       `gorm:"foreignKey:ArtistID"`
	ReleaseType     ReleaseType `gorm:"not null"`
	Title           string      `gorm:"size:64;not null"`
	Description     string      `gorm:"type:text"`
	DescriptionHTML string      `gorm:"type:text"`
	Timestamp       time.Time   `gorm:"index;not null"`
	Slug            *string     `gorm:"uniqueIndex;size:128"`
}

func (Composition) TableName() string { return "compositions" }

// NewComposition description 经 SetDescription 写入，保证 html 同步
func NewComposition(releaseType ReleaseType, title, description string) *Composition {
	c := &Composition{
		ReleaseType: releaseType,
		Title:       title,
		Timestamp:   time.Now().UTC(),
	}
	c.SetDescription(description)
	return c
}

// SetDescription 每次写 description 都重新生成净化后的 html
func (c *Composition) SetDescription(description string) {
	c.Description = description
	c.DescriptionHTML = pkg.SanitizeDescription(description)
}

// BeforeSave 兜底：直接改字段也不会落库过期的 html
func (c *Composition) BeforeSave(tx *gorm.DB) error {
	c.DescriptionHTML = pkg.SanitizeDescription(c.Description)
	return nil
}

// GenerateSlug 需要已落库的 id；id 前缀保证唯一
func (c *Composition) GenerateSlug() error {
	if c.ID == 0 {
		return ErrSlugBeforePersist
	}
	s := fmt.Sprintf("%d-%s", c.ID, slug.Words(c.Title))
	c.Slug = &s
	return nil
}

func (c *Composition) SlugString() string {
	if c.Slug == nil {
		return ""
	}
	return *c.Slug
}

// CompositionPayload json 入参，指针区分缺失字段
type CompositionPayload struct {
	ReleaseType *int    `json:"release_type"`
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

func (p CompositionPayload) Validate() error {
	if p.ReleaseType == nil {
		return &ValidationError{Field: "release_type", Message: "Composition must have a release type."}
	}
	if !ReleaseType(*p.ReleaseType).Valid() {
		return &ValidationError{Field: "release_type", Message: "Composition release type must be 1 (single), 2 (EP) or 3 (album)."}
	}
	if p.Title == nil {
		return &ValidationError{Field: "title", Message: "Composition must have a title."}
	}
	if p.Description == nil {
		return &ValidationError{Field: "description", Message: "Composition must have a description."}
	}
	return nil
}

// CompositionFromJSON 从 API 请求体构造，id 在落库前为 0
func CompositionFromJSON(data []byte) (*Composition, error) {
	var p CompositionPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, &ValidationError{Field: "body", Message: "Composition payload is not valid JSON."}
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return NewComposition(ReleaseType(*p.ReleaseType), *p.Title, *p.Description), nil
}
