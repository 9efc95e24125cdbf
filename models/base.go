package models

import "time"

// Base carries the identity and lifecycle timestamps shared by every entity.
// Timestamps are stamped by the controllers, never by gorm hooks.
type Base struct {
	ID        uint       `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time  `json:"createdAt" gorm:"not null;autoCreateTime:false"`
	UpdatedAt *time.Time `json:"updatedAt" gorm:"autoUpdateTime:false"`
}

func (b *Base) PrimaryKey() uint { return b.ID }

func (b *Base) MarkCreated(at time.Time) { b.CreatedAt = at }

// MarkUpdated records the first and every following edit.
func (b *Base) MarkUpdated(at time.Time) { b.UpdatedAt = &at }

// Entity is implemented by pointers to every persisted model.
type Entity interface {
	PrimaryKey() uint
	MarkCreated(at time.Time)
	MarkUpdated(at time.Time)
}

// Patch is a sparse update decoded from a JSON payload: only keys present in
// the payload are applied.
type Patch[E any] interface {
	ApplyTo(e *E)
}

// Normalizer is implemented by entities that derive fields after a patch is applied.
type Normalizer interface {
	Normalize()
}
