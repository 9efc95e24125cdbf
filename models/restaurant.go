package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type Restaurant struct {
	Base
	Name          string   `json:"name" gorm:"size:32;not null" validate:"required,max=32"`
	Description   string   `json:"description" gorm:"type:text;not null"`
	AmOpeningTime []string `json:"amOpeningTime" gorm:"type:text;serializer:json"`
	PmOpeningTime []string `json:"pmOpeningTime" gorm:"type:text;serializer:json"`
	MaxGuest      int      `json:"maxGuest" gorm:"not null" validate:"gt=0"`
}

func (r *Restaurant) Normalize() {
	if r.AmOpeningTime == nil {
		r.AmOpeningTime = []string{}
	}
	if r.PmOpeningTime == nil {
		r.PmOpeningTime = []string{}
	}
}

type RestaurantPatch struct {
	Name          *string   `json:"name"`
	Description   *string   `json:"description"`
	AmOpeningTime *[]string `json:"amOpeningTime"`
	PmOpeningTime *[]string `json:"pmOpeningTime"`
	MaxGuest      *int      `json:"maxGuest"`
}

func (p RestaurantPatch) ApplyTo(r *Restaurant) {
	if p.Name != nil {
		r.Name = *p.Name
	}
	if p.Description != nil {
		r.Description = *p.Description
	}
	if p.AmOpeningTime != nil {
		r.AmOpeningTime = *p.AmOpeningTime
	}
	if p.PmOpeningTime != nil {
		r.PmOpeningTime = *p.PmOpeningTime
	}
	if p.MaxGuest != nil {
		r.MaxGuest = *p.MaxGuest
	}
}

// Menu belongs to a restaurant. Deleting a restaurant that still owns menus is refused.
type Menu struct {
	Base
	Title        string      `json:"title" gorm:"size:64;not null" validate:"required,max=64"`
	Description  string      `json:"description" gorm:"type:text"`
	Price        int         `json:"price" gorm:"not null" validate:"gte=0"`
	RestaurantID *uint       `json:"restaurantId" gorm:"index"`
	Restaurant   *Restaurant `json:"-" gorm:"foreignKey:RestaurantID"`
}

type MenuPatch struct {
	Title        *string `json:"title"`
	Description  *string `json:"description"`
	Price        *int    `json:"price"`
	RestaurantID *uint   `json:"restaurantId"`
}

func (p MenuPatch) ApplyTo(m *Menu) {
	if p.Title != nil {
		m.Title = *p.Title
	}
	if p.Description != nil {
		m.Description = *p.Description
	}
	if p.Price != nil {
		m.Price = *p.Price
	}
	if p.RestaurantID != nil {
		id := *p.RestaurantID
		m.RestaurantID = &id
	}
}

// Booking reserves seats at a restaurant for a given day and hour.
// The guest count is not checked against the restaurant's capacity.
type Booking struct {
	Base
	GuestNumber  int         `json:"guestNumber" gorm:"not null" validate:"gte=0"`
	OrderDate    time.Time   `json:"orderDate" gorm:"not null;index"`
	OrderHour    time.Time   `json:"orderHour" gorm:"not null"`
	Allergy      string      `json:"allergy" gorm:"size:255"`
	RestaurantID *uint       `json:"restaurantId" gorm:"index"`
	Restaurant   *Restaurant `json:"-" gorm:"foreignKey:RestaurantID"`
}

// Normalize truncates the order date to the start of its day so bookings
// group by calendar day.
func (b *Booking) Normalize() {
	if b.OrderDate.IsZero() {
		return
	}
	y, m, d := b.OrderDate.Date()
	b.OrderDate = time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

type BookingPatch struct {
	GuestNumber  *int       `json:"guestNumber"`
	OrderDate    *time.Time `json:"orderDate"`
	OrderHour    *time.Time `json:"orderHour"`
	Allergy      *string    `json:"allergy"`
	RestaurantID *uint      `json:"restaurantId"`
}

func (p BookingPatch) ApplyTo(b *Booking) {
	if p.GuestNumber != nil {
		b.GuestNumber = *p.GuestNumber
	}
	if p.OrderDate != nil {
		b.OrderDate = *p.OrderDate
	}
	if p.OrderHour != nil {
		b.OrderHour = *p.OrderHour
	}
	if p.Allergy != nil {
		b.Allergy = *p.Allergy
	}
	if p.RestaurantID != nil {
		id := *p.RestaurantID
		b.RestaurantID = &id
	}
}

type Picture struct {
	Base
	Title        string      `json:"title" gorm:"size:128;not null" validate:"required,max=128"`
	Slug         string      `json:"slug" gorm:"size:128;not null"`
	RestaurantID *uint       `json:"restaurantId" gorm:"index"`
	Restaurant   *Restaurant `json:"-" gorm:"foreignKey:RestaurantID"`
}

// Normalize derives a slug from the title when none was supplied.
func (p *Picture) Normalize() {
	if strings.TrimSpace(p.Slug) != "" {
		return
	}
	p.Slug = Slugify(p.Title) + "-" + uuid.NewString()[:8]
}

type PicturePatch struct {
	Title        *string `json:"title"`
	Slug         *string `json:"slug"`
	RestaurantID *uint   `json:"restaurantId"`
}

func (p PicturePatch) ApplyTo(pic *Picture) {
	if p.Title != nil {
		pic.Title = *p.Title
	}
	if p.Slug != nil {
		pic.Slug = *p.Slug
	}
	if p.RestaurantID != nil {
		id := *p.RestaurantID
		pic.RestaurantID = &id
	}
}

// Slugify lowercases s and joins its alphanumeric runs with dashes.
func Slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case b.Len() > 0 && !dash:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
