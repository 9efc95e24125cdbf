package models

type Food struct {
	Base
	Title       string `json:"title" gorm:"size:64;not null" validate:"required,max=64"`
	Description string `json:"description" gorm:"type:text"`
	Price       int    `json:"price" gorm:"not null" validate:"gte=0"`
}

type FoodPatch struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Price       *int    `json:"price"`
}

func (p FoodPatch) ApplyTo(f *Food) {
	if p.Title != nil {
		f.Title = *p.Title
	}
	if p.Description != nil {
		f.Description = *p.Description
	}
	if p.Price != nil {
		f.Price = *p.Price
	}
}

// Category groups menus and food items. Titles are not required to be unique.
type Category struct {
	Base
	Title string `json:"title" gorm:"size:64;not null" validate:"required,max=64"`
}

type CategoryPatch struct {
	Title *string `json:"title"`
}

func (p CategoryPatch) ApplyTo(c *Category) {
	if p.Title != nil {
		c.Title = *p.Title
	}
}

// MenuCategory is one menu↔category association. Both sides of the
// relation are read from this single row, so they cannot disagree.
type MenuCategory struct {
	MenuID     uint     `json:"menuId" gorm:"primaryKey;autoIncrement:false"`
	CategoryID uint     `json:"categoryId" gorm:"primaryKey;autoIncrement:false;index"`
	Menu       Menu     `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	Category   Category `json:"-" gorm:"constraint:OnDelete:CASCADE"`
}

// FoodCategory is one food↔category association.
type FoodCategory struct {
	FoodID     uint     `json:"foodId" gorm:"primaryKey;autoIncrement:false"`
	CategoryID uint     `json:"categoryId" gorm:"primaryKey;autoIncrement:false;index"`
	Food       Food     `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	Category   Category `json:"-" gorm:"constraint:OnDelete:CASCADE"`
}
