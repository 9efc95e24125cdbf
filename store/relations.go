package store

import "fmt"

// Relation describes a many-to-many join table stored as (left, right) id pairs.
type Relation struct {
	Table      string
	Left       string
	LeftTable  string
	Right      string
	RightTable string
}

var (
	MenuCategories = Relation{
		Table:      "menu_categories",
		Left:       "menu_id",
		LeftTable:  "menus",
		Right:      "category_id",
		RightTable: "categories",
	}
	FoodCategories = Relation{
		Table:      "food_categories",
		Left:       "food_id",
		LeftTable:  "foods",
		Right:      "category_id",
		RightTable: "categories",
	}
)

// Link queues the association of left and right. Linking twice is a no-op.
func (u *UnitOfWork) Link(rel Relation, left, right uint) {
	u.ops = append(u.ops, op{kind: opLink, rel: rel, left: left, right: right})
}

// Unlink queues the removal of a single association.
func (u *UnitOfWork) Unlink(rel Relation, left, right uint) {
	u.ops = append(u.ops, op{kind: opUnlink, rel: rel, left: left, right: right})
}

// DetachLeft queues the removal of every association of a left-side entity.
func (u *UnitOfWork) DetachLeft(rel Relation, left uint) {
	u.ops = append(u.ops, op{kind: opDetachLeft, rel: rel, left: left})
}

// DetachRight queues the removal of every association of a right-side entity.
func (u *UnitOfWork) DetachRight(rel Relation, right uint) {
	u.ops = append(u.ops, op{kind: opDetachRight, rel: rel, right: right})
}

// RightOf loads into dst the right-side entities linked to left
// (e.g. the categories of a menu).
func (u *UnitOfWork) RightOf(rel Relation, left uint, dst any) error {
	q := u.db.Table(rel.RightTable).
		Select(rel.RightTable+".*").
		Joins(fmt.Sprintf("JOIN %s ON %s.%s = %s.id", rel.Table, rel.Table, rel.Right, rel.RightTable)).
		Where(fmt.Sprintf("%s.%s = ?", rel.Table, rel.Left), left).
		Order(rel.RightTable + ".id")
	return translate(q.Find(dst).Error)
}

// LeftOf loads into dst the left-side entities linked to right
// (e.g. the menus of a category).
func (u *UnitOfWork) LeftOf(rel Relation, right uint, dst any) error {
	q := u.db.Table(rel.LeftTable).
		Select(rel.LeftTable+".*").
		Joins(fmt.Sprintf("JOIN %s ON %s.%s = %s.id", rel.Table, rel.Table, rel.Left, rel.LeftTable)).
		Where(fmt.Sprintf("%s.%s = ?", rel.Table, rel.Right), right).
		Order(rel.LeftTable + ".id")
	return translate(q.Find(dst).Error)
}

// Linked reports whether left and right are associated.
func (u *UnitOfWork) Linked(rel Relation, left, right uint) (bool, error) {
	var n int64
	err := u.db.Table(rel.Table).
		Where(fmt.Sprintf("%s = ? AND %s = ?", rel.Left, rel.Right), left, right).
		Count(&n).Error
	return n > 0, translate(err)
}
