// Package store is the persistence gateway. Every request opens one
// UnitOfWork, reads through it, queues its mutations and commits once.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrConflict  = errors.New("conflicting record")
	ErrCommitted = errors.New("unit of work already committed")
)

// Gateway hands out units of work over a shared gorm connection pool.
type Gateway struct {
	db *gorm.DB
}

// New wraps an open gorm connection.
func New(db *gorm.DB) *Gateway {
	return &Gateway{db: db}
}

// Begin opens a unit of work bound to ctx.
func (g *Gateway) Begin(ctx context.Context) *UnitOfWork {
	return &UnitOfWork{db: g.db.WithContext(ctx)}
}

// SQL exposes the underlying pool and its driver name for raw queries.
func (g *Gateway) SQL() (*sql.DB, string, error) {
	sqlDB, err := g.db.DB()
	if err != nil {
		return nil, "", err
	}
	return sqlDB, g.db.Dialector.Name(), nil
}

type opKind int

const (
	opCreate opKind = iota
	opUpdate
	opDelete
	opLink
	opUnlink
	opDetachLeft
	opDetachRight
)

type op struct {
	kind        opKind
	value       any
	rel         Relation
	left, right uint
}

func (o op) apply(tx *gorm.DB) error {
	switch o.kind {
	case opCreate:
		return tx.Omit(clause.Associations).Create(o.value).Error
	case opUpdate:
		res := tx.Model(o.value).Select("*").Omit(clause.Associations).Updates(o.value)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// deleted by another unit of work since it was loaded
			return ErrNotFound
		}
		return nil
	case opDelete:
		return tx.Delete(o.value).Error
	case opLink:
		return tx.Exec(fmt.Sprintf("INSERT INTO %s (%s, %s) VALUES (?, ?) ON CONFLICT DO NOTHING",
			o.rel.Table, o.rel.Left, o.rel.Right), o.left, o.right).Error
	case opUnlink:
		return tx.Exec(fmt.Sprintf("DELETE FROM %s WHERE %s = ? AND %s = ?",
			o.rel.Table, o.rel.Left, o.rel.Right), o.left, o.right).Error
	case opDetachLeft:
		return tx.Exec(fmt.Sprintf("DELETE FROM %s WHERE %s = ?", o.rel.Table, o.rel.Left), o.left).Error
	case opDetachRight:
		return tx.Exec(fmt.Sprintf("DELETE FROM %s WHERE %s = ?", o.rel.Table, o.rel.Right), o.right).Error
	}
	return fmt.Errorf("unknown operation %d", o.kind)
}

// UnitOfWork batches mutations and applies them in one transaction on Commit.
// It is used by a single request and is not safe for concurrent use.
type UnitOfWork struct {
	db        *gorm.DB
	ops       []op
	committed bool
}

// Find loads the entity with the given primary key into dst.
func (u *UnitOfWork) Find(dst any, id uint) error {
	if id == 0 {
		return ErrNotFound
	}
	return translate(u.db.First(dst, id).Error)
}

// FindBy loads the first entity matching every column/value pair in criteria.
func (u *UnitOfWork) FindBy(dst any, criteria map[string]any) error {
	return translate(u.db.Where(criteria).First(dst).Error)
}

// FindAllBy loads every entity matching criteria, ordered by id. A nil
// criteria matches all rows.
func (u *UnitOfWork) FindAllBy(dst any, criteria map[string]any) error {
	q := u.db
	if len(criteria) > 0 {
		q = q.Where(criteria)
	}
	return translate(q.Order("id").Find(dst).Error)
}

type keyed interface {
	PrimaryKey() uint
}

// Add queues an insert for a new entity (zero primary key) or a full update
// of an existing one. Updating a row that no longer exists makes Commit fail
// with ErrNotFound.
func (u *UnitOfWork) Add(entity any) {
	kind := opCreate
	if k, ok := entity.(keyed); ok && k.PrimaryKey() != 0 {
		kind = opUpdate
	}
	u.ops = append(u.ops, op{kind: kind, value: entity})
}

// Remove queues the deletion of an entity.
func (u *UnitOfWork) Remove(entity any) {
	u.ops = append(u.ops, op{kind: opDelete, value: entity})
}

// Commit applies every queued mutation atomically. It may be called once.
func (u *UnitOfWork) Commit() error {
	if u.committed {
		return ErrCommitted
	}
	u.committed = true
	if len(u.ops) == 0 {
		return nil
	}
	err := u.db.Transaction(func(tx *gorm.DB) error {
		for _, o := range u.ops {
			if err := o.apply(tx); err != nil {
				return err
			}
		}
		return nil
	})
	return translate(err)
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey), errors.Is(err, gorm.ErrForeignKeyViolated), isConstraintViolation(err):
		return fmt.Errorf("%w: %v", ErrConflict, err)
	}
	return err
}

// isConstraintViolation catches drivers that do not translate their errors.
func isConstraintViolation(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "FOREIGN KEY constraint failed") ||
		strings.Contains(msg, "SQLSTATE 23505") ||
		strings.Contains(msg, "SQLSTATE 23503")
}
