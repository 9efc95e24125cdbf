package handlers

import (
	"errors"
	"net/http"

	"restaurant-api/events"
	"restaurant-api/models"
	"restaurant-api/store"

	"github.com/gin-gonic/gin"
)

// Resource is the CRUD controller shared by every entity. E is the entity,
// PE its pointer type and P the sparse patch decoded from request bodies.
type Resource[E any, PE interface {
	*E
	models.Entity
}, P models.Patch[E]] struct {
	name string
	deps *Deps

	// beforeDelete queues cleanup that must commit with the deletion.
	beforeDelete func(uow *store.UnitOfWork, id uint)
}

// NewResource builds the controller mounted under /api/<name>.
func NewResource[E any, PE interface {
	*E
	models.Entity
}, P models.Patch[E]](name string, deps *Deps) *Resource[E, PE, P] {
	return &Resource[E, PE, P]{name: name, deps: deps}
}

// OnDelete registers cleanup queued in the same unit of work as a deletion.
func (r *Resource[E, PE, P]) OnDelete(fn func(uow *store.UnitOfWork, id uint)) *Resource[E, PE, P] {
	r.beforeDelete = fn
	return r
}

// Register mounts the five CRUD routes under /<name>.
func (r *Resource[E, PE, P]) Register(g *gin.RouterGroup) {
	g.POST("/"+r.name, r.Create)
	g.GET("/"+r.name, r.List)
	g.GET("/"+r.name+"/:id", r.Show)
	g.PUT("/"+r.name+"/:id", r.Edit)
	g.DELETE("/"+r.name+"/:id", r.Delete)
}

// Create decodes a new entity, validates it and answers 201 with its Location.
func (r *Resource[E, PE, P]) Create(c *gin.Context) {
	var patch P
	if err := bindPatch(c, &patch); err != nil {
		respondError(c, r.deps, err)
		return
	}

	ent := new(E)
	patch.ApplyTo(ent)
	if err := r.prepare(ent); err != nil {
		respondError(c, r.deps, err)
		return
	}
	PE(ent).MarkCreated(r.deps.Now().UTC())

	uow := r.deps.Store.Begin(c.Request.Context())
	uow.Add(ent)
	if err := uow.Commit(); err != nil {
		respondError(c, r.deps, err)
		return
	}

	id := PE(ent).PrimaryKey()
	r.deps.publish(c.Request.Context(), events.Event{Entity: r.name, Action: events.ActionCreated, ResourceID: id, Data: ent})
	c.Header("Location", location(c, r.name, id))
	c.JSON(http.StatusCreated, ent)
}

// Show returns one entity or 404.
func (r *Resource[E, PE, P]) Show(c *gin.Context) {
	ent, ok := r.load(c, r.deps.Store.Begin(c.Request.Context()))
	if !ok {
		return
	}
	c.JSON(http.StatusOK, ent)
}

// List returns every entity ordered by id.
func (r *Resource[E, PE, P]) List(c *gin.Context) {
	items := []E{}
	if err := r.deps.Store.Begin(c.Request.Context()).FindAllBy(&items, nil); err != nil {
		respondError(c, r.deps, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(items), "items": items})
}

// Edit applies a sparse update. Keys absent from the body keep their values.
func (r *Resource[E, PE, P]) Edit(c *gin.Context) {
	uow := r.deps.Store.Begin(c.Request.Context())
	ent, ok := r.load(c, uow)
	if !ok {
		return
	}

	var patch P
	if err := bindPatch(c, &patch); err != nil {
		respondError(c, r.deps, err)
		return
	}
	patch.ApplyTo(ent)
	if err := r.prepare(ent); err != nil {
		respondError(c, r.deps, err)
		return
	}
	PE(ent).MarkUpdated(r.deps.Now().UTC())

	uow.Add(ent)
	if err := uow.Commit(); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			notFound(c, r.name)
			return
		}
		respondError(c, r.deps, err)
		return
	}

	r.deps.publish(c.Request.Context(), events.Event{Entity: r.name, Action: events.ActionUpdated, ResourceID: PE(ent).PrimaryKey(), Data: ent})
	c.JSON(http.StatusOK, ent)
}

// Delete removes an entity and its association rows, answering 204.
func (r *Resource[E, PE, P]) Delete(c *gin.Context) {
	uow := r.deps.Store.Begin(c.Request.Context())
	ent, ok := r.load(c, uow)
	if !ok {
		return
	}

	id := PE(ent).PrimaryKey()
	if r.beforeDelete != nil {
		r.beforeDelete(uow, id)
	}
	uow.Remove(ent)
	if err := uow.Commit(); err != nil {
		respondError(c, r.deps, err)
		return
	}

	r.deps.publish(c.Request.Context(), events.Event{Entity: r.name, Action: events.ActionDeleted, ResourceID: id})
	c.Status(http.StatusNoContent)
}

// load fetches the entity named by the :id parameter, answering 404 itself
// when there is none.
func (r *Resource[E, PE, P]) load(c *gin.Context, uow *store.UnitOfWork) (*E, bool) {
	id, ok := pathID(c, "id")
	if !ok {
		notFound(c, r.name)
		return nil, false
	}
	ent := new(E)
	if err := uow.Find(ent, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			notFound(c, r.name)
		} else {
			respondError(c, r.deps, err)
		}
		return nil, false
	}
	return ent, true
}

// prepare derives computed fields and checks the entity's invariants.
func (r *Resource[E, PE, P]) prepare(ent *E) error {
	if n, ok := any(ent).(models.Normalizer); ok {
		n.Normalize()
	}
	return r.deps.Validate.Struct(ent)
}
