package handlers

import (
	"errors"
	"net/http"

	"restaurant-api/events"
	"restaurant-api/store"

	"github.com/gin-gonic/gin"
)

// Association maintains a many-to-many relation between L (e.g. menu) and
// R (e.g. category). Both directions read the same join rows.
type Association[L, R any] struct {
	rel       store.Relation
	leftName  string
	rightName string
	deps      *Deps
}

// NewAssociation builds the handlers for one join relation.
func NewAssociation[L, R any](rel store.Relation, leftName, rightName string, deps *Deps) *Association[L, R] {
	return &Association[L, R]{rel: rel, leftName: leftName, rightName: rightName, deps: deps}
}

// Register mounts
//
//	POST|DELETE /<left>/:id/<right>/:rightId
//	GET         /<left>/:id/<right>
//	GET         /<right>/:id/<left>
func (a *Association[L, R]) Register(g *gin.RouterGroup) {
	pair := "/" + a.leftName + "/:id/" + a.rightName + "/:" + a.rightName + "Id"
	g.POST(pair, a.Link)
	g.DELETE(pair, a.Unlink)
	g.GET("/"+a.leftName+"/:id/"+a.rightName, a.ListRight)
	g.GET("/"+a.rightName+"/:id/"+a.leftName, a.ListLeft)
}

// Link associates two existing entities. Linking twice is not an error.
func (a *Association[L, R]) Link(c *gin.Context) {
	uow := a.deps.Store.Begin(c.Request.Context())
	left, right, ok := a.pair(c, uow)
	if !ok {
		return
	}

	uow.Link(a.rel, left, right)
	if err := uow.Commit(); err != nil {
		respondError(c, a.deps, err)
		return
	}

	body := a.body(left, right)
	a.deps.publish(c.Request.Context(), events.Event{Entity: a.leftName, Action: events.ActionLinked, ResourceID: left, Data: body})
	c.JSON(http.StatusCreated, body)
}

// Unlink removes one association, or answers 404 when there is none.
func (a *Association[L, R]) Unlink(c *gin.Context) {
	uow := a.deps.Store.Begin(c.Request.Context())
	left, right, ok := a.pair(c, uow)
	if !ok {
		return
	}

	linked, err := uow.Linked(a.rel, left, right)
	if err != nil {
		respondError(c, a.deps, err)
		return
	}
	if !linked {
		c.JSON(http.StatusNotFound, gin.H{"message": a.rightName + " is not linked to this " + a.leftName})
		return
	}

	uow.Unlink(a.rel, left, right)
	if err := uow.Commit(); err != nil {
		respondError(c, a.deps, err)
		return
	}

	a.deps.publish(c.Request.Context(), events.Event{Entity: a.leftName, Action: events.ActionUnlinked, ResourceID: left, Data: a.body(left, right)})
	c.Status(http.StatusNoContent)
}

// ListRight lists the R linked to one L.
func (a *Association[L, R]) ListRight(c *gin.Context) {
	uow := a.deps.Store.Begin(c.Request.Context())
	id, ok := a.exists(c, uow, new(L), a.leftName, "id")
	if !ok {
		return
	}
	items := []R{}
	if err := uow.RightOf(a.rel, id, &items); err != nil {
		respondError(c, a.deps, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(items), "items": items})
}

// ListLeft lists the L linked to one R.
func (a *Association[L, R]) ListLeft(c *gin.Context) {
	uow := a.deps.Store.Begin(c.Request.Context())
	id, ok := a.exists(c, uow, new(R), a.rightName, "id")
	if !ok {
		return
	}
	items := []L{}
	if err := uow.LeftOf(a.rel, id, &items); err != nil {
		respondError(c, a.deps, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(items), "items": items})
}

func (a *Association[L, R]) pair(c *gin.Context, uow *store.UnitOfWork) (uint, uint, bool) {
	left, ok := a.exists(c, uow, new(L), a.leftName, "id")
	if !ok {
		return 0, 0, false
	}
	right, ok := a.exists(c, uow, new(R), a.rightName, a.rightName+"Id")
	if !ok {
		return 0, 0, false
	}
	return left, right, true
}

// exists resolves a path id and checks the row behind it, answering 404 itself.
func (a *Association[L, R]) exists(c *gin.Context, uow *store.UnitOfWork, dst any, name, param string) (uint, bool) {
	id, ok := pathID(c, param)
	if !ok {
		notFound(c, name)
		return 0, false
	}
	if err := uow.Find(dst, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			notFound(c, name)
		} else {
			respondError(c, a.deps, err)
		}
		return 0, false
	}
	return id, true
}

func (a *Association[L, R]) body(left, right uint) gin.H {
	return gin.H{a.leftName + "Id": left, a.rightName + "Id": right}
}
