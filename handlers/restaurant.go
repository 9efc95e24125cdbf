package handlers

import (
	"errors"
	"net/http"

	"restaurant-api/models"
	"restaurant-api/store"

	"github.com/gin-gonic/gin"
)

// ── Restaurant-owned collections ─────────────────────────────────────────────

// RestaurantChildren lists the menus, bookings or pictures of one restaurant.
type RestaurantChildren struct {
	deps *Deps
}

// NewRestaurantChildren builds the per-restaurant listing handlers.
func NewRestaurantChildren(deps *Deps) *RestaurantChildren {
	return &RestaurantChildren{deps: deps}
}

// Register mounts the listings under /restaurant/:id.
func (h *RestaurantChildren) Register(g *gin.RouterGroup) {
	g.GET("/restaurant/:id/menu", h.Menus)
	g.GET("/restaurant/:id/booking", h.Bookings)
	g.GET("/restaurant/:id/picture", h.Pictures)
	g.GET("/restaurant/:id/occupancy", h.Occupancy)
}

// Menus lists the menus of a restaurant.
func (h *RestaurantChildren) Menus(c *gin.Context) {
	listOwned[models.Menu](c, h.deps)
}

// Bookings lists the bookings of a restaurant.
func (h *RestaurantChildren) Bookings(c *gin.Context) {
	listOwned[models.Booking](c, h.deps)
}

// Pictures lists the pictures of a restaurant.
func (h *RestaurantChildren) Pictures(c *gin.Context) {
	listOwned[models.Picture](c, h.deps)
}

// Occupancy reports bookings and guests per day next to the restaurant's
// capacity. Nothing is rejected when a day is over capacity.
func (h *RestaurantChildren) Occupancy(c *gin.Context) {
	restaurant, ok := findRestaurant(c, h.deps, h.deps.Store.Begin(c.Request.Context()))
	if !ok {
		return
	}
	occ, err := h.deps.Reporter.Occupancy(c.Request.Context(), restaurant.ID, restaurant.MaxGuest)
	if err != nil {
		respondError(c, h.deps, err)
		return
	}
	c.JSON(http.StatusOK, occ)
}

func listOwned[E any](c *gin.Context, d *Deps) {
	uow := d.Store.Begin(c.Request.Context())
	restaurant, ok := findRestaurant(c, d, uow)
	if !ok {
		return
	}
	items := []E{}
	if err := uow.FindAllBy(&items, map[string]any{"restaurant_id": restaurant.ID}); err != nil {
		respondError(c, d, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(items), "items": items})
}

func findRestaurant(c *gin.Context, d *Deps, uow *store.UnitOfWork) (*models.Restaurant, bool) {
	id, ok := pathID(c, "id")
	if !ok {
		notFound(c, "restaurant")
		return nil, false
	}
	var restaurant models.Restaurant
	if err := uow.Find(&restaurant, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			notFound(c, "restaurant")
		} else {
			respondError(c, d, err)
		}
		return nil, false
	}
	return &restaurant, true
}
