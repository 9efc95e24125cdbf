package routes

import (
	"net/http"

	"restaurant-api/handlers"
	"restaurant-api/middleware"
	"restaurant-api/models"
	"restaurant-api/store"

	"github.com/gin-gonic/gin"
)

// NewRouter builds the engine with every API route mounted.
func NewRouter(deps *handlers.Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(deps.Log), middleware.CORS())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "Restaurant API",
		})
	})
	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "Restaurant API",
			"health":  "/health",
			"api":     "/api",
		})
	})

	SetupRoutes(r, deps)
	return r
}

func SetupRoutes(r *gin.Engine, deps *handlers.Deps) {
	api := r.Group("/api")
	api.Use(middleware.Authenticate(deps.Store, deps.Tokens, deps.Log))

	// ── Accounts ─────────────────────────────────────────────────────────
	handlers.NewAuth(deps).Register(api)

	// ── Entities ─────────────────────────────────────────────────────────
	handlers.NewResource[models.Restaurant, *models.Restaurant, models.RestaurantPatch]("restaurant", deps).
		Register(api)
	handlers.NewResource[models.Menu, *models.Menu, models.MenuPatch]("menu", deps).
		OnDelete(func(uow *store.UnitOfWork, id uint) { uow.DetachLeft(store.MenuCategories, id) }).
		Register(api)
	handlers.NewResource[models.Food, *models.Food, models.FoodPatch]("food", deps).
		OnDelete(func(uow *store.UnitOfWork, id uint) { uow.DetachLeft(store.FoodCategories, id) }).
		Register(api)
	handlers.NewResource[models.Category, *models.Category, models.CategoryPatch]("category", deps).
		OnDelete(func(uow *store.UnitOfWork, id uint) {
			uow.DetachRight(store.MenuCategories, id)
			uow.DetachRight(store.FoodCategories, id)
		}).
		Register(api)
	handlers.NewResource[models.Booking, *models.Booking, models.BookingPatch]("booking", deps).
		Register(api)
	handlers.NewResource[models.Picture, *models.Picture, models.PicturePatch]("picture", deps).
		Register(api)

	// ── Relations ────────────────────────────────────────────────────────
	handlers.NewAssociation[models.Menu, models.Category](store.MenuCategories, "menu", "category", deps).Register(api)
	handlers.NewAssociation[models.Food, models.Category](store.FoodCategories, "food", "category", deps).Register(api)
	handlers.NewRestaurantChildren(deps).Register(api)
}
