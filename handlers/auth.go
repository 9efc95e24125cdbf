package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"restaurant-api/events"
	"restaurant-api/middleware"
	"restaurant-api/models"
	"restaurant-api/store"

	"github.com/gin-gonic/gin"
)

type RegisterRequest struct {
	FirstName string `json:"firstName" binding:"required"`
	LastName  string `json:"lastName" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Auth serves registration, login and the current user's profile.
type Auth struct {
	deps *Deps

	// absentHash stands in for the stored hash of an unknown email, so a
	// failed login costs one hash check either way.
	absentHash string
}

// NewAuth builds the account handlers.
func NewAuth(deps *Deps) *Auth {
	h := &Auth{deps: deps}
	if hash, err := deps.Hasher.Hash("no such account"); err == nil {
		h.absentHash = hash
	} else {
		deps.Log.Warn("login timing hash unavailable", slog.Any("error", err))
	}
	return h
}

// Register mounts the account routes.
func (h *Auth) Register(g *gin.RouterGroup) {
	g.POST("/registration", h.Registration)
	g.POST("/login", h.Login)
	g.GET("/me", h.Me)
	g.PUT("/edit", h.Edit)
}

// Registration creates an account and hands back its first api token.
func (h *Auth) Registration(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	email := strings.TrimSpace(req.Email)

	uow := h.deps.Store.Begin(c.Request.Context())
	var existing models.User
	switch err := uow.FindBy(&existing, map[string]any{"email": email}); {
	case err == nil:
		c.JSON(http.StatusConflict, gin.H{"message": "email already registered"})
		return
	case !errors.Is(err, store.ErrNotFound):
		respondError(c, h.deps, err)
		return
	}

	hash, err := h.deps.Hasher.Hash(req.Password)
	if err != nil {
		respondError(c, h.deps, err)
		return
	}
	user := &models.User{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     email,
		Password:  hash,
	}
	user.Normalize()
	if err := h.deps.Validate.Struct(user); err != nil {
		respondError(c, h.deps, err)
		return
	}
	if user.APIToken, err = h.deps.Tokens.Issue(user.Identifier(), user.Roles); err != nil {
		respondError(c, h.deps, err)
		return
	}
	user.MarkCreated(h.deps.Now().UTC())

	uow.Add(user)
	if err := uow.Commit(); err != nil {
		// a concurrent registration won the unique index
		respondError(c, h.deps, err)
		return
	}

	h.deps.publish(c.Request.Context(), events.Event{Entity: "user", Action: events.ActionCreated, ResourceID: user.ID})
	c.JSON(http.StatusCreated, gin.H{
		"user":      user.Identifier(),
		"firstName": user.FirstName,
		"lastName":  user.LastName,
		"apiToken":  user.APIToken,
		"roles":     user.Roles,
	})
}

// Login checks credentials and rotates the api token. Unknown accounts and
// wrong passwords get the same answer.
func (h *Auth) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "email and password are required"})
		return
	}

	uow := h.deps.Store.Begin(c.Request.Context())
	var user models.User
	err := uow.FindBy(&user, map[string]any{"email": strings.TrimSpace(req.Email)})
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		respondError(c, h.deps, err)
		return
	}
	hash := user.Password
	if err != nil {
		hash = h.absentHash
	}
	if !h.deps.Hasher.Verify(hash, req.Password) || err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "invalid credentials"})
		return
	}

	user.Normalize()
	if user.APIToken, err = h.deps.Tokens.Issue(user.Identifier(), user.Roles); err != nil {
		respondError(c, h.deps, err)
		return
	}
	uow.Add(&user)
	if err := uow.Commit(); err != nil {
		respondError(c, h.deps, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":     user.Identifier(),
		"apiToken": user.APIToken,
		"roles":    user.Roles,
	})
}

// Me returns the profile of the current user.
func (h *Auth) Me(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		unauthenticated(c)
		return
	}
	c.JSON(http.StatusOK, user)
}

// Edit applies a sparse update to the current user. A new password is hashed
// before it is stored.
func (h *Auth) Edit(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		unauthenticated(c)
		return
	}

	var patch models.UserPatch
	if err := bindPatch(c, &patch); err != nil {
		respondError(c, h.deps, err)
		return
	}
	patch.ApplyTo(user)
	if patch.Password != nil {
		if *patch.Password == "" {
			c.JSON(http.StatusBadRequest, gin.H{"message": "password must not be empty"})
			return
		}
		hash, err := h.deps.Hasher.Hash(*patch.Password)
		if err != nil {
			respondError(c, h.deps, err)
			return
		}
		user.Password = hash
	}
	user.Normalize()
	if err := h.deps.Validate.Struct(user); err != nil {
		respondError(c, h.deps, err)
		return
	}
	user.MarkUpdated(h.deps.Now().UTC())

	uow := h.deps.Store.Begin(c.Request.Context())
	uow.Add(user)
	if err := uow.Commit(); err != nil {
		respondError(c, h.deps, err)
		return
	}

	h.deps.publish(c.Request.Context(), events.Event{Entity: "user", Action: events.ActionUpdated, ResourceID: user.ID})
	c.JSON(http.StatusOK, user)
}

func unauthenticated(c *gin.Context) {
	c.JSON(http.StatusUnauthorized, gin.H{"message": "missing credentials"})
}
