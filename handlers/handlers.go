package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"

	"restaurant-api/auth"
	"restaurant-api/events"
	"restaurant-api/report"
	"restaurant-api/store"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// Deps are the collaborators every handler receives explicitly.
type Deps struct {
	Store    *store.Gateway
	Hasher   auth.Hasher
	Tokens   *auth.Tokens
	Events   events.Publisher
	Reporter *report.Reporter
	Validate *validator.Validate
	Log      *slog.Logger
	Now      func() time.Time
}

// NewValidator reports field errors under their JSON names.
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

var errMalformedBody = errors.New("malformed request body")

// respondError maps gateway and validation errors onto status codes.
func respondError(c *gin.Context, d *Deps, err error) {
	var verrs validator.ValidationErrors
	switch {
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "not found"})
	case errors.Is(err, store.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"message": "conflicts with existing data"})
	case errors.As(err, &verrs):
		c.JSON(http.StatusBadRequest, gin.H{"message": "validation failed", "errors": fieldErrors(verrs)})
	case errors.Is(err, errMalformedBody):
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
	case errors.Is(err, context.Canceled):
		c.JSON(http.StatusServiceUnavailable, gin.H{"message": "request cancelled"})
	default:
		d.Log.Error("request failed", slog.String("path", c.FullPath()), slog.Any("error", err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal server error"})
	}
}

func fieldErrors(verrs validator.ValidationErrors) map[string]string {
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			out[fe.Field()] = fmt.Sprintf("failed on %s=%s", fe.Tag(), fe.Param())
			continue
		}
		out[fe.Field()] = "failed on " + fe.Tag()
	}
	return out
}

func notFound(c *gin.Context, name string) {
	c.JSON(http.StatusNotFound, gin.H{"message": name + " not found"})
}

// pathID parses a numeric path parameter. Anything else names no resource.
func pathID(c *gin.Context, param string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(param), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// bindPatch decodes the request body. Absent keys stay nil in the patch.
func bindPatch(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		return fmt.Errorf("%w: %v", errMalformedBody, err)
	}
	return nil
}

// location is the absolute URL of a resource's show endpoint.
func location(c *gin.Context, name string, id uint) string {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if fwd := c.GetHeader("X-Forwarded-Proto"); fwd != "" {
		scheme = fwd
	}
	return fmt.Sprintf("%s://%s/api/%s/%d", scheme, c.Request.Host, name, id)
}

// publish announces a committed change. A failing broker never fails the request.
func (d *Deps) publish(ctx context.Context, e events.Event) {
	e.OccurredAt = d.Now().UTC()
	if err := d.Events.Publish(ctx, e); err != nil {
		d.Log.Warn("event not published",
			slog.String("entity", e.Entity),
			slog.String("action", e.Action),
			slog.Any("error", err))
	}
}
