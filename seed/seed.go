// Package seed loads development fixtures.
package seed

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"restaurant-api/auth"
	"restaurant-api/models"
	"restaurant-api/store"
)

const count = 20

// Result summarizes what a run inserted.
type Result struct {
	Users       int
	Restaurants int
	Pictures    int
	Skipped     bool
}

type Seeder struct {
	Store  *store.Gateway
	Hasher auth.Hasher
	Rand   *rand.Rand
	Now    func() time.Time
}

// Run inserts the fixtures. It does nothing when the first fixture user
// already exists, so it can run on every start.
func (s *Seeder) Run(ctx context.Context) (Result, error) {
	now := s.Now().UTC()

	uow := s.Store.Begin(ctx)
	var first models.User
	err := uow.FindBy(&first, map[string]any{"email": email(1)})
	if err == nil {
		return Result{Skipped: true}, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return Result{}, fmt.Errorf("check fixtures: %w", err)
	}

	for i := 1; i <= count; i++ {
		hash, err := s.Hasher.Hash(fmt.Sprintf("password %d", i))
		if err != nil {
			return Result{}, err
		}
		user := &models.User{
			FirstName: fmt.Sprintf("firstName %d", i),
			LastName:  fmt.Sprintf("lastName %d", i),
			Email:     email(i),
			Password:  hash,
		}
		user.Normalize()
		user.MarkCreated(now)
		uow.Add(user)
	}

	restaurants := make([]*models.Restaurant, 0, count)
	for i := 1; i <= count; i++ {
		r := &models.Restaurant{
			Name:        fmt.Sprintf("restaurant %d", i),
			Description: fmt.Sprintf("description restaurant %d", i),
			MaxGuest:    10 + s.Rand.IntN(41),
		}
		r.Normalize()
		r.MarkCreated(now)
		restaurants = append(restaurants, r)
		uow.Add(r)
	}
	if err := uow.Commit(); err != nil {
		return Result{}, fmt.Errorf("seed users and restaurants: %w", err)
	}

	// pictures reference the restaurant ids assigned by the first commit
	uow = s.Store.Begin(ctx)
	for i := 1; i <= count; i++ {
		owner := restaurants[s.Rand.IntN(len(restaurants))].ID
		p := &models.Picture{
			Title:        fmt.Sprintf("Article %d", i),
			RestaurantID: &owner,
		}
		p.Normalize()
		p.MarkCreated(now)
		uow.Add(p)
	}
	if err := uow.Commit(); err != nil {
		return Result{}, fmt.Errorf("seed pictures: %w", err)
	}

	return Result{Users: count, Restaurants: count, Pictures: count}, nil
}

func email(i int) string {
	return fmt.Sprintf("email.%d@example.com", i)
}
