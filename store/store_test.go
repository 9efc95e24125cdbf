package store_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"restaurant-api/config"
	"restaurant-api/models"
	"restaurant-api/store"
)

func newGateway(t *testing.T) *store.Gateway {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "store.db") + "?_pragma=foreign_keys(1)"
	db, err := config.OpenDB(config.Database{Driver: "sqlite", DSN: dsn})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return store.New(db)
}

func mustCommit(t *testing.T, uow *store.UnitOfWork) {
	t.Helper()
	if err := uow.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}
}

func created(e models.Entity) models.Entity {
	e.MarkCreated(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	return e
}

func TestCommitAppliesQueuedOperations(t *testing.T) {
	gw := newGateway(t)
	ctx := context.Background()

	uow := gw.Begin(ctx)
	a := created(&models.Category{Title: "Starters"}).(*models.Category)
	b := created(&models.Category{Title: "Desserts"}).(*models.Category)
	uow.Add(a)
	uow.Add(b)

	var before []models.Category
	if err := gw.Begin(ctx).FindAllBy(&before, nil); err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(before) != 0 {
		t.Fatalf("nothing may be written before Commit, got %d rows", len(before))
	}

	mustCommit(t, uow)
	if a.ID == 0 || b.ID == 0 {
		t.Fatalf("ids not assigned: %d %d", a.ID, b.ID)
	}

	var got models.Category
	if err := gw.Begin(ctx).Find(&got, b.ID); err != nil {
		t.Fatalf("find: %v", err)
	}
	if got.Title != "Desserts" {
		t.Fatalf("Title = %q, want Desserts", got.Title)
	}
}

func TestCommitTwice(t *testing.T) {
	gw := newGateway(t)
	uow := gw.Begin(context.Background())
	mustCommit(t, uow)
	if err := uow.Commit(); !errors.Is(err, store.ErrCommitted) {
		t.Fatalf("second Commit error = %v, want ErrCommitted", err)
	}
}

func TestFindMissing(t *testing.T) {
	gw := newGateway(t)
	uow := gw.Begin(context.Background())
	for _, id := range []uint{0, 42} {
		var f models.Food
		if err := uow.Find(&f, id); !errors.Is(err, store.ErrNotFound) {
			t.Fatalf("Find(%d) error = %v, want ErrNotFound", id, err)
		}
	}
}

func TestCommitIsAtomic(t *testing.T) {
	gw := newGateway(t)
	ctx := context.Background()

	uow := gw.Begin(ctx)
	uow.Add(created(&models.User{FirstName: "a", LastName: "b", Email: "dup@example.com", Password: "x"}))
	mustCommit(t, uow)

	uow = gw.Begin(ctx)
	uow.Add(created(&models.Food{Title: "Soup"}))
	uow.Add(created(&models.User{FirstName: "c", LastName: "d", Email: "dup@example.com", Password: "y"}))
	if err := uow.Commit(); !errors.Is(err, store.ErrConflict) {
		t.Fatalf("Commit error = %v, want ErrConflict", err)
	}

	var foods []models.Food
	if err := gw.Begin(ctx).FindAllBy(&foods, nil); err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(foods) != 0 {
		t.Fatalf("failed commit left %d foods behind", len(foods))
	}
}

func TestRemoveReferencedRestaurantConflicts(t *testing.T) {
	gw := newGateway(t)
	ctx := context.Background()

	r := created(&models.Restaurant{Name: "Le Coin", MaxGuest: 12}).(*models.Restaurant)
	uow := gw.Begin(ctx)
	uow.Add(r)
	mustCommit(t, uow)

	uow = gw.Begin(ctx)
	uow.Add(created(&models.Menu{Title: "Midi", RestaurantID: &r.ID}))
	mustCommit(t, uow)

	uow = gw.Begin(ctx)
	uow.Remove(r)
	if err := uow.Commit(); !errors.Is(err, store.ErrConflict) {
		t.Fatalf("Commit error = %v, want ErrConflict", err)
	}
}

func TestFindAllByCriteria(t *testing.T) {
	gw := newGateway(t)
	ctx := context.Background()

	r1 := created(&models.Restaurant{Name: "One", MaxGuest: 10}).(*models.Restaurant)
	r2 := created(&models.Restaurant{Name: "Two", MaxGuest: 10}).(*models.Restaurant)
	uow := gw.Begin(ctx)
	uow.Add(r1)
	uow.Add(r2)
	mustCommit(t, uow)

	uow = gw.Begin(ctx)
	uow.Add(created(&models.Picture{Title: "a", Slug: "a", RestaurantID: &r1.ID}))
	uow.Add(created(&models.Picture{Title: "b", Slug: "b", RestaurantID: &r2.ID}))
	uow.Add(created(&models.Picture{Title: "c", Slug: "c", RestaurantID: &r1.ID}))
	mustCommit(t, uow)

	var pics []models.Picture
	if err := gw.Begin(ctx).FindAllBy(&pics, map[string]any{"restaurant_id": r1.ID}); err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(pics) != 2 || pics[0].Title != "a" || pics[1].Title != "c" {
		t.Fatalf("pictures of r1 = %+v", pics)
	}
}

func TestRelationBothSidesAgree(t *testing.T) {
	gw := newGateway(t)
	ctx := context.Background()

	menu := created(&models.Menu{Title: "Soir"}).(*models.Menu)
	cat := created(&models.Category{Title: "Vegan"}).(*models.Category)
	uow := gw.Begin(ctx)
	uow.Add(menu)
	uow.Add(cat)
	mustCommit(t, uow)

	uow = gw.Begin(ctx)
	uow.Link(store.MenuCategories, menu.ID, cat.ID)
	uow.Link(store.MenuCategories, menu.ID, cat.ID)
	mustCommit(t, uow)

	uow = gw.Begin(ctx)
	linked, err := uow.Linked(store.MenuCategories, menu.ID, cat.ID)
	if err != nil || !linked {
		t.Fatalf("Linked = %v, %v", linked, err)
	}
	var cats []models.Category
	if err := uow.RightOf(store.MenuCategories, menu.ID, &cats); err != nil {
		t.Fatalf("RightOf: %v", err)
	}
	var menus []models.Menu
	if err := uow.LeftOf(store.MenuCategories, cat.ID, &menus); err != nil {
		t.Fatalf("LeftOf: %v", err)
	}
	if len(cats) != 1 || cats[0].ID != cat.ID {
		t.Fatalf("categories of menu = %+v", cats)
	}
	if len(menus) != 1 || menus[0].ID != menu.ID {
		t.Fatalf("menus of category = %+v", menus)
	}

	uow = gw.Begin(ctx)
	uow.Unlink(store.MenuCategories, menu.ID, cat.ID)
	mustCommit(t, uow)

	uow = gw.Begin(ctx)
	cats, menus = nil, nil
	if err := uow.RightOf(store.MenuCategories, menu.ID, &cats); err != nil {
		t.Fatalf("RightOf: %v", err)
	}
	if err := uow.LeftOf(store.MenuCategories, cat.ID, &menus); err != nil {
		t.Fatalf("LeftOf: %v", err)
	}
	if len(cats) != 0 || len(menus) != 0 {
		t.Fatalf("unlink left %d categories and %d menus", len(cats), len(menus))
	}
}

func TestDetachBeforeRemove(t *testing.T) {
	gw := newGateway(t)
	ctx := context.Background()

	food := created(&models.Food{Title: "Tarte"}).(*models.Food)
	cat := created(&models.Category{Title: "Sucré"}).(*models.Category)
	uow := gw.Begin(ctx)
	uow.Add(food)
	uow.Add(cat)
	mustCommit(t, uow)

	uow = gw.Begin(ctx)
	uow.Link(store.FoodCategories, food.ID, cat.ID)
	mustCommit(t, uow)

	uow = gw.Begin(ctx)
	uow.DetachRight(store.FoodCategories, cat.ID)
	uow.Remove(cat)
	mustCommit(t, uow)

	var cats []models.Category
	if err := gw.Begin(ctx).RightOf(store.FoodCategories, food.ID, &cats); err != nil {
		t.Fatalf("RightOf: %v", err)
	}
	if len(cats) != 0 {
		t.Fatalf("food still lists %d categories", len(cats))
	}
}

func TestUpdateOfDeletedRowIsNotFound(t *testing.T) {
	gw := newGateway(t)
	ctx := context.Background()

	cat := created(&models.Category{Title: "Brunch"}).(*models.Category)
	uow := gw.Begin(ctx)
	uow.Add(cat)
	mustCommit(t, uow)

	editing := gw.Begin(ctx)
	var loaded models.Category
	if err := editing.Find(&loaded, cat.ID); err != nil {
		t.Fatalf("find: %v", err)
	}

	deleting := gw.Begin(ctx)
	deleting.Remove(&models.Category{Base: models.Base{ID: cat.ID}})
	mustCommit(t, deleting)

	loaded.Title = "edited"
	loaded.MarkUpdated(time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC))
	editing.Add(&loaded)
	if err := editing.Commit(); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("Commit error = %v, want ErrNotFound", err)
	}

	var after models.Category
	if err := gw.Begin(ctx).Find(&after, cat.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("deleted row came back: %+v, err %v", after, err)
	}
}

func TestUpdateOfExistingRow(t *testing.T) {
	gw := newGateway(t)
	ctx := context.Background()

	food := created(&models.Food{Title: "Soupe", Price: 8}).(*models.Food)
	uow := gw.Begin(ctx)
	uow.Add(food)
	mustCommit(t, uow)

	uow = gw.Begin(ctx)
	var loaded models.Food
	if err := uow.Find(&loaded, food.ID); err != nil {
		t.Fatalf("find: %v", err)
	}
	loaded.Price = 0
	uow.Add(&loaded)
	mustCommit(t, uow)

	var after models.Food
	if err := gw.Begin(ctx).Find(&after, food.ID); err != nil {
		t.Fatalf("find: %v", err)
	}
	if after.Price != 0 || after.Title != "Soupe" {
		t.Fatalf("after update = %+v, want price 0 and title kept", after)
	}
}
