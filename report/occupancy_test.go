package report_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"restaurant-api/config"
	"restaurant-api/models"
	"restaurant-api/report"
	"restaurant-api/store"
)

func TestOccupancyGroupsByDay(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "report.db") + "?_pragma=foreign_keys(1)"
	db, err := config.OpenDB(config.Database{Driver: "sqlite", DSN: dsn})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	gw := store.New(db)
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

	r := &models.Restaurant{Name: "Chez Nous", MaxGuest: 20}
	other := &models.Restaurant{Name: "Ailleurs", MaxGuest: 20}
	r.MarkCreated(now)
	other.MarkCreated(now)
	uow := gw.Begin(ctx)
	uow.Add(r)
	uow.Add(other)
	if err := uow.Commit(); err != nil {
		t.Fatalf("commit restaurants: %v", err)
	}

	book := func(owner uint, day, hour, guests int) *models.Booking {
		b := &models.Booking{
			GuestNumber:  guests,
			OrderDate:    time.Date(2024, 5, day, hour, 0, 0, 0, time.UTC),
			OrderHour:    time.Date(2024, 5, day, hour, 0, 0, 0, time.UTC),
			RestaurantID: &owner,
		}
		b.Normalize()
		b.MarkCreated(now)
		return b
	}
	uow = gw.Begin(ctx)
	uow.Add(book(r.ID, 3, 12, 4))
	uow.Add(book(r.ID, 3, 20, 18))
	uow.Add(book(r.ID, 4, 19, 2))
	uow.Add(book(other.ID, 3, 12, 9))
	if err := uow.Commit(); err != nil {
		t.Fatalf("commit bookings: %v", err)
	}

	sqlDB, driver, err := gw.SQL()
	if err != nil {
		t.Fatalf("pool: %v", err)
	}
	defer sqlDB.Close()

	occ, err := report.New(sqlDB, driver).Occupancy(ctx, r.ID, r.MaxGuest)
	if err != nil {
		t.Fatalf("Occupancy: %v", err)
	}
	if occ.RestaurantID != r.ID || occ.MaxGuest != 20 {
		t.Fatalf("header = %+v", occ)
	}
	want := []report.Day{
		{Date: "2024-05-03", Bookings: 2, Guests: 22},
		{Date: "2024-05-04", Bookings: 1, Guests: 2},
	}
	if len(occ.Days) != len(want) {
		t.Fatalf("Days = %+v, want %+v", occ.Days, want)
	}
	for i := range want {
		if occ.Days[i] != want[i] {
			t.Fatalf("Days[%d] = %+v, want %+v", i, occ.Days[i], want[i])
		}
	}
}

func TestOccupancyWithoutBookings(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "empty.db") + "?_pragma=foreign_keys(1)"
	db, err := config.OpenDB(config.Database{Driver: "sqlite", DSN: dsn})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	sqlDB, driver, err := store.New(db).SQL()
	if err != nil {
		t.Fatalf("pool: %v", err)
	}
	defer sqlDB.Close()

	occ, err := report.New(sqlDB, driver).Occupancy(context.Background(), 1, 10)
	if err != nil {
		t.Fatalf("Occupancy: %v", err)
	}
	if occ.Days == nil || len(occ.Days) != 0 {
		t.Fatalf("Days = %#v, want empty non-nil slice", occ.Days)
	}
}
