// Package report runs read-only aggregate queries outside the ORM.
package report

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
)

func init() {
	// the pure-Go sqlite driver registers as "sqlite", which sqlx does not know
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

const occupancyQuery = `
SELECT order_date,
       COUNT(*) AS bookings,
       COALESCE(SUM(guest_number), 0) AS guests
FROM bookings
WHERE restaurant_id = ?
GROUP BY order_date
ORDER BY order_date`

type Day struct {
	Date     string `db:"order_date" json:"date"`
	Bookings int    `db:"bookings" json:"bookings"`
	Guests   int    `db:"guests" json:"guests"`
}

type Occupancy struct {
	RestaurantID uint  `json:"restaurantId"`
	MaxGuest     int   `json:"maxGuest"`
	Days         []Day `json:"days"`
}

type Reporter struct {
	db *sqlx.DB
}

// New wraps an existing pool; driver selects the placeholder style.
func New(db *sql.DB, driver string) *Reporter {
	return &Reporter{db: sqlx.NewDb(db, driver)}
}

// Occupancy sums bookings and guests per booking day for a restaurant.
func (r *Reporter) Occupancy(ctx context.Context, restaurantID uint, maxGuest int) (*Occupancy, error) {
	days := []Day{}
	if err := r.db.SelectContext(ctx, &days, r.db.Rebind(occupancyQuery), restaurantID); err != nil {
		return nil, fmt.Errorf("occupancy of restaurant %d: %w", restaurantID, err)
	}
	for i := range days {
		days[i].Date = dayOf(days[i].Date)
	}
	return &Occupancy{RestaurantID: restaurantID, MaxGuest: maxGuest, Days: days}, nil
}

// dayOf keeps the YYYY-MM-DD prefix of a stored timestamp, whatever layout
// the driver rendered it in.
func dayOf(s string) string {
	if len(s) >= 10 {
		return s[:10]
	}
	return s
}
