package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"pgfinder/pg-api/internal/apperr"
	"pgfinder/pg-api/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Sort keys accepted from clients and the column each one maps to.
var sortColumns = map[string]string{
	"createdAt": "created_at",
	"price":     "price_monthly",
	"rating":    "rating_average",
	"name":      "name",
}

// ListingFilter narrows List. Zero values mean "no constraint".
type ListingFilter struct {
	Location  string
	City      string
	State     string
	Gender    string
	MinPrice  int
	MaxPrice  int
	Amenities []string
	Search    string

	// Only used by Search, matches city, state or address
	Anywhere string

	OwnerID       string
	AvailableOnly bool

	SortBy    string
	SortOrder string
	Offset    int
	Limit     int
}

type Listings struct {
	db *gorm.DB
}

func NewListings(db *gorm.DB) *Listings {
	return &Listings{db: db}
}

func (s *Listings) Create(ctx context.Context, l *model.Listing) error {
	if l.ID == "" {
		id, err := newID()
		if err != nil {
			return fmt.Errorf("failed to generate listing id, %w", err)
		}
		l.ID = id
	}

	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(l).Error; err != nil {
		return err
	}

	return s.loadOwner(ctx, l)
}

// ByID returns the listing with its owner populated.
func (s *Listings) ByID(ctx context.Context, id string) (*model.Listing, error) {
	var l model.Listing

	err := s.db.WithContext(ctx).
		Preload("Owner").
		Where("id = ?", id).
		First(&l).
		Error
	if err != nil {
		return nil, notFound(err, "listing")
	}

	return &l, nil
}

// Save writes every column of l.
func (s *Listings) Save(ctx context.Context, l *model.Listing) error {
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Save(l).Error; err != nil {
		return err
	}

	return s.loadOwner(ctx, l)
}

func (s *Listings) Delete(ctx context.Context, id string) error {
	r := s.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Listing{})
	if r.Error != nil {
		return r.Error
	}

	if r.RowsAffected == 0 {
		return fmt.Errorf("listing: %w", apperr.ErrNotFound)
	}

	return nil
}

// List returns one page of listings matching f and the total match count.
func (s *Listings) List(ctx context.Context, f ListingFilter) ([]model.Listing, int64, error) {
	var (
		total    int64
		listings []model.Listing
	)

	q := s.filtered(ctx, f)
	if err := q.Model(&model.Listing{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count listings, %w", err)
	}

	err := s.filtered(ctx, f).
		Preload("Owner").
		Order(order(f.SortBy, f.SortOrder)).
		Offset(f.Offset).
		Limit(f.Limit).
		Find(&listings).
		Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list listings, %w", err)
	}

	return listings, total, nil
}

func (s *Listings) filtered(ctx context.Context, f ListingFilter) *gorm.DB {
	q := s.db.WithContext(ctx).Model(&model.Listing{})

	if f.AvailableOnly {
		q = q.Where("is_available = ?", true)
	}
	if f.OwnerID != "" {
		q = q.Where("owner_id = ?", f.OwnerID)
	}
	if f.Location != "" {
		q = q.Where("LOWER(location_address) LIKE ?", contains(f.Location))
	}
	if f.City != "" {
		q = q.Where("LOWER(location_city) LIKE ?", contains(f.City))
	}
	if f.State != "" {
		q = q.Where("LOWER(location_state) LIKE ?", contains(f.State))
	}
	if f.Anywhere != "" {
		p := contains(f.Anywhere)
		q = q.Where(
			s.db.Where("LOWER(location_city) LIKE ?", p).
				Or("LOWER(location_state) LIKE ?", p).
				Or("LOWER(location_address) LIKE ?", p),
		)
	}
	if f.Gender != "" {
		q = q.Where("gender = ?", strings.ToLower(f.Gender))
	}
	if f.MinPrice > 0 {
		q = q.Where("price_monthly >= ?", f.MinPrice)
	}
	if f.MaxPrice > 0 {
		q = q.Where("price_monthly <= ?", f.MaxPrice)
	}
	if len(f.Amenities) > 0 {
		anyOf := s.db.Where("amenities LIKE ?", model.ElementPattern(f.Amenities[0]))
		for _, a := range f.Amenities[1:] {
			anyOf = anyOf.Or("amenities LIKE ?", model.ElementPattern(a))
		}
		q = q.Where(anyOf)
	}
	if words := strings.Fields(f.Search); len(words) > 0 {
		// A listing matches when any word shows up in any text column
		text := s.db.Where("1 = 0")
		for _, word := range words {
			p := contains(word)
			text = text.
				Or("LOWER(name) LIKE ?", p).
				Or("LOWER(description) LIKE ?", p).
				Or("LOWER(location_city) LIKE ?", p).
				Or("LOWER(location_state) LIKE ?", p)
		}
		q = q.Where(text)
	}

	return q
}

// Cities returns every distinct city that has a listing, sorted.
func (s *Listings) Cities(ctx context.Context) ([]string, error) {
	cities := []string{}

	err := s.db.WithContext(ctx).
		Model(&model.Listing{}).
		Distinct().
		Order("location_city").
		Pluck("location_city", &cities).
		Error

	return cities, err
}

// Counts aggregates the dashboard numbers for one owner.
func (s *Listings) Counts(ctx context.Context, ownerID string) (model.ListingCounts, error) {
	var c model.ListingCounts

	err := s.db.WithContext(ctx).
		Model(&model.Listing{}).
		Select(
			"COUNT(*) AS total_listings, "+
				"COALESCE(SUM(CASE WHEN is_available THEN 1 ELSE 0 END), 0) AS active_listings, "+
				"COALESCE(SUM(CASE WHEN is_verified THEN 1 ELSE 0 END), 0) AS verified_listings",
		).
		Where("owner_id = ?", ownerID).
		Scan(&c).
		Error
	if err != nil {
		return c, fmt.Errorf("failed to count listings, %w", err)
	}

	c.PendingVerification = c.TotalListings - c.VerifiedListings
	return c, nil
}

func (s *Listings) GenderDistribution(ctx context.Context, ownerID string) ([]model.GenderCount, error) {
	out := []model.GenderCount{}

	err := s.db.WithContext(ctx).
		Model(&model.Listing{}).
		Select("gender, COUNT(*) AS count").
		Where("owner_id = ?", ownerID).
		Group("gender").
		Order("gender").
		Scan(&out).
		Error

	return out, err
}

func (s *Listings) PriceRange(ctx context.Context, ownerID string) (model.PriceRange, error) {
	var p model.PriceRange

	err := s.db.WithContext(ctx).
		Model(&model.Listing{}).
		Select(
			"CAST(COALESCE(AVG(price_monthly), 0) AS DOUBLE PRECISION) AS avg_price, "+
				"COALESCE(MIN(price_monthly), 0) AS min_price, "+
				"COALESCE(MAX(price_monthly), 0) AS max_price",
		).
		Where("owner_id = ?", ownerID).
		Scan(&p).
		Error

	return p, err
}

// Recent returns the owner's newest listings.
func (s *Listings) Recent(ctx context.Context, ownerID string, n int) ([]model.Listing, error) {
	var out []model.Listing

	err := s.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Limit(n).
		Find(&out).
		Error

	return out, err
}

func (s *Listings) loadOwner(ctx context.Context, l *model.Listing) error {
	var o model.Owner

	err := s.db.WithContext(ctx).Where("id = ?", l.OwnerID).First(&o).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	l.Owner = &o
	return nil
}

func order(by, dir string) clause.OrderByColumn {
	col, ok := sortColumns[by]
	if !ok {
		col = sortColumns["createdAt"]
	}

	return clause.OrderByColumn{
		Column: clause.Column{Name: col},
		Desc:   dir != "asc",
	}
}

// contains builds a case-insensitive substring pattern, to be compared
// against LOWER(column).
func contains(s string) string {
	return "%" + strings.ToLower(strings.TrimSpace(s)) + "%"
}
