// Package listing serves PG listings: owner managed CRUD plus the public
// browse, search and city queries.
package listing

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"pgfinder/pg-api/internal/apperr"
	"pgfinder/pg-api/internal/model"
	"pgfinder/pg-api/internal/store"
	"pgfinder/pg-api/pkg/validators"
)

const (
	defaultLimit = 10
	maxLimit     = 100
	maxPage      = 100000 // keeps (page-1)*limit far from int overflow
	searchLimit  = 20
)

type Store interface {
	Create(ctx context.Context, l *model.Listing) error
	ByID(ctx context.Context, id string) (*model.Listing, error)
	Save(ctx context.Context, l *model.Listing) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, f store.ListingFilter) ([]model.Listing, int64, error)
	Cities(ctx context.Context) ([]string, error)
}

type UserLookup interface {
	ByID(ctx context.Context, id string) (*model.User, error)
}

type ImageStore interface {
	Store(ctx context.Context, folder, src string) (string, error)
}

type Service struct {
	listings Store
	users    UserLookup
	images   ImageStore
}

func New(listings Store, users UserLookup, images ImageStore) *Service {
	return &Service{listings: listings, users: users, images: images}
}

var (
	errListingNotFound = apperr.New(apperr.ErrNotFound, "PG listing not found")
	errNotOwner        = apperr.New(apperr.ErrForbidden, "Access denied. Owner privileges required.")
)

func notYours(action string) error {
	return apperr.New(apperr.ErrForbidden, fmt.Sprintf("Not authorized to %s this PG listing", action))
}

// Create validates in and stores it as a new listing owned by ownerID.
func (s *Service) Create(ctx context.Context, ownerID string, in Input) (*model.Listing, error) {
	if err := validators.Listing(&in); err != nil {
		return nil, err
	}

	owner, err := s.users.ByID(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	if !owner.IsOwner() {
		return nil, errNotOwner
	}

	if err := s.storeImages(ctx, ownerID, &in); err != nil {
		return nil, err
	}

	l := &model.Listing{OwnerID: ownerID, IsAvailable: true}
	in.apply(l)

	if err := s.listings.Create(ctx, l); err != nil {
		return nil, fmt.Errorf("failed to create listing, %w", err)
	}

	return l, nil
}

func (s *Service) Get(ctx context.Context, id string) (*model.Listing, error) {
	l, err := s.listings.ByID(ctx, id)
	if err != nil {
		if apperr.Kind(err) == apperr.ErrNotFound {
			return nil, errListingNotFound
		}
		return nil, err
	}

	return l, nil
}

// Update merges the JSON patch into the stored listing. The merged record
// has to pass the same validation as a new one.
func (s *Service) Update(ctx context.Context, callerID, id string, patch []byte) (*model.Listing, error) {
	l, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if l.OwnerID != callerID {
		return nil, notYours("update")
	}

	in := fromModel(l)
	if err := json.Unmarshal(patch, &in); err != nil {
		return nil, validators.FromError(err, true)
	}

	if err := validators.Listing(&in); err != nil {
		return nil, err
	}

	if err := s.storeImages(ctx, callerID, &in); err != nil {
		return nil, err
	}

	in.apply(l)

	if err := s.listings.Save(ctx, l); err != nil {
		return nil, fmt.Errorf("failed to update listing, %w", err)
	}

	return l, nil
}

func (s *Service) Delete(ctx context.Context, callerID, id string) error {
	l, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	if l.OwnerID != callerID {
		return notYours("delete")
	}

	return s.listings.Delete(ctx, id)
}

func (s *Service) storeImages(ctx context.Context, ownerID string, in *Input) error {
	for i := range in.Images {
		url, err := s.images.Store(ctx, "listings/"+ownerID, in.Images[i].URL)
		if err != nil {
			return err
		}
		in.Images[i].URL = url
	}

	return nil
}

// Query holds the filters of the public listing index.
type Query struct {
	Page      int    `form:"page" binding:"omitempty,min=1,max=100000"`
	Limit     int    `form:"limit" binding:"omitempty,min=1"`
	Location  string `form:"location"`
	City      string `form:"city"`
	State     string `form:"state"`
	Gender    string `form:"gender"`
	MinPrice  int    `form:"minPrice" binding:"omitempty,min=0"`
	MaxPrice  int    `form:"maxPrice" binding:"omitempty,min=0"`
	Amenities string `form:"amenities"`
	Search    string `form:"search"`
	SortBy    string `form:"sortBy" binding:"omitempty,oneof=createdAt price rating name"`
	SortOrder string `form:"sortOrder" binding:"omitempty,oneof=asc desc"`
}

type Pagination struct {
	CurrentPage  int   `json:"currentPage"`
	TotalPages   int   `json:"totalPages"`
	TotalItems   int64 `json:"totalItems"`
	ItemsPerPage int   `json:"itemsPerPage"`
}

type Page struct {
	Listings   []model.Listing `json:"pgListings"`
	Pagination Pagination      `json:"pagination"`
}

func pageBounds(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if page > maxPage {
		page = maxPage
	}
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	return page, limit
}

func (s *Service) page(ctx context.Context, f store.ListingFilter, page, limit int) (*Page, error) {
	page, limit = pageBounds(page, limit)
	f.Offset = (page - 1) * limit
	f.Limit = limit

	listings, total, err := s.listings.List(ctx, f)
	if err != nil {
		return nil, err
	}

	if listings == nil {
		listings = []model.Listing{}
	}

	return &Page{
		Listings: listings,
		Pagination: Pagination{
			CurrentPage:  page,
			TotalPages:   int(math.Ceil(float64(total) / float64(limit))),
			TotalItems:   total,
			ItemsPerPage: limit,
		},
	}, nil
}

// List returns available listings matching q, one page at a time.
func (s *Service) List(ctx context.Context, q Query) (*Page, error) {
	if err := validators.Struct(&q); err != nil {
		return nil, err
	}

	f := store.ListingFilter{
		Location:      q.Location,
		City:          q.City,
		State:         q.State,
		Gender:        q.Gender,
		MinPrice:      q.MinPrice,
		MaxPrice:      q.MaxPrice,
		Search:        q.Search,
		AvailableOnly: true,
		SortBy:        q.SortBy,
		SortOrder:     q.SortOrder,
	}

	for _, a := range strings.Split(q.Amenities, ",") {
		if a = strings.TrimSpace(a); a != "" {
			f.Amenities = append(f.Amenities, a)
		}
	}

	return s.page(ctx, f, q.Page, q.Limit)
}

type SearchQuery struct {
	Q        string `form:"q"`
	Location string `form:"location"`
	Gender   string `form:"gender"`
	MinPrice int    `form:"minPrice" binding:"omitempty,min=0"`
	MaxPrice int    `form:"maxPrice" binding:"omitempty,min=0"`
}

// Search is the quick search box: newest matches first, at most 20.
func (s *Service) Search(ctx context.Context, q SearchQuery) ([]model.Listing, error) {
	if err := validators.Struct(&q); err != nil {
		return nil, err
	}

	listings, _, err := s.listings.List(ctx, store.ListingFilter{
		Search:        q.Q,
		Anywhere:      q.Location,
		Gender:        q.Gender,
		MinPrice:      q.MinPrice,
		MaxPrice:      q.MaxPrice,
		AvailableOnly: true,
		Limit:         searchLimit,
	})
	if err != nil {
		return nil, err
	}

	if listings == nil {
		listings = []model.Listing{}
	}

	return listings, nil
}

// ListByOwner pages through the caller's own listings, available or not.
func (s *Service) ListByOwner(ctx context.Context, ownerID string, page, limit int) (*Page, error) {
	return s.page(ctx, store.ListingFilter{OwnerID: ownerID}, page, limit)
}

func (s *Service) Cities(ctx context.Context) ([]string, error) {
	return s.listings.Cities(ctx)
}
