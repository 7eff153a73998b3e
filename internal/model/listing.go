package model

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

var (
	Amenities = []string{
		"WiFi", "AC", "Food", "Laundry", "Parking", "Security",
		"Gym", "Study Room", "TV", "Refrigerator", "Washing Machine",
		"Hot Water", "Power Backup", "CCTV", "Housekeeping",
	}
	Genders   = []string{"boys", "girls", "unisex"}
	RoomKinds = []string{"Single", "Double", "Triple", "Dormitory"}
)

type Coordinates struct {
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

type Location struct {
	Address     string      `gorm:"not null" json:"address"`
	City        string      `gorm:"index;not null" json:"city"`
	State       string      `gorm:"not null" json:"state"`
	Pincode     string      `gorm:"size:6;not null" json:"pincode"`
	Coordinates Coordinates `gorm:"embedded;embeddedPrefix:coordinates_" json:"coordinates"`
}

type Price struct {
	Monthly int `gorm:"index;not null" json:"monthly"`
	Deposit int `gorm:"default:0" json:"deposit"`
}

type RoomType struct {
	Type      string `json:"type"`
	Available int    `json:"available"`
	Price     int    `json:"price"`
}

type Image struct {
	URL       string `json:"url"`
	Caption   string `json:"caption,omitempty"`
	IsPrimary bool   `json:"isPrimary"`
}

type ContactInfo struct {
	Phone string `json:"phone"`
	Email string `json:"email"`
}

type Rating struct {
	Average float64 `gorm:"default:0" json:"average"`
	Count   int     `gorm:"default:0" json:"count"`
}

// Owner is the slice of a user's record shown next to a listing.
type Owner struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Phone        string `json:"phone,omitempty"`
	ProfileImage string `json:"profileImage,omitempty"`
}

func (Owner) TableName() string { return "users" }

type Listing struct {
	ID          string      `gorm:"primaryKey;size:16" json:"id"`
	Name        string      `gorm:"size:100;not null" json:"name"`
	Description string      `gorm:"size:1000;not null" json:"description"`
	Location    Location    `gorm:"embedded;embeddedPrefix:location_" json:"location"`
	Price       Price       `gorm:"embedded;embeddedPrefix:price_" json:"price"`
	Amenities   StringSlice `json:"amenities"`
	Gender      string      `gorm:"index;size:8;not null" json:"gender"`
	RoomTypes   []RoomType  `gorm:"serializer:json" json:"roomTypes"`
	Images      []Image     `gorm:"serializer:json" json:"images"`
	OwnerID     string      `gorm:"index;size:16;not null" json:"-"`
	Owner       *Owner      `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	ContactInfo ContactInfo `gorm:"embedded;embeddedPrefix:contact_" json:"contactInfo"`
	Rules       []string    `gorm:"serializer:json" json:"rules"`
	IsAvailable bool        `gorm:"index;not null" json:"isAvailable"`
	IsVerified  bool        `gorm:"not null" json:"isVerified"`
	Rating      Rating      `gorm:"embedded;embeddedPrefix:rating_" json:"rating"`
	CreatedAt   time.Time   `gorm:"index" json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`

	FullAddress string `gorm:"-" json:"fullAddress"`
}

func (l *Listing) TableName() string { return "pg_listings" }

func (l *Listing) fillVirtuals() {
	l.FullAddress = fmt.Sprintf("%s, %s, %s - %s",
		l.Location.Address, l.Location.City, l.Location.State, l.Location.Pincode)
}

func (l *Listing) AfterFind(*gorm.DB) error {
	l.fillVirtuals()
	return nil
}

func (l *Listing) AfterSave(*gorm.DB) error {
	l.fillVirtuals()
	return nil
}
