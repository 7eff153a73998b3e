// Package internal wires the services handed to every HTTP handler.
package internal

import (
	"pgfinder/pg-api/config"
	"pgfinder/pg-api/internal/account"
	"pgfinder/pg-api/internal/auth"
	"pgfinder/pg-api/internal/listing"
	"pgfinder/pg-api/internal/store"
	"pgfinder/pg-api/pkg/security"

	"gorm.io/gorm"
)

type Deps struct {
	Config   *config.Config
	DB       *gorm.DB
	Users    *store.Users
	Codes    *store.Codes
	Tokens   *security.Tokens
	Auth     *auth.Service
	Accounts *account.Service
	Listings *listing.Service
}
