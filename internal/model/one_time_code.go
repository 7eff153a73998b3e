package model

import "time"

type Purpose string

const (
	PurposeRegistration  Purpose = "registration"
	PurposePasswordReset Purpose = "password-reset"
)

// OneTimeCode is a short numeric code mailed to an address. Used only ever
// goes from false to true. VerifiedAt and RedeemedAt are only set for
// password-reset codes: the first when the code was confirmed on its own,
// the second when it was spent on a password change.
type OneTimeCode struct {
	ID         uint    `gorm:"primaryKey;autoIncrement"`
	Email      string  `gorm:"index:idx_code_lookup;not null"`
	Code       string  `gorm:"index:idx_code_lookup;size:10;not null"`
	Purpose    Purpose `gorm:"index:idx_code_lookup;size:32;not null"`
	CreatedAt  time.Time
	ExpiresAt  time.Time `gorm:"index;not null"`
	Used       bool      `gorm:"default:false"`
	UsedAt     *time.Time
	VerifiedAt *time.Time
	RedeemedAt *time.Time
}

// Usable reports whether the code can still be consumed at time now.
func (c *OneTimeCode) Usable(now time.Time) bool {
	return !c.Used && now.Before(c.ExpiresAt)
}
