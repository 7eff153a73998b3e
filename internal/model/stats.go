package model

type ListingCounts struct {
	TotalListings       int64 `json:"totalListings"`
	ActiveListings      int64 `json:"activeListings"`
	VerifiedListings    int64 `json:"verifiedListings"`
	PendingVerification int64 `json:"pendingVerification"`
}

type GenderCount struct {
	Gender string `json:"_id"`
	Count  int64  `json:"count"`
}

type PriceRange struct {
	AvgPrice float64 `json:"avgPrice"`
	MinPrice int     `json:"minPrice"`
	MaxPrice int     `json:"maxPrice"`
}
