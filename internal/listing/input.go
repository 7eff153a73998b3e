package listing

import "pgfinder/pg-api/internal/model"

type LocationInput struct {
	Address     string            `json:"address" binding:"required"`
	City        string            `json:"city" binding:"required"`
	State       string            `json:"state" binding:"required"`
	Pincode     string            `json:"pincode" binding:"pincode"`
	Coordinates model.Coordinates `json:"coordinates"`
}

type PriceInput struct {
	Monthly int `json:"monthly" binding:"min=1000,max=50000"`
	Deposit int `json:"deposit" binding:"min=0"`
}

type RoomTypeInput struct {
	Type      string `json:"type" binding:"required,roomkind"`
	Available int    `json:"available" binding:"min=0"`
	Price     int    `json:"price" binding:"min=1000"`
}

type ImageInput struct {
	URL       string `json:"url" binding:"required"`
	Caption   string `json:"caption"`
	IsPrimary bool   `json:"isPrimary"`
}

type ContactInput struct {
	Phone string `json:"phone" binding:"phone10"`
	Email string `json:"email" binding:"required,email"`
}

// Input is the client editable part of a listing. Rating, verification and
// ownership are never taken from a request.
type Input struct {
	Name        string          `json:"name" binding:"required,min=3,max=100"`
	Description string          `json:"description" binding:"required,min=10,max=1000"`
	Location    LocationInput   `json:"location"`
	Price       PriceInput      `json:"price"`
	Amenities   []string        `json:"amenities" binding:"omitempty,dive,amenity"`
	Gender      string          `json:"gender" binding:"gender"`
	RoomTypes   []RoomTypeInput `json:"roomTypes" binding:"omitempty,dive"`
	Images      []ImageInput    `json:"images" binding:"omitempty,dive"`
	ContactInfo ContactInput    `json:"contactInfo"`
	Rules       []string        `json:"rules"`
	IsAvailable *bool           `json:"isAvailable"`
}

func fromModel(l *model.Listing) Input {
	available := l.IsAvailable

	in := Input{
		Name:        l.Name,
		Description: l.Description,
		Location: LocationInput{
			Address:     l.Location.Address,
			City:        l.Location.City,
			State:       l.Location.State,
			Pincode:     l.Location.Pincode,
			Coordinates: l.Location.Coordinates,
		},
		Price:       PriceInput{Monthly: l.Price.Monthly, Deposit: l.Price.Deposit},
		Amenities:   l.Amenities,
		Gender:      l.Gender,
		ContactInfo: ContactInput{Phone: l.ContactInfo.Phone, Email: l.ContactInfo.Email},
		Rules:       l.Rules,
		IsAvailable: &available,
	}

	for _, r := range l.RoomTypes {
		in.RoomTypes = append(in.RoomTypes, RoomTypeInput(r))
	}
	for _, i := range l.Images {
		in.Images = append(in.Images, ImageInput(i))
	}

	return in
}

// apply copies the input onto l. Image URLs are expected to be stored already.
func (in *Input) apply(l *model.Listing) {
	l.Name = in.Name
	l.Description = in.Description
	l.Location = model.Location{
		Address:     in.Location.Address,
		City:        in.Location.City,
		State:       in.Location.State,
		Pincode:     in.Location.Pincode,
		Coordinates: in.Location.Coordinates,
	}
	l.Price = model.Price{Monthly: in.Price.Monthly, Deposit: in.Price.Deposit}
	l.Amenities = in.Amenities
	l.Gender = in.Gender
	l.ContactInfo = model.ContactInfo{Phone: in.ContactInfo.Phone, Email: in.ContactInfo.Email}
	l.Rules = in.Rules

	l.RoomTypes = make([]model.RoomType, len(in.RoomTypes))
	for i, r := range in.RoomTypes {
		l.RoomTypes[i] = model.RoomType(r)
	}

	l.Images = make([]model.Image, len(in.Images))
	for i, img := range in.Images {
		l.Images[i] = model.Image(img)
	}

	if in.IsAvailable != nil {
		l.IsAvailable = *in.IsAvailable
	}
}
