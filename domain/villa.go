package domain

import (
	"encoding/json"
	"io"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type LocalizedText struct {
	En string `bson:"en" json:"en"`
	Th string `bson:"th" json:"th"`
}

type BankDetails struct {
	Bank          string `bson:"bank" json:"bank"`
	AccountNumber string `bson:"account_number" json:"accountNumber"`
	AccountName   string `bson:"account_name" json:"accountName"`
}

type PromptPayDetails struct {
	QRImage string `bson:"qr_image,omitempty" json:"qrImage,omitempty"`
}

type Room struct {
	Name        LocalizedText `bson:"name" json:"name"`
	Description LocalizedText `bson:"description" json:"description"`
	Images      []string      `bson:"images,omitempty" json:"images,omitempty"`
}

type Villa struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name        LocalizedText      `bson:"name" json:"name"`
	Title       LocalizedText      `bson:"title" json:"title"`
	Description LocalizedText      `bson:"description" json:"description"`
	Address     LocalizedText      `bson:"address,omitempty" json:"address"`
	Beachfront  LocalizedText      `bson:"beachfront,omitempty" json:"beachfront"`

	WeekdayPrice           float64 `bson:"weekday_price" json:"weekdayPrice"`
	WeekdayDiscountedPrice float64 `bson:"weekday_discounted_price,omitempty" json:"weekdayDiscountedPrice"`
	WeekendPrice           float64 `bson:"weekend_price" json:"weekendPrice"`
	WeekendDiscountedPrice float64 `bson:"weekend_discounted_price,omitempty" json:"weekendDiscountedPrice"`
	PriceReductionPerRoom  float64 `bson:"price_reduction_per_room" json:"priceReductionPerRoom"`

	MaxGuests int `bson:"max_guests" json:"maxGuests"`
	Bedrooms  int `bson:"bedrooms" json:"bedrooms"`
	MinRooms  int `bson:"min_rooms" json:"minRooms"`
	Bathrooms int `bson:"bathrooms" json:"bathrooms"`

	BankDetails     []BankDetails     `bson:"bank_details,omitempty" json:"bankDetails"`
	PromptPay       *PromptPayDetails `bson:"promptpay,omitempty" json:"promptPay,omitempty"`
	BackgroundImage string            `bson:"background_image,omitempty" json:"backgroundImage,omitempty"`
	SlideImages     []string          `bson:"slide_images,omitempty" json:"slideImages,omitempty"`
	Rooms           []Room            `bson:"rooms,omitempty" json:"rooms,omitempty"`
	IsActive        bool              `bson:"is_active" json:"isActive"`
	CreatedAt       time.Time          `bson:"created_at,omitempty" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updated_at,omitempty" json:"updatedAt"`
}

func (v *Villa) ToJSON(w io.Writer) error {
	e := json.NewEncoder(w)
	return e.Encode(v)
}

func (v *Villa) FromJSON(r io.Reader) error {
	d := json.NewDecoder(r)
	return d.Decode(v)
}

// Validate enforces the pricing and capacity rules the admin form promises.
func (v *Villa) Validate() error {
	if v.WeekdayPrice < 0 || v.WeekendPrice < 0 {
		return NewValidationError("weekdayPrice", "prices cannot be negative")
	}
	if v.WeekdayDiscountedPrice < 0 || v.WeekendDiscountedPrice < 0 {
		return NewValidationError("weekdayDiscountedPrice", "discounted prices cannot be negative")
	}
	if v.WeekdayDiscountedPrice > v.WeekdayPrice {
		return NewValidationError("weekdayDiscountedPrice", "discounted price must be less than or equal to regular price")
	}
	if v.WeekendDiscountedPrice > v.WeekendPrice {
		return NewValidationError("weekendDiscountedPrice", "discounted price must be less than or equal to regular price")
	}
	if v.PriceReductionPerRoom < 0 {
		return NewValidationError("priceReductionPerRoom", "price reduction cannot be negative")
	}
	if v.Bedrooms < 1 {
		return NewValidationError("bedrooms", "must have at least 1 bedroom")
	}
	if v.MinRooms < 1 || v.MinRooms > v.Bedrooms {
		return NewValidationError("minRooms", "minimum rooms cannot be greater than total bedrooms")
	}
	return nil
}

// DefaultVilla is the document provisioned on first start when the villa
// collection is empty.
func DefaultVilla() *Villa {
	return &Villa{
		Name:        LocalizedText{En: "Luxury Beach Villa", Th: "วิลล่าหรูริมทะเล"},
		Title:       LocalizedText{En: "Beachfront Paradise", Th: "สวรรค์ริมทะเล"},
		Description: LocalizedText{En: "Experience luxury living by the beach", Th: "สัมผัสประสบการณ์การพักผ่อนสุดหรูริมทะเล"},
		Address:     LocalizedText{En: "123 Beach Road", Th: "123 ถนนริมทะเล"},
		Beachfront:  LocalizedText{En: "Direct access to the beach", Th: "เข้าถึงชายหาดได้โดยตรง"},

		WeekdayPrice:          5000,
		WeekendPrice:          6000,
		PriceReductionPerRoom: 2000,
		MaxGuests:             6,
		Bedrooms:              3,
		MinRooms:              1,
		Bathrooms:             3,
		BankDetails: []BankDetails{
			{
				Bank:          "Kasikorn Bank (KBank)",
				AccountNumber: "xxx-x-xxxxx-x",
				AccountName:   "Your Company Name Co., Ltd.",
			},
		},
		IsActive: true,
	}
}
