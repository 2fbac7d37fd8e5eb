package models

import (
	"time"

	"github.com/google/uuid"
)

// Reservation statuses. A reservation is created PENDING; later transitions
// happen through back-office tooling, not through this API.
const (
	StatusPending   = "PENDING"
	StatusConfirmed = "CONFIRMED"
	StatusInTransit = "IN_TRANSIT"
	StatusDelivered = "DELIVERED"
	StatusCancelled = "CANCELLED"
)

// Package categories accepted by the wizard.
const (
	CategoryMerchandises = "merchandises"
	CategoryDocuments    = "documents"
	CategoryElectronics  = "electronics"
	CategoryClothing     = "clothing"
	CategoryOthers       = "others"
)

// PackageCategories lists every accepted category value.
var PackageCategories = []string{
	CategoryMerchandises,
	CategoryDocuments,
	CategoryElectronics,
	CategoryClothing,
	CategoryOthers,
}

// Location is a city/district/precise-address triple embedded twice in each
// reservation, once per direction.
type Location struct {
	City           string `json:"ville"`
	District       string `json:"quartier"`
	PreciseAddress string `json:"adresse_precise"`
}

// Reservation is a confirmed booking owned by exactly one user.
type Reservation struct {
	BaseModel
	UserID            uuid.UUID `gorm:"type:uuid;index" json:"user_id"`
	User              *User     `json:"user,omitempty"`
	DepartureLocation Location  `gorm:"embedded;embeddedPrefix:departure_" json:"departure_location"`
	ArrivalLocation   Location  `gorm:"embedded;embeddedPrefix:arrival_" json:"arrival_location"`
	SenderName        string    `json:"sender_name"`
	SenderPhone       string    `json:"sender_phone"`
	RecipientName     string    `json:"recipient_name"`
	RecipientPhone    string    `json:"recipient_phone"`
	NotifyRecipient   bool      `json:"notify_recipient"`
	AdditionalInfo    string    `json:"additional_info"`
	ShippingDate      time.Time `json:"shipping_date"`
	Status            string    `gorm:"default:PENDING" json:"status"`
	Packages          []Package `json:"packages,omitempty"`
}

// Package is one shipped item inside a reservation. ImagePath stores the
// relative upload path, never the binary.
type Package struct {
	BaseModel
	ReservationID uuid.UUID `gorm:"type:uuid;index" json:"reservation_id"`
	SenderID      uuid.UUID `gorm:"type:uuid;index" json:"sender_id"`
	Description   string    `json:"description"`
	Quantity      int       `json:"quantity"`
	Weight        float64   `json:"weight"`
	Category      string    `json:"category"`
	ImagePath     string    `json:"image_path,omitempty"`
}
