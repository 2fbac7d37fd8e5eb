// Package draft implements the client-held reservation wizard: the draft
// aggregate, per-step validation, the step cursor, durable draft storage and
// final submission to the booking API.
package draft

// Wizard steps, in order.
const (
	StepLocalization = 1
	StepContact      = 2
	StepPackages     = 3
	StepReview       = 4

	StepCount = 4
)

// Pricing constants for the display-only estimate shown on the review step.
// The persisted reservation carries no price; this is never sent anywhere.
const (
	BasePerPackage = 1000.0
	PerKgRate      = 500.0
)

// LocationPoint is one end of the shipment.
type LocationPoint struct {
	City           string `json:"ville"`
	District       string `json:"quartier"`
	PreciseAddress string `json:"adressePrecise"`
}

// Localization is the first wizard section: both endpoints plus the date.
// ShippingDate uses the 2006-01-02 form.
type Localization struct {
	Departure    LocationPoint `json:"zoneDepart"`
	Destination  LocationPoint `json:"zoneDestination"`
	ShippingDate string        `json:"shippingDate"`
}

// Contact is the second wizard section.
type Contact struct {
	SenderName             string `json:"senderName"`
	SenderPhone            string `json:"senderPhone"`
	RecipientName          string `json:"recipientName"`
	RecipientPhone         string `json:"recipientPhone"`
	NotifyRecipient        bool   `json:"notifyRecipient"`
	AdditionalInstructions string `json:"additionalInstructions,omitempty"`
}

// PackageItem is one entry of the third section. ImageFile points at a local
// attachment; it never travels inside the JSON document.
type PackageItem struct {
	Description string  `json:"description"`
	Quantity    int     `json:"quantity"`
	Weight      float64 `json:"weight"`
	Category    string  `json:"packageCategory"`
	ImageFile   string  `json:"-"`
}

// Review is the terminal section's confirmation gate.
type Review struct {
	AcceptTerms bool `json:"acceptTerms"`
}

// Draft is the full in-progress booking form.
type Draft struct {
	Localization Localization  `json:"localization"`
	Contact      Contact       `json:"contact"`
	Packages     []PackageItem `json:"packageDetails"`
	Review       Review        `json:"reviewAndConfirm"`
}

// NewDraft returns an empty draft with the wizard's initial values.
func NewDraft() Draft {
	return Draft{
		Contact: Contact{NotifyRecipient: true},
	}
}

// EstimateTotal computes the review-step price estimate in FCFA:
// per package, a flat base plus a per-kilogram rate, times quantity.
func EstimateTotal(packages []PackageItem) float64 {
	var total float64
	for _, p := range packages {
		total += (BasePerPackage + p.Weight*PerKgRate) * float64(p.Quantity)
	}
	return total
}
