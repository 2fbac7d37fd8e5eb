package draft

import (
	"regexp"
	"strings"
	"time"
)

// ErrorMap maps field names to user-facing messages. An empty map means the
// step is valid.
type ErrorMap map[string]string

var phonePattern = regexp.MustCompile(`^\+?[0-9]{8,}$`)

// ValidateStep runs the pure validation predicate for one step against the
// draft. It never mutates the draft.
func (d *Draft) ValidateStep(step int) ErrorMap {
	switch step {
	case StepLocalization:
		return d.validateLocalization(time.Now())
	case StepContact:
		return d.validateContact()
	case StepPackages:
		return d.validatePackages()
	case StepReview:
		return d.validateReview()
	default:
		return ErrorMap{"step": "Étape inconnue"}
	}
}

func (d *Draft) validateLocalization(now time.Time) ErrorMap {
	errs := ErrorMap{}
	validatePoint(errs, "depart", d.Localization.Departure)
	validatePoint(errs, "destination", d.Localization.Destination)

	if d.Localization.ShippingDate == "" {
		errs["shippingDate"] = "La date d'envoi est requise."
	} else if date, err := time.Parse("2006-01-02", d.Localization.ShippingDate); err != nil {
		errs["shippingDate"] = "La date d'envoi est invalide."
	} else {
		today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		if date.Before(today) {
			errs["shippingDate"] = "La date d'envoi ne peut pas être antérieure à aujourd'hui."
		}
	}

	return errs
}

func validatePoint(errs ErrorMap, prefix string, point LocationPoint) {
	if point.City == "" {
		errs[prefix+".ville"] = "La ville est requise."
	}
	if strings.TrimSpace(point.District) == "" {
		errs[prefix+".quartier"] = "Le quartier est requis."
	}
	if strings.TrimSpace(point.PreciseAddress) == "" {
		errs[prefix+".adressePrecise"] = "L'adresse précise est requise."
	}
}

func (d *Draft) validateContact() ErrorMap {
	errs := ErrorMap{}
	c := d.Contact

	if strings.TrimSpace(c.SenderName) == "" {
		errs["senderName"] = "Le nom de l'expéditeur est requis."
	}
	validatePhone(errs, "senderPhone", c.SenderPhone, "Le téléphone de l'expéditeur est requis.")

	if strings.TrimSpace(c.RecipientName) == "" {
		errs["recipientName"] = "Le nom du destinataire est requis."
	}
	validatePhone(errs, "recipientPhone", c.RecipientPhone, "Le téléphone du destinataire est requis.")

	return errs
}

func validatePhone(errs ErrorMap, field, value, requiredMsg string) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		errs[field] = requiredMsg
		return
	}
	if !phonePattern.MatchString(trimmed) {
		errs[field] = "Format de téléphone invalide (minimum 8 chiffres, peut commencer par +)."
	}
}

// validatePackages surfaces a single step-level error rather than per-field
// errors; the package list either has entries or it does not.
func (d *Draft) validatePackages() ErrorMap {
	errs := ErrorMap{}
	if len(d.Packages) == 0 {
		errs["packages"] = "Veuillez ajouter au moins un colis."
	}
	return errs
}

func (d *Draft) validateReview() ErrorMap {
	errs := ErrorMap{}
	if !d.Review.AcceptTerms {
		errs["acceptTerms"] = "Vous devez accepter les conditions générales."
	}
	return errs
}

// ValidateItem checks one package entry before it joins the list, mirroring
// the add/edit dialog's own checks.
func ValidateItem(item PackageItem) ErrorMap {
	errs := ErrorMap{}
	if strings.TrimSpace(item.Description) == "" {
		errs["description"] = "La description est requise."
	}
	if item.Quantity <= 0 {
		errs["quantity"] = "La quantité doit être positive."
	}
	if item.Weight <= 0 {
		errs["weight"] = "Le poids est requis et doit être positif."
	}
	if item.Category == "" {
		errs["packageCategory"] = "Le type de colis est requis."
	}
	return errs
}
