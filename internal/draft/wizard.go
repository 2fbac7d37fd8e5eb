package draft

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
)

// ErrSubmitInFlight reports a Submit call while a previous one has not
// returned yet.
var ErrSubmitInFlight = errors.New("une soumission est déjà en cours")

// ValidationError carries the failing step's field errors out of Submit and
// Advance callers.
type ValidationError struct {
	Step   int
	Fields ErrorMap
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return fmt.Sprintf("étape %d invalide: %s", e.Step, strings.Join(keys, ", "))
}

// Wizard owns the draft, the step cursor and the persistence port. It is the
// single mutator of the draft; section code supplies data, never control
// flow. Not safe for concurrent use: the wizard models one user filling one
// form.
type Wizard struct {
	store     Store
	submitter Submitter
	draft     Draft
	step      int
	busy      bool
}

// NewWizard restores any persisted draft from the store, or starts fresh at
// step 1.
func NewWizard(store Store, submitter Submitter) (*Wizard, error) {
	d, step, err := store.Load()
	if err != nil {
		return nil, err
	}
	if step < StepLocalization || step > StepCount {
		step = StepLocalization
	}
	return &Wizard{store: store, submitter: submitter, draft: d, step: step}, nil
}

// Draft returns a copy of the current draft.
func (w *Wizard) Draft() Draft {
	return w.draft
}

// CurrentStep returns the 1-based cursor.
func (w *Wizard) CurrentStep() int {
	return w.step
}

// UpdateLocalization merges changes into the localization section. Setting
// one side's city equal to the other side's clears the side that was set
// first, so origin and destination can never carry the same city.
func (w *Wizard) UpdateLocalization(apply func(*Localization)) {
	prevDeparture := w.draft.Localization.Departure.City
	apply(&w.draft.Localization)

	loc := &w.draft.Localization
	if loc.Departure.City != "" && loc.Departure.City == loc.Destination.City {
		if loc.Departure.City != prevDeparture {
			loc.Destination.City = ""
		} else {
			loc.Departure.City = ""
		}
	}

	w.persist()
}

// UpdateContact merges changes into the contact section.
func (w *Wizard) UpdateContact(apply func(*Contact)) {
	apply(&w.draft.Contact)
	w.persist()
}

// UpdatePackages replaces the package list.
func (w *Wizard) UpdatePackages(items []PackageItem) {
	w.draft.Packages = items
	w.persist()
}

// UpdateReview merges changes into the confirmation section.
func (w *Wizard) UpdateReview(apply func(*Review)) {
	apply(&w.draft.Review)
	w.persist()
}

// Validate runs the current step's validation predicate.
func (w *Wizard) Validate() ErrorMap {
	return w.draft.ValidateStep(w.step)
}

// Advance validates the current step and moves forward only when the step
// is clean. The returned map is empty on success.
func (w *Wizard) Advance() ErrorMap {
	errs := w.draft.ValidateStep(w.step)
	if len(errs) > 0 {
		return errs
	}

	if w.step < StepCount {
		w.step++
		w.persist()
	}
	return ErrorMap{}
}

// Retreat moves back one step without validating.
func (w *Wizard) Retreat() {
	if w.step > StepLocalization {
		w.step--
		w.persist()
	}
}

// Estimate returns the review-step price estimate for the current draft.
func (w *Wizard) Estimate() float64 {
	return EstimateTotal(w.draft.Packages)
}

// Reset discards the draft and persisted storage and returns to step 1.
func (w *Wizard) Reset() error {
	w.draft = NewDraft()
	w.step = StepLocalization
	return w.store.Clear()
}

// Submit validates every step, sends the draft to the booking API and, on
// confirmed success, clears the draft and resets the cursor. On any local
// validation failure no request is built; on a collaborator failure the
// draft stays intact so the user can retry without re-entering data.
func (w *Wizard) Submit(ctx context.Context) error {
	if w.busy {
		return ErrSubmitInFlight
	}
	w.busy = true
	defer func() { w.busy = false }()

	for step := StepLocalization; step <= StepCount; step++ {
		if errs := w.draft.ValidateStep(step); len(errs) > 0 {
			return &ValidationError{Step: step, Fields: errs}
		}
	}

	sub, err := BuildSubmission(w.draft)
	if err != nil {
		return err
	}

	if err := w.submitter.Submit(ctx, sub); err != nil {
		return err
	}

	return w.Reset()
}

func (w *Wizard) persist() {
	if err := w.store.Save(w.draft, w.step); err != nil {
		log.Printf("[Draft] persist failed: %v", err)
	}
}
