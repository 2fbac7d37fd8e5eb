package draft

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSubmitter struct {
	calls []Submission
	fail  error
}

func (s *fakeSubmitter) Submit(ctx context.Context, sub Submission) error {
	if s.fail != nil {
		return s.fail
	}
	s.calls = append(s.calls, sub)
	return nil
}

func newTestWizard(t *testing.T) (*Wizard, *MemoryStore, *fakeSubmitter) {
	t.Helper()
	store := NewMemoryStore()
	submitter := &fakeSubmitter{}
	w, err := NewWizard(store, submitter)
	require.NoError(t, err)
	return w, store, submitter
}

func fillComplete(w *Wizard) {
	d := completeDraft()
	w.UpdateLocalization(func(l *Localization) { *l = d.Localization })
	w.UpdateContact(func(c *Contact) { *c = d.Contact })
	w.UpdatePackages(d.Packages)
	w.UpdateReview(func(r *Review) { *r = d.Review })
}

func TestAdvanceBlockedOnEveryInvalidStep(t *testing.T) {
	w, _, _ := newTestWizard(t)
	fillComplete(w)

	breakStep := map[int]func(w *Wizard){
		StepLocalization: func(w *Wizard) {
			w.UpdateLocalization(func(l *Localization) { l.ShippingDate = "" })
		},
		StepContact: func(w *Wizard) {
			w.UpdateContact(func(c *Contact) { c.SenderPhone = "123" })
		},
		StepPackages: func(w *Wizard) {
			w.UpdatePackages(nil)
		},
		StepReview: func(w *Wizard) {
			w.UpdateReview(func(r *Review) { r.AcceptTerms = false })
		},
	}
	repairStep := map[int]func(w *Wizard){
		StepLocalization: func(w *Wizard) {
			w.UpdateLocalization(func(l *Localization) { l.ShippingDate = completeDraft().Localization.ShippingDate })
		},
		StepContact: func(w *Wizard) {
			w.UpdateContact(func(c *Contact) { c.SenderPhone = "+22997000001" })
		},
		StepPackages: func(w *Wizard) {
			w.UpdatePackages(completeDraft().Packages)
		},
		StepReview: func(w *Wizard) {
			w.UpdateReview(func(r *Review) { r.AcceptTerms = true })
		},
	}

	for step := StepLocalization; step <= StepCount; step++ {
		require.Equal(t, step, w.CurrentStep())

		breakStep[step](w)
		errs := w.Advance()
		assert.NotEmpty(t, errs, "step %d should block", step)
		assert.Equal(t, step, w.CurrentStep(), "cursor must not move on invalid step %d", step)

		repairStep[step](w)
		if step < StepCount {
			assert.Empty(t, w.Advance())
		}
	}
}

func TestAdvanceClampsAtLastStep(t *testing.T) {
	w, _, _ := newTestWizard(t)
	fillComplete(w)

	for i := 0; i < StepCount+2; i++ {
		w.Advance()
	}
	assert.Equal(t, StepCount, w.CurrentStep())
}

func TestRetreatNeverValidatesAndClampsAtOne(t *testing.T) {
	w, _, _ := newTestWizard(t)
	// Draft is entirely empty: Retreat must still work.
	w.Retreat()
	w.Retreat()
	assert.Equal(t, StepLocalization, w.CurrentStep())
}

func TestCityConflictClearsOtherSide(t *testing.T) {
	cities := []string{"cotonou", "porto-novo", "parakou", "abomey"}

	for _, city := range cities {
		w, _, _ := newTestWizard(t)

		// Destination picked first, then the same city as departure:
		// the destination (set first) is cleared.
		w.UpdateLocalization(func(l *Localization) { l.Destination.City = city })
		w.UpdateLocalization(func(l *Localization) { l.Departure.City = city })

		d := w.Draft()
		assert.Equal(t, city, d.Localization.Departure.City)
		assert.Empty(t, d.Localization.Destination.City)

		// And the other way round.
		w2, _, _ := newTestWizard(t)
		w2.UpdateLocalization(func(l *Localization) { l.Departure.City = city })
		w2.UpdateLocalization(func(l *Localization) { l.Destination.City = city })

		d2 := w2.Draft()
		assert.Equal(t, city, d2.Localization.Destination.City)
		assert.Empty(t, d2.Localization.Departure.City)
	}
}

func TestUpdatesArePersistedToStore(t *testing.T) {
	w, store, _ := newTestWizard(t)
	fillComplete(w)
	require.Empty(t, w.Advance())

	saved, step, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, StepContact, step)
	assert.Equal(t, "Ama Dossou", saved.Contact.SenderName)

	// A new wizard over the same store resumes where the first one left off.
	resumed, err := NewWizard(store, &fakeSubmitter{})
	require.NoError(t, err)
	assert.Equal(t, StepContact, resumed.CurrentStep())
	assert.Equal(t, w.Draft(), resumed.Draft())
}

func TestSubmitBlockedLocallyWithoutPackages(t *testing.T) {
	w, store, submitter := newTestWizard(t)
	fillComplete(w)
	w.UpdatePackages(nil)

	err := w.Submit(context.Background())

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, StepPackages, vErr.Step)
	assert.Contains(t, vErr.Fields, "packages")

	// No request was built and the draft is unchanged.
	assert.Empty(t, submitter.calls)
	saved, _, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "Ama Dossou", saved.Contact.SenderName)
}

func TestSubmitSuccessClearsDraftAndResets(t *testing.T) {
	w, store, submitter := newTestWizard(t)
	fillComplete(w)
	for w.CurrentStep() < StepCount {
		require.Empty(t, w.Advance())
	}

	require.NoError(t, w.Submit(context.Background()))
	require.Len(t, submitter.calls, 1)

	assert.Equal(t, StepLocalization, w.CurrentStep())
	assert.Equal(t, NewDraft(), w.Draft())

	saved, step, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, StepLocalization, step)
	assert.Equal(t, NewDraft(), saved)
}

func TestSubmitFailureLeavesDraftIntact(t *testing.T) {
	w, store, submitter := newTestWizard(t)
	submitter.fail = errors.New("Erreur interne du serveur")
	fillComplete(w)

	err := w.Submit(context.Background())
	require.EqualError(t, err, "Erreur interne du serveur")

	assert.NotEmpty(t, w.Draft().Packages)
	saved, _, loadErr := store.Load()
	require.NoError(t, loadErr)
	assert.NotEmpty(t, saved.Packages)
}

func TestEstimateFollowsDraft(t *testing.T) {
	w, _, _ := newTestWizard(t)
	assert.Zero(t, w.Estimate())

	w.UpdatePackages([]PackageItem{{Weight: 2, Quantity: 1}, {Weight: 1, Quantity: 3}})
	assert.Equal(t, 6500.0, w.Estimate())
}
