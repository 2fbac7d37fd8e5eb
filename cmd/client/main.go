// Command client walks a locally persisted reservation draft through the
// wizard and optionally submits it to a running ColiSync server. It is the
// non-browser consumer of the draft package's persistence port.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"sort"

	"github.com/example/colisync/internal/draft"
)

func main() {
	serverURL := flag.String("server", "http://localhost:8080", "ColiSync server base URL")
	sessionToken := flag.String("token", "", "session token (access_token cookie value)")
	draftDir := flag.String("draft-dir", ".", "directory holding the persisted draft")
	submit := flag.Bool("submit", false, "submit the draft after validation")
	flag.Parse()

	store := draft.NewFileStore(*draftDir)
	submitter := draft.NewAPISubmitter(*serverURL, *sessionToken)

	wizard, err := draft.NewWizard(store, submitter)
	if err != nil {
		log.Fatalf("failed to load draft: %v", err)
	}

	fmt.Printf("Draft restored at step %d/%d\n", wizard.CurrentStep(), draft.StepCount)

	for wizard.CurrentStep() < draft.StepCount {
		step := wizard.CurrentStep()
		if errs := wizard.Advance(); len(errs) > 0 {
			printErrors(step, errs)
			os.Exit(1)
		}
	}

	if errs := wizard.Validate(); len(errs) > 0 {
		printErrors(wizard.CurrentStep(), errs)
		os.Exit(1)
	}

	fmt.Printf("Draft is complete: %d colis, prix estimé %.0f FCFA\n",
		len(wizard.Draft().Packages), wizard.Estimate())

	if !*submit {
		return
	}

	if err := wizard.Submit(context.Background()); err != nil {
		log.Fatalf("submission failed: %v", err)
	}

	fmt.Println("Réservation envoyée avec succès")
}

func printErrors(step int, errs draft.ErrorMap) {
	fmt.Fprintf(os.Stderr, "step %d is incomplete:\n", step)
	fields := make([]string, 0, len(errs))
	for field := range errs {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	for _, field := range fields {
		fmt.Fprintf(os.Stderr, "  %s: %s\n", field, errs[field])
	}
}
