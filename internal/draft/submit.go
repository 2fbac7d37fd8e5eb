package draft

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/go-resty/resty/v2"
)

// Submission is the transfer form of a draft: all textual sections as one
// JSON document, and each image as a separate part keyed by the package's
// position in the list. Binaries cannot ride inside the JSON document, so
// they travel as their own bundle parts.
type Submission struct {
	Payload []byte
	Images  map[int]string
}

// Submitter delivers a submission to the booking collaborator.
type Submitter interface {
	Submit(ctx context.Context, sub Submission) error
}

// BuildSubmission encodes the draft for transfer. Image file paths are
// lifted out of the items into position-keyed entries.
func BuildSubmission(d Draft) (Submission, error) {
	payload, err := json.Marshal(d)
	if err != nil {
		return Submission{}, err
	}

	images := make(map[int]string)
	for i, item := range d.Packages {
		if item.ImageFile != "" {
			images[i] = item.ImageFile
		}
	}

	return Submission{Payload: payload, Images: images}, nil
}

// ImagePartName returns the multipart field name for the image of the
// package at the given list position.
func ImagePartName(index int) string {
	return fmt.Sprintf("package_%d_image", index)
}

// APISubmitter posts submissions to the ColiSync HTTP API as a multipart
// bundle, authenticating with the session cookie.
type APISubmitter struct {
	client *resty.Client
}

// NewAPISubmitter builds a submitter for the given server base URL and
// session token.
func NewAPISubmitter(baseURL, sessionToken string) *APISubmitter {
	client := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Cookie", "access_token="+sessionToken)
	return &APISubmitter{client: client}
}

type submitResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// Submit sends the bundle to /api/users/send-package. Server-reported
// failures surface their message verbatim where available.
func (s *APISubmitter) Submit(ctx context.Context, sub Submission) error {
	req := s.client.R().
		SetContext(ctx).
		SetMultipartField("payload", "", "application/json", bytes.NewReader(sub.Payload))

	indexes := make([]int, 0, len(sub.Images))
	for i := range sub.Images {
		indexes = append(indexes, i)
	}
	sort.Ints(indexes)
	for _, i := range indexes {
		req.SetFile(ImagePartName(i), sub.Images[i])
	}

	resp, err := req.Post("/api/users/send-package")
	if err != nil {
		return err
	}

	if resp.IsError() {
		var body submitResponse
		if jsonErr := json.Unmarshal(resp.Body(), &body); jsonErr == nil && body.Error != "" {
			return errors.New(body.Error)
		}
		return fmt.Errorf("l'envoi a échoué (statut %d)", resp.StatusCode())
	}

	return nil
}
