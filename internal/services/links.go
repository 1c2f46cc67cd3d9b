package services

import (
	"fmt"
	"strings"

	"github.com/skip2/go-qrcode"

	"github.com/ateliervote/concours/internal/errors"
)

// LinkService builds shareable links and QR images for the contest.
type LinkService struct {
	baseURL string
}

// NewLinkService creates a LinkService; baseURL is the public address of
// this server.
func NewLinkService(baseURL string) *LinkService {
	return &LinkService{baseURL: strings.TrimRight(baseURL, "/")}
}

// ResultsURL returns the public results page address.
func (s *LinkService) ResultsURL() string {
	return s.baseURL + "/api/results"
}

// TallyURL returns the live tally address for a bracket.
func (s *LinkService) TallyURL(index int) string {
	return fmt.Sprintf("%s/api/competitions/%d/tally", s.baseURL, index)
}

// GenerateResultsQR renders the results address as a QR PNG.
func (s *LinkService) GenerateResultsQR() ([]byte, error) {
	if s.baseURL == "" {
		return nil, errors.InvalidInput("base URL not configured")
	}
	png, err := qrcode.Encode(s.ResultsURL(), qrcode.Medium, 256)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "generating QR code")
	}
	return png, nil
}
