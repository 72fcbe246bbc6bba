// Package entity defines the entities and errors used in the application.
// It includes the URL struct, which represents a shortened URL together with
// its click statistics, the dashboard Report, and the sentinel errors shared by
// the storage, use case and delivery layers.
package entity

import (
	"errors"
	"sort"
)

var (
	// ErrShortCodeExists is returned when attempting to create a URL with a short code that already exists.
	ErrShortCodeExists = errors.New("short code exists")
	// ErrURLNotFound is returned when a URL with the specified short code cannot be found.
	ErrURLNotFound = errors.New("url not found")
)

// URL represents a shortened URL.
type URL struct {
	ShortCode   string // ShortCode is the generated code used to shorten the original URL.
	OriginalURL string // OriginalURL is the full URL that the short code resolves to.
	URLStats           // URLStats contains statistics about the URL.
}

// URLStats contains statistics related to a shortened URL.
type URLStats struct {
	AccessCount int64 // AccessCount is the number of times the shortened URL has been accessed.
}

// ReportEntry is a single dashboard row.
type ReportEntry struct {
	OriginalURL string
	AccessCount int64
}

// Report maps every known short code to its original URL and click count.
type Report map[string]ReportEntry

// NewReport builds a Report from a list of URLs.
func NewReport(urls []*URL) Report {
	report := make(Report, len(urls))

	for _, url := range urls {
		report[url.ShortCode] = ReportEntry{
			OriginalURL: url.OriginalURL,
			AccessCount: url.AccessCount,
		}
	}

	return report
}

// ShortCodes returns the report keys in ascending order.
func (r Report) ShortCodes() []string {
	codes := make([]string, 0, len(r))
	for code := range r {
		codes = append(codes, code)
	}

	sort.Strings(codes)

	return codes
}
