package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/vadimbarashkov/shortlink/internal/entity"
	"github.com/vadimbarashkov/shortlink/pkg/shortcode"
)

const maxRetries = 5

var ErrMaxRetriesExceeded = errors.New("maximum retries exceeded for generating short code")

// reservedShortCodes are claimed by literal routes and never resolve.
var reservedShortCodes = map[string]struct{}{
	"dashboard": {},
	"shorten":   {},
	"ping":      {},
	"swagger":   {},
	"docs":      {},
}

// IsReserved reports whether shortCode collides with a route name.
func IsReserved(shortCode string) bool {
	_, ok := reservedShortCodes[shortCode]
	return ok
}

type urlRepository interface {
	Save(ctx context.Context, shortCode, originalURL string) (*entity.URL, error)
	RetrieveAndUpdateStats(ctx context.Context, shortCode string) (*entity.URL, error)
	RetrieveAll(ctx context.Context) ([]*entity.URL, error)
}

type URLUseCase struct {
	urlRepo  urlRepository
	generate shortcode.Generator
}

func New(urlRepo urlRepository, generate shortcode.Generator) *URLUseCase {
	return &URLUseCase{
		urlRepo:  urlRepo,
		generate: generate,
	}
}

// ShortenURL returns the URL stored for originalURL, creating it under a fresh
// short code if it is not stored yet.
func (uc *URLUseCase) ShortenURL(ctx context.Context, originalURL string) (*entity.URL, error) {
	const op = "usecase.URLUseCase.ShortenURL"

	for i := 0; i < maxRetries; i++ {
		shortCode, err := uc.generate()
		if err != nil {
			return nil, fmt.Errorf("%s: failed to generate short code: %w", op, err)
		}

		if IsReserved(shortCode) {
			continue
		}

		url, err := uc.urlRepo.Save(ctx, shortCode, originalURL)
		if err != nil {
			if errors.Is(err, entity.ErrShortCodeExists) {
				continue
			}

			return nil, fmt.Errorf("%s: failed to shorten url: %w", op, err)
		}

		return url, nil
	}

	return nil, fmt.Errorf("%s: %w", op, ErrMaxRetriesExceeded)
}

// ResolveShortCode returns the URL behind shortCode and counts the visit.
func (uc *URLUseCase) ResolveShortCode(ctx context.Context, shortCode string) (*entity.URL, error) {
	const op = "usecase.URLUseCase.ResolveShortCode"

	if IsReserved(shortCode) {
		return nil, fmt.Errorf("%s: %q is reserved: %w", op, shortCode, entity.ErrURLNotFound)
	}

	url, err := uc.urlRepo.RetrieveAndUpdateStats(ctx, shortCode)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to resolve short code: %w", op, err)
	}

	return url, nil
}

func (uc *URLUseCase) GetDashboard(ctx context.Context) (entity.Report, error) {
	const op = "usecase.URLUseCase.GetDashboard"

	urls, err := uc.urlRepo.RetrieveAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to get urls: %w", op, err)
	}

	return entity.NewReport(urls), nil
}
