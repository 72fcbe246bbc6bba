// Package filestore keeps shortened URLs and their click counts in memory and
// mirrors them to two JSON documents in a data directory.
package filestore

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/vadimbarashkov/shortlink/internal/entity"
	"github.com/vadimbarashkov/shortlink/pkg/jsonfile"
)

const (
	DefaultURLsFile   = "db.json"
	DefaultClicksFile = "clicks.json"
)

// urlRecord is the on-disk shape of a single URL map entry.
type urlRecord struct {
	Original string `json:"original"`
}

// Option configures a URLRepository.
type Option func(*URLRepository)

// WithURLsFile overrides the URL map file name inside the data directory.
// An empty name keeps the default.
func WithURLsFile(name string) Option {
	return func(r *URLRepository) {
		if name != "" {
			r.urlsPath = filepath.Join(r.dataDir, name)
		}
	}
}

// WithClicksFile overrides the click-count file name inside the data directory.
func WithClicksFile(name string) Option {
	return func(r *URLRepository) {
		if name != "" {
			r.clicksPath = filepath.Join(r.dataDir, name)
		}
	}
}

// URLRepository is a thread-safe URL store. The URL map and the click counts
// share one lock, so a redirect never loses a concurrent increment.
type URLRepository struct {
	mu         sync.RWMutex
	urls       map[string]urlRecord
	clicks     map[string]int64
	byOriginal map[string]string
	// dirty is set when the click counts on disk lag behind memory.
	dirty bool

	dataDir    string
	urlsPath   string
	clicksPath string
	logger     *slog.Logger
}

// New creates the data directory if needed and loads the persisted state.
// Missing or unreadable documents are treated as empty.
func New(dataDir string, logger *slog.Logger, opts ...Option) (*URLRepository, error) {
	const op = "adapter.repository.filestore.New"

	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("%s: failed to create data directory: %w", op, err)
	}

	r := &URLRepository{
		urls:       make(map[string]urlRecord),
		clicks:     make(map[string]int64),
		byOriginal: make(map[string]string),
		dataDir:    dataDir,
		urlsPath:   filepath.Join(dataDir, DefaultURLsFile),
		clicksPath: filepath.Join(dataDir, DefaultClicksFile),
		logger:     logger,
	}

	for _, opt := range opts {
		opt(r)
	}

	if err := jsonfile.Load(r.urlsPath, &r.urls); err != nil {
		r.logger.Warn("starting with empty url map", slog.String("path", r.urlsPath), slog.Any("err", err))
		r.urls = make(map[string]urlRecord)
	}

	if err := jsonfile.Load(r.clicksPath, &r.clicks); err != nil {
		r.logger.Warn("starting with empty click counts", slog.String("path", r.clicksPath), slog.Any("err", err))
		r.clicks = make(map[string]int64)
	}

	// Decoding "null" yields a nil map.
	if r.urls == nil {
		r.urls = make(map[string]urlRecord)
	}
	if r.clicks == nil {
		r.clicks = make(map[string]int64)
	}

	for _, code := range sortedKeys(r.urls) {
		original := r.urls[code].Original
		if _, ok := r.byOriginal[original]; ok {
			r.logger.Warn("duplicate original url in url map", slog.String("short_code", code))
			continue
		}
		r.byOriginal[original] = code
	}

	r.logger.Info("url map loaded", slog.Int("entries", len(r.urls)), slog.String("path", r.urlsPath))

	return r, nil
}

// Save stores originalURL under shortCode. If originalURL is already stored,
// the existing entry is returned and nothing is written.
func (r *URLRepository) Save(ctx context.Context, shortCode, originalURL string) (*entity.URL, error) {
	const op = "adapter.repository.filestore.URLRepository.Save"

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if code, ok := r.byOriginal[originalURL]; ok {
		return r.toEntity(code), nil
	}

	if _, ok := r.urls[shortCode]; ok {
		return nil, fmt.Errorf("%s: %w", op, entity.ErrShortCodeExists)
	}

	r.urls[shortCode] = urlRecord{Original: originalURL}

	if err := jsonfile.Save(r.urlsPath, r.urls); err != nil {
		delete(r.urls, shortCode)
		return nil, fmt.Errorf("%s: failed to persist url map: %w", op, err)
	}

	r.byOriginal[originalURL] = shortCode
	r.clicks[shortCode] = 0

	r.persistClicks(op)

	return r.toEntity(shortCode), nil
}

// RetrieveAndUpdateStats returns the URL stored under shortCode and counts one access.
func (r *URLRepository) RetrieveAndUpdateStats(ctx context.Context, shortCode string) (*entity.URL, error) {
	const op = "adapter.repository.filestore.URLRepository.RetrieveAndUpdateStats"

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.urls[shortCode]; !ok {
		return nil, fmt.Errorf("%s: %w", op, entity.ErrURLNotFound)
	}

	r.clicks[shortCode]++
	r.persistClicks(op)

	return r.toEntity(shortCode), nil
}

// RetrieveAll returns every stored URL ordered by short code.
func (r *URLRepository) RetrieveAll(ctx context.Context) ([]*entity.URL, error) {
	const op = "adapter.repository.filestore.URLRepository.RetrieveAll"

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	urls := make([]*entity.URL, 0, len(r.urls))
	for _, code := range sortedKeys(r.urls) {
		urls = append(urls, r.toEntity(code))
	}

	return urls, nil
}

// Close writes click counts that failed to persist earlier.
func (r *URLRepository) Close() error {
	const op = "adapter.repository.filestore.URLRepository.Close"

	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.dirty {
		return nil
	}

	if err := jsonfile.Save(r.clicksPath, r.clicks); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	r.dirty = false

	return nil
}

// persistClicks must be called with r.mu held for writing. A failed write is
// logged and retried on the next mutation or on Close.
func (r *URLRepository) persistClicks(op string) {
	if err := jsonfile.Save(r.clicksPath, r.clicks); err != nil {
		r.dirty = true
		r.logger.Warn("failed to persist click counts", slog.String("op", op), slog.Any("err", err))
		return
	}

	r.dirty = false
}

// toEntity must be called with r.mu held.
func (r *URLRepository) toEntity(shortCode string) *entity.URL {
	return &entity.URL{
		ShortCode:   shortCode,
		OriginalURL: r.urls[shortCode].Original,
		URLStats: entity.URLStats{
			AccessCount: r.clicks[shortCode],
		},
	}
}

func sortedKeys(m map[string]urlRecord) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return keys
}
