package offline

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"
)

// LocalScheme prefixes plant image URLs when serving from the cache; the
// UI layer resolves it back through CachedImage.
const LocalScheme = "goldan-cache://"

// imageBatchSize bounds concurrent downloads so a garden full of plants
// does not open dozens of sockets at once on a mobile connection.
const imageBatchSize = 3

// skipImageURL reports whether url should never be fetched or cached:
// empty values, bundled placeholder assets and inline data URIs.
func skipImageURL(url string) bool {
	if url == "" {
		return true
	}
	if strings.HasPrefix(url, "data:") {
		return true
	}
	if strings.HasPrefix(url, LocalScheme) {
		return true
	}
	return strings.Contains(url, "placeholder")
}

// CacheImage downloads url and stores the bytes, unless the URL is skipped
// or already present. Download failures are logged and swallowed; a missing
// image must never fail a sync.
func (s *Store) CacheImage(ctx context.Context, url string, now time.Time) error {
	if skipImageURL(url) {
		return nil
	}
	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM images WHERE url = ?`, url).Scan(&exists)
	if err == nil {
		return nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return err
	}
	body, err := s.fetchImage(ctx, url)
	if err != nil {
		log.Printf("offline: image fetch %s: %v", url, err)
		return nil
	}
	const q = `INSERT INTO images (url, body, cached_at) VALUES (?, ?, ?)
	           ON CONFLICT(url) DO UPDATE SET body = excluded.body, cached_at = excluded.cached_at`
	_, err = s.db.ExecContext(ctx, q, url, body, fmtTime(now))
	return err
}

func (s *Store) fetchImage(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// CachedImage returns the stored bytes for url.
func (s *Store) CachedImage(ctx context.Context, url string) ([]byte, bool, error) {
	url = strings.TrimPrefix(url, LocalScheme)
	var body []byte
	err := s.db.QueryRowContext(ctx, `SELECT body FROM images WHERE url = ?`, url).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return body, true, nil
}

// ImageURL picks the reference the UI should render for url: the remote
// URL while online, the local scheme when offline and cached, and the
// remote URL again as a last resort so the platform image widget can show
// its own broken-image state.
func (s *Store) ImageURL(ctx context.Context, url string, online bool) string {
	if online || skipImageURL(url) {
		return url
	}
	_, ok, err := s.CachedImage(ctx, url)
	if err != nil || !ok {
		return url
	}
	return LocalScheme + url
}

// CacheAllImages caches every distinct URL in urls, imageBatchSize at a
// time. Each batch runs its downloads concurrently and waits for all of
// them before starting the next; individual failures never stop the rest.
func (s *Store) CacheAllImages(ctx context.Context, urls []string, now time.Time) {
	seen := map[string]bool{}
	distinct := make([]string, 0, len(urls))
	for _, u := range urls {
		if skipImageURL(u) || seen[u] {
			continue
		}
		seen[u] = true
		distinct = append(distinct, u)
	}
	for start := 0; start < len(distinct); start += imageBatchSize {
		end := start + imageBatchSize
		if end > len(distinct) {
			end = len(distinct)
		}
		var wg sync.WaitGroup
		for _, u := range distinct[start:end] {
			wg.Add(1)
			go func(u string) {
				defer wg.Done()
				if err := s.CacheImage(ctx, u, now); err != nil {
					log.Printf("offline: cache image %s: %v", u, err)
				}
			}(u)
		}
		wg.Wait()
	}
}

// EvictImages removes cached images not refreshed since olderThan and
// returns how many were dropped. Run periodically so the image partition
// cannot grow without bound on-device.
func (s *Store) EvictImages(ctx context.Context, olderThan time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM images WHERE cached_at < ?`, fmtTime(olderThan))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
