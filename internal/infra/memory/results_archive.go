package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"darkstar-quiz-service/internal/domain"
	"golang.org/x/sync/singleflight"
)

// ResultsLoader fetches a channel's last report from a backing store.
type ResultsLoader interface {
	LoadLastResults(ctx context.Context, channelID string) (domain.ResultsReport, error)
}

// ResultsArchive keeps the last report of every channel for a TTL and falls
// back to an optional loader on a miss.
type ResultsArchive struct {
	loader ResultsLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand
	rndMu  sync.Mutex

	mu    sync.RWMutex
	cache map[string]cachedReport
}

type cachedReport struct {
	report    domain.ResultsReport
	expiresAt time.Time
}

// NewResultsArchive creates an archive. A zero ttl keeps reports forever;
// loader may be nil.
func NewResultsArchive(loader ResultsLoader, ttl time.Duration) *ResultsArchive {
	return &ResultsArchive{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedReport),
	}
}

// Publish implements app.ResultsSink.
func (a *ResultsArchive) Publish(_ context.Context, report domain.ResultsReport) error {
	a.store(report, a.clock())
	return nil
}

func (a *ResultsArchive) LastResults(ctx context.Context, channelID string) (domain.ResultsReport, error) {
	if report, ok := a.lookup(channelID, a.clock()); ok {
		return report, nil
	}
	if a.loader == nil {
		return domain.ResultsReport{}, domain.ErrNoResults
	}

	result, err, _ := a.sf.Do(channelID, func() (interface{}, error) {
		now := a.clock()
		if report, ok := a.lookup(channelID, now); ok {
			return report, nil
		}
		report, err := a.loader.LoadLastResults(ctx, channelID)
		if err != nil {
			return domain.ResultsReport{}, err
		}
		a.store(report, now)
		return report, nil
	})
	if err != nil {
		return domain.ResultsReport{}, err
	}
	return result.(domain.ResultsReport), nil
}

func (a *ResultsArchive) lookup(channelID string, now time.Time) (domain.ResultsReport, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	entry, ok := a.cache[channelID]
	if !ok || (!entry.expiresAt.IsZero() && !entry.expiresAt.After(now)) {
		return domain.ResultsReport{}, false
	}
	return entry.report, true
}

func (a *ResultsArchive) store(report domain.ResultsReport, now time.Time) {
	entry := cachedReport{report: report}
	if ttl := a.ttlWithJitter(); ttl > 0 {
		entry.expiresAt = now.Add(ttl)
	}
	a.mu.Lock()
	a.cache[report.ChannelID] = entry
	a.mu.Unlock()
}

func (a *ResultsArchive) ttlWithJitter() time.Duration {
	if a.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	a.rndMu.Lock()
	defer a.rndMu.Unlock()
	jitterMax := int64(a.ttl) / 10
	return a.ttl + time.Duration(a.rnd.Int63n(jitterMax+1))
}
