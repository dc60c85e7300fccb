// Package citylist accumulates directory pages into a growing, enriched,
// deduplicated city collection.
package citylist

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/i474232898/cities-weather/internal/geo"
	"github.com/i474232898/cities-weather/internal/logger"
	"github.com/i474232898/cities-weather/internal/metrics"
	"github.com/i474232898/cities-weather/internal/weather"
)

// State is the pagination state of an Aggregator.
type State int

const (
	Idle State = iota
	Loading
	Exhausted
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Exhausted:
		return "exhausted"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// MarshalText renders the state by name in JSON responses.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Cursor points at the next directory page to fetch.
type Cursor struct {
	PageIndex int `json:"pageIndex"`
	PageSize  int `json:"pageSize"`
}

// Offset is the index of the first record of the page.
func (c Cursor) Offset() int {
	return c.PageIndex * c.PageSize
}

// Directory is the paged city source. offset is the index of the first
// record, a multiple of PageSize.
type Directory interface {
	FetchPage(ctx context.Context, offset int) (geo.Page, error)
	PageSize() int
}

// CurrentFetcher looks up current conditions for one city.
type CurrentFetcher interface {
	Current(ctx context.Context, loc weather.Location) (weather.Snapshot, error)
}

// ErrDiscarded is returned by LoadNext when the aggregator was closed or
// reset while the page was in flight. The page is not applied.
var ErrDiscarded = errors.New("page discarded")

const (
	DefaultConcurrency = 20
	DefaultPageTimeout = 60 * time.Second
)

// Options tunes an Aggregator. Zero values pick the defaults.
type Options struct {
	Concurrency int
	PageTimeout time.Duration
	Metrics     *metrics.Collector
}

// Status is the outcome of a LoadNext call. Started is false when the call
// was a no-op because a page was in flight or pagination had stopped.
type Status struct {
	Started bool  `json:"started"`
	State   State `json:"state"`
	Added   int   `json:"added"`
}

// Snapshot is a point-in-time copy of the collection.
type Snapshot struct {
	Cities  []geo.City `json:"cities"`
	State   State      `json:"state"`
	Cursor  Cursor     `json:"cursor"`
	HasMore bool       `json:"hasMore"`
	Err     error      `json:"-"`
}

// Aggregator owns one collection. It is the only writer; readers get copies.
type Aggregator struct {
	dir     Directory
	current CurrentFetcher
	opts    Options

	mu         sync.Mutex
	state      State
	cursor     Cursor
	cities     []geo.City
	seen       map[geo.Key]struct{}
	lastErr    error
	generation uint64
	closed     bool

	ctx    context.Context
	cancel context.CancelFunc
}

// New returns an Idle aggregator positioned at page 0.
func New(dir Directory, current CurrentFetcher, opts Options) *Aggregator {
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	if opts.PageTimeout <= 0 {
		opts.PageTimeout = DefaultPageTimeout
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Aggregator{
		dir:     dir,
		current: current,
		opts:    opts,
		cursor:  Cursor{PageSize: dir.PageSize()},
		seen:    make(map[geo.Key]struct{}),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// LoadNext fetches and enriches the page at the cursor and appends it.
// It is a no-op unless the aggregator is Idle.
func (a *Aggregator) LoadNext(ctx context.Context) (Status, error) {
	a.mu.Lock()
	if a.closed || a.state != Idle {
		st := Status{State: a.state}
		a.mu.Unlock()
		return st, nil
	}
	a.state = Loading
	gen := a.generation
	cur := a.cursor
	pageIndex := cur.PageIndex
	base := a.ctx
	a.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, a.opts.PageTimeout)
	defer cancel()
	stop := context.AfterFunc(base, cancel)
	defer stop()

	page, err := a.dir.FetchPage(ctx, cur.Offset())
	if err != nil {
		return a.fail(gen, pageIndex, err)
	}

	enriched := a.enrich(ctx, page.Records)

	a.mu.Lock()
	defer a.mu.Unlock()

	if gen != a.generation {
		a.opts.Metrics.PageLoaded("discarded")
		return Status{Started: true, State: a.state}, ErrDiscarded
	}

	added := 0
	for _, c := range enriched {
		k := c.Key()
		if _, dup := a.seen[k]; dup {
			continue
		}
		a.seen[k] = struct{}{}
		a.cities = append(a.cities, c)
		added++
	}

	a.cursor.PageIndex++
	if page.IsLastPage {
		a.state = Exhausted
	} else {
		a.state = Idle
	}
	a.opts.Metrics.PageLoaded("ok")

	logger.WithFields(logrus.Fields{
		"page":  pageIndex,
		"added": added,
		"total": len(a.cities),
		"state": a.state.String(),
	}).Debug("city page loaded")

	return Status{Started: true, State: a.state, Added: added}, nil
}

func (a *Aggregator) fail(gen uint64, pageIndex int, err error) (Status, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if gen != a.generation {
		a.opts.Metrics.PageLoaded("discarded")
		return Status{Started: true, State: a.state}, ErrDiscarded
	}

	a.state = Failed
	a.lastErr = err
	a.opts.Metrics.PageLoaded("failed")

	logger.WithFields(logrus.Fields{
		"page":  pageIndex,
		"error": err.Error(),
	}).Warn("city page failed; pagination stopped")

	return Status{Started: true, State: Failed}, err
}

// enrich attaches current high/low to each city. A failed lookup leaves
// Weather nil; the city is kept.
func (a *Aggregator) enrich(ctx context.Context, cities []geo.City) []geo.City {
	out := make([]geo.City, len(cities))
	copy(out, cities)

	var g errgroup.Group
	g.SetLimit(a.opts.Concurrency)

	for i := range out {
		i := i
		g.Go(func() error {
			snap, err := a.current.Current(ctx, locationOf(out[i]))
			if err != nil {
				a.opts.Metrics.EnrichmentFailed()
				logger.WithFields(logrus.Fields{
					"city":  out[i].Name,
					"error": err.Error(),
				}).Debug("enrichment failed")
				return nil
			}
			out[i] = out[i].WithWeather(geo.Temps{High: snap.TempMax, Low: snap.TempMin})
			return nil
		})
	}
	_ = g.Wait()

	return out
}

// locationOf prefers coordinates; a bare name is ambiguous across countries.
func locationOf(c geo.City) weather.Location {
	if c.Coordinates != nil {
		return weather.ByCoordinates(c.Coordinates.Lat, c.Coordinates.Lon)
	}
	return weather.ByName(c.Name)
}

// Snapshot returns a copy of the collection and pagination state.
func (a *Aggregator) Snapshot() Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()

	cities := make([]geo.City, len(a.cities))
	copy(cities, a.cities)

	return Snapshot{
		Cities:  cities,
		State:   a.state,
		Cursor:  a.cursor,
		HasMore: a.state == Idle || a.state == Loading,
		Err:     a.lastErr,
	}
}

// Reset empties the collection and rewinds to page 0 for a full reload.
// A page in flight is discarded when it completes.
func (a *Aggregator) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return
	}
	a.cancel()
	a.ctx, a.cancel = context.WithCancel(context.Background())
	a.generation++
	a.state = Idle
	a.cursor.PageIndex = 0
	a.cities = nil
	a.seen = make(map[geo.Key]struct{})
	a.lastErr = nil
}

// Close cancels any page in flight and makes every later LoadNext a no-op.
func (a *Aggregator) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return
	}
	a.closed = true
	a.generation++
	a.cancel()
}
