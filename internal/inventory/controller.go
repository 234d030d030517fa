package inventory

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/mrlokans/shelf/internal/catalog"
	"github.com/mrlokans/shelf/internal/isbn"
)

// InvalidISBNMessage is shown to the user when Add rejects its input.
const InvalidISBNMessage = "Invalid ISBN number. Please enter a valid ISBN."

// ErrInvalidISBN is returned by Add for input that is not ISBN-shaped.
var ErrInvalidISBN = errors.New("invalid ISBN")

// Catalog is the remote metadata source.
type Catalog interface {
	FetchMetadata(ctx context.Context, isbn string) (catalog.Response, error)
	CoverImageURL(isbn string) string
}

// FetchStrategy selects which identifiers a fetch pass covers.
type FetchStrategy string

const (
	// FetchAll refetches every tracked identifier on each list change.
	FetchAll FetchStrategy = "all"
	// FetchMissing only fetches identifiers that are not fetched yet and have
	// no fetch in flight.
	FetchMissing FetchStrategy = "missing"
)

// ParseFetchStrategy maps a config value onto a strategy.
func ParseFetchStrategy(s string) (FetchStrategy, error) {
	switch FetchStrategy(strings.ToLower(strings.TrimSpace(s))) {
	case "", FetchAll:
		return FetchAll, nil
	case FetchMissing:
		return FetchMissing, nil
	default:
		return "", fmt.Errorf("unknown fetch strategy %q", s)
	}
}

// FetchState tracks the metadata lookup of one identifier. It is not persisted.
type FetchState string

const (
	FetchPending FetchState = "pending"
	FetchFetched FetchState = "fetched"
	FetchFailed  FetchState = "failed"
)

// Options configures a Controller.
type Options struct {
	Strategy FetchStrategy

	// FetchTimeout bounds a single lookup. Zero leaves it to the catalog client.
	FetchTimeout time.Duration
}

// Controller serializes inventory mutations, flushes every change to the
// store and runs metadata lookups as supervised background tasks.
type Controller struct {
	store   Store
	catalog Catalog
	opts    Options

	mu       sync.Mutex
	inv      Inventory
	errMsg   string
	states   map[string]FetchState
	tasks    map[string]map[uint64]context.CancelFunc
	nextTask uint64
	closed   bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewController loads the inventory from store once and returns a controller
// over it. A store that cannot be read leaves the inventory empty. Loading
// starts no lookups; call Refresh to fetch metadata for the loaded list.
func NewController(ctx context.Context, store Store, cat Catalog, opts Options) *Controller {
	if opts.Strategy == "" {
		opts.Strategy = FetchAll
	}

	inv, err := store.Load(ctx)
	if err != nil {
		log.Printf("[INVENTORY] Failed to load inventory, starting empty: %v", err)
		inv = Empty()
	}
	inv = inv.normalized()

	lifetime, cancel := context.WithCancel(context.Background())

	c := &Controller{
		store:   store,
		catalog: cat,
		opts:    opts,
		inv:     inv,
		states:  make(map[string]FetchState),
		tasks:   make(map[string]map[uint64]context.CancelFunc),
		ctx:     lifetime,
		cancel:  cancel,
	}

	for id := range inv.Details {
		c.states[id] = FetchFetched
	}

	return c
}

// Add trims raw and appends it to the list when it is ISBN-shaped. Blank
// input is ignored. Invalid input sets the user-visible error and returns
// ErrInvalidISBN without touching the inventory.
func (c *Controller) Add(ctx context.Context, raw string) error {
	id := strings.TrimSpace(raw)
	if id == "" {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if !isbn.IsValid(id) {
		c.errMsg = InvalidISBNMessage
		return ErrInvalidISBN
	}

	c.inv.ISBNs = append(c.inv.ISBNs, id)
	c.inv.Ratings[id] = 0
	c.errMsg = ""

	err := c.flushLocked(ctx)
	c.fetchPassLocked()
	return err
}

// Rate overwrites the rating of id. The value is stored as given: the
// presentation layer decides which range it offers.
func (c *Controller) Rate(ctx context.Context, id string, rating int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.inv.Ratings[id] = rating
	return c.flushLocked(ctx)
}

// Delete removes every occurrence of id together with its metadata and
// rating. Lookups in flight for id are cancelled and their results dropped.
func (c *Controller) Delete(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	kept := make([]string, 0, len(c.inv.ISBNs))
	for _, item := range c.inv.ISBNs {
		if item != id {
			kept = append(kept, item)
		}
	}
	c.inv.ISBNs = kept
	delete(c.inv.Details, id)
	delete(c.inv.Ratings, id)
	delete(c.states, id)
	c.cancelTasksLocked(id)

	err := c.flushLocked(ctx)
	c.fetchPassLocked()
	return err
}

// Refresh runs a fetch pass without changing the list and returns how many
// lookups it started.
func (c *Controller) Refresh(ctx context.Context) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fetchPassLocked()
}

// Error returns the current user-visible error message, if any.
func (c *Controller) Error() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.errMsg
}

// Snapshot is a consistent copy of the controller state.
type Snapshot struct {
	Inventory Inventory             `json:"inventory"`
	Error     string                `json:"error,omitempty"`
	States    map[string]FetchState `json:"states"`
}

// Snapshot returns a deep copy of the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	states := make(map[string]FetchState, len(c.states))
	for id, s := range c.states {
		states[id] = s
	}
	return Snapshot{
		Inventory: c.inv.Clone(),
		Error:     c.errMsg,
		States:    states,
	}
}

// InFlight returns the number of lookups currently running.
func (c *Controller) InFlight() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for _, set := range c.tasks {
		n += len(set)
	}
	return n
}

// Wait blocks until every started lookup has finished.
func (c *Controller) Wait() {
	c.wg.Wait()
}

// Close cancels all lookups and waits for their goroutines to exit.
// Mutations after Close still update and flush the inventory but start no
// lookups.
func (c *Controller) Close() {
	c.mu.Lock()
	c.closed = true
	c.cancel()
	c.mu.Unlock()

	c.wg.Wait()
}

func (c *Controller) flushLocked(ctx context.Context) error {
	if err := c.store.Save(ctx, c.inv); err != nil {
		log.Printf("[INVENTORY] Failed to save inventory: %v", err)
		return fmt.Errorf("save inventory: %w", err)
	}
	return nil
}

func (c *Controller) fetchPassLocked() int {
	if c.closed {
		return 0
	}

	started := 0
	for _, id := range c.inv.ISBNs {
		if c.opts.Strategy == FetchMissing {
			if c.states[id] == FetchFetched || len(c.tasks[id]) > 0 {
				continue
			}
		}
		c.startFetchLocked(id)
		started++
	}
	return started
}

func (c *Controller) startFetchLocked(id string) {
	c.nextTask++
	taskID := c.nextTask

	var ctx context.Context
	var cancel context.CancelFunc
	if c.opts.FetchTimeout > 0 {
		ctx, cancel = context.WithTimeout(c.ctx, c.opts.FetchTimeout)
	} else {
		ctx, cancel = context.WithCancel(c.ctx)
	}

	if c.tasks[id] == nil {
		c.tasks[id] = make(map[uint64]context.CancelFunc)
	}
	c.tasks[id][taskID] = cancel
	if c.states[id] != FetchFetched {
		c.states[id] = FetchPending
	}

	c.wg.Add(1)
	go c.runFetch(ctx, id, taskID)
}

func (c *Controller) runFetch(ctx context.Context, id string, taskID uint64) {
	defer c.wg.Done()

	resp, err := c.catalog.FetchMetadata(ctx, id)

	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.finishTaskLocked(id, taskID) {
		return
	}

	if err != nil {
		log.Printf("[INVENTORY] Metadata fetch for %s failed: %v", id, err)
		if c.states[id] != FetchFetched {
			c.states[id] = FetchFailed
		}
		return
	}

	c.inv.Details[id] = resp
	c.states[id] = FetchFetched
	_ = c.flushLocked(c.ctx)
}

// finishTaskLocked unregisters a task and reports whether its result may
// still be merged.
func (c *Controller) finishTaskLocked(id string, taskID uint64) bool {
	set := c.tasks[id]
	cancel, ok := set[taskID]
	if !ok {
		return false
	}

	cancel()
	delete(set, taskID)
	if len(set) == 0 {
		delete(c.tasks, id)
	}
	return !c.closed
}

func (c *Controller) cancelTasksLocked(id string) {
	for _, cancel := range c.tasks[id] {
		cancel()
	}
	delete(c.tasks, id)
}
