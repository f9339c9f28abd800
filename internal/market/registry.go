package market

import (
	"sync"
	"time"

	"github.com/MrSnakeDoc/marketbot/internal/domain"
)

// Registry holds every listing this process knows about, keyed by id.
// It is the single place where Open -> Claimed happens, so two buyers
// racing on the same listing cannot both win.
type Registry struct {
	mu       sync.Mutex
	listings map[string]*domain.Listing // ID -> Listing
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		listings: make(map[string]*domain.Listing),
	}
}

// Add stores a listing, replacing any listing with the same id.
func (r *Registry) Add(l *domain.Listing) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *l
	r.listings[l.ID] = &cp
}

// Get returns a copy of a listing.
func (r *Registry) Get(id string) (domain.Listing, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	l, ok := r.listings[id]
	if !ok {
		return domain.Listing{}, false
	}
	return *l, true
}

// Claim moves a listing from Open to Claimed. If the registry has never
// seen id, fallback is adopted first. Returns domain.ErrAlreadyClaimed if
// the listing is not Open.
func (r *Registry) Claim(id string, fallback *domain.Listing, buyerID string, now time.Time) (domain.Listing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	l, ok := r.listings[id]
	if !ok {
		if fallback == nil {
			return domain.Listing{}, domain.ErrMalformedListing
		}
		cp := *fallback
		cp.ID = id
		l = &cp
		r.listings[id] = l
	}

	if !l.IsOpen() {
		return domain.Listing{}, domain.ErrAlreadyClaimed
	}
	l.Status = domain.StatusClaimed
	l.BuyerID = buyerID
	l.ClaimedAt = now
	return *l, nil
}

// Release undoes a Claim whose escrow notification could not be
// delivered, so the listing is not left claimed without a trade.
func (r *Registry) Release(id, buyerID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	l, ok := r.listings[id]
	if !ok || l.Status != domain.StatusClaimed || l.BuyerID != buyerID {
		return
	}
	l.Status = domain.StatusOpen
	l.BuyerID = ""
	l.ClaimedAt = time.Time{}
}

// Counts returns the number of open and claimed listings.
func (r *Registry) Counts() (open, claimed int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, l := range r.listings {
		if l.IsOpen() {
			open++
		} else {
			claimed++
		}
	}
	return open, claimed
}
