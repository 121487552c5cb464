package testutil

import (
	"context"
	"sort"
	"sync"
	"time"

	"carexyz/internal/booking"
	"carexyz/internal/catalog"
	"carexyz/internal/user"
)

// StandardServices mirrors the seeded catalog.
func StandardServices() []catalog.Service {
	return []catalog.Service{
		{ID: "baby-care", Name: "Baby Care", Category: "child", ChargePerHour: 200, ChargePerDay: 1500, IsActive: true},
		{ID: "elderly-care", Name: "Elderly Care", Category: "elderly", ChargePerHour: 250, ChargePerDay: 2000, IsActive: true},
		{ID: "sick-care", Name: "Sick People Care", Category: "medical", ChargePerHour: 300, ChargePerDay: 2500, IsActive: true},
	}
}

// Catalog is an in-memory catalog.
type Catalog struct {
	mu       sync.RWMutex
	services map[string]catalog.Service
	// Delay is slept before each lookup; the lookup honours ctx while waiting.
	Delay time.Duration
	// FailWith, when set, is returned by every lookup.
	FailWith error
}

func NewCatalog(services ...catalog.Service) *Catalog {
	if len(services) == 0 {
		services = StandardServices()
	}
	c := &Catalog{services: map[string]catalog.Service{}}
	for _, s := range services {
		c.services[s.ID] = s
	}
	return c
}

func (c *Catalog) Lookup(ctx context.Context, id string) (*catalog.Service, error) {
	if c.Delay > 0 {
		select {
		case <-time.After(c.Delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if c.FailWith != nil {
		return nil, c.FailWith
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.services[id]
	if !ok || !s.IsActive {
		return nil, catalog.ErrServiceNotFound
	}
	return &s, nil
}

func (c *Catalog) ListActive(_ context.Context) ([]catalog.Service, error) {
	if c.FailWith != nil {
		return nil, c.FailWith
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := []catalog.Service{}
	for _, s := range c.services {
		if s.IsActive {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (c *Catalog) CreateService(_ context.Context, req catalog.CreateServiceRequest) (*catalog.Service, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.services[req.ID]; ok {
		return nil, catalog.ErrServiceExists
	}
	s := catalog.Service{
		ID:               req.ID,
		Name:             req.Name,
		ShortDescription: req.ShortDescription,
		Category:         req.Category,
		Image:            req.Image,
		ChargePerHour:    req.ChargePerHour,
		ChargePerDay:     req.ChargePerDay,
		IsActive:         true,
		CreatedAt:        time.Now(),
	}
	c.services[s.ID] = s
	return &s, nil
}

// SetRates changes a service's prices in place.
func (c *Catalog) SetRates(id string, perHour, perDay float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.services[id]
	s.ChargePerHour, s.ChargePerDay = perHour, perDay
	c.services[id] = s
}

func (c *Catalog) SetActive(_ context.Context, id string, active bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.services[id]
	if !ok {
		return catalog.ErrServiceNotFound
	}
	s.IsActive = active
	c.services[id] = s
	return nil
}

// Users is an in-memory recipient directory.
type Users map[int]user.User

func (u Users) FindByID(_ context.Context, id int) (*user.User, error) {
	found, ok := u[id]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	return &found, nil
}

type Notification struct {
	Kind    string
	To      string
	Booking booking.Booking
}

// Notifier records notifications. FailWith makes every send fail after
// recording; Block makes sends wait for ctx to expire.
type Notifier struct {
	mu       sync.Mutex
	sent     []Notification
	FailWith error
	Block    bool
}

func (n *Notifier) NotifyBookingCreated(ctx context.Context, to, _ string, b booking.Booking) error {
	return n.record(ctx, "booking_created", to, b)
}

func (n *Notifier) NotifyPaymentReceived(ctx context.Context, to, _ string, b booking.Booking) error {
	return n.record(ctx, "payment_received", to, b)
}

func (n *Notifier) Sent() []Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Notification(nil), n.sent...)
}

func (n *Notifier) Count(kind string) int {
	count := 0
	for _, s := range n.Sent() {
		if s.Kind == kind {
			count++
		}
	}
	return count
}

func (n *Notifier) record(ctx context.Context, kind, to string, b booking.Booking) error {
	if n.Block {
		<-ctx.Done()
		return ctx.Err()
	}
	n.mu.Lock()
	n.sent = append(n.sent, Notification{Kind: kind, To: to, Booking: b})
	n.mu.Unlock()
	return n.FailWith
}

// Clock is a settable clock for tests.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

func NewClock(t time.Time) *Clock {
	return &Clock{now: t}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

var _ catalog.Catalog = (*Catalog)(nil)
