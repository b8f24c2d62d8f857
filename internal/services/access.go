package services

import (
	"errors"
	"log"
	"sync"
	"time"

	"github.com/toxzak-svg/Axievale/internal/metrics"
	"github.com/toxzak-svg/Axievale/internal/models"
)

// Admission errors, mapped to distinct HTTP statuses by the handlers so
// clients can branch: re-authenticate, upgrade, or back off.
var (
	ErrUnauthorized    = errors.New("invalid credentials")
	ErrPaymentRequired = errors.New("trial quota exhausted")
	ErrRateLimited     = errors.New("too many requests")
)

// accessWindow tracks one anonymous caller's request count within the
// current window.
type accessWindow struct {
	windowStart time.Time
	count       int
}

// AccessPolicy is the per-caller admission control for the extension
// endpoint. Registered callers go through the quota gate; anonymous callers
// through the fixed-window rate gate.
type AccessPolicy struct {
	users      *UserStore
	rateWindow time.Duration
	rateMax    int

	mu      sync.Mutex
	windows map[string]*accessWindow
	now     func() time.Time
}

// NewAccessPolicy creates an access policy over the given user store.
func NewAccessPolicy(users *UserStore, rateWindow time.Duration, rateMax int) *AccessPolicy {
	return &AccessPolicy{
		users:      users,
		rateWindow: rateWindow,
		rateMax:    rateMax,
		windows:    make(map[string]*accessWindow),
		now:        time.Now,
	}
}

// Admit applies the gate matching the caller's identity and returns nil when
// the request may proceed.
func (p *AccessPolicy) Admit(caller *models.CallerIdentity) error {
	switch caller.Kind {
	case models.CallerRegistered:
		return p.admitRegistered(caller)
	default:
		return p.admitAnonymous(caller.Address)
	}
}

// admitRegistered is the quota gate: paid accounts are admitted
// unconditionally, trial accounts consume one quota unit atomically.
func (p *AccessPolicy) admitRegistered(caller *models.CallerIdentity) error {
	user, err := p.users.GetByID(caller.UserID)
	if err != nil {
		metrics.AdmissionsTotal.WithLabelValues("quota", "unauthorized").Inc()
		return err
	}
	if user == nil || user.APIKey != caller.APIKey {
		metrics.AdmissionsTotal.WithLabelValues("quota", "unauthorized").Inc()
		return ErrUnauthorized
	}
	caller.Account = user

	if user.IsPaid {
		metrics.AdmissionsTotal.WithLabelValues("quota", "admitted").Inc()
		return nil
	}

	remaining, err := p.users.DecrementTrial(user.ID)
	if err != nil {
		metrics.AdmissionsTotal.WithLabelValues("quota", "payment_required").Inc()
		return err
	}
	if remaining < 0 {
		metrics.AdmissionsTotal.WithLabelValues("quota", "payment_required").Inc()
		return ErrPaymentRequired
	}
	user.TrialRemaining = remaining

	metrics.AdmissionsTotal.WithLabelValues("quota", "admitted").Inc()
	return nil
}

// admitAnonymous is the rate gate: a per-address request count within a
// window that resets once the window length elapses. An unidentifiable
// caller fails open; availability wins over strict enforcement here.
func (p *AccessPolicy) admitAnonymous(address string) error {
	if address == "" {
		log.Printf("Rate gate: caller address unavailable, admitting")
		metrics.AdmissionsTotal.WithLabelValues("rate", "fail_open").Inc()
		return nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.now()
	window, ok := p.windows[address]
	if !ok || now.Sub(window.windowStart) > p.rateWindow {
		window = &accessWindow{windowStart: now}
		p.windows[address] = window
	}

	if window.count >= p.rateMax {
		metrics.AdmissionsTotal.WithLabelValues("rate", "rate_limited").Inc()
		return ErrRateLimited
	}
	window.count++

	metrics.AdmissionsTotal.WithLabelValues("rate", "admitted").Inc()
	return nil
}
