package matters

import (
	"context"
	"math"
	"time"
)

// MatterStore is the subset of persistence the aggregator needs.
type MatterStore interface {
	ListActive(ctx context.Context, tenantID string) ([]Matter, error)
	GetMatter(ctx context.Context, tenantID, id string) (Matter, error)
	CreateMatter(ctx context.Context, tenantID string, payload Matter) (string, error)
	UpdateMatter(ctx context.Context, tenantID, id string, payload Matter) error
	SetDueDate(ctx context.Context, tenantID, id string, m Matter) error
}

type Service struct {
	Store MatterStore
	Now   func() time.Time
}

func NewService(store MatterStore) *Service {
	return &Service{Store: store, Now: time.Now}
}

// Critical loads the tenant's active matters and classifies them by
// deadline urgency as of today.
func (s *Service) Critical(ctx context.Context, tenantID string, filter Filter) ([]ClassifiedMatter, error) {
	all, err := s.Store.ListActive(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return Classify(s.Now(), all, filter), nil
}

// Statistics summarizes the urgency picture for the caller's filter
// set. Overdue matters always count, and the window is unbounded
// unless the caller narrows it with LookaheadDays.
func (s *Service) Statistics(ctx context.Context, tenantID string, filter Filter) (Summary, error) {
	all, err := s.Store.ListActive(ctx, tenantID)
	if err != nil {
		return Summary{}, err
	}
	filter.IncludeOverdue = true
	if filter.LookaheadDays <= 0 {
		filter.LookaheadDays = math.MaxInt32
	}
	return Summarize(Classify(s.Now(), all, filter)), nil
}

func (s *Service) Get(ctx context.Context, tenantID, id string) (Matter, error) {
	return s.Store.GetMatter(ctx, tenantID, id)
}

func (s *Service) Create(ctx context.Context, tenantID string, payload Matter) (string, error) {
	if payload.Status == "" {
		payload.Status = StatusOpen
	}
	return s.Store.CreateMatter(ctx, tenantID, payload)
}

func (s *Service) Update(ctx context.Context, tenantID, id string, payload Matter) error {
	return s.Store.UpdateMatter(ctx, tenantID, id, payload)
}

// StampDeadline records a computed due date on the matter.
func (s *Service) StampDeadline(ctx context.Context, tenantID, id string, dueDate time.Time, deadlineType string) error {
	return s.Store.SetDueDate(ctx, tenantID, id, Matter{DueDate: &dueDate, DeadlineType: deadlineType})
}
