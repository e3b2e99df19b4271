package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"attendance.service/internal/core/correction"
	"attendance.service/internal/core/model"
	"attendance.service/internal/core/worktime"
	"attendance.service/internal/ports/messaging"
	"attendance.service/internal/ports/repository"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// RequestView is a correction request prepared for listing.
type RequestView struct {
	correction.Request
	DisplayName    string `json:"displayName"`
	ReasonLabel    string `json:"reasonLabel"`
	PayloadSummary string `json:"payloadSummary"`
}

type RequestService struct {
	repo      repository.Repository
	publisher messaging.Publisher
	now       func() time.Time
}

// NewRequestService wires the correction workflow. The publisher announces
// decisions to the notify worker.
func NewRequestService(repo repository.Repository, publisher messaging.Publisher) *RequestService {
	return &RequestService{repo: repo, publisher: publisher, now: time.Now}
}

// Submit files a pending correction for one of the caller's work days.
func (s *RequestService) Submit(ctx context.Context, userID, workDate string, payload correction.Payload, reason string) (*correction.Request, error) {
	emp, err := s.repo.GetEmployee(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load employee: %w", err)
	}
	if emp == nil || !emp.Approved {
		return nil, ErrNotApproved
	}

	workDate = strings.TrimSpace(workDate)
	if _, err := time.ParseInLocation(worktime.DateLayout, workDate, worktime.Local); err != nil {
		return nil, fmt.Errorf("%w: work date must be formatted as YYYY-MM-DD", ErrInvalidInput)
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, fmt.Errorf("%w: reason is required", ErrInvalidInput)
	}
	if payload.IsEmpty() {
		return nil, fmt.Errorf("%w: the request does not change anything", ErrInvalidInput)
	}
	if err := payload.Validate(); err != nil {
		return nil, err
	}

	req := correction.Request{
		ID:        uuid.NewString(),
		UserID:    userID,
		WorkDate:  workDate,
		Payload:   payload,
		Reason:    correction.ReasonCode(reason),
		Status:    model.RequestPending,
		CreatedAt: s.now().UTC(),
	}
	if err := s.repo.CreateRequest(ctx, req); err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	log.Ctx(ctx).Info().Str("userId", userID).Str("requestId", req.ID).Str("workDate", workDate).Msg("Correction request submitted")
	return &req, nil
}

// ListMine returns the caller's own requests, newest first.
func (s *RequestService) ListMine(ctx context.Context, userID string) ([]RequestView, error) {
	reqs, err := s.repo.ListRequestsByUser(ctx, userID, listLimit)
	if err != nil {
		return nil, err
	}
	return s.views(ctx, reqs)
}

// ListAll returns every request for administrators, newest first.
func (s *RequestService) ListAll(ctx context.Context) ([]RequestView, error) {
	reqs, err := s.repo.ListRequests(ctx, listLimit)
	if err != nil {
		return nil, err
	}
	return s.views(ctx, reqs)
}

func (s *RequestService) views(ctx context.Context, reqs []correction.Request) ([]RequestView, error) {
	ids := make([]string, 0, len(reqs))
	seen := make(map[string]bool)
	for _, r := range reqs {
		if !seen[r.UserID] {
			seen[r.UserID] = true
			ids = append(ids, r.UserID)
		}
	}

	emps, err := s.repo.ListEmployeesByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load employees: %w", err)
	}
	names := make(map[string]string, len(emps))
	for _, e := range emps {
		names[e.UserID] = e.DisplayName()
	}

	out := make([]RequestView, 0, len(reqs))
	for _, r := range reqs {
		name, ok := names[r.UserID]
		if !ok {
			name = r.UserID
		}
		out = append(out, RequestView{
			Request:        r,
			DisplayName:    name,
			ReasonLabel:    r.Reason.Label(),
			PayloadSummary: r.Payload.Summary(),
		})
	}
	return out, nil
}

// Approve decides a pending request and merges its payload into the stored
// day in the same transaction.
func (s *RequestService) Approve(ctx context.Context, id, note string) (*correction.Request, error) {
	return s.decide(ctx, id, model.RequestApproved, note)
}

// Reject decides a pending request without touching the stored day.
func (s *RequestService) Reject(ctx context.Context, id, note string) (*correction.Request, error) {
	return s.decide(ctx, id, model.RequestRejected, note)
}

func (s *RequestService) decide(ctx context.Context, id string, to model.RequestStatus, note string) (*correction.Request, error) {
	now := s.now().UTC()

	var decided *correction.Request
	err := s.repo.RunInTx(ctx, func(tx repository.Repository) error {
		req, err := tx.GetRequest(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to load request: %w", err)
		}
		if req == nil {
			return correction.ErrRequestNotFound
		}
		if err := correction.Decide(req, to, note, now); err != nil {
			return err
		}

		// The pending-only update settles a race between two administrators.
		stored, err := tx.DecideRequest(ctx, id, req.Status, req.AdminNote, now)
		if err != nil {
			return err
		}

		if to == model.RequestApproved && !stored.Payload.IsEmpty() {
			if err := applyToDay(ctx, tx, *stored); err != nil {
				return err
			}
		}
		decided = stored
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Ctx(ctx).Info().
		Str("requestId", decided.ID).
		Str("userId", decided.UserID).
		Str("status", string(decided.Status)).
		Msg("Correction request decided")

	s.announce(ctx, *decided)
	return decided, nil
}

func applyToDay(ctx context.Context, tx repository.Repository, req correction.Request) error {
	stored, err := tx.GetDay(ctx, req.UserID, req.WorkDate)
	if err != nil {
		return fmt.Errorf("failed to load attendance day: %w", err)
	}
	base := correction.NewDay(req.UserID, req.WorkDate)
	if stored != nil {
		base = *stored
	}

	merged, err := correction.Apply(req.Payload, base)
	if err != nil {
		return err
	}
	return tx.UpsertDay(ctx, merged)
}

// announce publishes the decision. The decision is already committed, so a
// failed publish is logged and not returned.
func (s *RequestService) announce(ctx context.Context, req correction.Request) {
	if s.publisher == nil {
		return
	}

	event := messaging.RequestDecidedEvent{
		RequestID: req.ID,
		UserID:    req.UserID,
		WorkDate:  req.WorkDate,
		Status:    string(req.Status),
	}
	if req.AdminNote != nil {
		event.AdminNote = *req.AdminNote
	}
	if req.DecidedAt != nil {
		event.DecidedAt = *req.DecidedAt
	}

	if err := s.publisher.PublishRequestDecided(ctx, event); err != nil {
		log.Ctx(ctx).Error().Err(err).Str("requestId", req.ID).Msg("Failed to publish decision event")
	}
}
