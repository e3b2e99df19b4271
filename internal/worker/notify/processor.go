package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"attendance.service/internal/core"
	"attendance.service/internal/core/correction"
	"attendance.service/internal/core/model"
	"attendance.service/internal/ports/messaging"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
)

// Store is the part of the row store the processor reads and updates.
type Store interface {
	GetRequest(ctx context.Context, id string) (*correction.Request, error)
	GetEmployee(ctx context.Context, userID string) (*model.Employee, error)
	MarkRequestNotified(ctx context.Context, id string, at time.Time) error
}

// Processor e-mails employees about decided correction requests. SES calls go
// through a circuit breaker so a failing mail service is not hammered.
type Processor struct {
	store     Store
	email     core.EmailService
	cb        *gobreaker.CircuitBreaker
	now       func() time.Time
	markPause time.Duration
}

// markAttempts bounds how often a sent notice is stamped as notified before
// the message is consumed anyway.
const markAttempts = 3

func NewProcessor(store Store, email core.EmailService) *Processor {
	settings := gobreaker.Settings{
		Name:        "SES",
		MaxRequests: 5,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			// Trip if failure rate is bigger then 50% after at least 10 requests
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 10 && failureRatio >= 0.5
		},
	}

	return &Processor{
		store: store,
		email: email,
		cb:        gobreaker.NewCircuitBreaker(settings),
		now:       time.Now,
		markPause: 200 * time.Millisecond,
	}
}

func (p *Processor) Process(ctx context.Context, msg types.Message) (bool, int32, error) {
	if msg.Body == nil {
		return false, 0, errors.New("message has no body")
	}
	var event messaging.RequestDecidedEvent
	if err := json.Unmarshal([]byte(*msg.Body), &event); err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("Failed to unmarshal decision event")
		return false, 0, err
	}

	req, err := p.store.GetRequest(ctx, event.RequestID)
	if err != nil {
		return true, 10, fmt.Errorf("failed to get request for notification: %w", err)
	}
	if req == nil {
		return false, 0, fmt.Errorf("request %s: %w", event.RequestID, correction.ErrRequestNotFound)
	}
	if req.NotifiedAt != nil {
		log.Ctx(ctx).Info().Str("requestId", req.ID).Msg("Decision already notified. Skipping.")
		return false, 0, nil
	}

	emp, err := p.store.GetEmployee(ctx, req.UserID)
	if err != nil {
		return true, 10, fmt.Errorf("failed to get employee for notification: %w", err)
	}
	if emp == nil || emp.Email == nil || *emp.Email == "" {
		log.Ctx(ctx).Info().Str("requestId", req.ID).Str("userId", req.UserID).Msg("No e-mail address on file. Skipping.")
		return false, 0, nil
	}

	notice := core.DecisionNotice{
		Name:     emp.DisplayName(),
		WorkDate: req.WorkDate,
		Status:   string(req.Status),
	}
	if req.AdminNote != nil {
		notice.AdminNote = *req.AdminNote
	}

	_, err = p.cb.Execute(func() (interface{}, error) {
		return nil, p.email.SendDecisionNotice(ctx, *emp.Email, notice)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) {
			log.Ctx(ctx).Warn().Msg("Circuit breaker is open; skipping SES call")
		}
		return true, calculateBackoff(receiveCount(msg)), err
	}

	log.Ctx(ctx).Info().Str("requestId", req.ID).Str("status", string(req.Status)).Msg("Decision notice sent")

	// The notice is out: a redelivery would send it again, so the message is
	// consumed even when the stamp cannot be written.
	if err := p.markNotified(ctx, req.ID); err != nil {
		log.Ctx(ctx).Error().Err(err).Str("requestId", req.ID).Msg("Decision notice sent but request not marked notified")
	}
	return false, 0, nil
}

// markNotified stamps notified_at, retrying the write alone with a growing pause.
func (p *Processor) markNotified(ctx context.Context, requestID string) error {
	var err error
	for attempt := 1; attempt <= markAttempts; attempt++ {
		if err = p.store.MarkRequestNotified(ctx, requestID, p.now().UTC()); err == nil {
			return nil
		}
		log.Ctx(ctx).Warn().Err(err).Int("attempt", attempt).Str("requestId", requestID).Msg("Failed to mark request notified")
		if attempt == markAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(p.markPause * time.Duration(attempt)):
		}
	}
	return err
}

// receiveCount reads how many times SQS delivered the message, at least 1.
func receiveCount(msg types.Message) int {
	n, err := strconv.Atoi(msg.Attributes[string(types.MessageSystemAttributeNameApproximateReceiveCount)])
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// calculateBackoff doubles the delay with every delivery, capped at one hour.
func calculateBackoff(retryCount int) int32 {
	backoff := math.Pow(2, float64(retryCount)) * 10
	if backoff > 3600 {
		return 3600
	}
	return int32(backoff)
}
