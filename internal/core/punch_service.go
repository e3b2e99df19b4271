package core

import (
	"context"
	"fmt"
	"math"
	"time"

	"attendance.service/internal/core/correction"
	"attendance.service/internal/core/model"
	"attendance.service/internal/core/worktime"
	"attendance.service/internal/ports/repository"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type PunchService struct {
	repo       repository.Repository
	fetchLimit int
	now        func() time.Time
}

// NewPunchService wires the punch workflow to the row store. fetchLimit bounds
// how many recent events are read to evaluate the current day.
func NewPunchService(repo repository.Repository, fetchLimit int) *PunchService {
	if fetchLimit <= 0 {
		fetchLimit = listLimit
	}
	return &PunchService{repo: repo, fetchLimit: fetchLimit, now: time.Now}
}

// Punch records a clock event for today and folds it into the stored day.
// Only approved employees may punch, and each type must follow the day's
// sequence: one in, breaks only while clocked in, one out after any break
// has ended.
func (s *PunchService) Punch(ctx context.Context, userID string, typ model.PunchType, location *string) (*model.PunchEvent, error) {
	emp, err := s.repo.GetEmployee(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load employee: %w", err)
	}
	if emp == nil || !emp.Approved {
		return nil, ErrNotApproved
	}

	now := s.now().UTC()
	today := worktime.WorkDate(now)

	recent, err := s.repo.ListEvents(ctx, userID, s.fetchLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load events: %w", err)
	}
	if err := checkPunch(worktime.Summarize(recent, today, true, now), recent, today, typ); err != nil {
		return nil, err
	}

	ev := model.PunchEvent{
		ID:         uuid.NewString(),
		UserID:     userID,
		Type:       typ,
		HappenedAt: now,
		WorkDate:   today,
		Location:   trimmed(location),
	}

	err = s.repo.RunInTx(ctx, func(tx repository.Repository) error {
		if err := tx.InsertEvent(ctx, ev); err != nil {
			return fmt.Errorf("failed to insert event: %w", err)
		}
		return mergePunchedDay(ctx, tx, append(recent, ev), ev)
	})
	if err != nil {
		return nil, err
	}

	log.Ctx(ctx).Info().
		Str("userId", userID).
		Str("type", string(typ)).
		Str("workDate", today).
		Msg("Punch recorded")
	return &ev, nil
}

// checkPunch enforces the order of punches within one work day.
func checkPunch(today model.DaySummary, events []model.PunchEvent, date string, typ model.PunchType) error {
	clockedIn := today.InAt != nil
	clockedOut := today.Status == model.DayFinished
	onBreak := breakOpen(events, date)

	switch typ {
	case model.PunchIn:
		if clockedIn {
			return fmt.Errorf("%w: already clocked in today", ErrInvalidPunch)
		}
	case model.PunchOut:
		if !clockedIn {
			return fmt.Errorf("%w: not clocked in today", ErrInvalidPunch)
		}
		if clockedOut {
			return fmt.Errorf("%w: already clocked out today", ErrInvalidPunch)
		}
		if onBreak {
			return fmt.Errorf("%w: end the break before clocking out", ErrInvalidPunch)
		}
	case model.PunchBreakIn:
		if !clockedIn || clockedOut {
			return fmt.Errorf("%w: a break can only start while clocked in", ErrInvalidPunch)
		}
		if onBreak {
			return fmt.Errorf("%w: already on a break", ErrInvalidPunch)
		}
	case model.PunchBreakOut:
		if clockedOut {
			return fmt.Errorf("%w: already clocked out today", ErrInvalidPunch)
		}
		if !onBreak {
			return fmt.Errorf("%w: no break in progress", ErrInvalidPunch)
		}
	default:
		return fmt.Errorf("%w: unknown punch type %q", ErrInvalidPunch, typ)
	}
	return nil
}

// breakOpen reports whether the latest break punch of the date is a break_in.
func breakOpen(events []model.PunchEvent, date string) bool {
	var latest *model.PunchEvent
	for i := range events {
		ev := &events[i]
		if ev.WorkDate != date || (ev.Type != model.PunchBreakIn && ev.Type != model.PunchBreakOut) {
			continue
		}
		if latest == nil || ev.HappenedAt.After(latest.HappenedAt) {
			latest = ev
		}
	}
	return latest != nil && latest.Type == model.PunchBreakIn
}

// mergePunchedDay fills the stored day from a punch without overwriting values
// an approved correction already set: in_at and location are only filled when
// empty and break minutes never decrease.
func mergePunchedDay(ctx context.Context, tx repository.Repository, events []model.PunchEvent, ev model.PunchEvent) error {
	stored, err := tx.GetDay(ctx, ev.UserID, ev.WorkDate)
	if err != nil {
		return fmt.Errorf("failed to load attendance day: %w", err)
	}
	day := correction.NewDay(ev.UserID, ev.WorkDate)
	if stored != nil {
		day = *stored
	}

	switch ev.Type {
	case model.PunchIn:
		if day.InAt == nil {
			at := ev.HappenedAt
			day.InAt = &at
		}
	case model.PunchOut:
		at := ev.HappenedAt
		day.OutAt = &at
	case model.PunchBreakOut:
		closed := worktime.Summarize(events, ev.WorkDate, false, ev.HappenedAt).BreakMinutes
		minutes := int(math.Min(math.Round(closed), correction.MaxBreakMinutes))
		if minutes > day.BreakMinutes {
			day.BreakMinutes = minutes
		}
	case model.PunchBreakIn:
		if stored != nil {
			return nil
		}
	}
	if day.Location == nil && ev.Location != nil {
		day.Location = ev.Location
	}

	if err := tx.UpsertDay(ctx, day); err != nil {
		return err
	}
	return nil
}
