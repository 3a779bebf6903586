package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/unicampus-app/unicampus/internal/client/gateway"
	"github.com/unicampus-app/unicampus/internal/common"
	"github.com/unicampus-app/unicampus/internal/logging"
	"github.com/unicampus-app/unicampus/internal/schedule"
)

// CalendarCache is the slice of the secure store used to keep the last
// academic-calendar payload around for offline rendering.
type CalendarCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string) error
}

// ScheduleService fetches schedule data and projects it onto calendar
// dates. All projection rules live in the schedule package; this service
// only plumbs data.
type ScheduleService struct {
	gw    Sender
	cache CalendarCache
	log   logging.Logger
}

func NewScheduleService(gw Sender, cache CalendarCache, log logging.Logger) *ScheduleService {
	return &ScheduleService{gw: gw, cache: cache, log: log.With("component", "schedule")}
}

// Entries returns the signed-in user's recurring schedule records verbatim.
func (s *ScheduleService) Entries(ctx context.Context) ([]schedule.Entry, error) {
	resp, err := s.gw.Send(ctx, gateway.Request{Method: http.MethodGet, Path: "/schedule/my"})
	if err != nil {
		return nil, err
	}
	return decodeData[[]schedule.Entry](resp)
}

// Calendar returns the current academic calendar state. A fresh value is
// cached; when the backend is unreachable the last cached value is served
// so the schedule stays renderable offline.
func (s *ScheduleService) Calendar(ctx context.Context) (*schedule.CalendarState, error) {
	resp, err := s.gw.Send(ctx, gateway.Request{Method: http.MethodGet, Path: "/time/academic-calendar"})
	if err != nil {
		if errors.Is(err, common.ErrNetworkUnavailable) {
			if cached := s.cachedCalendar(ctx); cached != nil {
				s.log.Info(ctx, "serving cached calendar", "op", "schedule.calendar", "outcome", "cache")
				return cached, nil
			}
		}
		return nil, err
	}

	state, err := decodeData[schedule.CalendarState](resp)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(state); err == nil {
		if err := s.cache.Set(ctx, common.CalendarCacheKey, string(raw)); err != nil {
			s.log.Warn(ctx, "calendar cache write failed", "op", "schedule.calendar", "error", err)
		}
	}

	return &state, nil
}

func (s *ScheduleService) cachedCalendar(ctx context.Context) *schedule.CalendarState {
	raw, err := s.cache.Get(ctx, common.CalendarCacheKey)
	if err != nil || raw == "" {
		return nil
	}
	var state schedule.CalendarState
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return nil
	}
	return &state
}

// Week returns the dated occurrences for the academic week containing
// anchor.
func (s *ScheduleService) Week(ctx context.Context, anchor time.Time) ([]schedule.Occurrence, error) {
	entries, cal, err := s.fetch(ctx)
	if err != nil {
		return nil, err
	}
	return schedule.ProjectWeek(entries, anchor, cal), nil
}

// Today returns today's classes, a weekday-filtered view of the same
// weekly projection.
func (s *ScheduleService) Today(ctx context.Context) ([]schedule.Occurrence, error) {
	entries, cal, err := s.fetch(ctx)
	if err != nil {
		return nil, err
	}
	return schedule.ProjectToday(entries, cal), nil
}

// ExportWeekICS renders the week containing anchor as an iCalendar
// document.
func (s *ScheduleService) ExportWeekICS(ctx context.Context, anchor time.Time) (string, error) {
	occurrences, err := s.Week(ctx, anchor)
	if err != nil {
		return "", err
	}
	return schedule.ExportICS(occurrences)
}

func (s *ScheduleService) fetch(ctx context.Context) ([]schedule.Entry, *schedule.CalendarState, error) {
	entries, err := s.Entries(ctx)
	if err != nil {
		return nil, nil, err
	}
	cal, err := s.Calendar(ctx)
	if err != nil {
		return nil, nil, err
	}
	return entries, cal, nil
}
