package services

import (
	"context"
	"net/http"

	"github.com/unicampus-app/unicampus/internal/client/gateway"
	"github.com/unicampus-app/unicampus/internal/client/models"
)

// AcademicService exposes the read-mostly academic endpoints: grades,
// enrolled courses and inbox messages.
type AcademicService struct {
	gw Sender
}

func NewAcademicService(gw Sender) *AcademicService {
	return &AcademicService{gw: gw}
}

// Grades lists the user's grades grouped by study year and semester.
func (s *AcademicService) Grades(ctx context.Context) ([]models.YearGrades, error) {
	resp, err := s.gw.Send(ctx, gateway.Request{Method: http.MethodGet, Path: "/grades/my"})
	if err != nil {
		return nil, err
	}
	return decodeData[[]models.YearGrades](resp)
}

// Courses lists the user's enrolled courses.
func (s *AcademicService) Courses(ctx context.Context) ([]models.Course, error) {
	resp, err := s.gw.Send(ctx, gateway.Request{Method: http.MethodGet, Path: "/courses/my"})
	if err != nil {
		return nil, err
	}
	return decodeData[[]models.Course](resp)
}

// Messages lists inbox messages.
func (s *AcademicService) Messages(ctx context.Context) ([]models.Message, error) {
	resp, err := s.gw.Send(ctx, gateway.Request{Method: http.MethodGet, Path: "/messages"})
	if err != nil {
		return nil, err
	}
	return decodeData[[]models.Message](resp)
}

// MarkMessageRead flags one message as read.
func (s *AcademicService) MarkMessageRead(ctx context.Context, id string) error {
	_, err := s.gw.Send(ctx, gateway.Request{Method: http.MethodPost, Path: "/messages/" + id + "/read"})
	return err
}

// DeleteMessage removes one message from the inbox.
func (s *AcademicService) DeleteMessage(ctx context.Context, id string) error {
	_, err := s.gw.Send(ctx, gateway.Request{Method: http.MethodDelete, Path: "/messages/" + id})
	return err
}
