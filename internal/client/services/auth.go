package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/unicampus-app/unicampus/internal/client/gateway"
	"github.com/unicampus-app/unicampus/internal/client/models"
	"github.com/unicampus-app/unicampus/internal/logging"
)

// SessionGateway extends Sender with the credential operations the auth
// service is allowed to trigger. Only the gateway itself touches stored
// credentials; the service just asks.
type SessionGateway interface {
	Sender
	SaveSession(ctx context.Context, token, sessionID, userID string) error
	CurrentUserID(ctx context.Context) (string, error)
	HasValidCredential(ctx context.Context) bool
	ForceLogout(ctx context.Context) error
}

// AuthService implements login, logout, profile retrieval and the
// password-reset wizard.
type AuthService struct {
	gw  SessionGateway
	log logging.Logger
}

func NewAuthService(gw SessionGateway, log logging.Logger) *AuthService {
	return &AuthService{gw: gw, log: log.With("component", "auth")}
}

type loginResponse struct {
	Token     string `json:"token"`
	SessionID string `json:"sessionId"`
	User      struct {
		ID    string `json:"id"`
		Email string `json:"email"`
		Role  string `json:"role"`
	} `json:"user"`
}

// Login authenticates with email and password and persists the returned
// credential set. The password slice is not retained.
func (s *AuthService) Login(ctx context.Context, email string, password []byte) error {
	resp, err := s.gw.Send(ctx, gateway.Request{
		Method: http.MethodPost,
		Path:   "/auth/login",
		Body:   map[string]string{"email": email, "password": string(password)},
	})
	if err != nil {
		s.log.Warn(ctx, "login failed", "op", "auth.login", "outcome", "error")
		return err
	}

	var payload loginResponse
	if err := resp.Decode(&payload); err != nil {
		return fmt.Errorf("decode login response: %w", err)
	}
	if payload.Token == "" || payload.User.ID == "" {
		return errors.New("login response missing token or user id")
	}

	if err := s.gw.SaveSession(ctx, payload.Token, payload.SessionID, payload.User.ID); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}

	s.log.Info(ctx, "signed in", "op", "auth.login", "outcome", "ok", "user_id", payload.User.ID)
	return nil
}

// Logout tells the backend to end the session, then wipes local state.
// The remote call is best effort; local state is cleared regardless.
func (s *AuthService) Logout(ctx context.Context) error {
	if _, err := s.gw.Send(ctx, gateway.Request{Method: http.MethodPost, Path: "/auth/logout"}); err != nil {
		s.log.Warn(ctx, "remote logout failed", "op", "auth.logout", "error", err)
	}
	return s.gw.ForceLogout(ctx)
}

// IsLoggedIn reports whether a locally stored credential is still usable.
func (s *AuthService) IsLoggedIn(ctx context.Context) bool {
	return s.gw.HasValidCredential(ctx)
}

// Profile fetches the signed-in user's profile.
func (s *AuthService) Profile(ctx context.Context) (*models.User, error) {
	resp, err := s.gw.Send(ctx, gateway.Request{Method: http.MethodGet, Path: "/users/profile"})
	if err != nil {
		return nil, err
	}
	user, err := decodeData[models.User](resp)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GenerateResetCode starts the password-reset wizard: the backend mails a
// one-time code to the given address.
func (s *AuthService) GenerateResetCode(ctx context.Context, email string) error {
	_, err := s.gw.Send(ctx, gateway.Request{
		Method: http.MethodPost,
		Path:   "/auth/generate-reset-code",
		Body:   map[string]string{"email": email},
	})
	return err
}

// VerifyResetCode checks the mailed code before the new password is asked
// for.
func (s *AuthService) VerifyResetCode(ctx context.Context, email, code string) error {
	_, err := s.gw.Send(ctx, gateway.Request{
		Method: http.MethodPost,
		Path:   "/auth/verify-reset-code",
		Body:   map[string]string{"email": email, "code": code},
	})
	return err
}

// ResetPassword completes the wizard. Passwords below MinPasswordScore are
// rejected locally before any network call.
func (s *AuthService) ResetPassword(ctx context.Context, email, code string, newPassword []byte) error {
	if PasswordStrength(string(newPassword)) < MinPasswordScore {
		return ErrWeakPassword
	}
	_, err := s.gw.Send(ctx, gateway.Request{
		Method: http.MethodPost,
		Path:   "/auth/reset-password",
		Body: map[string]string{
			"email":       email,
			"code":        code,
			"newPassword": string(newPassword),
		},
	})
	return err
}
