package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"employee-records/internal/auth"
	"employee-records/internal/metrics"
	"employee-records/internal/model"
)

type loginChecker interface {
	CheckLogin(ctx context.Context, username string, password string) (auth.Credential, error)
}

type tokenIssuer interface {
	IssueToken(subject string, role string) (auth.IssuedToken, error)
}

type AuthService struct {
	checker loginChecker
	issuer  tokenIssuer
	audit   *AuditService
	metrics *metrics.Metrics
}

func NewAuthService(checker loginChecker, issuer tokenIssuer, audit *AuditService, m *metrics.Metrics) *AuthService {
	return &AuthService{
		checker: checker,
		issuer:  issuer,
		audit:   audit,
		metrics: m,
	}
}

// Login returns auth.ErrInvalidLogin for any credential mismatch. Other
// errors are infrastructure failures.
func (s *AuthService) Login(ctx context.Context, username string, password string, actor model.AuditActor) (model.LoginResult, error) {
	actor.Username = strings.TrimSpace(username)

	cred, err := s.checker.CheckLogin(ctx, username, password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidLogin) {
			s.metrics.ObserveLogin(metrics.LoginInvalid)
			s.audit.Log(ctx, AuditActionLogin, actor, model.AuditStatusFailure, "", "invalid login attempt")
			return model.LoginResult{}, auth.ErrInvalidLogin
		}

		s.metrics.ObserveLogin(metrics.LoginError)
		slog.Error("login failed", "error", err)
		return model.LoginResult{}, err
	}

	issued, err := s.issuer.IssueToken(cred.Username, cred.Role)
	if err != nil {
		s.metrics.ObserveLogin(metrics.LoginError)
		return model.LoginResult{}, err
	}

	actor.Username = cred.Username
	actor.Role = cred.Role
	s.metrics.ObserveLogin(metrics.LoginSuccess)
	s.audit.Log(ctx, AuditActionLogin, actor, model.AuditStatusSuccess, "", "")

	return model.LoginResult{
		Token:     issued.Token,
		Username:  cred.Username,
		Role:      cred.Role,
		ExpiresAt: issued.ExpiresAt,
	}, nil
}

func (s *AuthService) Logout(ctx context.Context, actor model.AuditActor) {
	if actor.Username == "" {
		return
	}
	s.audit.Log(ctx, AuditActionLogout, actor, model.AuditStatusSuccess, "", "")
}
