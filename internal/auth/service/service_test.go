package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"romportal/internal/auth/models"
	"romportal/internal/auth/service/mocks"
	"romportal/internal/auth/store/revocation"
	"romportal/internal/auth/store/user"
	jwttoken "romportal/internal/jwt_token"
	dErrors "romportal/pkg/domain-errors"
	audit "romportal/pkg/platform/audit"
	"romportal/pkg/requestcontext"
)

// Justification for unit tests: sign-in, sign-out and re-authentication
// rules are exercised against real in-memory stores and a real signer so
// the token lifecycle is covered end to end without HTTP.
type ServiceSuite struct {
	suite.Suite
	ctrl      *gomock.Controller
	users     *user.InMemoryUserStore
	trl       *revocation.InMemoryTRL
	tokens    *jwttoken.JWTService
	publisher *mocks.MockAuditPublisher
	service   *Service
	ctx       context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.users = user.New()
	s.trl = revocation.NewInMemoryTRL(nil)
	s.tokens = jwttoken.NewJWTService("test-signing-key", "romportal", "romportal-admin")
	s.publisher = mocks.NewMockAuditPublisher(s.ctrl)

	var err error
	s.service, err = New(s.users, s.tokens, s.trl,
		WithAuditPublisher(s.publisher),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithTokenTTL(time.Hour),
	)
	s.Require().NoError(err)
	s.ctx = requestcontext.WithRequestID(context.Background(), "req-auth")
}

func (s *ServiceSuite) createAdmin(email, password string, role models.Role) *models.AdminUser {
	s.publisher.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(nil)
	admin, err := s.service.CreateAdmin(s.ctx, models.CreateAdmin{Email: email, Password: password, Role: role})
	s.Require().NoError(err)
	return admin
}

// =============================================================================
// Construction
// =============================================================================

func (s *ServiceSuite) TestNew() {
	_, err := New(nil, s.tokens, s.trl)
	s.Error(err)
	_, err = New(s.users, nil, s.trl)
	s.Error(err)
	_, err = New(s.users, s.tokens, nil)
	s.Error(err)

	svc, err := New(s.users, s.tokens, s.trl)
	s.Require().NoError(err)
	s.Equal(DefaultTokenTTL, svc.TokenTTL())
}

// =============================================================================
// Admin accounts
// =============================================================================

func (s *ServiceSuite) TestCreateAdmin() {
	s.Run("stores a hashed password and emits admin_created", func() {
		s.publisher.EXPECT().Emit(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, event audit.Event) error {
				s.Equal(audit.ActionAdminCreated, event.Action)
				s.Equal("encoder", event.Details["role"])
				return nil
			})

		admin, err := s.service.CreateAdmin(s.ctx, models.CreateAdmin{
			Email: "Encoder@Example.com", Password: "correct horse", Role: models.RoleEncoder,
		})
		s.Require().NoError(err)
		s.Equal("encoder@example.com", admin.Email)
		s.NotEqual("correct horse", admin.PasswordHash)

		has, err := s.service.HasAdmins(s.ctx)
		s.Require().NoError(err)
		s.True(has)
	})

	s.Run("duplicate email is a conflict", func() {
		_, err := s.service.CreateAdmin(s.ctx, models.CreateAdmin{
			Email: "encoder@example.com", Password: "another pass",
		})
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("short password is rejected", func() {
		_, err := s.service.CreateAdmin(s.ctx, models.CreateAdmin{Email: "x@example.com", Password: "short"})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("unknown role is rejected", func() {
		_, err := s.service.CreateAdmin(s.ctx, models.CreateAdmin{Email: "y@example.com", Password: "long enough", Role: "owner"})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

// =============================================================================
// Sessions
// =============================================================================

func (s *ServiceSuite) TestSignInWithPassword() {
	admin := s.createAdmin("registrar@example.com", "correct horse", models.RoleAdmin)

	s.Run("valid credentials return a bearer session", func() {
		s.publisher.EXPECT().Emit(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, event audit.Event) error {
				s.Equal(audit.ActionAdminSignedIn, event.Action)
				s.Equal(admin.ID.String(), event.ActorID)
				return nil
			})

		session, err := s.service.SignInWithPassword(s.ctx, "REGISTRAR@example.com", "correct horse")
		s.Require().NoError(err)
		s.Equal("Bearer", session.TokenType)
		s.Equal(admin.ID, session.User.ID)
		s.NotEmpty(session.AccessToken)

		claims, err := s.tokens.ValidateToken(session.AccessToken)
		s.Require().NoError(err)
		s.Equal("admin", claims.Role)
		s.Equal(admin.ID, claims.ParsedUserID())
	})

	s.Run("wrong password and unknown email fail the same way", func() {
		_, errWrong := s.service.SignInWithPassword(s.ctx, "registrar@example.com", "wrong horse")
		_, errUnknown := s.service.SignInWithPassword(s.ctx, "nobody@example.com", "correct horse")

		s.True(dErrors.HasCode(errWrong, dErrors.CodeUnauthorized))
		s.True(dErrors.HasCode(errUnknown, dErrors.CodeUnauthorized))
		s.Equal(dErrors.MessageOf(errWrong), dErrors.MessageOf(errUnknown))
	})

	s.Run("audit failure does not fail sign-in", func() {
		s.publisher.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(errors.New("outbox down"))
		_, err := s.service.SignInWithPassword(s.ctx, "registrar@example.com", "correct horse")
		s.NoError(err)
	})
}

func (s *ServiceSuite) TestCurrentUserAndSignOut() {
	admin := s.createAdmin("registrar@example.com", "correct horse", models.RoleAdmin)
	s.publisher.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(nil)
	session, err := s.service.SignInWithPassword(s.ctx, "registrar@example.com", "correct horse")
	s.Require().NoError(err)

	current, err := s.service.CurrentUser(s.ctx, session.AccessToken)
	s.Require().NoError(err)
	s.Equal(admin.ID, current.ID)

	s.publisher.EXPECT().Emit(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, event audit.Event) error {
			s.Equal(audit.ActionAdminSignedOut, event.Action)
			return nil
		})
	s.Require().NoError(s.service.SignOut(s.ctx, session.AccessToken))

	_, err = s.service.CurrentUser(s.ctx, session.AccessToken)
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))

	claims, err := s.tokens.ValidateToken(session.AccessToken)
	s.Require().NoError(err)
	revoked, err := s.service.IsTokenRevoked(s.ctx, claims.ID)
	s.Require().NoError(err)
	s.True(revoked)
}

func (s *ServiceSuite) TestSignOutRejectsGarbage() {
	err := s.service.SignOut(s.ctx, "not-a-token")
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func (s *ServiceSuite) TestCurrentUserRevocationFailure() {
	trl := mocks.NewMockTokenRevocationList(s.ctrl)
	svc, err := New(s.users, s.tokens, trl)
	s.Require().NoError(err)

	issued, err := s.tokens.GenerateAccessToken(uuid.New(), "a@example.com", "admin", time.Hour)
	s.Require().NoError(err)
	trl.EXPECT().IsRevoked(gomock.Any(), issued.JTI).Return(false, errors.New("redis down"))

	_, err = svc.CurrentUser(s.ctx, issued.Token)
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))
}

// =============================================================================
// Re-authentication
// =============================================================================

func (s *ServiceSuite) TestVerifyPassword() {
	admin := s.createAdmin("registrar@example.com", "correct horse", models.RoleAdmin)

	s.Run("correct password passes", func() {
		s.NoError(s.service.VerifyPassword(s.ctx, admin.ID, "correct horse"))
	})

	s.Run("wrong password is unauthorized and audited", func() {
		s.publisher.EXPECT().Emit(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, event audit.Event) error {
				s.Equal(audit.ActionReauthFailed, event.Action)
				return nil
			})
		err := s.service.VerifyPassword(s.ctx, admin.ID, "wrong horse")
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
		s.Equal("incorrect password", dErrors.MessageOf(err))
	})

	s.Run("unknown admin is unauthorized", func() {
		err := s.service.VerifyPassword(s.ctx, uuid.New(), "correct horse")
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.Run("missing actor is unauthorized", func() {
		err := s.service.VerifyPassword(s.ctx, uuid.Nil, "correct horse")
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})
}
