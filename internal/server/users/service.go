package users

import (
	"context"
	"regexp"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/vevey/vevey/internal/common"
	"github.com/vevey/vevey/internal/logging"
	"github.com/vevey/vevey/internal/server/mail"
	"github.com/vevey/vevey/internal/server/models"
	"github.com/vevey/vevey/internal/server/sessions"
)

var emailPattern = regexp.MustCompile(`\S+@\S+\.\S+`)

const minPasswordLen = 8

// dummyHash keeps VerifyPassword doing one bcrypt comparison whether or not
// the email exists, so response timing does not leak account existence.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("not-a-real-password"), bcrypt.DefaultCost)

// TxRunner runs fn with the account repository and the session store bound
// to one unit of work. The Postgres implementation rebinds both to a single
// database transaction; the in-memory one passes its stores through.
type TxRunner interface {
	InTx(ctx context.Context, fn func(ctx context.Context, repo Repository, store sessions.Store) error) error
}

// Service implements the account flows. Every operation that invalidates
// credentials (password change or reset, unregister) revokes all outstanding
// sessions for the user, in the same unit of work as the account update.
type Service struct {
	repo     Repository
	sessions *sessions.Service
	tx       TxRunner
	mailer   mail.Mailer
	logger   logging.Logger
}

func NewService(repo Repository, s *sessions.Service, tx TxRunner, mailer mail.Mailer, logger logging.Logger) *Service {
	return &Service{repo: repo, sessions: s, tx: tx, mailer: mailer, logger: logger.With("component", "users")}
}

// saveAndRevokeSessions persists the account change and deletes every
// session row for the user. Both run inside one TxRunner unit of work: a
// credential change must not commit while stale refresh tokens survive,
// and a failed purge must not leave the old password half-replaced.
func (s *Service) saveAndRevokeSessions(ctx context.Context, user *models.User) error {
	err := s.tx.InTx(ctx, func(ctx context.Context, repo Repository, store sessions.Store) error {
		if err := repo.Update(ctx, user); err != nil {
			return err
		}
		return store.DeleteAll(ctx, user.ID)
	})
	if err != nil {
		return err
	}
	s.logger.Info(ctx, "sessions revoked", "user", user.ID)
	return nil
}

// VerifyPassword checks a plaintext password against the stored hash. An
// unknown email and a wrong password are the same Unauthorized; a disabled
// account reports UserDisabled.
func (s *Service) VerifyPassword(ctx context.Context, email, pwd string) (*models.User, error) {
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if common.IsKind(err, common.KindNotFound) {
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(pwd))
			return nil, common.ErrUnauthorized
		}
		return nil, common.Wrap(common.KindInternal, "credential lookup failed", err)
	}

	switch user.Status {
	case models.UserDisabled:
		return nil, common.E(common.KindUserDisabled, "the specified user is disabled")
	case models.UserConfirmed:
		// fall through to the hash check
	default:
		return nil, common.ErrUnauthorized
	}

	if bcrypt.CompareHashAndPassword(user.PwdHash, []byte(pwd)) != nil {
		return nil, common.ErrUnauthorized
	}
	return user, nil
}

// Login verifies credentials and issues a token pair.
func (s *Service) Login(ctx context.Context, email, pwd string) (*sessions.Grant, error) {
	user, err := s.VerifyPassword(ctx, email, pwd)
	if err != nil {
		return nil, err
	}
	return s.sessions.Issue(ctx, user.ID)
}

// Invite creates a pending account and mails its sign-up code. Inviting an
// address that already has an account fails with UserExists; the resolver
// layer decides whether to surface or suppress that.
func (s *Service) Invite(ctx context.Context, email string) error {
	if !emailPattern.MatchString(email) {
		return common.E(common.KindInvalidInput, "invalid email")
	}

	code, err := common.MakeNumericCode(6)
	if err != nil {
		return common.Wrap(common.KindInternal, "code generation failed", err)
	}

	user := &models.User{
		ID:     uuid.NewString(),
		Email:  email,
		Status: models.UserPending,
		Code:   code,
	}
	if _, err := s.repo.Create(ctx, user); err != nil {
		return err
	}

	if err := s.mailer.Send(ctx, email, "Confirm your account", "Your confirmation code: "+code); err != nil {
		return common.Wrap(common.KindInternal, "invitation mail failed", err)
	}
	s.logger.Info(ctx, "user invited", "user", user.ID)
	return nil
}

// ConfirmSignUp completes an invitation: the code must match the pending
// account, then the name and the first password are set.
func (s *Service) ConfirmSignUp(ctx context.Context, email, name, code, newPwd string) error {
	if err := validatePassword(newPwd); err != nil {
		return err
	}
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if common.IsKind(err, common.KindNotFound) {
			return common.ErrUnauthorized
		}
		return common.Wrap(common.KindInternal, "account lookup failed", err)
	}
	if user.Status != models.UserPending || user.Code == "" || user.Code != code {
		return common.ErrUnauthorized
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPwd), bcrypt.DefaultCost)
	if err != nil {
		return common.Wrap(common.KindInternal, "password hashing failed", err)
	}
	user.Name = name
	user.PwdHash = hash
	user.Status = models.UserConfirmed
	user.Code = ""
	return s.repo.Update(ctx, user)
}

// ChangePassword swaps the password after verifying the old one, then
// revokes every outstanding session.
func (s *Service) ChangePassword(ctx context.Context, principalID, oldPwd, newPwd string) error {
	if err := validatePassword(newPwd); err != nil {
		return err
	}
	user, err := s.repo.GetByID(ctx, principalID)
	if err != nil {
		if common.IsKind(err, common.KindNotFound) {
			return common.ErrUnauthorized
		}
		return common.Wrap(common.KindInternal, "account lookup failed", err)
	}
	if bcrypt.CompareHashAndPassword(user.PwdHash, []byte(oldPwd)) != nil {
		return common.ErrUnauthorized
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPwd), bcrypt.DefaultCost)
	if err != nil {
		return common.Wrap(common.KindInternal, "password hashing failed", err)
	}
	user.PwdHash = hash
	return s.saveAndRevokeSessions(ctx, user)
}

// ForgotPassword mails a reset code. Unknown addresses are silently
// accepted so the endpoint cannot be used to probe for accounts.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if common.IsKind(err, common.KindNotFound) {
			return nil
		}
		return common.Wrap(common.KindInternal, "account lookup failed", err)
	}
	if user.Status == models.UserDisabled {
		return nil
	}

	code, err := common.MakeNumericCode(6)
	if err != nil {
		return common.Wrap(common.KindInternal, "code generation failed", err)
	}
	user.Code = code
	if err := s.repo.Update(ctx, user); err != nil {
		return err
	}
	if err := s.mailer.Send(ctx, email, "Reset your password", "Your reset code: "+code); err != nil {
		return common.Wrap(common.KindInternal, "reset mail failed", err)
	}
	return nil
}

// ConfirmForgotPassword redeems a reset code, sets the new password, and
// revokes every outstanding session.
func (s *Service) ConfirmForgotPassword(ctx context.Context, userID, code, newPwd string) error {
	if err := validatePassword(newPwd); err != nil {
		return err
	}
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if common.IsKind(err, common.KindNotFound) {
			return common.ErrUnauthorized
		}
		return common.Wrap(common.KindInternal, "account lookup failed", err)
	}
	if user.Code == "" || user.Code != code {
		return common.ErrUnauthorized
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPwd), bcrypt.DefaultCost)
	if err != nil {
		return common.Wrap(common.KindInternal, "password hashing failed", err)
	}
	user.PwdHash = hash
	user.Code = ""
	return s.saveAndRevokeSessions(ctx, user)
}

// Get returns the profile behind a principal id.
func (s *Service) Get(ctx context.Context, id string) (*models.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if common.IsKind(err, common.KindNotFound) {
			return nil, err
		}
		return nil, common.Wrap(common.KindInternal, "account lookup failed", err)
	}
	return user, nil
}

// Unregister disables the account after verifying the password and revokes
// every session. The row is kept disabled rather than removed, mirroring
// the tombstone convention for records.
func (s *Service) Unregister(ctx context.Context, principalID, pwd string) error {
	user, err := s.repo.GetByID(ctx, principalID)
	if err != nil {
		if common.IsKind(err, common.KindNotFound) {
			return common.ErrUnauthorized
		}
		return common.Wrap(common.KindInternal, "account lookup failed", err)
	}
	if bcrypt.CompareHashAndPassword(user.PwdHash, []byte(pwd)) != nil {
		return common.ErrUnauthorized
	}

	user.Status = models.UserDisabled
	user.Code = ""
	if err := s.saveAndRevokeSessions(ctx, user); err != nil {
		return err
	}
	s.logger.Info(ctx, "user unregistered", "user", user.ID)
	return nil
}

func validatePassword(pwd string) error {
	if len(pwd) < minPasswordLen {
		return common.E(common.KindInvalidInput, "password is too short")
	}
	return nil
}
