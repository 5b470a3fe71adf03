package service

import (
	"context"
	"fmt"
	"strings"

	"shopcart/internal/model"
	"shopcart/internal/session"

	"github.com/rs/zerolog"
)

// accountService implements AccountService.
type accountService struct {
	api      AuthAPI
	sessions SessionManager
	logger   zerolog.Logger
}

// NewAccountService creates a new account service.
func NewAccountService(api AuthAPI, sessions SessionManager, logger zerolog.Logger) AccountService {
	return &accountService{
		api:      api,
		sessions: sessions,
		logger:   logger.With().Str("service", "account").Logger(),
	}
}

func (s *accountService) Register(ctx context.Context, req model.RegisterRequest) (*model.User, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if err := model.Validate(req); err != nil {
		return nil, err
	}
	if err := model.CheckNewPassword(req.Password, req.ConfirmPassword); err != nil {
		return nil, err
	}

	user, err := s.api.Register(ctx, req)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int("user_id", user.ID).Msg("account registered")
	return user, nil
}

func (s *accountService) Login(ctx context.Context, req model.LoginRequest) (*session.Session, error) {
	req.Email = strings.TrimSpace(req.Email)
	if err := model.Validate(req); err != nil {
		return nil, err
	}

	result, err := s.api.Login(ctx, req)
	if err != nil {
		return nil, err
	}

	sess, err := s.sessions.Create(ctx, result.Token, result.User)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to create session after login")
		return nil, fmt.Errorf("failed to start session: %w", err)
	}
	return sess, nil
}

func (s *accountService) Logout(ctx context.Context, sess *session.Session) error {
	return s.sessions.Destroy(ctx, sess.ID)
}

func (s *accountService) Profile(ctx context.Context, sess *session.Session) (*model.User, error) {
	user, err := s.api.Profile(ctx, sess.Token)
	if err != nil {
		return nil, err
	}
	if err := s.sessions.UpdateUser(ctx, sess, *user); err != nil {
		s.logger.Warn().Err(err).Msg("failed to refresh session user")
	}
	return user, nil
}

func (s *accountService) UpdateProfile(ctx context.Context, sess *session.Session, update model.ProfileUpdate) (*model.User, error) {
	update.Name = strings.TrimSpace(update.Name)
	update.Email = strings.TrimSpace(update.Email)
	if err := model.Validate(update); err != nil {
		return nil, err
	}

	user, err := s.api.UpdateUser(ctx, sess.Token, sess.User.ID, update)
	if err != nil {
		return nil, err
	}
	if err := s.sessions.UpdateUser(ctx, sess, *user); err != nil {
		s.logger.Warn().Err(err).Msg("failed to refresh session user")
	}

	s.logger.Info().Int("user_id", user.ID).Msg("profile updated")
	return user, nil
}

func (s *accountService) ChangePassword(ctx context.Context, sess *session.Session, req model.ChangePasswordRequest) error {
	if err := model.Validate(req); err != nil {
		return err
	}
	if err := model.CheckNewPassword(req.NewPassword, req.ConfirmNewPassword); err != nil {
		return err
	}
	if err := s.api.ChangePassword(ctx, sess.Token, req); err != nil {
		return err
	}

	s.logger.Info().Int("user_id", sess.User.ID).Msg("password changed")
	return nil
}

func (s *accountService) ForgotPassword(ctx context.Context, req model.ForgotPasswordRequest) (*model.MessageResponse, error) {
	req.Email = strings.TrimSpace(req.Email)
	if err := model.Validate(req); err != nil {
		return nil, err
	}
	return s.api.ForgotPassword(ctx, req.Email)
}

// ResetPassword checks the confirmation only when one was sent; the reset
// link flow may submit the new password alone.
func (s *accountService) ResetPassword(ctx context.Context, req model.ResetPasswordRequest) (*model.MessageResponse, error) {
	if err := model.Validate(req); err != nil {
		return nil, err
	}
	confirmation := req.ConfirmPassword
	if confirmation == "" {
		confirmation = req.NewPassword
	}
	if err := model.CheckNewPassword(req.NewPassword, confirmation); err != nil {
		return nil, err
	}
	return s.api.ResetPassword(ctx, req.Token, req.NewPassword)
}

func (s *accountService) Orders(ctx context.Context, sess *session.Session, page, pageSize int) (*model.OrderPage, error) {
	page, pageSize = model.ClampPage(page, pageSize, model.DefaultOrderLimit)
	return s.api.ListUserOrders(ctx, sess.Token, sess.User.ID, page, pageSize)
}
