package service

import (
	"bitwise74/devdoc-api/internal/apperr"
	"bitwise74/devdoc-api/internal/model"
	"bitwise74/devdoc-api/pkg/security"
	"bitwise74/devdoc-api/pkg/util"
	"bitwise74/devdoc-api/pkg/validators"
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// AuthResult is returned by a successful register or login
type AuthResult struct {
	Token string           `json:"token"`
	User  model.PublicUser `json:"user"`
}

type UserService struct {
	db     *gorm.DB
	argon  *security.ArgonHash
	tokens *security.TokenMaker
}

func NewUserService(db *gorm.DB, argon *security.ArgonHash, tokens *security.TokenMaker) *UserService {
	return &UserService{db: db, argon: argon, tokens: tokens}
}

func (s *UserService) Register(ctx context.Context, email, password string) (*AuthResult, error) {
	email = validators.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, apperr.Validation("Email and password are required")
	}

	if err := validators.EmailValidator(email); err != nil {
		return nil, apperr.Validation(err.Error())
	}

	if err := validators.PasswordValidator(password); err != nil {
		return nil, apperr.Validation(err.Error())
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&model.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to check if user is registered, %w", err)
	}

	if count > 0 {
		return nil, apperr.Conflict("Email already in use")
	}

	hash, err := s.argon.GenerateFromPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password, %w", err)
	}

	userID, err := util.NewID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate user ID, %w", err)
	}

	user := model.User{
		ID:           userID,
		Email:        email,
		PasswordHash: hash,
	}

	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		// Lost a race with another registration for the same email
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.Conflict("Email already in use")
		}

		return nil, fmt.Errorf("failed to create user, %w", err)
	}

	return s.issue(&user)
}

// Login never reveals whether the email or the password was wrong
func (s *UserService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = validators.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, apperr.ErrInvalidCredentials
	}

	var user model.User

	err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrInvalidCredentials
		}

		return nil, fmt.Errorf("failed to look up user, %w", err)
	}

	ok, err := s.argon.VerifyPasswd(password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("failed to verify password, %w", err)
	}

	if !ok {
		return nil, apperr.ErrInvalidCredentials
	}

	return s.issue(&user)
}

// Authenticate resolves a bearer token to the user it was issued for
func (s *UserService) Authenticate(ctx context.Context, token string) (*model.User, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, apperr.Unauthorized(err.Error())
	}

	var user model.User

	err = s.db.WithContext(ctx).Where("id = ?", claims.Subject).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Unauthorized("User no longer exists")
		}

		return nil, fmt.Errorf("failed to check if user exists, %w", err)
	}

	return &user, nil
}

func (s *UserService) Current(ctx context.Context, userID string) (*model.PublicUser, error) {
	var user model.User

	err := s.db.WithContext(ctx).Where("id = ?", userID).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Unauthorized("User no longer exists")
		}

		return nil, fmt.Errorf("failed to fetch user, %w", err)
	}

	pub := user.Public()
	return &pub, nil
}

func (s *UserService) issue(user *model.User) (*AuthResult, error) {
	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, err
	}

	return &AuthResult{Token: token, User: user.Public()}, nil
}
