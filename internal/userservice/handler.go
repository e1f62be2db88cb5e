package userservice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hazelmoss/inkpost/internal/common"
)

var (
	ErrAuthenticationFailure = fmt.Errorf("invalid email or password")
)

func NewUserService(store UserStore, tokens *TokenManager, mb common.MessageProducer) *UserService {
	return &UserService{
		store:  store,
		tokens: tokens,
		mb:     mb,
	}
}

// Register creates a new user account with the default role, a hashed password
// and publishes a user.registered event.
func (s *UserService) Register(ctx context.Context, name, email, password string) (*UserInfo, error) {
	v := common.NewValidator()
	validateName(v, name)
	validateEmail(v, email)
	validatePassword(v, password)
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	exists, err := s.store.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateEmail
	}

	u := User{
		Email: email,
		Name:  name,
		Role:  RoleUser,
	}

	if err := u.Password.set(password); err != nil {
		return nil, err
	}

	// The unique constraint still backstops the existence check above, so a
	// concurrent registration of the same email surfaces as ErrDuplicateEmail
	// rather than a raw constraint error.
	if err := s.store.Insert(ctx, &u); err != nil {
		return nil, err
	}

	data := struct {
		Email string
		Name  string
	}{
		Email: u.Email,
		Name:  u.Name,
	}

	eventData, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	if err := s.mb.Publish(ctx, eventData, common.UserRegisteredKey, common.UserExchange); err != nil {
		return nil, err
	}

	return u.Info(), nil
}

// Login checks the credentials and issues a bearer token bound to the user. An
// unknown email and a wrong password both return ErrAuthenticationFailure so
// the caller cannot tell which check failed.
func (s *UserService) Login(ctx context.Context, email, password string) (string, error) {
	v := common.NewValidator()
	v.Check(email != "", "email", "must be provided")
	v.Check(password != "", "password", "must be provided")
	if !v.Valid() {
		return "", v.ValidationError()
	}

	user, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return "", ErrAuthenticationFailure
		default:
			return "", err
		}
	}

	ok, err := user.Password.compare(password)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", ErrAuthenticationFailure
	}

	return s.tokens.New(user.ID)
}

// AuthenticateToken resolves a bearer token to the user it was issued for.
func (s *UserService) AuthenticateToken(ctx context.Context, token string) (*User, error) {
	id, err := s.tokens.Verify(token)
	if err != nil {
		return nil, err
	}

	return s.store.GetByID(ctx, id)
}

// GetUserByID looks up a user; consumed by the API layer and by ownership
// checks.
func (s *UserService) GetUserByID(ctx context.Context, id int) (*User, error) {
	return s.store.GetByID(ctx, id)
}

// Info returns the transfer representation of the user.
func (u *User) Info() *UserInfo {
	return &UserInfo{
		ID:    u.ID,
		Email: u.Email,
		Name:  u.Name,
		Role:  u.Role,
	}
}

func (u *User) IsAnonymous() bool {
	return u == &AnonymousUser
}
