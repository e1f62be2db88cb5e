package userservice

import (
	"context"
	"time"

	"github.com/hazelmoss/inkpost/internal/common"
)

const (
	// RoleUser is the role assigned to every account at registration.
	RoleUser = "USER"
)

var (
	AnonymousUser = User{}
)

type User struct {
	ID        int       `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	Password  Password  `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

type Password struct {
	Plain string `json:"-"`
	hash  []byte `json:"-"`
}

// UserInfo is the transfer representation returned by the API. It never carries
// the password hash.
type UserInfo struct {
	ID    int    `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

// UserStore is the persistence capability the service is composed with.
type UserStore interface {
	Insert(ctx context.Context, u *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id int) (*User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

type UserService struct {
	store  UserStore
	tokens *TokenManager
	mb     common.MessageProducer
}
