package domain

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var errAdminNotFound error = errors.New("Admin not found")

func ErrAdminNotFound() error {
	return errAdminNotFound
}

// Admin is the credential gate for the management surface. Password holds a
// bcrypt hash, never the plaintext.
type Admin struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email     string             `bson:"email" json:"email"`
	Password  string             `bson:"password" json:"-"`
	Role      string             `bson:"role" json:"role"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
}

type AdminStore interface {
	FindByEmail(ctx context.Context, email string) (*Admin, error)
	FindByID(ctx context.Context, id string) (*Admin, error)
	Insert(ctx context.Context, admin *Admin) (*Admin, error)
}
