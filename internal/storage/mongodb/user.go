package mongodb

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/voltstore/storefront/internal/domain/user"
)

var _ user.Repository = (*UserRepository)(nil)

// UserRepository implements user.Repository backed by the users collection.
type UserRepository struct {
	col *mongo.Collection
}

// NewUserRepository returns a UserRepository using the given database.
func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{col: db.Collection("users")}
}

type userDoc struct {
	ID           string     `bson:"_id"`
	Email        string     `bson:"email"`
	Name         string     `bson:"name,omitempty"`
	PasswordHash string     `bson:"passwordHash"`
	ResetToken   *string    `bson:"resetToken,omitempty"`
	ResetExpires *time.Time `bson:"resetExpires,omitempty"`
	CreatedAt    time.Time  `bson:"createdAt"`
}

// Create persists a new account. The unique email index turns duplicate
// inserts into user.ErrEmailTaken.
func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	_, err := r.col.InsertOne(ctx, toUserDoc(u))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return user.ErrEmailTaken
		}
		return errors.Wrapf(err, "insert user %s", u.ID)
	}
	return nil
}

// FindByEmail looks up an account by its normalized email.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

// FindByID looks up an account by id.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*user.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

// FindByResetToken looks up the account holding a pending reset token.
func (r *UserRepository) FindByResetToken(ctx context.Context, token string) (*user.User, error) {
	return r.findOne(ctx, bson.M{"resetToken": token})
}

// SetResetToken stores a reset token and its expiry on the account.
func (r *UserRepository) SetResetToken(ctx context.Context, id, token string, expires time.Time) error {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"resetToken": token, "resetExpires": expires}},
	)
	if err != nil {
		return errors.Wrapf(err, "set reset token for user %s", id)
	}
	if res.MatchedCount == 0 {
		return user.ErrNotFound
	}
	return nil
}

// UpdatePassword replaces the password hash and clears any pending reset
// token in the same update.
func (r *UserRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{
			"$set":   bson.M{"passwordHash": passwordHash},
			"$unset": bson.M{"resetToken": "", "resetExpires": ""},
		},
	)
	if err != nil {
		return errors.Wrapf(err, "update password for user %s", id)
	}
	if res.MatchedCount == 0 {
		return user.ErrNotFound
	}
	return nil
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*user.User, error) {
	var doc userDoc
	err := r.col.FindOne(ctx, filter).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, user.ErrNotFound
		}
		return nil, errors.Wrap(err, "find user")
	}
	return toUser(&doc), nil
}

func toUserDoc(u *user.User) *userDoc {
	return &userDoc{
		ID:           u.ID,
		Email:        u.Email,
		Name:         u.Name,
		PasswordHash: u.PasswordHash,
		ResetToken:   u.ResetToken,
		ResetExpires: u.ResetExpires,
		CreatedAt:    u.CreatedAt,
	}
}

func toUser(doc *userDoc) *user.User {
	return &user.User{
		ID:           doc.ID,
		Email:        doc.Email,
		Name:         doc.Name,
		PasswordHash: doc.PasswordHash,
		ResetToken:   doc.ResetToken,
		ResetExpires: doc.ResetExpires,
		CreatedAt:    doc.CreatedAt,
	}
}
