package userrepo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	mongoadapter "github.com/chingu-voyages/demographics-api/internal/adapters/mongo"
	"github.com/chingu-voyages/demographics-api/internal/domain"
	"github.com/chingu-voyages/demographics-api/internal/ports/out/userrepo"
)

// Repo is a MongoDB implementation of userrepo.Repository. Email uniqueness relies on
// the index created by mongo.EnsureIndexes.
type Repo struct {
	coll *mongo.Collection
}

func NewRepo(db *mongo.Database) *Repo {
	if db == nil {
		return &Repo{}
	}
	return &Repo{coll: db.Collection(mongoadapter.UsersCollection)}
}

type userDoc struct {
	ID           string    `bson:"_id"`
	Email        string    `bson:"email"`
	Name         string    `bson:"name"`
	Image        *string   `bson:"image,omitempty"`
	GoogleID     *string   `bson:"googleId,omitempty"`
	PasswordHash *string   `bson:"passwordHash,omitempty"`
	CreatedAt    time.Time `bson:"createdAt"`
	UpdatedAt    time.Time `bson:"updatedAt"`
}

func (r *Repo) Create(ctx context.Context, u domain.User) error {
	if r.coll == nil {
		return errors.New("nil mongo database")
	}
	_, err := r.coll.InsertOne(ctx, fromDomain(u))
	if mongo.IsDuplicateKeyError(err) {
		return userrepo.ErrEmailTaken
	}
	return err
}

func (r *Repo) Update(ctx context.Context, u domain.User) error {
	if r.coll == nil {
		return errors.New("nil mongo database")
	}
	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": string(u.ID)}, fromDomain(u))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return userrepo.ErrEmailTaken
		}
		return err
	}
	if res.MatchedCount == 0 {
		return userrepo.ErrNotFound
	}
	return nil
}

func (r *Repo) GetByID(ctx context.Context, id domain.UserID) (domain.User, error) {
	return r.findOne(ctx, bson.M{"_id": string(id)})
}

func (r *Repo) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *Repo) findOne(ctx context.Context, filter bson.M) (domain.User, error) {
	if r.coll == nil {
		return domain.User{}, errors.New("nil mongo database")
	}
	var d userDoc
	if err := r.coll.FindOne(ctx, filter).Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.User{}, userrepo.ErrNotFound
		}
		return domain.User{}, err
	}
	return d.toDomain(), nil
}

func fromDomain(u domain.User) userDoc {
	return userDoc{
		ID:           string(u.ID),
		Email:        u.Email,
		Name:         u.Name,
		Image:        u.Image,
		GoogleID:     u.GoogleID,
		PasswordHash: u.PasswordHash,
		CreatedAt:    u.CreatedAt.UTC(),
		UpdatedAt:    u.UpdatedAt.UTC(),
	}
}

func (d userDoc) toDomain() domain.User {
	return domain.User{
		ID:           domain.UserID(d.ID),
		Email:        d.Email,
		Name:         d.Name,
		Image:        d.Image,
		GoogleID:     d.GoogleID,
		PasswordHash: d.PasswordHash,
		CreatedAt:    d.CreatedAt.UTC(),
		UpdatedAt:    d.UpdatedAt.UTC(),
	}
}
