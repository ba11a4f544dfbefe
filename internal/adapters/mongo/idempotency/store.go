package idempotency

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	mongoadapter "github.com/chingu-voyages/demographics-api/internal/adapters/mongo"
	"github.com/chingu-voyages/demographics-api/internal/ports/out/idempotency"
)

// Store is a MongoDB implementation of idempotency.Store.
type Store struct {
	coll *mongo.Collection
}

func NewStore(db *mongo.Database) *Store {
	if db == nil {
		return &Store{}
	}
	return &Store{coll: db.Collection(mongoadapter.IdempotencyCollection)}
}

type recordDoc struct {
	Key         string    `bson:"key"`
	Method      string    `bson:"method"`
	Route       string    `bson:"route"`
	BodyHash    string    `bson:"bodyHash"`
	StatusCode  int       `bson:"statusCode"`
	ContentType string    `bson:"contentType"`
	Body        []byte    `bson:"body"`
	CreatedAt   time.Time `bson:"createdAt"`
}

func fingerprintFilter(fp idempotency.Fingerprint) bson.D {
	return bson.D{
		{Key: "key", Value: string(fp.Key)},
		{Key: "method", Value: fp.Method},
		{Key: "route", Value: fp.Route},
		{Key: "bodyHash", Value: fp.BodyHash},
	}
}

func (s *Store) Get(ctx context.Context, fp idempotency.Fingerprint) (idempotency.Record, bool, error) {
	if s.coll == nil {
		return idempotency.Record{}, false, errors.New("nil mongo database")
	}
	var d recordDoc
	if err := s.coll.FindOne(ctx, fingerprintFilter(fp)).Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return idempotency.Record{}, false, nil
		}
		return idempotency.Record{}, false, err
	}
	return idempotency.Record{
		StatusCode:  d.StatusCode,
		ContentType: d.ContentType,
		Body:        d.Body,
		CreatedAt:   d.CreatedAt.UTC(),
	}, true, nil
}

func (s *Store) Put(ctx context.Context, fp idempotency.Fingerprint, rec idempotency.Record) error {
	if s.coll == nil {
		return errors.New("nil mongo database")
	}
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	doc := recordDoc{
		Key:         string(fp.Key),
		Method:      fp.Method,
		Route:       fp.Route,
		BodyHash:    fp.BodyHash,
		StatusCode:  rec.StatusCode,
		ContentType: rec.ContentType,
		Body:        rec.Body,
		CreatedAt:   createdAt.UTC(),
	}
	_, err := s.coll.ReplaceOne(ctx, fingerprintFilter(fp), doc, options.Replace().SetUpsert(true))
	return err
}
