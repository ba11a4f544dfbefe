package memberrepo

import (
	"context"
	"errors"
	"slices"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	mongoadapter "github.com/chingu-voyages/demographics-api/internal/adapters/mongo"
	"github.com/chingu-voyages/demographics-api/internal/domain"
	"github.com/chingu-voyages/demographics-api/internal/ports/out/memberrepo"
)

// Repo is a MongoDB implementation of memberrepo.Repository.
type Repo struct {
	coll *mongo.Collection
}

func NewRepo(db *mongo.Database) *Repo {
	if db == nil {
		return &Repo{}
	}
	return &Repo{coll: db.Collection(mongoadapter.MembersCollection)}
}

// memberDoc is the stored document. Seq records import order.
type memberDoc struct {
	ID              string    `bson:"_id"`
	Seq             int64     `bson:"seq"`
	Timestamp       time.Time `bson:"timestamp"`
	YearJoined      int       `bson:"yearJoined"`
	Gender          string    `bson:"gender"`
	CountryCode     string    `bson:"countryCode"`
	CountryName     string    `bson:"countryName"`
	Goal            string    `bson:"goal"`
	Source          string    `bson:"source"`
	RoleType        string    `bson:"roleType"`
	VoyageRole      string    `bson:"voyageRole"`
	SoloProjectTier string    `bson:"soloProjectTier"`
	VoyageTier      string    `bson:"voyageTier"`
	Voyage          string    `bson:"voyage"`
}

func (r *Repo) Find(ctx context.Context, p memberrepo.Predicate, sort []memberrepo.SortKey, skip, limit int) ([]domain.Member, error) {
	if r.coll == nil {
		return nil, errors.New("nil mongo database")
	}
	filter, err := compileFilter(p)
	if err != nil {
		return nil, err
	}
	order, err := compileSort(sort)
	if err != nil {
		return nil, err
	}
	opts := options.Find().SetSort(order)
	if skip > 0 {
		opts.SetSkip(int64(skip))
	}
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	var docs []memberDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]domain.Member, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

func (r *Repo) Count(ctx context.Context, p memberrepo.Predicate) (int64, error) {
	if r.coll == nil {
		return 0, errors.New("nil mongo database")
	}
	filter, err := compileFilter(p)
	if err != nil {
		return 0, err
	}
	return r.coll.CountDocuments(ctx, filter)
}

type groupDoc struct {
	CountryCode string   `bson:"_id"`
	Count       int64    `bson:"count"`
	Names       []string `bson:"names"`
}

func (r *Repo) GroupByCountry(ctx context.Context, p memberrepo.Predicate) ([]memberrepo.CountryGroup, error) {
	if r.coll == nil {
		return nil, errors.New("nil mongo database")
	}
	filter, err := compileFilter(p)
	if err != nil {
		return nil, err
	}

	cur, err := r.coll.Aggregate(ctx, groupPipeline(filter))
	if err != nil {
		return nil, err
	}
	var docs []groupDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]memberrepo.CountryGroup, 0, len(docs))
	for _, d := range docs {
		out = append(out, memberrepo.CountryGroup{
			CountryCode: d.CountryCode,
			Count:       d.Count,
			Names:       distinct(d.Names),
		})
	}
	return out, nil
}

// groupPipeline sorts by import order before grouping so pushed names keep first-seen order.
func groupPipeline(filter bson.M) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: filter}},
		{{Key: "$sort", Value: bson.D{{Key: "seq", Value: 1}}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$countryCode"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "names", Value: bson.D{{Key: "$push", Value: "$countryName"}}},
			{Key: "firstSeq", Value: bson.D{{Key: "$min", Value: "$seq"}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}, {Key: "firstSeq", Value: 1}}}},
	}
}

// ReplaceAll is not atomic: a concurrent reader may observe the collection empty or
// partially loaded.
func (r *Repo) ReplaceAll(ctx context.Context, ms []domain.Member) (int, error) {
	if r.coll == nil {
		return 0, errors.New("nil mongo database")
	}
	if _, err := r.coll.DeleteMany(ctx, bson.M{}); err != nil {
		return 0, err
	}
	if len(ms) == 0 {
		return 0, nil
	}
	docs := make([]any, 0, len(ms))
	for i, m := range ms {
		docs = append(docs, fromDomain(m, int64(i)))
	}
	res, err := r.coll.InsertMany(ctx, docs, options.InsertMany().SetOrdered(true))
	if err != nil {
		return 0, err
	}
	return len(res.InsertedIDs), nil
}

func fromDomain(m domain.Member, seq int64) memberDoc {
	return memberDoc{
		ID:              string(m.ID),
		Seq:             seq,
		Timestamp:       m.Timestamp.UTC(),
		YearJoined:      m.YearJoined,
		Gender:          string(m.Gender),
		CountryCode:     m.CountryCode,
		CountryName:     m.CountryName,
		Goal:            m.Goal,
		Source:          m.Source,
		RoleType:        m.RoleType,
		VoyageRole:      m.VoyageRole,
		SoloProjectTier: m.SoloProjectTier,
		VoyageTier:      m.VoyageTier,
		Voyage:          m.Voyage,
	}
}

func (d memberDoc) toDomain() domain.Member {
	return domain.Member{
		ID:              domain.MemberID(d.ID),
		Timestamp:       d.Timestamp.UTC(),
		YearJoined:      d.YearJoined,
		Gender:          domain.Gender(d.Gender),
		CountryCode:     d.CountryCode,
		CountryName:     d.CountryName,
		Goal:            d.Goal,
		Source:          d.Source,
		RoleType:        d.RoleType,
		VoyageRole:      d.VoyageRole,
		SoloProjectTier: d.SoloProjectTier,
		VoyageTier:      d.VoyageTier,
		Voyage:          d.Voyage,
	}
}

func distinct(names []string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if !slices.Contains(out, n) {
			out = append(out, n)
		}
	}
	return out
}
