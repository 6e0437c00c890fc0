// Package mongodb implements the metabo-ui stores on MongoDB, including the
// Cosmos DB for MongoDB API.
package mongodb

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/metabo-ui/metabo-ui/database/model"
	"github.com/metabo-ui/metabo-ui/database/query"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

var (
	_ model.Store           = (*Store)(nil)
	_ model.UserStore       = (*UserStore)(nil)
	_ model.MetaboliteStore = (*MetaboliteStore)(nil)
)

// Options configure Open.
type Options struct {
	URI                   string
	Database              string
	UsersCollection       string
	MetabolitesCollection string
	// MetadataCollection is optional; it is only checked for existence.
	MetadataCollection string
	AppName            string
}

// Store is a MongoDB backed model.Store.
type Store struct {
	client      *mongo.Client
	users       *UserStore
	metabolites *MetaboliteStore
}

// Open connects, pings the primary and verifies that every configured
// collection exists. Collections are never created here.
func Open(ctx context.Context, opts Options) (*Store, error) {
	clientOpts := options.Client().ApplyURI(opts.URI)
	if opts.AppName != "" {
		clientOpts.SetAppName(opts.AppName)
	}
	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongodb is not reachable: %w", err)
	}

	db := client.Database(opts.Database)
	names, err := db.ListCollectionNames(ctx, bson.D{})
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to list collections of %q: %w", opts.Database, err)
	}
	required := []string{opts.UsersCollection, opts.MetabolitesCollection}
	if opts.MetadataCollection != "" {
		required = append(required, opts.MetadataCollection)
	}
	for _, name := range required {
		if !slices.Contains(names, name) {
			_ = client.Disconnect(ctx)
			return nil, fmt.Errorf("collection %q does not exist in database %q", name, opts.Database)
		}
	}

	return &Store{
		client:      client,
		users:       &UserStore{coll: db.Collection(opts.UsersCollection)},
		metabolites: &MetaboliteStore{coll: db.Collection(opts.MetabolitesCollection)},
	}, nil
}

func (s *Store) Users() model.UserStore { return s.users }

func (s *Store) Metabolites() model.MetaboliteStore { return s.metabolites }

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// UserStore is the users collection; documents use the user id as _id.
type UserStore struct {
	coll *mongo.Collection
}

func (s *UserStore) GetByID(ctx context.Context, id string) (*model.User, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

func (s *UserStore) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.findOne(ctx, bson.M{"email": email})
}

func (s *UserStore) findOne(ctx context.Context, filter bson.M) (*model.User, error) {
	user := &model.User{}
	err := s.coll.FindOne(ctx, filter).Decode(user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, model.ErrNotFound
	} else if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (s *UserStore) List(ctx context.Context) ([]model.User, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "email", Value: 1}}).
		SetProjection(bson.D{{Key: "pw_hash", Value: 0}})
	cur, err := s.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	var users []model.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("failed to decode users: %w", err)
	}
	return users, nil
}

func (s *UserStore) Upsert(ctx context.Context, user *model.User) error {
	_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": user.ID}, user, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to upsert user: %w", err)
	}
	return nil
}

func (s *UserStore) Delete(ctx context.Context, id string) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if res.DeletedCount == 0 {
		return model.ErrNotFound
	}
	return nil
}

// MetaboliteStore is the metabolites collection.
type MetaboliteStore struct {
	coll *mongo.Collection
}

var summaryProjection = bson.D{
	{Key: "_id", Value: 1},
	{Key: "common_name", Value: 1},
	{Key: "formula", Value: 1},
	{Key: "average_molecular_weight", Value: 1},
	{Key: "pubchem_compound_id", Value: 1},
}

func (s *MetaboliteStore) Search(ctx context.Context, q *query.Query) ([]model.MetaboliteSummary, error) {
	filter, err := Filter(q)
	if err != nil {
		return nil, err
	}
	opts := options.Find().
		SetProjection(summaryProjection).
		SetSort(bson.D{{Key: query.FieldAverageWeight, Value: 1}})

	cur, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to search metabolites: %w", err)
	}
	var out []model.MetaboliteSummary
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("failed to decode metabolites: %w", err)
	}
	return out, nil
}

// Filter translates the query conditions into a MongoDB filter document.
// The bound values are stored as numbers, never as query text.
func Filter(q *query.Query) (bson.D, error) {
	filter := bson.D{}
	for _, c := range q.Conditions {
		var expr bson.D
		switch c.Op {
		case query.OpBetween:
			expr = bson.D{{Key: "$gte", Value: c.Params[0].Value}, {Key: "$lte", Value: c.Params[1].Value}}
		case query.OpGTE:
			expr = bson.D{{Key: "$gte", Value: c.Params[0].Value}}
		case query.OpLTE:
			expr = bson.D{{Key: "$lte", Value: c.Params[0].Value}}
		default:
			return nil, fmt.Errorf("unsupported operator %q", c.Op)
		}
		filter = append(filter, bson.E{Key: c.Field, Value: expr})
	}
	return filter, nil
}

func (s *MetaboliteStore) GetByID(ctx context.Context, id string) (*model.Metabolite, error) {
	m := &model.Metabolite{}
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(m)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, model.ErrNotFound
	} else if err != nil {
		return nil, fmt.Errorf("failed to get metabolite: %w", err)
	}
	return m, nil
}

func (s *MetaboliteStore) Upsert(ctx context.Context, m *model.Metabolite) error {
	_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": m.ID}, m, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to upsert metabolite: %w", err)
	}
	return nil
}
