// Package mongostore keeps pages in a MongoDB collection, one document per
// slug with the draft stored as its JSON encoding.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/goliatone/go-pagebuilder/pkg/document"
	"github.com/goliatone/go-pagebuilder/pkg/persist"
)

const DefaultCollection = "pages"

type record struct {
	ID        string    `bson:"_id"`
	Slug      string    `bson:"slug"`
	Owner     string    `bson:"owner"`
	Draft     string    `bson:"draft"`
	UpdatedAt time.Time `bson:"updated_at"`
}

type Option func(*Store)

// WithLogger sets the store logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// WithClock overrides time.Now for updated_at.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// Store implements persist.Store over a mongo collection.
type Store struct {
	client *mongo.Client
	coll   *mongo.Collection
	now    func() time.Time
	logger zerolog.Logger
}

var _ persist.Store = (*Store)(nil)

// Connect dials uri and uses database.collection ("pages" when empty).
func Connect(ctx context.Context, uri, database, collection string, opts ...Option) (*Store, error) {
	if database == "" {
		return nil, errors.New("mongostore: database is required")
	}
	if collection == "" {
		collection = DefaultCollection
	}
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongostore: connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongostore: ping: %w", err)
	}
	store := New(client.Database(database).Collection(collection), opts...)
	store.client = client
	if err := store.EnsureIndexes(ctx); err != nil {
		client.Disconnect(context.Background())
		return nil, err
	}
	return store, nil
}

// New wraps an existing collection.
func New(coll *mongo.Collection, opts ...Option) *Store {
	s := &Store{coll: coll, now: time.Now, logger: zerolog.Nop()}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// EnsureIndexes creates the unique slug index.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "slug", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("mongostore: create slug index: %w", err)
	}
	return nil
}

// Close disconnects a client opened by Connect.
func (s *Store) Close(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	return s.client.Disconnect(ctx)
}

func (s *Store) Save(ctx context.Context, key persist.PageKey, d document.Draft) error {
	if err := key.Validate(); err != nil {
		return err
	}
	data, err := document.Encode(d)
	if err != nil {
		return err
	}

	var existing record
	err = s.coll.FindOne(ctx, bson.M{"slug": key.Slug}).Decode(&existing)
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
	case err != nil:
		return fmt.Errorf("mongostore: lookup page: %w", err)
	case existing.Owner != "" && existing.Owner != key.Owner:
		return persist.ErrOwnerMismatch
	}

	owner := existing.Owner
	if owner == "" {
		owner = key.Owner
	}
	update := bson.M{
		"$set": bson.M{
			"owner":      owner,
			"draft":      string(data),
			"updated_at": s.now().UTC(),
		},
		"$setOnInsert": bson.M{"_id": uuid.NewString()},
	}
	_, err = s.coll.UpdateOne(ctx, bson.M{"slug": key.Slug}, update, options.UpdateOne().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("mongostore: upsert page: %w", err)
	}
	s.logger.Debug().Str("slug", key.Slug).Int("bytes", len(data)).Msg("mongostore: page saved")
	return nil
}

func (s *Store) Load(ctx context.Context, slugOrID string) (document.Draft, error) {
	page, err := s.Page(ctx, slugOrID)
	if err != nil {
		return document.Draft{}, err
	}
	return page.Draft, nil
}

// Page returns the stored page with its metadata.
func (s *Store) Page(ctx context.Context, slugOrID string) (persist.Page, error) {
	var rec record
	err := s.coll.FindOne(ctx, lookupFilter(slugOrID)).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return persist.Page{}, &document.NotFoundError{Kind: "page", ID: slugOrID}
	}
	if err != nil {
		return persist.Page{}, fmt.Errorf("mongostore: load page: %w", err)
	}
	return toPage(rec)
}

func lookupFilter(slugOrID string) bson.M {
	return bson.M{"$or": bson.A{
		bson.M{"slug": slugOrID},
		bson.M{"_id": slugOrID},
	}}
}

func toPage(rec record) (persist.Page, error) {
	d, err := document.Decode([]byte(rec.Draft))
	if err != nil {
		return persist.Page{}, fmt.Errorf("mongostore: decode page %s: %w", rec.Slug, err)
	}
	return persist.Page{
		ID:        rec.ID,
		Owner:     rec.Owner,
		Slug:      rec.Slug,
		Draft:     d,
		UpdatedAt: rec.UpdatedAt,
	}, nil
}
