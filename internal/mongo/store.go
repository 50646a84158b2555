// Package mongo implements types.Store on MongoDB. Each model is a
// collection, the document id is stored as _id, and ConditionalPatch is a
// single FindOneAndUpdate with $addToSet or $pull, atomic on the server.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/contextref/pkg/types"
)

const idField = "_id"

// Store is a types.Store backed by one MongoDB database.
type Store struct {
	mu     sync.RWMutex
	closed bool
	client *mongo.Client
	db     *mongo.Database
	log    *zap.SugaredLogger
}

var _ types.Store = (*Store)(nil)

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the store logger.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(s *Store) { s.log = l }
}

// Open connects to uri, pings the server and uses database.
func Open(ctx context.Context, uri, database string, opts ...Option) (*Store, error) {
	if uri == "" {
		return nil, types.ErrMongoURIEmpty
	}
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connecting to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("pinging MongoDB: %w", err)
	}

	s := &Store{client: client, db: client.Database(database), log: zap.NewNop().Sugar()}
	for _, opt := range opts {
		opt(s)
	}
	s.log.Debugw("mongo store opened", "database", database)
	return s, nil
}

func (s *Store) collection(name string) (*mongo.Collection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, types.ErrStoreClosed
	}
	return s.db.Collection(name), nil
}

func byID(id string) bson.M {
	return bson.M{idField: id}
}

// Insert stores a new document.
func (s *Store) Insert(ctx context.Context, collection, id string, fields types.Fields) error {
	if id == "" {
		return types.ErrInvalidID
	}
	coll, err := s.collection(collection)
	if err != nil {
		return err
	}
	doc := bson.M{idField: id}
	for k, v := range fields {
		doc[k] = v
	}
	if _, err := coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %s/%s", types.ErrDuplicateID, collection, id)
		}
		return fmt.Errorf("inserting %s/%s: %w", collection, id, err)
	}
	return nil
}

// Update sets and unsets fields on an existing document.
func (s *Store) Update(ctx context.Context, collection, id string, set types.Fields, unset []string) error {
	coll, err := s.collection(collection)
	if err != nil {
		return err
	}
	update := updateDoc(set, unset)
	if len(update) == 0 {
		n, err := coll.CountDocuments(ctx, byID(id))
		if err != nil {
			return err
		}
		if n == 0 {
			return types.ErrNotFound
		}
		return nil
	}
	res, err := coll.UpdateOne(ctx, byID(id), update)
	if err != nil {
		return fmt.Errorf("updating %s/%s: %w", collection, id, err)
	}
	if res.MatchedCount == 0 {
		return types.ErrNotFound
	}
	return nil
}

// updateDoc builds the $set/$unset document, omitting empty operators.
func updateDoc(set types.Fields, unset []string) bson.M {
	update := bson.M{}
	if len(set) > 0 {
		fields := bson.M{}
		for k, v := range set {
			fields[k] = v
		}
		update["$set"] = fields
	}
	if len(unset) > 0 {
		fields := bson.M{}
		for _, k := range unset {
			fields[k] = ""
		}
		update["$unset"] = fields
	}
	return update
}

// Get returns the document body.
func (s *Store) Get(ctx context.Context, collection, id string) (types.Fields, error) {
	coll, err := s.collection(collection)
	if err != nil {
		return nil, err
	}
	var doc bson.M
	if err := coll.FindOne(ctx, byID(id)).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, types.ErrNotFound
		}
		return nil, err
	}
	return toFields(doc), nil
}

// Remove deletes the document.
func (s *Store) Remove(ctx context.Context, collection, id string) error {
	coll, err := s.collection(collection)
	if err != nil {
		return err
	}
	res, err := coll.DeleteOne(ctx, byID(id))
	if err != nil {
		return fmt.Errorf("removing %s/%s: %w", collection, id, err)
	}
	if res.DeletedCount == 0 {
		return types.ErrNotFound
	}
	return nil
}

// Find returns matching documents ordered by id.
func (s *Store) Find(ctx context.Context, collection string, filter types.Fields) ([]types.Record, error) {
	coll, err := s.collection(collection)
	if err != nil {
		return nil, err
	}
	query := bson.M{}
	for k, v := range filter {
		query[k] = v
	}
	cur, err := coll.Find(ctx, query, options.Find().SetSort(bson.D{{Key: idField, Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("finding in %s: %w", collection, err)
	}
	var docs []bson.M
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}

	results := make([]types.Record, 0, len(docs))
	for _, d := range docs {
		id, _ := d[idField].(string)
		results = append(results, types.Record{ID: id, Fields: toFields(d)})
	}
	return results, nil
}

// ConditionalPatch applies patch with one FindOneAndUpdate.
func (s *Store) ConditionalPatch(ctx context.Context, collection, id string, patch types.Patch) (types.Fields, bool, error) {
	if patch.Field == "" {
		return nil, false, fmt.Errorf("%w: empty patch field", types.ErrInvalidData)
	}
	coll, err := s.collection(collection)
	if err != nil {
		return nil, false, err
	}
	update, err := patchDoc(patch)
	if err != nil {
		return nil, false, err
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc bson.M
	err = coll.FindOneAndUpdate(ctx, byID(id), update, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, false, nil
	}
	if err != nil {
		if isNotArray(err) {
			return nil, true, fmt.Errorf("%s: %w", patch.Field, types.ErrNotArray)
		}
		return nil, true, err
	}
	return toFields(doc), true, nil
}

func patchDoc(p types.Patch) (bson.M, error) {
	switch p.Op {
	case types.PatchPush:
		return bson.M{"$addToSet": bson.M{p.Field: p.Value}}, nil
	case types.PatchPull:
		return bson.M{"$pull": bson.M{p.Field: p.Value}}, nil
	default:
		return nil, fmt.Errorf("%w: unknown patch op %d", types.ErrInvalidData, p.Op)
	}
}

// isNotArray recognizes the server's refusal to apply an array operator to
// a scalar field.
func isNotArray(err error) bool {
	return strings.Contains(err.Error(), "non-array")
}

// toFields converts a decoded document into plain Go values and drops _id.
func toFields(doc bson.M) types.Fields {
	out := make(types.Fields, len(doc))
	for k, v := range doc {
		if k == idField {
			continue
		}
		out[k] = plain(v)
	}
	return out
}

func plain(v any) any {
	switch x := v.(type) {
	case bson.A:
		arr := make([]any, len(x))
		for i, e := range x {
			arr[i] = plain(e)
		}
		return arr
	case bson.M:
		m := make(map[string]any, len(x))
		for k, e := range x {
			m[k] = plain(e)
		}
		return m
	case bson.D:
		m := make(map[string]any, len(x))
		for _, e := range x {
			m[e.Key] = plain(e.Value)
		}
		return m
	default:
		return v
	}
}

// Close disconnects the client. Idempotent.
func (s *Store) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.client.Disconnect(ctx)
}
