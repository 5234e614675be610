package source

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/orgchart/pkg/cache"
	"github.com/matzehuels/orgchart/pkg/errors"
)

// Mongo defaults.
const (
	DefaultMongoDatabase   = "orgchart"
	DefaultMongoCollection = "positions"
)

// MongoConfig locates the positions collection.
type MongoConfig struct {
	URI        string
	Database   string
	Collection string
	Timeout    time.Duration // per Fetch; zero means 10s
	CacheTTL   time.Duration // how long fetched trees may be reused; zero disables caching
}

// MongoSource reads flat Position documents from a MongoDB collection.
// Documents use the Position bson field names (_id, parent_id, scope,
// period, ...). Siblings are ordered by an optional numeric "order" field,
// then by id.
type MongoSource struct {
	client  *mongo.Client
	coll    *mongo.Collection
	name    string
	timeout time.Duration
	ttl     time.Duration
	backoff cache.Backoff
}

// NewMongoSource connects to cfg.URI and pings the server.
func NewMongoSource(ctx context.Context, cfg MongoConfig) (*MongoSource, error) {
	if cfg.URI == "" {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "mongo uri is required")
	}
	if cfg.Database == "" {
		cfg.Database = DefaultMongoDatabase
	}
	if cfg.Collection == "" {
		cfg.Collection = DefaultMongoCollection
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "connect to mongo")
	}
	pingCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "ping mongo")
	}

	return &MongoSource{
		client:  client,
		coll:    client.Database(cfg.Database).Collection(cfg.Collection),
		name:    "mongo:" + cfg.Database + "." + cfg.Collection,
		timeout: cfg.Timeout,
		ttl:     cfg.CacheTTL,
		backoff: cache.DefaultBackoff,
	}, nil
}

func (s *MongoSource) Name() string { return s.name }

func (s *MongoSource) CacheTTL() time.Duration { return s.ttl }

// Fetch loads the positions matching key's scope and period and links them.
// Transient server errors are retried.
func (s *MongoSource) Fetch(ctx context.Context, key Key) (Result, error) {
	if err := errors.ValidateSelector("scope", key.Scope); err != nil {
		return Result{}, err
	}
	if err := errors.ValidateSelector("period", key.Period); err != nil {
		return Result{}, err
	}

	var positions []Position
	err := s.backoff.Do(ctx, func() error {
		qctx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()

		cur, err := s.coll.Find(qctx, Filter(key), options.Find().SetSort(bson.D{{Key: "order", Value: 1}, {Key: "_id", Value: 1}}))
		if err != nil {
			return classify(err)
		}
		positions = positions[:0]
		if err := cur.All(qctx, &positions); err != nil {
			return classify(err)
		}
		return nil
	})
	if err != nil {
		if cache.IsRetryable(err) {
			return Result{}, errors.Wrap(errors.ErrCodeNetwork, err, "query positions")
		}
		return Result{}, fmt.Errorf("query positions: %w", err)
	}
	return Build(positions, key.Focus)
}

// Filter builds the query document for key. Documents without a scope or
// period match every key.
func Filter(key Key) bson.M {
	var and bson.A
	if key.Scope != "" {
		and = append(and, bson.M{"$or": bson.A{
			bson.M{"scope": key.Scope},
			bson.M{"scope": bson.M{"$exists": false}},
		}})
	}
	if key.Period != "" {
		and = append(and, bson.M{"$or": bson.A{
			bson.M{"period": key.Period},
			bson.M{"period": bson.M{"$exists": false}},
		}})
	}
	if len(and) == 0 {
		return bson.M{}
	}
	return bson.M{"$and": and}
}

func classify(err error) error {
	if mongo.IsNetworkError(err) || mongo.IsTimeout(err) {
		return cache.Retryable(fmt.Errorf("%w: %v", cache.ErrNetwork, err))
	}
	return err
}

// Close disconnects from the server.
func (s *MongoSource) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

var (
	_ Source    = (*MongoSource)(nil)
	_ Cacheable = (*MongoSource)(nil)
)
