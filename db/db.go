package db

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// The queries object for interacting with database and cache
type Queries struct {
	client *mongo.Client
	DB     *mongo.Database
	Cache  *redis.Client
}

// Constructor for Queries
func NewQueries() *Queries {
	return &Queries{}
}

// Connect to MongoDB and select the working database
func (queries *Queries) ConnectDB(ctx context.Context, uri, dbName string) error {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return err
	}

	if err := client.Ping(ctx, nil); err != nil {
		return err
	}

	queries.client = client
	queries.DB = client.Database(dbName)
	return nil
}

// Disconnect from MongoDB
func (queries *Queries) Close(ctx context.Context) error {
	if queries.client == nil {
		return nil
	}
	return queries.client.Disconnect(ctx)
}

// EnsureIndexes creates the indexes the hot paths rely on. Safe to call on
// every startup.
func (queries *Queries) EnsureIndexes(ctx context.Context) error {
	_, err := queries.DB.Collection("events").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "event_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("events_event_id_unique"),
		},
		{
			Keys:    bson.D{{Key: "current_attendees", Value: -1}},
			Options: options.Index().SetName("events_attendance"),
		},
	})
	if err != nil {
		return err
	}

	_, err = queries.DB.Collection("tickets").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "session_id", Value: 1}},
			Options: options.Index().SetSparse(true).SetName("tickets_session_id"),
		},
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index().SetName("tickets_user_id"),
		},
		{
			Keys:    bson.D{{Key: "ticket_number", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("tickets_number_unique"),
		},
	})
	if err != nil {
		return err
	}

	_, err = queries.DB.Collection("notifications").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "user_id", Value: 1}},
		Options: options.Index().SetName("notifications_user_id"),
	})
	return err
}

// Connect to Redis
func (queries *Queries) ConnectRedis(ctx context.Context, opt *redis.Options) error {
	queries.Cache = redis.NewClient(opt)
	_, err := queries.Cache.Ping(ctx).Result()
	if err != nil {
		return err
	}
	return nil
}

// Set cache value. If expired = 0, it will set the expiration time to 1 hour instead of no expiration
func (queries *Queries) SetCache(ctx context.Context, key string, val string, expired time.Duration) {
	if queries.Cache == nil {
		return
	}
	if expired == 0 {
		expired = time.Hour
	}
	queries.Cache.Set(ctx, key, val, expired)
}

// DropCache removes a cached value, used when the underlying data changes.
func (queries *Queries) DropCache(ctx context.Context, key string) {
	if queries.Cache == nil {
		return
	}
	queries.Cache.Del(ctx, key)
}

type ErrorCacheMiss struct {
	Message string
}

func (e *ErrorCacheMiss) Error() string {
	return "cache miss"
}

// Get cache value
func (queries *Queries) GetCache(ctx context.Context, key string) (string, error) {
	if queries.Cache == nil {
		return "", &ErrorCacheMiss{Message: "cache not configured"}
	}

	val, err := queries.Cache.Get(ctx, key).Result()

	// If actually found value, return the val
	if err == nil {
		return val, nil
	}

	// If redis error
	if err != redis.Nil {
		return "", err
	}

	// If the value of the key simply don't exists, or expired
	return "", &ErrorCacheMiss{Message: "cache miss"}
}
