package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Mongo is a Backend over one MongoDB collection and one client session.
//
// Collection schema:
//
//	{
//	  _id:        string,    // key
//	  value:      []byte,
//	  updated_at: time.Time,
//	}
//
// Sessions must not be used by more than one goroutine at a time; every
// operation runs inside the backend's session.
type Mongo struct {
	coll *mongo.Collection
	sess mongo.Session
}

var _ Backend = (*Mongo)(nil)

type mongoDoc struct {
	Key       string    `bson:"_id"`
	Value     []byte    `bson:"value"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// NewMongo starts a session on client. dbName defaults to "concurrent",
// collName to "kv". Close ends the session but leaves client connected.
func NewMongo(ctx context.Context, client *mongo.Client, dbName, collName string) (*Mongo, error) {
	if dbName == "" {
		dbName = "concurrent"
	}
	if collName == "" {
		collName = "kv"
	}
	if err := validateName("database", dbName, "required,sqlident"); err != nil {
		return nil, err
	}
	if err := validateName("collection", collName, "required,sqlident"); err != nil {
		return nil, err
	}

	sess, err := client.StartSession()
	if err != nil {
		return nil, fmt.Errorf("store: mongo session: %w", err)
	}
	return &Mongo{
		coll: client.Database(dbName).Collection(collName),
		sess: sess,
	}, nil
}

func (m *Mongo) ctx(ctx context.Context) context.Context {
	return mongo.NewSessionContext(ctx, m.sess)
}

func (m *Mongo) Get(ctx context.Context, key string) ([]byte, error) {
	var doc mongoDoc
	err := m.coll.FindOne(m.ctx(ctx), bson.M{"_id": key}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if doc.Value == nil {
		doc.Value = []byte{}
	}
	return doc.Value, nil
}

func (m *Mongo) Put(ctx context.Context, key string, value []byte) error {
	if value == nil {
		value = []byte{}
	}
	doc := mongoDoc{Key: key, Value: value, UpdatedAt: time.Now().UTC()}
	_, err := m.coll.ReplaceOne(m.ctx(ctx), bson.M{"_id": key}, doc, options.Replace().SetUpsert(true))
	return err
}

func (m *Mongo) Delete(ctx context.Context, key string) error {
	res, err := m.coll.DeleteOne(m.ctx(ctx), bson.M{"_id": key})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *Mongo) Keys(ctx context.Context) ([]string, error) {
	sctx := m.ctx(ctx)
	opts := options.Find().
		SetProjection(bson.M{"_id": 1}).
		SetSort(bson.D{{Key: "_id", Value: 1}})

	cur, err := m.coll.Find(sctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(sctx)

	keys := []string{}
	for cur.Next(sctx) {
		var doc struct {
			Key string `bson:"_id"`
		}
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		keys = append(keys, doc.Key)
	}
	return keys, cur.Err()
}

func (m *Mongo) Close() error {
	m.sess.EndSession(context.Background())
	return nil
}
