package storage

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/rl1809/jewelry-store/internal/core/domain"
)

const BackendMongo = "mongodb"

type MongoAdapter struct {
	client *mongo.Client
	db     *mongo.Database
}

// ConnectMongo dials the deployment and pings the primary. The caller's
// context bounds both steps.
func ConnectMongo(ctx context.Context, uri, database string) (*MongoAdapter, error) {
	opts := options.Client().
		ApplyURI(uri).
		SetBSONOptions(&options.BSONOptions{DefaultDocumentM: true})

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	return NewMongoAdapter(client, database), nil
}

func NewMongoAdapter(client *mongo.Client, database string) *MongoAdapter {
	return &MongoAdapter{client: client, db: client.Database(database)}
}

// EnsureIndexes creates the unique lookup index on id for every kind plus the
// catalog search indexes on products. Documents without an id are left out of
// the unique index.
func (m *MongoAdapter) EnsureIndexes(ctx context.Context) error {
	for _, kind := range domain.Kinds {
		models := []mongo.IndexModel{
			{
				Keys: bson.D{{Key: domain.FieldID, Value: 1}},
				Options: options.Index().
					SetUnique(true).
					SetPartialFilterExpression(bson.M{domain.FieldID: bson.M{"$exists": true}}),
			},
		}
		if kind == domain.KindProducts {
			models = append(models,
				mongo.IndexModel{Keys: bson.D{{Key: "name", Value: "text"}, {Key: "description", Value: "text"}}},
				mongo.IndexModel{Keys: bson.D{{Key: "category", Value: 1}}},
				mongo.IndexModel{Keys: bson.D{{Key: "store", Value: 1}}},
			)
		}
		if _, err := m.collection(kind).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create %s indexes: %w", kind, err)
		}
	}
	return nil
}

func (m *MongoAdapter) List(ctx context.Context, kind domain.Kind) ([]domain.Record, error) {
	cursor, err := m.collection(kind).Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", kind, err)
	}

	var docs []bson.M
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode %s: %w", kind, err)
	}

	records := make([]domain.Record, 0, len(docs))
	for _, doc := range docs {
		records = append(records, domain.Record(doc))
	}
	return records, nil
}

func (m *MongoAdapter) Get(ctx context.Context, kind domain.Kind, id string) (domain.Record, error) {
	coll := m.collection(kind)

	var doc bson.M
	err := lookup(id, func(filter bson.M) (bool, error) {
		err := coll.FindOne(ctx, filter).Decode(&doc)
		if errors.Is(err, mongo.ErrNoDocuments) {
			return false, nil
		}
		return err == nil, err
	})
	if err != nil {
		return nil, wrapLookupErr("find", kind, err)
	}
	return domain.Record(doc), nil
}

func (m *MongoAdapter) Insert(ctx context.Context, kind domain.Kind, record domain.Record) (domain.Record, error) {
	res, err := m.collection(kind).InsertOne(ctx, bson.M(record))
	if mongo.IsDuplicateKeyError(err) {
		return nil, domain.ErrConflict
	}
	if err != nil {
		return nil, fmt.Errorf("insert %s: %w", kind, err)
	}

	stored := record.Clone()
	stored[domain.FieldNativeID] = res.InsertedID
	return stored, nil
}

func (m *MongoAdapter) Update(ctx context.Context, kind domain.Kind, id string, patch domain.Record) (domain.Record, error) {
	coll := m.collection(kind)
	update := bson.M{"$set": bson.M(patch)}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc bson.M
	err := lookup(id, func(filter bson.M) (bool, error) {
		err := coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
		if errors.Is(err, mongo.ErrNoDocuments) {
			return false, nil
		}
		return err == nil, err
	})
	if err != nil {
		return nil, wrapLookupErr("update", kind, err)
	}
	return domain.Record(doc), nil
}

func (m *MongoAdapter) Remove(ctx context.Context, kind domain.Kind, id string) error {
	coll := m.collection(kind)

	err := lookup(id, func(filter bson.M) (bool, error) {
		res, err := coll.DeleteOne(ctx, filter)
		if err != nil {
			return false, err
		}
		return res.DeletedCount > 0, nil
	})
	return wrapLookupErr("delete", kind, err)
}

func (m *MongoAdapter) Backend() string { return BackendMongo }

func (m *MongoAdapter) Live() bool { return true }

func (m *MongoAdapter) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

func (m *MongoAdapter) collection(kind domain.Kind) *mongo.Collection {
	return m.db.Collection(string(kind))
}

// lookup runs op against the id field and, when that matches nothing, against
// _id. The second pass only happens if id is a valid ObjectID hex string.
func lookup(id string, op func(filter bson.M) (bool, error)) error {
	found, err := op(bson.M{domain.FieldID: id})
	if err != nil || found {
		return err
	}

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrInvalidID
	}

	found, err = op(bson.M{domain.FieldNativeID: oid})
	if err != nil {
		return err
	}
	if !found {
		return domain.ErrNotFound
	}
	return nil
}

// wrapLookupErr folds malformed ids into not-found and wraps backend failures.
func wrapLookupErr(verb string, kind domain.Kind, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrInvalidID):
		return domain.ErrNotFound
	default:
		return fmt.Errorf("%s %s: %w", verb, kind, err)
	}
}
