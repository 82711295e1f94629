// file: internals/store/mongostore/mongostore.go
package mongostore

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"edudesk_backend/internals/store"
)

// Field meta yang disisipkan ke tiap dokumen; dibuang lagi saat dibaca.
const (
	fieldID     = "_id"
	fieldTenant = "_tenant"
	fieldDocID  = "_docId"
)

type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

var _ store.Backend = (*Store)(nil)

func New(client *mongo.Client, database string) *Store {
	return &Store{client: client, db: client.Database(database)}
}

func docKey(tenant, id string) string { return tenant + "/" + id }

func (s *Store) Get(ctx context.Context, collection, tenant, id string) ([]byte, error) {
	var raw bson.M
	err := s.db.Collection(collection).FindOne(ctx, bson.M{fieldID: docKey(tenant, id)}).Decode(&raw)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%s/%s/%s: %w", collection, tenant, id, store.ErrNotFound)
		}
		return nil, err
	}
	return toJSON(raw)
}

func (s *Store) Insert(ctx context.Context, collection, tenant, id string, body []byte) error {
	doc, err := fromJSON(body, tenant, id)
	if err != nil {
		return err
	}
	if _, err := s.db.Collection(collection).InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%s/%s/%s: %w", collection, tenant, id, store.ErrDuplicate)
		}
		return err
	}
	return nil
}

func (s *Store) Put(ctx context.Context, collection, tenant, id string, body []byte) error {
	doc, err := fromJSON(body, tenant, id)
	if err != nil {
		return err
	}
	_, err = s.db.Collection(collection).ReplaceOne(ctx,
		bson.M{fieldID: docKey(tenant, id)},
		doc,
		options.Replace().SetUpsert(true),
	)
	return err
}

func (s *Store) Find(ctx context.Context, collection, tenant string, q store.Query) ([][]byte, int64, error) {
	if err := q.Validate(); err != nil {
		return nil, 0, err
	}
	filter := bson.M{fieldTenant: tenant}
	for _, f := range q.Filters {
		filter[f.Field] = f.Value
	}

	coll := s.db.Collection(collection)
	total, err := coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find()
	if q.SortBy != "" {
		dir := 1
		if q.Desc {
			dir = -1
		}
		opts.SetSort(bson.D{{Key: q.SortBy, Value: dir}, {Key: fieldID, Value: 1}})
	} else {
		opts.SetSort(bson.D{{Key: fieldID, Value: 1}})
	}
	if q.Offset > 0 {
		opts.SetSkip(int64(q.Offset))
	}
	if q.Limit > 0 {
		opts.SetLimit(int64(q.Limit))
	}

	cur, err := coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)

	var out [][]byte
	for cur.Next(ctx) {
		var raw bson.M
		if err := cur.Decode(&raw); err != nil {
			return nil, 0, err
		}
		b, err := toJSON(raw)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, b)
	}
	if err := cur.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (s *Store) Delete(ctx context.Context, collection, tenant, id string) error {
	res, err := s.db.Collection(collection).DeleteOne(ctx, bson.M{fieldID: docKey(tenant, id)})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("%s/%s/%s: %w", collection, tenant, id, store.ErrNotFound)
	}
	return nil
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

/* =======================================================================
   JSON <-> BSON
======================================================================= */

func fromJSON(body []byte, tenant, id string) (bson.M, error) {
	var doc bson.M
	if err := bson.UnmarshalExtJSON(body, false, &doc); err != nil {
		return nil, fmt.Errorf("bson from json: %w", err)
	}
	doc[fieldID] = docKey(tenant, id)
	doc[fieldTenant] = tenant
	doc[fieldDocID] = id
	return doc, nil
}

func toJSON(raw bson.M) ([]byte, error) {
	delete(raw, fieldID)
	delete(raw, fieldTenant)
	delete(raw, fieldDocID)
	b, err := bson.MarshalExtJSON(raw, false, false)
	if err != nil {
		return nil, fmt.Errorf("json from bson: %w", err)
	}
	return b, nil
}
