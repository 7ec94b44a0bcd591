package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/pburman754/Project-ChatApp/internal/domain"
)

func NewMongoClient(ctx context.Context, uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return mongo.Connect(ctx, options.Client().ApplyURI(uri))
}

// MongoMessages implements MessageStore on a mongo collection.
type MongoMessages struct {
	coll *mongo.Collection
}

func NewMongoMessages(coll *mongo.Collection) *MongoMessages {
	ix := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "from", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("from_created_idx"),
		},
		{
			Keys:    bson.D{{Key: "to", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("to_created_idx"),
		},
	}
	_, _ = coll.Indexes().CreateMany(context.Background(), ix)
	return &MongoMessages{coll: coll}
}

func (r *MongoMessages) Create(ctx context.Context, m *domain.Message) error {
	_, err := r.coll.InsertOne(ctx, m)
	return err
}

func (r *MongoMessages) GetByID(ctx context.Context, id string) (*domain.Message, error) {
	var m domain.Message
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&m); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (r *MongoMessages) UpdateText(ctx context.Context, id, text string) (*domain.Message, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	res := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"msg": text}}, opts)
	var m domain.Message
	if err := res.Decode(&m); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

// AdvanceStatus uses the status field itself as the compare-and-swap guard:
// the update filter only matches documents still in an allowed prior state,
// so two concurrent transitions on one id cannot interleave into a
// regression.
func (r *MongoMessages) AdvanceStatus(ctx context.Context, id string, next domain.Status) (*domain.Message, bool, error) {
	allowed := domain.AllowedFrom(next)
	if len(allowed) == 0 {
		cur, err := r.GetByID(ctx, id)
		return cur, false, err
	}
	filter := bson.M{"_id": id, "status": bson.M{"$in": allowed}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	res := r.coll.FindOneAndUpdate(ctx, filter, bson.M{"$set": bson.M{"status": next}}, opts)

	var m domain.Message
	err := res.Decode(&m)
	if err == nil {
		return &m, true, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, false, err
	}
	// Nothing matched: either the record is gone or it is already at or
	// past `next`. The latter is a stale duplicate, reported as a no-op.
	cur, gerr := r.GetByID(ctx, id)
	if gerr != nil {
		return nil, false, gerr
	}
	return cur, false, nil
}

func (r *MongoMessages) DeleteByID(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoMessages) DeleteConversation(ctx context.Context, key domain.ConversationKey) (int64, error) {
	res, err := r.coll.DeleteMany(ctx, conversationFilter(key))
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (r *MongoMessages) FindByParticipant(ctx context.Context, username string) ([]*domain.Message, error) {
	filter := bson.M{"$or": bson.A{bson.M{"from": username}, bson.M{"to": username}}}
	return r.find(ctx, filter)
}

func (r *MongoMessages) FindConversation(ctx context.Context, key domain.ConversationKey) ([]*domain.Message, error) {
	return r.find(ctx, conversationFilter(key))
}

func (r *MongoMessages) find(ctx context.Context, filter bson.M) ([]*domain.Message, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []*domain.Message{}
	for cur.Next(ctx) {
		var m domain.Message
		if err := cur.Decode(&m); err != nil {
			return nil, err
		}
		out = append(out, &m)
	}
	return out, cur.Err()
}

func conversationFilter(key domain.ConversationKey) bson.M {
	return bson.M{"$or": bson.A{
		bson.M{"from": key.A, "to": key.B},
		bson.M{"from": key.B, "to": key.A},
	}}
}

// MongoIdentities implements IdentityStore on the users collection owned by
// the external auth service; only _id is ever read from it.
type MongoIdentities struct {
	coll *mongo.Collection
}

func NewMongoIdentities(coll *mongo.Collection) *MongoIdentities {
	return &MongoIdentities{coll: coll}
}

func (r *MongoIdentities) LookupUserID(ctx context.Context, username string) (string, error) {
	opts := options.FindOne().SetProjection(bson.M{"_id": 1})
	var doc struct {
		ID string `bson:"_id"`
	}
	if err := r.coll.FindOne(ctx, bson.M{"username": username}, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return "", ErrNotFound
		}
		return "", err
	}
	return doc.ID, nil
}
