package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"user-crud-service/internal/domain/user"
	apperrors "user-crud-service/pkg/errors"
	"user-crud-service/pkg/logger"
)

// CollectionName is the collection that stores user documents.
const CollectionName = "users"

// UserRepoMongo implements the user Repository on a MongoDB collection.
type UserRepoMongo struct {
	coll *mongo.Collection
	log  *zap.Logger
}

// NewUserRepoMongo creates a new instance of UserRepoMongo backed by db.users.
func NewUserRepoMongo(db *mongo.Database, log *zap.Logger) *UserRepoMongo {
	return &UserRepoMongo{coll: db.Collection(CollectionName), log: log}
}

// UserDocument is the stored shape of a user.
type UserDocument struct {
	ID    primitive.ObjectID `bson:"_id,omitempty"`
	Name  string             `bson:"name"`
	Email string             `bson:"email"`
	Age   *int               `bson:"age,omitempty"`
}

func (d *UserDocument) toDomain() *user.User {
	return &user.User{
		ID:    d.ID.Hex(),
		Name:  d.Name,
		Email: d.Email,
		Age:   d.Age,
	}
}

// parseID converts a hex identifier. Malformed ids are reported as plain
// errors so callers decide their status.
func parseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("invalid user id %q: %w", id, err)
	}
	return oid, nil
}

// classifyWriteError turns driver errors raised by writes into app errors.
func classifyWriteError(op string, err error) error {
	if mongo.IsDuplicateKeyError(err) {
		return apperrors.NewValidationError("email", "already exists")
	}
	return apperrors.NewInternalError(fmt.Sprintf("failed to %s user", op), err)
}

// Create inserts a new document; the driver assigns the ObjectID.
func (r *UserRepoMongo) Create(ctx context.Context, u *user.User) (*user.User, error) {
	if u == nil {
		return nil, errors.New("user cannot be nil")
	}

	doc := UserDocument{Name: u.Name, Email: u.Email, Age: u.Age}

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		logger.WithContext(ctx, r.log).Error("failed to insert user", zap.Error(err), zap.String("email", u.Email))
		return nil, classifyWriteError("create", err)
	}

	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, apperrors.NewInternalError("failed to create user", fmt.Errorf("unexpected inserted id type %T", res.InsertedID))
	}
	doc.ID = oid

	logger.WithContext(ctx, r.log).Info("user created in mongo", zap.String("id", oid.Hex()))
	return doc.toDomain(), nil
}

// List returns all documents in natural order.
func (r *UserRepoMongo) List(ctx context.Context) ([]user.User, error) {
	cursor, err := r.coll.Find(ctx, bson.D{})
	if err != nil {
		logger.WithContext(ctx, r.log).Error("failed to list users", zap.Error(err))
		return nil, apperrors.NewInternalError("failed to list users", err)
	}

	var docs []UserDocument
	if err := cursor.All(ctx, &docs); err != nil {
		logger.WithContext(ctx, r.log).Error("failed to decode users", zap.Error(err))
		return nil, apperrors.NewInternalError("failed to list users", err)
	}

	users := make([]user.User, len(docs))
	for i := range docs {
		users[i] = *docs[i].toDomain()
	}
	return users, nil
}

// GetByID fetches a single document by ObjectID.
func (r *UserRepoMongo) GetByID(ctx context.Context, id string) (*user.User, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}

	var doc UserDocument
	if err := r.coll.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&doc); err != nil {
		return nil, r.lookupError(ctx, "get", id, err)
	}
	return doc.toDomain(), nil
}

// Update sets only the supplied fields and returns the document after the
// update. An empty patch reads the current document.
func (r *UserRepoMongo) Update(ctx context.Context, id string, patch user.Patch) (*user.User, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	filter := bson.D{{Key: "_id", Value: oid}}

	if patch.IsEmpty() {
		var doc UserDocument
		if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
			return nil, r.lookupError(ctx, "update", id, err)
		}
		return doc.toDomain(), nil
	}

	set := bson.D{}
	if patch.Name != nil {
		set = append(set, bson.E{Key: "name", Value: *patch.Name})
	}
	if patch.Email != nil {
		set = append(set, bson.E{Key: "email", Value: *patch.Email})
	}
	if patch.Age != nil {
		set = append(set, bson.E{Key: "age", Value: *patch.Age})
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc UserDocument
	err = r.coll.FindOneAndUpdate(ctx, filter, bson.D{{Key: "$set", Value: set}}, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, r.lookupError(ctx, "update", id, err)
		}
		logger.WithContext(ctx, r.log).Error("failed to update user", zap.String("id", id), zap.Error(err))
		return nil, classifyWriteError("update", err)
	}

	logger.WithContext(ctx, r.log).Info("user updated in mongo", zap.String("id", id))
	return doc.toDomain(), nil
}

// Delete removes a document and returns what was removed.
func (r *UserRepoMongo) Delete(ctx context.Context, id string) (*user.User, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}

	var doc UserDocument
	if err := r.coll.FindOneAndDelete(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&doc); err != nil {
		return nil, r.lookupError(ctx, "delete", id, err)
	}

	logger.WithContext(ctx, r.log).Info("user deleted in mongo", zap.String("id", id))
	return doc.toDomain(), nil
}

// EnsureIndexes creates the unique email index when it is missing.
func (r *UserRepoMongo) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("email_1"),
	})
	if err != nil {
		return fmt.Errorf("failed to create email index: %w", err)
	}
	return nil
}

// Ping reports whether the primary is reachable.
func (r *UserRepoMongo) Ping(ctx context.Context) error {
	return r.coll.Database().Client().Ping(ctx, nil)
}

func (r *UserRepoMongo) lookupError(ctx context.Context, op, id string, err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		logger.WithContext(ctx, r.log).Debug("user not found", zap.String("op", op), zap.String("id", id))
		return apperrors.ErrUserNotFound
	}
	logger.WithContext(ctx, r.log).Error("failed to "+op+" user", zap.String("id", id), zap.Error(err))
	return apperrors.NewInternalError(fmt.Sprintf("failed to %s user", op), err)
}
