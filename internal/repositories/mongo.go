package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"example.com/backstage/services/supplychain/internal/models"
)

// Collection names used in the document store
const (
	MaterialsCollection    = "materials"
	TransactionsCollection = "transactions"
	ShipmentsCollection    = "shipments"
	ParticipantsCollection = "participants"
)

// NewMongoRepositories builds every repository on top of a MongoDB database
func NewMongoRepositories(db *mongo.Database) *Repositories {
	return &Repositories{
		Materials:    NewMongoMaterialRepository(db),
		Transactions: NewMongoTransactionRepository(db),
		Shipments:    NewMongoShipmentRepository(db),
		Participants: NewMongoParticipantRepository(db),
	}
}

// EnsureMongoIndexes creates the lookup and uniqueness indexes
func EnsureMongoIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := map[string][]mongo.IndexModel{
		MaterialsCollection: {
			{Keys: bson.D{{Key: "blockchainId", Value: 1}}},
		},
		TransactionsCollection: {
			{Keys: bson.D{{Key: "materialId", Value: 1}, {Key: "timestamp", Value: -1}}},
			{Keys: bson.D{{Key: "timestamp", Value: -1}}},
		},
		ShipmentsCollection: {
			{Keys: bson.D{{Key: "trackingId", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
	}

	for collection, idx := range indexes {
		if _, err := db.Collection(collection).Indexes().CreateMany(ctx, idx); err != nil {
			return errors.Wrapf(err, "failed to create indexes on %s", collection)
		}
	}
	return nil
}

// translateMongo maps driver errors onto the repository sentinel errors
func translateMongo(err error, msg string) error {
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return errors.Wrap(ErrNotFound, msg)
	case mongo.IsDuplicateKeyError(err):
		return errors.Wrap(ErrDuplicateKey, msg)
	default:
		return errors.Wrap(err, msg)
	}
}

// findAll runs a find query and decodes every document into out
func findAll(ctx context.Context, coll *mongo.Collection, filter interface{}, opts *options.FindOptions, out interface{}) error {
	cursor, err := coll.Find(ctx, filter, opts)
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)
	return cursor.All(ctx, out)
}

// MongoMaterialRepository stores materials in a collection
type MongoMaterialRepository struct {
	coll *mongo.Collection
}

// NewMongoMaterialRepository creates a new repository
func NewMongoMaterialRepository(db *mongo.Database) *MongoMaterialRepository {
	return &MongoMaterialRepository{coll: db.Collection(MaterialsCollection)}
}

// Create inserts a material, assigning an ID when missing
func (r *MongoMaterialRepository) Create(ctx context.Context, material *models.Material) error {
	if material.ID == "" {
		material.ID = uuid.NewString()
	}
	if material.CreatedAt.IsZero() {
		material.CreatedAt = time.Now().UTC()
	}
	if _, err := r.coll.InsertOne(ctx, material); err != nil {
		return translateMongo(err, "failed to create material")
	}
	return nil
}

// List returns every material
func (r *MongoMaterialRepository) List(ctx context.Context) ([]models.Material, error) {
	materials := make([]models.Material, 0)
	if err := findAll(ctx, r.coll, bson.D{}, nil, &materials); err != nil {
		return nil, translateMongo(err, "failed to list materials")
	}
	return materials, nil
}

// MongoTransactionRepository stores the transaction log in a collection
type MongoTransactionRepository struct {
	coll *mongo.Collection
}

// NewMongoTransactionRepository creates a new repository
func NewMongoTransactionRepository(db *mongo.Database) *MongoTransactionRepository {
	return &MongoTransactionRepository{coll: db.Collection(TransactionsCollection)}
}

// Create appends a transaction, assigning an ID when missing
func (r *MongoTransactionRepository) Create(ctx context.Context, transaction *models.Transaction) error {
	if transaction.ID == "" {
		transaction.ID = uuid.NewString()
	}
	if _, err := r.coll.InsertOne(ctx, transaction); err != nil {
		return translateMongo(err, "failed to create transaction")
	}
	return nil
}

// List returns every transaction, newest first
func (r *MongoTransactionRepository) List(ctx context.Context) ([]models.Transaction, error) {
	transactions := make([]models.Transaction, 0)
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	if err := findAll(ctx, r.coll, bson.D{}, opts, &transactions); err != nil {
		return nil, translateMongo(err, "failed to list transactions")
	}
	return transactions, nil
}

// ListByMaterial returns the transactions of one material, newest first
func (r *MongoTransactionRepository) ListByMaterial(ctx context.Context, materialID int64) ([]models.Transaction, error) {
	transactions := make([]models.Transaction, 0)
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	filter := bson.D{{Key: "materialId", Value: materialID}}
	if err := findAll(ctx, r.coll, filter, opts, &transactions); err != nil {
		return nil, translateMongo(err, "failed to list material transactions")
	}
	return transactions, nil
}

// MongoShipmentRepository stores shipments in a collection
type MongoShipmentRepository struct {
	coll *mongo.Collection
}

// NewMongoShipmentRepository creates a new repository
func NewMongoShipmentRepository(db *mongo.Database) *MongoShipmentRepository {
	return &MongoShipmentRepository{coll: db.Collection(ShipmentsCollection)}
}

// Create inserts a shipment, assigning an ID when missing
func (r *MongoShipmentRepository) Create(ctx context.Context, shipment *models.Shipment) error {
	if shipment.ID == "" {
		shipment.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if shipment.CreatedAt.IsZero() {
		shipment.CreatedAt = now
	}
	shipment.UpdatedAt = now
	if _, err := r.coll.InsertOne(ctx, shipment); err != nil {
		return translateMongo(err, "failed to create shipment")
	}
	return nil
}

// List returns every shipment
func (r *MongoShipmentRepository) List(ctx context.Context) ([]models.Shipment, error) {
	shipments := make([]models.Shipment, 0)
	if err := findAll(ctx, r.coll, bson.D{}, nil, &shipments); err != nil {
		return nil, translateMongo(err, "failed to list shipments")
	}
	return shipments, nil
}

// UpdateStatus overwrites the status of the shipment with the given tracking ID
func (r *MongoShipmentRepository) UpdateStatus(ctx context.Context, trackingID, status string) (*models.Shipment, error) {
	filter := bson.D{{Key: "trackingId", Value: trackingID}}
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "status", Value: status},
		{Key: "updatedAt", Value: time.Now().UTC()},
	}}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var shipment models.Shipment
	if err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&shipment); err != nil {
		return nil, translateMongo(err, "failed to update shipment status")
	}
	return &shipment, nil
}

// MongoParticipantRepository stores participants in a collection
type MongoParticipantRepository struct {
	coll *mongo.Collection
}

// NewMongoParticipantRepository creates a new repository
func NewMongoParticipantRepository(db *mongo.Database) *MongoParticipantRepository {
	return &MongoParticipantRepository{coll: db.Collection(ParticipantsCollection)}
}

// Create inserts a participant, assigning an ID when missing
func (r *MongoParticipantRepository) Create(ctx context.Context, participant *models.Participant) error {
	if participant.ID == "" {
		participant.ID = uuid.NewString()
	}
	if participant.CreatedAt.IsZero() {
		participant.CreatedAt = time.Now().UTC()
	}
	if _, err := r.coll.InsertOne(ctx, participant); err != nil {
		return translateMongo(err, "failed to create participant")
	}
	return nil
}

// List returns every participant
func (r *MongoParticipantRepository) List(ctx context.Context) ([]models.Participant, error) {
	participants := make([]models.Participant, 0)
	if err := findAll(ctx, r.coll, bson.D{}, nil, &participants); err != nil {
		return nil, translateMongo(err, "failed to list participants")
	}
	return participants, nil
}
