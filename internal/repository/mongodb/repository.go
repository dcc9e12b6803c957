package mongodb

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/mamadbah2/labstock/internal/domain/models"
	"github.com/mamadbah2/labstock/internal/repository"
)

// headerPosition marks the document that carries the column order.
const headerPosition = -1

// rowDocument is one stored document. The header document has position -1 and
// only Columns set; data rows count up from 0.
type rowDocument struct {
	Position int               `bson:"position"`
	Columns  []string          `bson:"columns,omitempty"`
	Fields   map[string]string `bson:"fields,omitempty"`
	Quantity int               `bson:"quantity"`
}

// MongoDBRepository stores each inventory kind in its own collection.
type MongoDBRepository struct {
	client *mongo.Client
	dbName string
	logger *zap.Logger
}

// NewMongoDBRepository connects to MongoDB and verifies the connection.
func NewMongoDBRepository(ctx context.Context, uri string, dbName string, logger *zap.Logger) (*MongoDBRepository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	// Ping the database to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &MongoDBRepository{
		client: client,
		dbName: dbName,
		logger: logger,
	}, nil
}

// CollectionName returns the collection holding a kind.
func CollectionName(kind models.Kind) string {
	return "inventory_" + string(kind)
}

// Load reads the collection of the schema's kind, persisting an empty table
// when the collection holds nothing yet.
func (r *MongoDBRepository) Load(ctx context.Context, schema models.Schema) (*models.Table, error) {
	collection := r.client.Database(r.dbName).Collection(CollectionName(schema.Kind))

	cursor, err := collection.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "position", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("%w: find %s: %w", repository.ErrStoreUnavailable, collection.Name(), err)
	}

	var docs []rowDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %w", repository.ErrStoreUnavailable, collection.Name(), err)
	}

	if len(docs) == 0 {
		table := models.NewTable(schema)
		if err := r.Save(ctx, table); err != nil {
			return nil, err
		}
		r.logger.Info("inventory collection created", zap.String("collection", collection.Name()))
		return table, nil
	}

	return fromDocuments(schema, docs), nil
}

// Save fills a staging collection and renames it over the live one, so the
// live collection switches to the new contents in one step.
func (r *MongoDBRepository) Save(ctx context.Context, table *models.Table) error {
	kind := table.Schema.Kind
	db := r.client.Database(r.dbName)
	target := CollectionName(kind)
	staging := target + "_staging"

	if err := db.Collection(staging).Drop(ctx); err != nil {
		return repository.NewSaveError(kind, fmt.Errorf("%w: reset %s: %w", repository.ErrStoreUnavailable, staging, err))
	}

	if _, err := db.Collection(staging).InsertMany(ctx, toDocuments(table)); err != nil {
		return repository.NewSaveError(kind, fmt.Errorf("%w: fill %s: %w", repository.ErrStoreUnavailable, staging, err))
	}

	rename := bson.D{
		{Key: "renameCollection", Value: r.dbName + "." + staging},
		{Key: "to", Value: r.dbName + "." + target},
		{Key: "dropTarget", Value: true},
	}
	if err := r.client.Database("admin").RunCommand(ctx, rename).Err(); err != nil {
		r.logger.Error("inventory collection swap failed", zap.String("collection", target), zap.Error(err))
		return repository.NewSaveError(kind, classify(err))
	}

	r.logger.Debug("inventory collection saved", zap.String("collection", target), zap.Int("rows", len(table.Rows)))
	return nil
}

// Close closes the MongoDB connection.
func (r *MongoDBRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}

// Server codes meaning another operation holds the collection.
var lockCodes = []int{
	24,  // LockTimeout
	46,  // LockBusy
	112, // WriteConflict
}

func classify(err error) error {
	var serverErr mongo.ServerError
	if errors.As(err, &serverErr) {
		for _, code := range lockCodes {
			if serverErr.HasErrorCode(code) {
				return fmt.Errorf("%w: %w", repository.ErrStoreLocked, err)
			}
		}
	}
	return fmt.Errorf("%w: %w", repository.ErrStoreUnavailable, err)
}

func toDocuments(table *models.Table) []interface{} {
	header, rows := repository.Encode(table)

	docs := make([]interface{}, 0, len(rows)+1)
	docs = append(docs, rowDocument{Position: headerPosition, Columns: header})
	for i, row := range rows {
		doc := rowDocument{Position: i, Fields: make(map[string]string, len(header))}
		for j, col := range header {
			if col == models.QuantityField {
				doc.Quantity = models.CoerceQuantity(row[j])
				continue
			}
			if row[j] != "" {
				doc.Fields[col] = row[j]
			}
		}
		docs = append(docs, doc)
	}
	return docs
}

func fromDocuments(schema models.Schema, docs []rowDocument) *models.Table {
	header := schema.Columns
	var rows [][]string
	for _, doc := range docs {
		if doc.Position == headerPosition {
			if len(doc.Columns) > 0 {
				header = doc.Columns
			}
			continue
		}
		row := make([]string, len(header))
		for j, col := range header {
			if col == models.QuantityField {
				row[j] = strconv.Itoa(doc.Quantity)
				continue
			}
			row[j] = doc.Fields[col]
		}
		rows = append(rows, row)
	}
	return repository.Decode(schema, header, rows)
}
