// Package mongo reads the storefront's catalog, sales journal and counterparty
// directories from MongoDB. This core never writes to these collections.
package mongo

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/flowi-ledger/internal/domain/counterparty"
	"github.com/flowi-ledger/internal/domain/sales"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	SalesCollectionName     = "sales"
	ProductsCollectionName  = "products"
	CustomersCollectionName = "customers"
	SuppliersCollectionName = "suppliers"
)

// CatalogRepository implements the sales.Source interface for MongoDB
type CatalogRepository struct {
	db     *mongo.Database
	logger *slog.Logger
}

// NewCatalogRepository creates a new MongoDB catalog repository
func NewCatalogRepository(logger *slog.Logger, db *mongo.Database) sales.Source {
	return &CatalogRepository{
		db:     db,
		logger: logger,
	}
}

// LoadSales returns the whole journal, oldest first
func (r *CatalogRepository) LoadSales(ctx context.Context) ([]sales.Record, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	docs, err := findAll[saleDocument](ctx, r.db.Collection(SalesCollectionName), opts)
	if err != nil {
		r.logger.Error("Failed to load sales", "error", err)
		return nil, fmt.Errorf("failed to load sales: %w", err)
	}

	records := make([]sales.Record, 0, len(docs))
	for _, d := range docs {
		records = append(records, d.toDomain())
	}
	return records, nil
}

// LoadProducts returns the catalog sorted by name
func (r *CatalogRepository) LoadProducts(ctx context.Context) ([]sales.Product, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	docs, err := findAll[productDocument](ctx, r.db.Collection(ProductsCollectionName), opts)
	if err != nil {
		r.logger.Error("Failed to load products", "error", err)
		return nil, fmt.Errorf("failed to load products: %w", err)
	}

	products := make([]sales.Product, 0, len(docs))
	for _, d := range docs {
		products = append(products, d.toDomain())
	}
	return products, nil
}

// DirectoryRepository implements the counterparty.Directory interface for MongoDB
type DirectoryRepository struct {
	db     *mongo.Database
	logger *slog.Logger
}

// NewDirectoryRepository creates a new MongoDB counterparty directory
func NewDirectoryRepository(logger *slog.Logger, db *mongo.Database) counterparty.Directory {
	return &DirectoryRepository{
		db:     db,
		logger: logger,
	}
}

// LoadCustomers returns every customer, active or not
func (r *DirectoryRepository) LoadCustomers(ctx context.Context) ([]counterparty.Customer, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	docs, err := findAll[customerDocument](ctx, r.db.Collection(CustomersCollectionName), opts)
	if err != nil {
		r.logger.Error("Failed to load customers", "error", err)
		return nil, fmt.Errorf("failed to load customers: %w", err)
	}

	customers := make([]counterparty.Customer, 0, len(docs))
	for _, d := range docs {
		customers = append(customers, d.toDomain())
	}
	return customers, nil
}

// LoadSuppliers returns every supplier, active or not
func (r *DirectoryRepository) LoadSuppliers(ctx context.Context) ([]counterparty.Supplier, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	docs, err := findAll[supplierDocument](ctx, r.db.Collection(SuppliersCollectionName), opts)
	if err != nil {
		r.logger.Error("Failed to load suppliers", "error", err)
		return nil, fmt.Errorf("failed to load suppliers: %w", err)
	}

	suppliers := make([]counterparty.Supplier, 0, len(docs))
	for _, d := range docs {
		suppliers = append(suppliers, d.toDomain())
	}
	return suppliers, nil
}

func findAll[T any](ctx context.Context, coll *mongo.Collection, opts *options.FindOptions) ([]T, error) {
	cursor, err := coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []T
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}
