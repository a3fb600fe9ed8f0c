package mongodb

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/voltstore/storefront/internal/domain/product"
)

var _ product.Repository = (*ProductRepository)(nil)

// ProductRepository implements product.Repository backed by the products
// collection.
type ProductRepository struct {
	col *mongo.Collection
}

// NewProductRepository returns a ProductRepository using the given database.
func NewProductRepository(db *mongo.Database) *ProductRepository {
	return &ProductRepository{col: db.Collection("products")}
}

type productDoc struct {
	ID          string  `bson:"_id"`
	Title       string  `bson:"title"`
	Price       float64 `bson:"price"`
	Category    string  `bson:"category,omitempty"`
	Image       string  `bson:"image,omitempty"`
	Description string  `bson:"description,omitempty"`
}

// List returns the whole catalog, sorted by title.
func (r *ProductRepository) List(ctx context.Context) ([]product.Product, error) {
	cur, err := r.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "title", Value: 1}}))
	if err != nil {
		return nil, errors.Wrap(err, "find products")
	}

	var docs []productDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, errors.Wrap(err, "decode products")
	}

	out := make([]product.Product, len(docs))
	for i := range docs {
		out[i] = toProduct(&docs[i])
	}
	return out, nil
}

// GetByID returns product.ErrNotFound when no document matches.
func (r *ProductRepository) GetByID(ctx context.Context, id string) (*product.Product, error) {
	var doc productDoc
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, product.ErrNotFound
		}
		return nil, errors.Wrapf(err, "find product %s", id)
	}

	p := toProduct(&doc)
	return &p, nil
}

// Upsert inserts or replaces a product, keyed by id.
func (r *ProductRepository) Upsert(ctx context.Context, p *product.Product) error {
	doc := productDoc{
		ID:          p.ID,
		Title:       p.Title,
		Price:       p.Price.InexactFloat64(),
		Category:    p.Category,
		Image:       p.Image,
		Description: p.Description,
	}

	_, err := r.col.ReplaceOne(ctx, bson.M{"_id": p.ID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return errors.Wrapf(err, "upsert product %s", p.ID)
	}
	return nil
}

func toProduct(doc *productDoc) product.Product {
	return product.Product{
		ID:          doc.ID,
		Title:       doc.Title,
		Price:       decimal.NewFromFloat(doc.Price),
		Category:    doc.Category,
		Image:       doc.Image,
		Description: doc.Description,
	}
}
