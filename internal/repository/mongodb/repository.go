package mongodb

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mamadbah2/repricer/internal/domain/models"
)

// Repository defines the interface for the price-decision audit store.
type Repository interface {
	SavePriceDecision(ctx context.Context, decision models.PriceDecision) error
	RecentDecisions(ctx context.Context, limit int64) ([]models.PriceDecision, error)
}

// MongoDBRepository implements the Repository interface for MongoDB.
type MongoDBRepository struct {
	client   *mongo.Client
	dbName   string
	collName string
}

// NewMongoDBRepository creates a new MongoDB repository.
func NewMongoDBRepository(ctx context.Context, uri string, dbName string) (*MongoDBRepository, error) {
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
		client:   client,
		dbName:   dbName,
		collName: "price_decisions",
	}, nil
}

// decisionDocument is the persisted shape of a PriceDecision. Decimal
// prices are stored as strings so no precision is lost in BSON.
type decisionDocument struct {
	CycleID         string                 `bson:"cycle_id"`
	RowIndex        int                    `bson:"row_index"`
	ProductName     string                 `bson:"product_name"`
	PriceMin        string                 `bson:"price_min"`
	PriceMax        string                 `bson:"price_max"`
	AdjustedPrice   string                 `bson:"adjusted_price"`
	AnchorSeller    string                 `bson:"anchor_seller"`
	AnchorPrice     string                 `bson:"anchor_price"`
	StockTier       string                 `bson:"stock_tier"`
	StockCounts     models.StockCounts     `bson:"stock_counts"`
	PublishedStock  int                    `bson:"published_stock"`
	ReferenceSeller string                 `bson:"reference_seller"`
	ReferencePrice  string                 `bson:"reference_price"`
	PerSource       []sourceResultDocument `bson:"per_source,omitempty"`
	CreatedAt       time.Time              `bson:"created_at"`
}

type sourceResultDocument struct {
	Source string `bson:"source"`
	Price  string `bson:"price"`
	Seller string `bson:"seller"`
	Found  bool   `bson:"found"`
}

func toDocument(decision models.PriceDecision) decisionDocument {
	doc := decisionDocument{
		CycleID:         decision.CycleID,
		RowIndex:        decision.RowIndex,
		ProductName:     decision.ProductName,
		PriceMin:        decision.PriceMin.String(),
		PriceMax:        decision.PriceMax.String(),
		AdjustedPrice:   decision.AdjustedPrice.String(),
		AnchorSeller:    decision.SourceOffer.Seller.Name,
		AnchorPrice:     decision.SourceOffer.PricePerUnit.String(),
		StockTier:       string(decision.StockTier),
		StockCounts:     decision.StockCounts,
		PublishedStock:  decision.PublishedStock,
		ReferenceSeller: decision.ReferenceSeller,
		ReferencePrice:  decision.ReferencePrice.String(),
		CreatedAt:       decision.CreatedAt,
	}
	for _, result := range decision.PerSource {
		doc.PerSource = append(doc.PerSource, sourceResultDocument{
			Source: string(result.Source),
			Price:  result.Price.String(),
			Seller: result.Seller,
			Found:  result.Found,
		})
	}
	return doc
}

func fromDocument(doc decisionDocument) models.PriceDecision {
	decision := models.PriceDecision{
		CycleID:         doc.CycleID,
		RowIndex:        doc.RowIndex,
		ProductName:     doc.ProductName,
		PriceMin:        parseDecimal(doc.PriceMin),
		PriceMax:        parseDecimal(doc.PriceMax),
		AdjustedPrice:   parseDecimal(doc.AdjustedPrice),
		StockTier:       models.StockTier(doc.StockTier),
		StockCounts:     doc.StockCounts,
		PublishedStock:  doc.PublishedStock,
		ReferenceSeller: doc.ReferenceSeller,
		ReferencePrice:  parseDecimal(doc.ReferencePrice),
		CreatedAt:       doc.CreatedAt,
	}
	decision.SourceOffer.Seller.Name = doc.AnchorSeller
	decision.SourceOffer.PricePerUnit = parseDecimal(doc.AnchorPrice)
	for _, result := range doc.PerSource {
		decision.PerSource = append(decision.PerSource, models.SourcePriceResult{
			Source: models.SourceTag(result.Source),
			Price:  parseDecimal(result.Price),
			Seller: result.Seller,
			Found:  result.Found,
		})
	}
	return decision
}

func parseDecimal(value string) decimal.Decimal {
	parsed, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero
	}
	return parsed
}

// SavePriceDecision appends one cycle's decision to the audit trail.
func (r *MongoDBRepository) SavePriceDecision(ctx context.Context, decision models.PriceDecision) error {
	if decision.CreatedAt.IsZero() {
		decision.CreatedAt = time.Now().UTC()
	}

	collection := r.client.Database(r.dbName).Collection(r.collName)
	if _, err := collection.InsertOne(ctx, toDocument(decision)); err != nil {
		return fmt.Errorf("failed to insert price decision: %w", err)
	}
	return nil
}

// RecentDecisions returns the latest decisions, newest first.
func (r *MongoDBRepository) RecentDecisions(ctx context.Context, limit int64) ([]models.PriceDecision, error) {
	if limit <= 0 {
		limit = 50
	}

	collection := r.client.Database(r.dbName).Collection(r.collName)
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(limit)

	cursor, err := collection.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query price decisions: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []decisionDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode price decisions: %w", err)
	}

	decisions := make([]models.PriceDecision, 0, len(docs))
	for _, doc := range docs {
		decisions = append(decisions, fromDocument(doc))
	}
	return decisions, nil
}

// Close closes the MongoDB connection.
func (r *MongoDBRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}
