package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	apperrors "trade-journal/internal/errors"
	"trade-journal/internal/models"
)

const (
	tradesCollection     = "trades"
	strategiesCollection = "strategies"
	journalCollection    = "journal"
)

// MongoStore implements DataStore on MongoDB.
//
// DeleteStrategy checks references and deletes in two steps; without a
// replica-set transaction a trade created between them can still point at
// the removed strategy.
type MongoStore struct {
	client     *mongo.Client
	trades     *mongo.Collection
	strategies *mongo.Collection
	journal    *mongo.Collection
}

// NewMongoStore connects to MongoDB and ensures indexes exist.
func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	db := client.Database(database)
	s := &MongoStore{
		client:     client,
		trades:     db.Collection(tradesCollection),
		strategies: db.Collection(strategiesCollection),
		journal:    db.Collection(journalCollection),
	}

	if err := s.ensureIndexes(connectCtx); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to create indexes: %w", err)
	}
	return s, nil
}

func (s *MongoStore) ensureIndexes(ctx context.Context) error {
	if _, err := s.trades.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "status", Value: 1}, {Key: "exit_date", Value: 1}}},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "strategy_id", Value: 1}}},
	}); err != nil {
		return err
	}
	if _, err := s.strategies.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}},
	}); err != nil {
		return err
	}
	_, err := s.journal.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "date", Value: -1}},
	})
	return err
}

// Close disconnects the client.
func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func owned(userID, id string) bson.M {
	return bson.M{"_id": id, "user_id": userID}
}

// tradeFilterDoc translates a TradeFilter into a query document.
func tradeFilterDoc(f TradeFilter) bson.M {
	doc := bson.M{}
	if f.UserID != "" {
		doc["user_id"] = f.UserID
	}
	if f.StrategyID != "" {
		doc["strategy_id"] = f.StrategyID
	}
	if f.Status != "" {
		doc["status"] = f.Status
	}
	if f.Symbol != "" {
		doc["symbol"] = f.Symbol
	}
	if len(f.Tags) > 0 {
		doc["tags"] = bson.M{"$in": f.Tags}
	}
	exit := bson.M{}
	if !f.ExitFrom.IsZero() {
		exit["$gte"] = f.ExitFrom
	}
	if !f.ExitTo.IsZero() {
		exit["$lte"] = f.ExitTo
	}
	if len(exit) > 0 {
		doc["exit_date"] = exit
	}
	return doc
}

// tradeSort mirrors the SQLite ordering. Missing exit dates sort first.
func tradeSort(order TradeOrder) bson.D {
	if order == OrderExitAsc {
		return bson.D{{Key: "exit_date", Value: 1}, {Key: "_id", Value: 1}}
	}
	return bson.D{{Key: "entry_date", Value: -1}, {Key: "_id", Value: -1}}
}

// journalFilterDoc translates a JournalFilter into a query document.
func journalFilterDoc(f JournalFilter) bson.M {
	doc := bson.M{}
	if f.UserID != "" {
		doc["user_id"] = f.UserID
	}
	if f.TradeID != "" {
		doc["trade_id"] = f.TradeID
	}
	date := bson.M{}
	if !f.From.IsZero() {
		date["$gte"] = f.From
	}
	if !f.To.IsZero() {
		date["$lte"] = f.To
	}
	if len(date) > 0 {
		doc["date"] = date
	}
	if f.Emotion != "" {
		doc["emotion"] = f.Emotion
	}
	if len(f.Tags) > 0 {
		doc["tags"] = bson.M{"$in": f.Tags}
	}
	return doc
}

// journalPipeline builds the aggregation that joins each entry to its trade.
func journalPipeline(f JournalFilter) mongo.Pipeline {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: journalFilterDoc(f)}},
		{{Key: "$sort", Value: bson.D{{Key: "date", Value: -1}, {Key: "_id", Value: -1}}}},
	}
	if f.Limit > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$limit", Value: f.Limit}})
	}
	// the linked trade must belong to the entry's owner
	pipeline = append(pipeline,
		bson.D{{Key: "$lookup", Value: bson.M{
			"from": tradesCollection,
			"let":  bson.M{"tradeId": "$trade_id", "userId": "$user_id"},
			"pipeline": mongo.Pipeline{
				{{Key: "$match", Value: bson.M{"$expr": bson.M{"$and": bson.A{
					bson.M{"$eq": bson.A{"$_id", "$$tradeId"}},
					bson.M{"$eq": bson.A{"$user_id", "$$userId"}},
				}}}}},
			},
			"as": "trade",
		}}},
		bson.D{{Key: "$unwind", Value: bson.M{
			"path":                       "$trade",
			"preserveNullAndEmptyArrays": true,
		}}},
	)
	return pipeline
}

// ============================================================================
// Trades
// ============================================================================

// CreateTrade inserts a new trade.
func (s *MongoStore) CreateTrade(ctx context.Context, trade *models.Trade) error {
	if _, err := s.trades.InsertOne(ctx, trade); err != nil {
		return fmt.Errorf("failed to insert trade: %w", err)
	}
	return nil
}

// UpdateTrade replaces the stored trade document.
func (s *MongoStore) UpdateTrade(ctx context.Context, trade *models.Trade) error {
	result, err := s.trades.ReplaceOne(ctx, owned(trade.UserID, trade.ID), trade)
	if err != nil {
		return fmt.Errorf("failed to update trade: %w", err)
	}
	if result.MatchedCount == 0 {
		return apperrors.NotFound("trade", trade.ID)
	}
	return nil
}

// DeleteTrade removes a trade.
func (s *MongoStore) DeleteTrade(ctx context.Context, userID, id string) error {
	result, err := s.trades.DeleteOne(ctx, owned(userID, id))
	if err != nil {
		return fmt.Errorf("failed to delete trade: %w", err)
	}
	if result.DeletedCount == 0 {
		return apperrors.NotFound("trade", id)
	}
	return nil
}

// GetTrade returns a single trade owned by userID.
func (s *MongoStore) GetTrade(ctx context.Context, userID, id string) (*models.Trade, error) {
	var trade models.Trade
	err := s.trades.FindOne(ctx, owned(userID, id)).Decode(&trade)
	if err == mongo.ErrNoDocuments {
		return nil, apperrors.NotFound("trade", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get trade: %w", err)
	}
	return &trade, nil
}

// GetTrades retrieves trades matching the filter.
func (s *MongoStore) GetTrades(ctx context.Context, filter TradeFilter) ([]models.Trade, error) {
	opts := options.Find().SetSort(tradeSort(filter.Order))
	if filter.Limit > 0 {
		opts.SetLimit(int64(filter.Limit))
	}

	cursor, err := s.trades.Find(ctx, tradeFilterDoc(filter), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query trades: %w", err)
	}
	defer cursor.Close(ctx)

	trades := []models.Trade{}
	if err := cursor.All(ctx, &trades); err != nil {
		return nil, fmt.Errorf("failed to decode trades: %w", err)
	}
	return trades, nil
}

// CountTradesByStrategy counts trades of any status referencing a strategy.
func (s *MongoStore) CountTradesByStrategy(ctx context.Context, userID, strategyID string) (int, error) {
	n, err := s.trades.CountDocuments(ctx, bson.M{"user_id": userID, "strategy_id": strategyID})
	if err != nil {
		return 0, fmt.Errorf("failed to count trades: %w", err)
	}
	return int(n), nil
}

// ============================================================================
// Strategies
// ============================================================================

// CreateStrategy inserts a new strategy.
func (s *MongoStore) CreateStrategy(ctx context.Context, st *models.Strategy) error {
	if _, err := s.strategies.InsertOne(ctx, st); err != nil {
		return fmt.Errorf("failed to insert strategy: %w", err)
	}
	return nil
}

// UpdateStrategy writes descriptive fields only.
func (s *MongoStore) UpdateStrategy(ctx context.Context, st *models.Strategy) error {
	result, err := s.strategies.UpdateOne(ctx, owned(st.UserID, st.ID), bson.M{"$set": bson.M{
		"name":        st.Name,
		"asset_class": st.AssetClass,
		"rules":       st.Rules,
		"status":      st.Status,
		"updated_at":  st.UpdatedAt,
	}})
	if err != nil {
		return fmt.Errorf("failed to update strategy: %w", err)
	}
	if result.MatchedCount == 0 {
		return apperrors.NotFound("strategy", st.ID)
	}
	return nil
}

// GetStrategy returns a single strategy owned by userID.
func (s *MongoStore) GetStrategy(ctx context.Context, userID, id string) (*models.Strategy, error) {
	var st models.Strategy
	err := s.strategies.FindOne(ctx, owned(userID, id)).Decode(&st)
	if err == mongo.ErrNoDocuments {
		return nil, apperrors.NotFound("strategy", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get strategy: %w", err)
	}
	return &st, nil
}

// ListStrategies returns the user's strategies, newest first.
func (s *MongoStore) ListStrategies(ctx context.Context, userID string) ([]models.Strategy, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	cursor, err := s.strategies.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query strategies: %w", err)
	}
	defer cursor.Close(ctx)

	strategies := []models.Strategy{}
	if err := cursor.All(ctx, &strategies); err != nil {
		return nil, fmt.Errorf("failed to decode strategies: %w", err)
	}
	return strategies, nil
}

// DeleteStrategy removes a strategy unless a trade still references it.
func (s *MongoStore) DeleteStrategy(ctx context.Context, userID, id string) error {
	refs, err := s.CountTradesByStrategy(ctx, userID, id)
	if err != nil {
		return err
	}
	if refs > 0 {
		return apperrors.NewStoreError("delete", "strategy", id, apperrors.ErrStrategyInUse)
	}

	result, err := s.strategies.DeleteOne(ctx, owned(userID, id))
	if err != nil {
		return fmt.Errorf("failed to delete strategy: %w", err)
	}
	if result.DeletedCount == 0 {
		return apperrors.NotFound("strategy", id)
	}
	return nil
}

// UpdateStrategyPerformance replaces the embedded snapshot with a single $set.
func (s *MongoStore) UpdateStrategyPerformance(ctx context.Context, userID, id string, p models.PerformanceSnapshot) error {
	result, err := s.strategies.UpdateOne(ctx, owned(userID, id), bson.M{"$set": bson.M{"performance": p}})
	if err != nil {
		return fmt.Errorf("failed to update strategy performance: %w", err)
	}
	if result.MatchedCount == 0 {
		return apperrors.NotFound("strategy", id)
	}
	return nil
}

// ============================================================================
// Journal
// ============================================================================

// CreateJournalEntry inserts a journal entry. The populated trade is never stored.
func (s *MongoStore) CreateJournalEntry(ctx context.Context, entry *models.JournalEntry) error {
	doc := *entry
	doc.Trade = nil
	if _, err := s.journal.InsertOne(ctx, &doc); err != nil {
		return fmt.Errorf("failed to insert journal entry: %w", err)
	}
	return nil
}

// UpdateJournalEntry replaces the stored entry.
func (s *MongoStore) UpdateJournalEntry(ctx context.Context, entry *models.JournalEntry) error {
	doc := *entry
	doc.Trade = nil
	result, err := s.journal.ReplaceOne(ctx, owned(entry.UserID, entry.ID), &doc)
	if err != nil {
		return fmt.Errorf("failed to update journal entry: %w", err)
	}
	if result.MatchedCount == 0 {
		return apperrors.NotFound("journal entry", entry.ID)
	}
	return nil
}

// DeleteJournalEntry removes a journal entry.
func (s *MongoStore) DeleteJournalEntry(ctx context.Context, userID, id string) error {
	result, err := s.journal.DeleteOne(ctx, owned(userID, id))
	if err != nil {
		return fmt.Errorf("failed to delete journal entry: %w", err)
	}
	if result.DeletedCount == 0 {
		return apperrors.NotFound("journal entry", id)
	}
	return nil
}

// GetJournalEntry returns a single entry with its linked trade populated.
func (s *MongoStore) GetJournalEntry(ctx context.Context, userID, id string) (*models.JournalEntry, error) {
	pipeline := journalPipeline(JournalFilter{UserID: userID})
	pipeline[0] = bson.D{{Key: "$match", Value: owned(userID, id)}}

	entries, err := s.aggregateJournal(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, apperrors.NotFound("journal entry", id)
	}
	return &entries[0], nil
}

// GetJournal retrieves journal entries matching the filter.
func (s *MongoStore) GetJournal(ctx context.Context, filter JournalFilter) ([]models.JournalEntry, error) {
	if filter.PopulateTrade {
		return s.aggregateJournal(ctx, journalPipeline(filter))
	}

	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}, {Key: "_id", Value: -1}})
	if filter.Limit > 0 {
		opts.SetLimit(int64(filter.Limit))
	}
	cursor, err := s.journal.Find(ctx, journalFilterDoc(filter), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query journal: %w", err)
	}
	defer cursor.Close(ctx)

	entries := []models.JournalEntry{}
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode journal entries: %w", err)
	}
	return entries, nil
}

func (s *MongoStore) aggregateJournal(ctx context.Context, pipeline mongo.Pipeline) ([]models.JournalEntry, error) {
	cursor, err := s.journal.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate journal: %w", err)
	}
	defer cursor.Close(ctx)

	entries := []models.JournalEntry{}
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode journal entries: %w", err)
	}
	return entries, nil
}
