package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"trade-journal/internal/models"
)

func TestTradeFilterDoc(t *testing.T) {
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)

	doc := tradeFilterDoc(TradeFilter{
		UserID:     "u1",
		StrategyID: "s1",
		Status:     models.StatusClosed,
		ExitFrom:   from,
		ExitTo:     to,
	})

	assert.Equal(t, "u1", doc["user_id"])
	assert.Equal(t, "s1", doc["strategy_id"])
	assert.Equal(t, models.StatusClosed, doc["status"])
	assert.Equal(t, bson.M{"$gte": from, "$lte": to}, doc["exit_date"])
	assert.NotContains(t, doc, "symbol")
	assert.NotContains(t, doc, "tags")

	tagged := tradeFilterDoc(TradeFilter{UserID: "u1", Tags: []string{"gap", "fade"}})
	assert.Equal(t, bson.M{"$in": []string{"gap", "fade"}}, tagged["tags"])

	assert.Empty(t, tradeFilterDoc(TradeFilter{}))
	assert.Equal(t, bson.M{"$lte": to}, tradeFilterDoc(TradeFilter{ExitTo: to})["exit_date"])
}

func TestTradeSort(t *testing.T) {
	assert.Equal(t, "exit_date", tradeSort(OrderExitAsc)[0].Key)
	assert.Equal(t, 1, tradeSort(OrderExitAsc)[0].Value)
	assert.Equal(t, "entry_date", tradeSort(OrderEntryDesc)[0].Key)
	assert.Equal(t, -1, tradeSort(OrderEntryDesc)[0].Value)
}

func TestJournalPipeline(t *testing.T) {
	f := JournalFilter{
		UserID:  "u1",
		Emotion: models.EmotionGreedy,
		Tags:    []string{"fomo"},
		Limit:   5,
	}

	doc := journalFilterDoc(f)
	assert.Equal(t, models.EmotionGreedy, doc["emotion"])
	assert.Equal(t, bson.M{"$in": []string{"fomo"}}, doc["tags"])

	pipeline := journalPipeline(f)
	require.Len(t, pipeline, 5)

	stages := make([]string, len(pipeline))
	for i, stage := range pipeline {
		stages[i] = stage[0].Key
	}
	assert.Equal(t, []string{"$match", "$sort", "$limit", "$lookup", "$unwind"}, stages)

	lookup := pipeline[3][0].Value.(bson.M)
	assert.Equal(t, tradesCollection, lookup["from"])
	assert.Equal(t, bson.M{"tradeId": "$trade_id", "userId": "$user_id"}, lookup["let"])
	assert.NotContains(t, lookup, "localField")

	// the join matches on both the trade ID and its owner
	sub := lookup["pipeline"].(mongo.Pipeline)
	require.Len(t, sub, 1)
	match := sub[0][0].Value.(bson.M)["$expr"].(bson.M)["$and"].(bson.A)
	assert.Contains(t, match, bson.M{"$eq": bson.A{"$_id", "$$tradeId"}})
	assert.Contains(t, match, bson.M{"$eq": bson.A{"$user_id", "$$userId"}})

	// without a limit there is no $limit stage
	assert.Len(t, journalPipeline(JournalFilter{UserID: "u1"}), 4)
}
