package repository

import (
	"context"
	"testing"

	"matchday/backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestUser(t *testing.T, ctx context.Context, db *Database, telegramID int64) *models.User {
	user, err := db.Users.GetOrCreate(ctx, telegramID, models.UserProfile{Username: "tester"})
	require.NoError(t, err, "Failed to create test user")
	return user
}

func testPrediction(userID int, matchID int64) *models.Prediction {
	return &models.Prediction{
		UserID:           userID,
		Sport:            models.SportFootball,
		MatchID:          matchID,
		PredictedOutcome: models.OutcomeHomeWin,
	}
}

func TestRecordPrediction(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	user := createTestUser(t, ctx, db, 1001)

	pred := testPrediction(user.ID, 868549)
	err := db.Predictions.Record(ctx, pred)
	require.NoError(t, err, "Should record prediction")
	assert.Greater(t, pred.ID, 0, "Record should fill the ledger ID")
	assert.False(t, pred.CreatedAt.IsZero(), "Record should fill created_at")

	got, err := db.Predictions.GetByID(ctx, pred.ID)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.UserID)
	assert.Equal(t, int64(868549), got.MatchID)
	assert.Equal(t, models.OutcomeHomeWin, got.PredictedOutcome)
	assert.False(t, got.Resolved(), "New prediction should be unresolved")
}

func TestRecordPredictionDuplicate(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	user := createTestUser(t, ctx, db, 1002)

	require.NoError(t, db.Predictions.Record(ctx, testPrediction(user.ID, 555)))

	// Second open prediction for the same match must be rejected
	err := db.Predictions.Record(ctx, testPrediction(user.ID, 555))
	assert.ErrorIs(t, err, ErrDuplicatePrediction)

	// A different match is fine
	assert.NoError(t, db.Predictions.Record(ctx, testPrediction(user.ID, 556)))

	// Another user predicting the same match is fine too
	other := createTestUser(t, ctx, db, 1003)
	assert.NoError(t, db.Predictions.Record(ctx, testPrediction(other.ID, 555)))
}

func TestRecordPredictionAfterResolveAllowed(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	user := createTestUser(t, ctx, db, 1004)

	require.NoError(t, db.Predictions.Record(ctx, testPrediction(user.ID, 777)))

	resolved, err := db.Predictions.ReconcileMatch(ctx, models.SportFootball, 777, models.OutcomeHomeWin)
	require.NoError(t, err)
	assert.Equal(t, int64(1), resolved)

	// The unique index only covers open predictions, so a rematch (same
	// provider match ID reused) can be predicted again
	assert.NoError(t, db.Predictions.Record(ctx, testPrediction(user.ID, 777)))
}

func TestRecordPredictionValidation(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	user := createTestUser(t, ctx, db, 1005)

	tests := []struct {
		name string
		pred *models.Prediction
	}{
		{"nil user", testPrediction(0, 1)},
		{"zero match", testPrediction(user.ID, 0)},
		{
			"unknown sport",
			&models.Prediction{UserID: user.ID, Sport: "cricket", MatchID: 1, PredictedOutcome: models.OutcomeHomeWin},
		},
		{
			"unknown outcome",
			&models.Prediction{UserID: user.ID, Sport: models.SportFootball, MatchID: 1, PredictedOutcome: "home"},
		},
		{
			"draw in tennis",
			&models.Prediction{UserID: user.ID, Sport: models.SportTennis, MatchID: 1, PredictedOutcome: models.OutcomeDraw},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, db.Predictions.Record(ctx, tt.pred))
		})
	}
}

func TestReconcileMatch(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	alice := createTestUser(t, ctx, db, 2001)
	bob := createTestUser(t, ctx, db, 2002)

	require.NoError(t, db.Predictions.Record(ctx, &models.Prediction{
		UserID: alice.ID, Sport: models.SportFootball, MatchID: 9000, PredictedOutcome: models.OutcomeHomeWin,
	}))
	require.NoError(t, db.Predictions.Record(ctx, &models.Prediction{
		UserID: bob.ID, Sport: models.SportFootball, MatchID: 9000, PredictedOutcome: models.OutcomeDraw,
	}))

	resolved, err := db.Predictions.ReconcileMatch(ctx, models.SportFootball, 9000, models.OutcomeHomeWin)
	require.NoError(t, err)
	assert.Equal(t, int64(2), resolved, "Both open predictions should resolve")

	// Reconciling again touches nothing
	resolved, err = db.Predictions.ReconcileMatch(ctx, models.SportFootball, 9000, models.OutcomeHomeWin)
	require.NoError(t, err)
	assert.Equal(t, int64(0), resolved, "Reconcile must be idempotent")

	aliceStats, err := db.Predictions.Accuracy(ctx, alice.ID)
	require.NoError(t, err)
	assert.True(t, aliceStats.HasData)
	assert.Equal(t, 1, aliceStats.Correct)
	assert.Equal(t, 1.0, aliceStats.Ratio)

	bobStats, err := db.Predictions.Accuracy(ctx, bob.ID)
	require.NoError(t, err)
	assert.True(t, bobStats.HasData)
	assert.Equal(t, 0, bobStats.Correct)
	assert.Equal(t, 0.0, bobStats.Ratio)
}

func TestReconcileMatchSportScoped(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	user := createTestUser(t, ctx, db, 2003)

	// Same provider match ID in two sports; only one may resolve
	require.NoError(t, db.Predictions.Record(ctx, &models.Prediction{
		UserID: user.ID, Sport: models.SportFootball, MatchID: 42, PredictedOutcome: models.OutcomeHomeWin,
	}))
	require.NoError(t, db.Predictions.Record(ctx, &models.Prediction{
		UserID: user.ID, Sport: models.SportBasketball, MatchID: 42, PredictedOutcome: models.OutcomeAwayWin,
	}))

	resolved, err := db.Predictions.ReconcileMatch(ctx, models.SportBasketball, 42, models.OutcomeAwayWin)
	require.NoError(t, err)
	assert.Equal(t, int64(1), resolved)

	open, err := db.Predictions.ListOpenMatches(ctx)
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, models.SportFootball, open[0].Sport)
}

func TestAccuracyNoData(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	user := createTestUser(t, ctx, db, 3001)

	// No predictions at all
	stats, err := db.Predictions.Accuracy(ctx, user.ID)
	require.NoError(t, err)
	assert.False(t, stats.HasData, "No resolved predictions means no data")
	assert.Equal(t, 0, stats.Total)

	// An open prediction alone still yields no data
	require.NoError(t, db.Predictions.Record(ctx, testPrediction(user.ID, 11)))
	stats, err = db.Predictions.Accuracy(ctx, user.ID)
	require.NoError(t, err)
	assert.False(t, stats.HasData)
	assert.Equal(t, 1, stats.Total)
	assert.Equal(t, 0, stats.Resolved)
}

func TestListOpenMatches(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	alice := createTestUser(t, ctx, db, 4001)
	bob := createTestUser(t, ctx, db, 4002)

	// Two users on the same match collapse to one open match
	require.NoError(t, db.Predictions.Record(ctx, testPrediction(alice.ID, 100)))
	require.NoError(t, db.Predictions.Record(ctx, testPrediction(bob.ID, 100)))
	require.NoError(t, db.Predictions.Record(ctx, testPrediction(alice.ID, 200)))

	open, err := db.Predictions.ListOpenMatches(ctx)
	require.NoError(t, err)
	assert.Len(t, open, 2)

	count, err := db.Predictions.CountOpen(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestListByUser(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	user := createTestUser(t, ctx, db, 5001)

	for i := int64(1); i <= 5; i++ {
		require.NoError(t, db.Predictions.Record(ctx, testPrediction(user.ID, i)))
	}

	preds, err := db.Predictions.ListByUser(ctx, user.ID, 3)
	require.NoError(t, err)
	assert.Len(t, preds, 3, "Limit should cap the result")
}

func TestSystemStats(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	user := createTestUser(t, ctx, db, 6001)

	require.NoError(t, db.Predictions.Record(ctx, testPrediction(user.ID, 1)))
	require.NoError(t, db.Predictions.Record(ctx, testPrediction(user.ID, 2)))

	_, err := db.Predictions.ReconcileMatch(ctx, models.SportFootball, 1, models.OutcomeHomeWin)
	require.NoError(t, err)

	stats, err := db.Predictions.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Users)
	assert.Equal(t, 2, stats.Predictions)
	assert.Equal(t, 1, stats.Resolved)
	assert.Equal(t, 1, stats.Correct)
	assert.Equal(t, 1, stats.Open)
}
