package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/selera-app/backend/internal/models"
	"github.com/selera-app/backend/internal/testhelpers"
)

func TestToggleLikeOnOff(t *testing.T) {
	db := testhelpers.NewTestDB(t)
	svc := NewInteractionService(db)
	user := testhelpers.CreateTestUser(t, db, "alice")
	ctx := context.Background()

	state, err := svc.Toggle(ctx, user.ID, models.SourceMealDB, "52772", models.InteractionLike)
	require.NoError(t, err)
	assert.Equal(t, int64(1), state.Likes)
	assert.True(t, state.UserLiked)
	assert.False(t, state.UserSaved)

	state, err = svc.Toggle(ctx, user.ID, models.SourceMealDB, "52772", models.InteractionLike)
	require.NoError(t, err)
	assert.Equal(t, int64(0), state.Likes)
	assert.False(t, state.UserLiked)

	var rows int64
	require.NoError(t, db.Model(&models.Interaction{}).Count(&rows).Error)
	assert.Equal(t, int64(0), rows)
}

func TestToggleCountsMatchRows(t *testing.T) {
	db := testhelpers.NewTestDB(t)
	svc := NewInteractionService(db)
	ctx := context.Background()

	alice := testhelpers.CreateTestUser(t, db, "alice")
	bob := testhelpers.CreateTestUser(t, db, "bob")

	_, err := svc.Toggle(ctx, alice.ID, models.SourceFallback, "rendang", models.InteractionLike)
	require.NoError(t, err)
	_, err = svc.Toggle(ctx, bob.ID, models.SourceFallback, "rendang", models.InteractionLike)
	require.NoError(t, err)
	state, err := svc.Toggle(ctx, bob.ID, models.SourceFallback, "rendang", models.InteractionSave)
	require.NoError(t, err)

	var likeRows, saveRows int64
	require.NoError(t, db.Model(&models.Interaction{}).
		Where("recipe_id = ? AND kind = ?", "rendang", models.InteractionLike).
		Count(&likeRows).Error)
	require.NoError(t, db.Model(&models.Interaction{}).
		Where("recipe_id = ? AND kind = ?", "rendang", models.InteractionSave).
		Count(&saveRows).Error)

	assert.Equal(t, likeRows, state.Likes)
	assert.Equal(t, saveRows, state.Saves)
	assert.Equal(t, int64(2), state.Likes)
	assert.Equal(t, int64(1), state.Saves)
}

func TestToggleRejectsBadInput(t *testing.T) {
	db := testhelpers.NewTestDB(t)
	svc := NewInteractionService(db)
	user := testhelpers.CreateTestUser(t, db, "alice")
	ctx := context.Background()

	_, err := svc.Toggle(ctx, user.ID, "mystery-source", "1", models.InteractionLike)
	assert.ErrorIs(t, err, ErrInvalidInteraction)

	_, err = svc.Toggle(ctx, user.ID, models.SourceMealDB, "", models.InteractionLike)
	assert.ErrorIs(t, err, ErrInvalidInteraction)

	_, err = svc.Toggle(ctx, user.ID, models.SourceMealDB, "1", "superlike")
	assert.ErrorIs(t, err, ErrInvalidInteraction)

	var rows int64
	require.NoError(t, db.Model(&models.Interaction{}).Count(&rows).Error)
	assert.Equal(t, int64(0), rows)
}

func TestListByUserPagination(t *testing.T) {
	db := testhelpers.NewTestDB(t)
	svc := NewInteractionService(db)
	user := testhelpers.CreateTestUser(t, db, "alice")
	ctx := context.Background()

	for _, id := range []string{"1", "2", "3", "4"} {
		_, err := svc.Toggle(ctx, user.ID, models.SourceMealDB, id, models.InteractionSave)
		require.NoError(t, err)
	}

	rows, total, err := svc.ListByUser(ctx, user.ID, models.InteractionSave, 1, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)
	assert.Len(t, rows, 3)

	rows, _, err = svc.ListByUser(ctx, user.ID, models.InteractionSave, 2, 3)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
