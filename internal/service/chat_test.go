package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/selera-app/backend/internal/models"
	"github.com/selera-app/backend/internal/testhelpers"
)

func TestChatPostPersists(t *testing.T) {
	db := testhelpers.NewTestDB(t)
	svc := NewChatService(db, NewChatHub(), 24*time.Hour)
	user := testhelpers.CreateTestUser(t, db, "alice")
	sender := NewChatClient(user.ID, user.Username, nil)

	msg, err := svc.Post(context.Background(), sender, "  anyone cooking tonight?  ")
	require.NoError(t, err)
	assert.Equal(t, "anyone cooking tonight?", msg.Content)

	var rows int64
	require.NoError(t, db.Model(&models.ChatMessage{}).Count(&rows).Error)
	assert.Equal(t, int64(1), rows)
}

func TestChatPostRejectsEmpty(t *testing.T) {
	db := testhelpers.NewTestDB(t)
	svc := NewChatService(db, NewChatHub(), 24*time.Hour)
	user := testhelpers.CreateTestUser(t, db, "alice")
	sender := NewChatClient(user.ID, user.Username, nil)

	_, err := svc.Post(context.Background(), sender, "<script>hi</script>")
	assert.ErrorIs(t, err, ErrEmptyMessage)

	var rows int64
	require.NoError(t, db.Model(&models.ChatMessage{}).Count(&rows).Error)
	assert.Equal(t, int64(0), rows)
}

func TestChatSweepRemovesExpired(t *testing.T) {
	db := testhelpers.NewTestDB(t)
	svc := NewChatService(db, NewChatHub(), 24*time.Hour)
	user := testhelpers.CreateTestUser(t, db, "alice")
	ctx := context.Background()

	old := models.ChatMessage{Content: "stale", UserID: user.ID}
	require.NoError(t, db.Create(&old).Error)
	require.NoError(t, db.Model(&old).
		Update("created_at", time.Now().Add(-25*time.Hour)).Error)

	fresh := models.ChatMessage{Content: "fresh", UserID: user.ID}
	require.NoError(t, db.Create(&fresh).Error)

	removed, err := svc.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	messages, err := svc.Recent(ctx, 50)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, "fresh", messages[0].Content)
}

func TestChatRecentExcludesExpired(t *testing.T) {
	db := testhelpers.NewTestDB(t)
	svc := NewChatService(db, NewChatHub(), 24*time.Hour)
	user := testhelpers.CreateTestUser(t, db, "alice")

	old := models.ChatMessage{Content: "stale", UserID: user.ID}
	require.NoError(t, db.Create(&old).Error)
	require.NoError(t, db.Model(&old).
		Update("created_at", time.Now().Add(-30*time.Hour)).Error)

	messages, err := svc.Recent(context.Background(), 50)
	require.NoError(t, err)
	assert.Empty(t, messages)
}
