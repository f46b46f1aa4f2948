package userctx

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/nkiryanov/quill/internal/models"
)

func TestUserctx(t *testing.T) {
	user := models.User{ID: uuid.New(), Name: "alice", SessionID: uuid.New()}

	t.Run("user round trip", func(t *testing.T) {
		ctx := New(context.Background(), user)

		got, ok := FromContext(ctx)

		require.True(t, ok)
		require.Equal(t, user, got)
		require.Equal(t, user, MustFromContext(ctx))
	})

	t.Run("no user", func(t *testing.T) {
		_, ok := FromContext(context.Background())

		require.False(t, ok)
		require.Panics(t, func() { MustFromContext(context.Background()) })
	})

	t.Run("other values with same string key ignored", func(t *testing.T) {
		ctx := context.WithValue(context.Background(), "user", user) // nolint:staticcheck

		_, ok := FromContext(ctx)

		require.False(t, ok)
	})
}
