package tokenmanager

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/nkiryanov/quill/internal/apperrors"
	"github.com/nkiryanov/quill/internal/models"
)

func testSecrets() map[models.TokenKind]string {
	return map[models.TokenKind]string{
		models.AccessKind(models.AudienceUser):  "user-access-secret",
		models.RefreshKind(models.AudienceUser): "user-refresh-secret",
		models.AccessKind(models.AudienceBlog):  "blog-access-secret",
		models.RefreshKind(models.AudienceBlog): "blog-refresh-secret",
	}
}

func Test_Keyring(t *testing.T) {
	t.Parallel()

	clock := &testClock{now: mustParseTime("2024-01-01 19:00:00Z")}
	payload := Payload{UserID: uuid.New(), Name: "alice", SessionID: uuid.New()}

	t.Run("fail fast on missing secret", func(t *testing.T) {
		for _, kind := range models.TokenKinds() {
			t.Run(kind.String(), func(t *testing.T) {
				secrets := testSecrets()
				delete(secrets, kind)

				_, err := NewKeyring(KeyringConfig{Secrets: secrets})

				require.Error(t, err)
				require.Contains(t, err.Error(), kind.String(), "error should name misconfigured kind")
			})
		}
	})

	t.Run("IssueAll", func(t *testing.T) {
		k, err := NewKeyring(KeyringConfig{
			Secrets:    testSecrets(),
			AccessTTL:  60 * time.Minute,
			RefreshTTL: 7 * 24 * time.Hour,
			Now:        clock.Now,
		})
		require.NoError(t, err)

		tokens, err := k.IssueAll(payload)

		require.NoError(t, err)
		require.Len(t, tokens, 2, "pair for user and blog")
		require.Len(t, tokens.List(), 4)
		for _, aud := range models.Audiences {
			pair := tokens[aud]
			require.Equal(t, models.AccessKind(aud), pair.Access.Kind)
			require.Equal(t, models.RefreshKind(aud), pair.Refresh.Kind)
			require.Equal(t, clock.now.Add(time.Hour), pair.Access.ExpiresAt)
			require.Equal(t, clock.now.Add(7*24*time.Hour), pair.Refresh.ExpiresAt)

			claims, err := k.Refresh(aud).Decode(pair.Refresh.Value)
			require.NoError(t, err)
			require.Equal(t, payload, claims.Payload)
		}
	})

	t.Run("audience isolation", func(t *testing.T) {
		k, err := NewKeyring(KeyringConfig{Secrets: testSecrets(), Now: clock.Now})
		require.NoError(t, err)

		for _, issuer := range models.TokenKinds() {
			issued, err := k.Manager(issuer).Issue(payload, 0)
			require.NoError(t, err)

			for _, verifier := range models.TokenKinds() {
				_, err := k.Manager(verifier).Decode(issued.Value)

				if issuer == verifier {
					require.NoError(t, err, "%s token must be accepted by own manager", issuer)
					continue
				}
				require.ErrorIs(t, err, apperrors.ErrTokenInvalid, "%s token must be rejected by %s manager", issuer, verifier)
			}
		}
	})

	t.Run("audience isolation with shared secret", func(t *testing.T) {
		secrets := testSecrets()
		for kind := range secrets {
			secrets[kind] = "same-secret"
		}
		k, err := NewKeyring(KeyringConfig{Secrets: secrets, Now: clock.Now})
		require.NoError(t, err)

		issued, err := k.Access(models.AudienceBlog).Issue(payload, 0)
		require.NoError(t, err)

		_, err = k.Access(models.AudienceUser).Decode(issued.Value)
		require.ErrorIs(t, err, apperrors.ErrTokenInvalid, "aud claim must separate kinds even with equal keys")
	})
}
