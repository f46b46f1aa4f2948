package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nkiryanov/quill/internal/apperrors"
	"github.com/nkiryanov/quill/internal/repository/postgres"
	"github.com/nkiryanov/quill/internal/testutil"
)

func Test_run(t *testing.T) {
	noenv := func(string) string { return "" }

	t.Run("required arguments", func(t *testing.T) {
		tests := []struct {
			name    string
			args    []string
			message string
		}{
			{"no database", []string{"-n", "alice", "-p", "pwd"}, "database DSN is required"},
			{"no name", []string{"-d", "postgres://localhost/quill", "-p", "pwd"}, "user name is required"},
			{"no password", []string{"-d", "postgres://localhost/quill", "-n", "alice"}, "password is required"},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				err := run(t.Context(), noenv, tt.args, &bytes.Buffer{})

				require.ErrorContains(t, err, tt.message)
			})
		}
	})

	t.Run("create in postgres", func(t *testing.T) {
		pg := testutil.StartPostgresContainer(t)
		t.Cleanup(pg.Terminate)

		getenv := func(key string) string {
			if key == "DATABASE_URI" {
				return pg.DSN
			}
			return ""
		}
		var out bytes.Buffer

		err := run(t.Context(), getenv, []string{"--name", "root", "--password", "root-password"}, &out)

		require.NoError(t, err)
		require.Contains(t, out.String(), `user "root" created`)

		u, err := postgres.NewStorage(pg.Pool).User().GetUserByName(t.Context(), "root")
		require.NoError(t, err)
		require.Nil(t, u.CreatedBy, "bootstrap user has no creator")

		err = run(t.Context(), getenv, []string{"--name", "root", "--password", "other"}, &out)
		require.ErrorIs(t, err, apperrors.ErrUserAlreadyExists)
	})
}
