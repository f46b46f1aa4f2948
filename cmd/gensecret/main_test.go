package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/require"
)

func Test_run(t *testing.T) {
	t.Run("prints all secrets", func(t *testing.T) {
		var out bytes.Buffer

		err := run(nil, &out)

		require.NoError(t, err)
		env, err := godotenv.Parse(strings.NewReader(out.String()))
		require.NoError(t, err, "output should be valid .env file")
		require.Len(t, env, 4)
		for _, key := range secretKeys {
			require.Len(t, env[key], 2*SecretKeyBytesLen, "%s has wrong length", key)
		}
		require.NotEqual(t, env["USER_ACCESS_TOKEN_SECRET"], env["USER_REFRESH_TOKEN_SECRET"], "every secret is generated separately")
	})

	t.Run("custom length", func(t *testing.T) {
		var out bytes.Buffer

		err := run([]string{"--bytes", "64"}, &out)

		require.NoError(t, err)
		env, err := godotenv.Parse(&out)
		require.NoError(t, err)
		require.Len(t, env["BLOG_REFRESH_TOKEN_SECRET"], 128)
	})

	t.Run("too short", func(t *testing.T) {
		err := run([]string{"-n", "4"}, &bytes.Buffer{})

		require.Error(t, err)
	})
}
