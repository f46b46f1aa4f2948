package main

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"
)

const SecretKeyBytesLen = 32

// Env keys of signing secrets, in the order they are printed
var secretKeys = []string{
	"USER_ACCESS_TOKEN_SECRET",
	"USER_REFRESH_TOKEN_SECRET",
	"BLOG_ACCESS_TOKEN_SECRET",
	"BLOG_REFRESH_TOKEN_SECRET",
}

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error while generating secret keys: %v\n", err)
		os.Exit(1)
	}
}

// Print one random secret for every token kind as '.env' lines
func run(args []string, out io.Writer) error {
	fs := pflag.NewFlagSet("gensecret", pflag.ContinueOnError)
	size := fs.IntP("bytes", "n", SecretKeyBytesLen, "Secret length in bytes")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *size < 16 {
		return fmt.Errorf("secret should be at least 16 bytes, got %d", *size)
	}

	for _, key := range secretKeys {
		b := make([]byte, *size)
		if _, err := rand.Read(b); err != nil {
			return err
		}

		if _, err := fmt.Fprintf(out, "%s=%s\n", key, hex.EncodeToString(b)); err != nil {
			return err
		}
	}

	return nil
}
