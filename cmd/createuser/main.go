// Command createuser creates the first account directly in the database.
// Accounts created over HTTP need an authenticated creator, so somebody has to be the first.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/nkiryanov/quill/internal/db"
	"github.com/nkiryanov/quill/internal/repository/postgres"
	"github.com/nkiryanov/quill/internal/service/auth"
	"github.com/nkiryanov/quill/internal/service/user"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Same '.env' as the server uses; missing file is fine
	_ = godotenv.Load()

	if err := run(ctx, os.Getenv, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "createuser: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, getenv func(string) string, args []string, out io.Writer) error {
	fs := pflag.NewFlagSet("createuser", pflag.ContinueOnError)
	dsn := fs.StringP("database", "d", getenv("DATABASE_URI"), "Database connection string")
	hasherName := fs.String("hasher", getenv("PASSWORD_HASHER"), "Password hasher (bcrypt, argon2id)")
	name := fs.StringP("name", "n", "", "User name")
	password := fs.StringP("password", "p", getenv("QUILL_PASSWORD"), "User password")
	if err := fs.Parse(args); err != nil {
		return err
	}

	switch {
	case *dsn == "":
		return errors.New("database DSN is required")
	case *name == "":
		return errors.New("user name is required")
	case *password == "":
		return errors.New("password is required")
	}

	hasher, err := auth.NewHasher(*hasherName)
	if err != nil {
		return err
	}

	pool, err := db.ConnectAndMigrate(ctx, *dsn)
	if err != nil {
		return err
	}
	defer pool.Close()

	u, err := user.NewService(hasher, postgres.NewStorage(pool)).CreateUser(ctx, *name, *password, nil)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(out, "user %q created with id %s\n", u.Name, u.ID)
	return err
}
