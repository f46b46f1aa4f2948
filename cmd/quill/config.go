package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/nkiryanov/quill/internal/logger"
	"github.com/nkiryanov/quill/internal/models"
	"github.com/nkiryanov/quill/internal/service/auth"
)

const (
	defaultListenAddr         = "localhost:8000"
	defaultLoggingLevel       = logger.LevelInfo
	defaultEnvironment        = logger.EnvProd
	defaultAlgorithm          = "HS256"
	defaultAccessTokenExpire  = 60 // minutes
	defaultRefreshTokenExpire = 7  // days
	defaultCookieDomain       = "127.0.0.1"
	defaultPasswordHasher     = auth.HasherBcrypt
)

// DSN that selects in-memory storage instead of postgres
const memoryDSN = "memory://"

type Config struct {
	// Default logging level
	LogLevel string

	// Address on which the quill service will be run
	ListenAddr string

	// Database to connect to. 'memory://' keeps everything in process memory
	DatabaseDSN string

	// Environment (local, prod)
	Environment string

	// Signing secrets, one for every token kind
	UserAccessSecret  string
	UserRefreshSecret string
	BlogAccessSecret  string
	BlogRefreshSecret string

	// Signing algorithm shared by all tokens (HS256, HS384, HS512)
	Algorithm string

	// Access token lifetime in minutes
	AccessTokenExpire int

	// Refresh token lifetime in days
	RefreshTokenExpire int

	CookieDomain string
	CookieSecure bool

	// Password hasher name (bcrypt, argon2id)
	PasswordHasher string
}

func NewConfig() *Config {
	return &Config{
		LogLevel:           defaultLoggingLevel,
		ListenAddr:         defaultListenAddr,
		Environment:        defaultEnvironment,
		Algorithm:          defaultAlgorithm,
		AccessTokenExpire:  defaultAccessTokenExpire,
		RefreshTokenExpire: defaultRefreshTokenExpire,
		CookieDomain:       defaultCookieDomain,
		PasswordHasher:     defaultPasswordHasher,
	}
}

// Secrets keyed by token kind as keyring expects them
func (c *Config) Secrets() map[models.TokenKind]string {
	return map[models.TokenKind]string{
		models.AccessKind(models.AudienceUser):  c.UserAccessSecret,
		models.RefreshKind(models.AudienceUser): c.UserRefreshSecret,
		models.AccessKind(models.AudienceBlog):  c.BlogAccessSecret,
		models.RefreshKind(models.AudienceBlog): c.BlogRefreshSecret,
	}
}

// Load variable from '.env' file (should be located at working directory)
func (c *Config) LoadDotEnv(getwd func() (string, error)) error {
	wd, err := getwd()
	if err != nil {
		return err
	}

	envMap, err := godotenv.Read(filepath.Join(wd, ".env"))

	switch {
	case err == nil:
		return c.LoadEnv(func(key string) string {
			return envMap[key]
		})
	case errors.Is(err, os.ErrNotExist):
		return nil
	default:
		return err
	}
}

func (c *Config) LoadEnv(getenv func(string) string) error {
	// Set option to value if it not empty
	setString := func(o *string) func(value string) error {
		return func(value string) error {
			if value != "" {
				*o = value
			}
			return nil
		}
	}
	setInt := func(o *int) func(value string) error {
		return func(value string) error {
			if value == "" {
				return nil
			}
			v, err := strconv.Atoi(value)
			if err != nil {
				return err
			}
			*o = v
			return nil
		}
	}
	setBool := func(o *bool) func(value string) error {
		return func(value string) error {
			if value == "" {
				return nil
			}
			v, err := strconv.ParseBool(value)
			if err != nil {
				return err
			}
			*o = v
			return nil
		}
	}

	envMap := map[string]func(string) error{
		"RUN_ADDRESS":               setString(&c.ListenAddr),
		"DATABASE_URI":              setString(&c.DatabaseDSN),
		"LOG_LEVEL":                 setString(&c.LogLevel),
		"ENVIRONMENT":               setString(&c.Environment),
		"USER_ACCESS_TOKEN_SECRET":  setString(&c.UserAccessSecret),
		"USER_REFRESH_TOKEN_SECRET": setString(&c.UserRefreshSecret),
		"BLOG_ACCESS_TOKEN_SECRET":  setString(&c.BlogAccessSecret),
		"BLOG_REFRESH_TOKEN_SECRET": setString(&c.BlogRefreshSecret),
		"ALGORITHM":                 setString(&c.Algorithm),
		"ACCESS_TOKEN_EXPIRE":       setInt(&c.AccessTokenExpire),
		"REFRESH_TOKEN_EXPIRE":      setInt(&c.RefreshTokenExpire),
		"COOKIE_DOMAIN":             setString(&c.CookieDomain),
		"COOKIE_SECURE":             setBool(&c.CookieSecure),
		"PASSWORD_HASHER":           setString(&c.PasswordHasher),
	}

	var errs []error
	for key, parseFn := range envMap {
		if err := parseFn(getenv(key)); err != nil {
			errs = append(errs, fmt.Errorf("invalid %s: %w", key, err))
		}
	}

	return errors.Join(errs...)
}

func (c *Config) ParseFlags(args []string) error {
	fs := pflag.NewFlagSet("quill", pflag.ContinueOnError)

	fs.StringVarP(&c.ListenAddr, "address", "a", c.ListenAddr, "Server listen address")
	fs.StringVarP(&c.DatabaseDSN, "database", "d", c.DatabaseDSN, "Database connection string or 'memory://'")
	fs.StringVarP(&c.LogLevel, "log-level", "l", c.LogLevel, "Logging level (debug, info, warn, error)")
	fs.StringVarP(&c.Environment, "environment", "e", c.Environment, "Environment (local, prod)")
	fs.StringVar(&c.UserAccessSecret, "user-access-secret", c.UserAccessSecret, "User access token secret")
	fs.StringVar(&c.UserRefreshSecret, "user-refresh-secret", c.UserRefreshSecret, "User refresh token secret")
	fs.StringVar(&c.BlogAccessSecret, "blog-access-secret", c.BlogAccessSecret, "Blog access token secret")
	fs.StringVar(&c.BlogRefreshSecret, "blog-refresh-secret", c.BlogRefreshSecret, "Blog refresh token secret")
	fs.StringVar(&c.Algorithm, "algorithm", c.Algorithm, "Token signing algorithm (HS256, HS384, HS512)")
	fs.IntVar(&c.AccessTokenExpire, "access-expire", c.AccessTokenExpire, "Access token lifetime in minutes")
	fs.IntVar(&c.RefreshTokenExpire, "refresh-expire", c.RefreshTokenExpire, "Refresh token lifetime in days")
	fs.StringVar(&c.CookieDomain, "cookie-domain", c.CookieDomain, "Domain of token cookies")
	fs.BoolVar(&c.CookieSecure, "cookie-secure", c.CookieSecure, "Send token cookies over https only")
	fs.StringVar(&c.PasswordHasher, "hasher", c.PasswordHasher, "Password hasher (bcrypt, argon2id)")

	return fs.Parse(args)
}
