package database

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"edudesk_backend/internals/configs"
)

func TestPostgresDSN(t *testing.T) {
	dsn := PostgresDSN(configs.DBConfig{
		User: "edu", Password: "p@ss word", Host: "db.local", Port: "6543", Name: "edudesk",
		SSLMode: "disable", StatementTimeout: 3 * time.Second,
	})
	u, err := url.Parse(dsn)
	require.NoError(t, err)
	assert.Equal(t, "postgres", u.Scheme)
	assert.Equal(t, "db.local:6543", u.Host)
	pw, _ := u.User.Password()
	assert.Equal(t, "p@ss word", pw)
	assert.Equal(t, "disable", u.Query().Get("sslmode"))
	assert.Equal(t, "-c statement_timeout=3000", u.Query().Get("options"))
}

func TestOpen_UnknownDrivers(t *testing.T) {
	ctx := context.Background()
	_, err := OpenDocumentStore(ctx, configs.Config{StoreDriver: "sqlite"}, zap.NewNop())
	assert.ErrorContains(t, err, "STORE_DRIVER")

	_, err = OpenGateway(ctx, configs.Config{StorageDriver: "ftp"}, zap.NewNop())
	assert.ErrorContains(t, err, "STORAGE_DRIVER")

	_, err = OpenGateway(ctx, configs.Config{StorageDriver: "s3"}, zap.NewNop())
	assert.ErrorContains(t, err, "missing config")
}
