package database

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"edudesk_backend/internals/configs"
	helperOSS "edudesk_backend/internals/helpers/oss"
	"edudesk_backend/internals/store"
	"edudesk_backend/internals/store/gormstore"
	"edudesk_backend/internals/store/mongostore"
)

// PostgresDSN: URL lengkap + statement_timeout (ms) lewat options.
func PostgresDSN(c configs.DBConfig) string {
	q := url.Values{}
	q.Set("sslmode", c.SSLMode)
	q.Set("application_name", "edudesk")
	if c.StatementTimeout > 0 {
		q.Set("options", fmt.Sprintf("-c statement_timeout=%d", c.StatementTimeout.Milliseconds()))
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     c.Host + ":" + c.Port,
		Path:     "/" + c.Name,
		RawQuery: q.Encode(),
	}
	return u.String()
}

func ConnectPostgres(c configs.DBConfig, log *zap.Logger) (*gorm.DB, error) {
	log.Info("🔌 Koneksi ke PostgreSQL...", zap.String("host", c.Host), zap.String("db", c.Name))
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  PostgresDSN(c),
		PreferSimpleProtocol: true, // 👍 cocok untuk PgBouncer (transaction pooling)
	}), &gorm.Config{Logger: configs.NewGormLogger(log)})
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	TunePool(db, c, log)
	log.Info("✅ DB connected.")
	return db, nil
}

func TunePool(db *gorm.DB, c configs.DBConfig, log *zap.Logger) {
	sqlDB, err := db.DB()
	if err != nil {
		log.Warn("pool tune err", zap.Error(err))
		return
	}
	sqlDB.SetMaxOpenConns(c.MaxOpenConns)
	sqlDB.SetMaxIdleConns(c.MaxIdleConns)
	sqlDB.SetConnMaxIdleTime(60 * time.Second)
	sqlDB.SetConnMaxLifetime(10 * time.Minute)
}

func ConnectMongo(ctx context.Context, c configs.MongoConfig, log *zap.Logger) (*mongo.Client, error) {
	log.Info("🔌 Koneksi ke MongoDB...", zap.String("db", c.Database))
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(c.URI))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	log.Info("✅ Mongo connected.")
	return client, nil
}

// OpenDocumentStore: backend dokumen sesuai STORE_DRIVER. Ditutup lewat Backend.Close.
func OpenDocumentStore(ctx context.Context, cfg configs.Config, log *zap.Logger) (store.Backend, error) {
	switch cfg.StoreDriver {
	case "", "postgres":
		db, err := ConnectPostgres(cfg.DB, log)
		if err != nil {
			return nil, err
		}
		st, err := gormstore.New(db)
		if err != nil {
			return nil, err
		}
		return st, nil
	case "mongo":
		client, err := ConnectMongo(ctx, cfg.Mongo, log)
		if err != nil {
			return nil, err
		}
		return mongostore.New(client, cfg.Mongo.Database), nil
	default:
		return nil, fmt.Errorf("STORE_DRIVER %q tidak dikenal (postgres|mongo)", cfg.StoreDriver)
	}
}

// OpenGateway: object storage sesuai STORAGE_DRIVER.
func OpenGateway(ctx context.Context, cfg configs.Config, log *zap.Logger) (helperOSS.Gateway, error) {
	switch cfg.StorageDriver {
	case "", "oss":
		gw, err := helperOSS.NewOSSService(cfg.OSS, log)
		if err != nil {
			return nil, err
		}
		return gw, nil
	case "s3", "r2":
		gw, err := helperOSS.NewS3Service(ctx, cfg.S3, log)
		if err != nil {
			return nil, err
		}
		return gw, nil
	default:
		return nil, fmt.Errorf("STORAGE_DRIVER %q tidak dikenal (oss|s3)", cfg.StorageDriver)
	}
}
