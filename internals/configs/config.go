package configs

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	helperOSS "edudesk_backend/internals/helpers/oss"
)

// =======================
// ENV LOADER
// =======================
func LoadEnv() {
	if os.Getenv("RAILWAY_ENVIRONMENT") == "" {
		if err := godotenv.Load(); err != nil {
			log.Println("⚠️ Tidak menemukan .env file, menggunakan ENV dari sistem")
		} else {
			log.Println("✅ .env file berhasil dimuat!")
		}
	} else {
		log.Println("🚀 Running in Railway, menggunakan ENV dari sistem")
	}
}

func GetEnv(key string, defaultValue ...string) string {
	value, exists := os.LookupEnv(key)
	if !exists && len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return value
}

func getInt(key string, def int) int {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
		log.Printf("⚠️ %s bukan angka, pakai default %d", key, def)
	}
	return def
}

func getFloat(key string, def float64) float64 {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
		log.Printf("⚠️ %s bukan angka, pakai default %v", key, def)
	}
	return def
}

func getBool(key string, def bool) bool {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func getDuration(key string, def time.Duration) time.Duration {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		log.Printf("⚠️ %s bukan durasi (mis. 90s), pakai default %s", key, def)
	}
	return def
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// =======================
// TYPED CONFIG
// =======================

type DBConfig struct {
	User             string
	Password         string
	Host             string
	Port             string
	Name             string
	SSLMode          string
	StatementTimeout time.Duration
	MaxOpenConns     int
	MaxIdleConns     int
}

type MongoConfig struct {
	URI      string
	Database string
}

type Config struct {
	AppEnv    string
	Port      string
	JWTSecret string
	LogLevel  string

	StoreDriver string // postgres | mongo
	DB          DBConfig
	Mongo       MongoConfig

	StorageDriver string // oss | s3
	OSS           helperOSS.OSSConfig
	S3            helperOSS.S3Config
	WebP          helperOSS.WebPOptions

	RequestTimeout time.Duration
	CorsOrigins    []string

	OrphanSweepCron    string
	OrphanSweepBatch   int
	OrphanSweepDryRun  bool
	OrphanMaxAttempts  int
	PromotionWritesSec float64
	PromotionTimeout   time.Duration

	MidtransServerKey string
	MidtransUseProd   bool
}

func (c Config) IsProduction() bool {
	return strings.EqualFold(c.AppEnv, "production")
}

// Load: baca seluruh konfigurasi dari ENV (panggil setelah LoadEnv).
func Load() Config {
	webp := helperOSS.DefaultWebPOptions()
	webp.MaxW = getInt("IMAGE_WEBP_MAX_W", webp.MaxW)
	webp.MaxH = getInt("IMAGE_WEBP_MAX_H", webp.MaxH)
	webp.TargetKB = getInt("IMAGE_WEBP_TARGET_KB", webp.TargetKB)
	webp.Quality = float32(getFloat("IMAGE_WEBP_QUALITY", float64(webp.Quality)))
	webp.Lossless = getBool("IMAGE_WEBP_LOSSLESS", webp.Lossless)

	cfg := Config{
		AppEnv:    GetEnv("APP_ENV", "development"),
		Port:      GetEnv("PORT", "3000"),
		JWTSecret: GetEnv("JWT_SECRET"),
		LogLevel:  GetEnv("LOG_LEVEL", "info"),

		StoreDriver: strings.ToLower(GetEnv("STORE_DRIVER", "postgres")),
		DB: DBConfig{
			User:             GetEnv("DB_USER"),
			Password:         GetEnv("DB_PASSWORD"),
			Host:             GetEnv("DB_HOST", "localhost"),
			Port:             GetEnv("DB_PORT", "5432"),
			Name:             GetEnv("DB_NAME"),
			SSLMode:          GetEnv("DB_SSLMODE", "require"),
			StatementTimeout: getDuration("DB_STATEMENT_TIMEOUT", 3*time.Second),
			MaxOpenConns:     getInt("DB_MAX_OPEN_CONNS", 20),
			MaxIdleConns:     getInt("DB_MAX_IDLE_CONNS", 10),
		},
		Mongo: MongoConfig{
			URI:      GetEnv("MONGO_URI", "mongodb://localhost:27017"),
			Database: GetEnv("MONGO_DB", "edudesk"),
		},

		StorageDriver: strings.ToLower(GetEnv("STORAGE_DRIVER", "oss")),
		OSS: helperOSS.OSSConfig{
			Endpoint:      GetEnv("ALI_OSS_ENDPOINT"),
			AccessKey:     GetEnv("ALI_OSS_ACCESS_KEY"),
			SecretKey:     GetEnv("ALI_OSS_SECRET_KEY"),
			SecurityToken: GetEnv("ALI_OSS_SECURITY_TOKEN"),
			Bucket:        GetEnv("ALI_OSS_BUCKET"),
			PublicBase:    GetEnv("ALI_OSS_PUBLIC_BASE"),
		},
		S3: helperOSS.S3Config{
			Endpoint:   GetEnv("S3_ENDPOINT"),
			Region:     GetEnv("S3_REGION", "auto"),
			AccessKey:  GetEnv("S3_ACCESS_KEY"),
			SecretKey:  GetEnv("S3_SECRET_KEY"),
			Bucket:     GetEnv("S3_BUCKET"),
			PublicBase: GetEnv("S3_PUBLIC_BASE"),
			UseSSL:     getBool("S3_USE_SSL", true),
		},
		WebP: webp,

		RequestTimeout: getDuration("REQUEST_TIMEOUT", 5*time.Second),
		CorsOrigins:    splitList(GetEnv("CORS_ORIGINS")),

		OrphanSweepCron:    GetEnv("ORPHAN_SWEEP_CRON", "15 2 * * *"),
		OrphanSweepBatch:   getInt("ORPHAN_SWEEP_BATCH", 200),
		OrphanSweepDryRun:  getBool("ORPHAN_SWEEP_DRY_RUN", false),
		OrphanMaxAttempts:  getInt("ORPHAN_MAX_ATTEMPTS", 0),
		PromotionWritesSec: getFloat("PROMOTION_WRITES_PER_SEC", 10), // jeda 100ms antar tulis
		PromotionTimeout:   getDuration("PROMOTION_TIMEOUT", 2*time.Minute),

		MidtransServerKey: GetEnv("MIDTRANS_SERVER_KEY"),
		MidtransUseProd:   getBool("MIDTRANS_USE_PROD", false),
	}

	if cfg.JWTSecret == "" {
		log.Println("❌ JWT_SECRET belum diset!")
	}
	if cfg.MidtransServerKey == "" {
		log.Println("⚠️ MIDTRANS_SERVER_KEY kosong, pembayaran online nonaktif")
	}
	return cfg
}
