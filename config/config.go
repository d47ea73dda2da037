package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"olx_harvester/models"
)

type Config struct {
	BaseURL   string
	UserAgent string
	Proxy     ProxyConfig
	Crawl     EngineConfig
	Detail    EngineConfig
	Dirs      DirsConfig
	Scheduler SchedulerConfig
	Postgres  PostgresConfig
	Export    ExportConfig
	DBPath    string
	USDToUZS  float64
	Districts []models.District
}

// EngineConfig is the explicit immutable knob set handed to each engine.
type EngineConfig struct {
	MinDelay     time.Duration
	MaxDelay     time.Duration
	Timeout      time.Duration
	SaveInterval int
	MaxPages     int
}

type ProxyConfig struct {
	URL string
}

// DirsConfig names the per-stage output directories.
type DirsConfig struct {
	Listings string
	Cleaned  string
	Details  string
}

type SchedulerConfig struct {
	Cron     string
	Interval time.Duration
}

type PostgresConfig struct {
	DBURL string
}

type ExportConfig struct {
	Bucket          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	Prefix          string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		BaseURL:   getEnv("HARVEST_BASE_URL", "https://www.olx.uz"),
		UserAgent: getEnv("HARVEST_USER_AGENT", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"),
		Proxy: ProxyConfig{
			URL: os.Getenv("HARVEST_PROXY_URL"),
		},
		Crawl: EngineConfig{
			MinDelay: getEnvDuration("CRAWL_MIN_DELAY", 1500*time.Millisecond),
			MaxDelay: getEnvDuration("CRAWL_MAX_DELAY", 1500*time.Millisecond),
			Timeout:  getEnvDuration("CRAWL_TIMEOUT", 20*time.Second),
			MaxPages: getEnvInt("CRAWL_MAX_PAGES", 10),
		},
		Detail: EngineConfig{
			MinDelay:     getEnvDuration("DETAIL_MIN_DELAY", 1*time.Second),
			MaxDelay:     getEnvDuration("DETAIL_MAX_DELAY", 2500*time.Millisecond),
			Timeout:      getEnvDuration("DETAIL_TIMEOUT", 10*time.Second),
			SaveInterval: getEnvInt("DETAIL_SAVE_INTERVAL", 50),
		},
		Dirs: DirsConfig{
			Listings: getEnv("HARVEST_LISTINGS_DIR", "district_listing_page"),
			Cleaned:  getEnv("HARVEST_CLEANED_DIR", "district_listing_page_cleaned"),
			Details:  getEnv("HARVEST_DETAILS_DIR", "cards_details"),
		},
		Scheduler: SchedulerConfig{
			Cron: os.Getenv("HARVEST_CRON"),
		},
		Postgres: PostgresConfig{
			DBURL: os.Getenv("DATABASE_URL"),
		},
		Export: ExportConfig{
			Bucket:          os.Getenv("HARVEST_S3_BUCKET"),
			Region:          getEnv("HARVEST_S3_REGION", "us-east-1"),
			Endpoint:        os.Getenv("HARVEST_S3_ENDPOINT"),
			AccessKeyID:     os.Getenv("HARVEST_S3_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("HARVEST_S3_SECRET_ACCESS_KEY"),
			Prefix:          getEnv("HARVEST_S3_PREFIX", "harvest"),
		},
		DBPath:   getEnv("DB_PATH", "harvester.db"),
		USDToUZS: getEnvFloat("USD_TO_UZS", 13933),
	}

	if interval := os.Getenv("HARVEST_INTERVAL"); interval != "" {
		d, err := time.ParseDuration(interval)
		if err == nil {
			cfg.Scheduler.Interval = d
		}
	}

	districts, err := loadDistricts(getEnv("HARVEST_DISTRICTS_FILE", "config/districts.yaml"))
	if err != nil {
		return nil, err
	}
	cfg.Districts = districts

	return cfg, nil
}

// loadDistricts reads the district enumeration from a YAML file, falling
// back to the built-in Tashkent set when the file does not exist.
func loadDistricts(path string) ([]models.District, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return models.DefaultDistricts(), nil
		}
		return nil, err
	}

	var file struct {
		Districts []models.District `yaml:"districts"`
	}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(file.Districts) == 0 {
		return nil, fmt.Errorf("%s contains no districts", path)
	}
	return file.Districts, nil
}

// SelectDistricts filters the configured set down to the given ids.
// An empty id list selects everything.
func (c *Config) SelectDistricts(ids []int) []models.District {
	if len(ids) == 0 {
		return c.Districts
	}
	want := make(map[int]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var out []models.District
	for _, d := range c.Districts {
		if want[d.ID] {
			out = append(out, d)
		}
	}
	return out
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}
