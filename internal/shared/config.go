package shared

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv      string
	LogLevel    string
	HTTPAddr    string
	MetricsAddr string
	MySQLDSN    string
	RedisAddr   string
	RedisDB     int
	RedisPass   string

	LLMBaseURL string
	LLMKey     string
	LLMModel   string

	GovAttractionsURL string
	HKOForecastURL    string
	SeedWorkers       int

	SourceTimeout time.Duration
	CacheTTL      time.Duration

	MaxVenuesPerDay int
	FatigueCeiling  int
	RestThreshold   int
	DedupRadiusM    float64
	SeniorDiscount  float64
	ChildDiscount   float64
	BudgetOverage   float64
	RelaxationOrder []string
}

// Load reads the environment, primed from .env when one exists.
func Load() Config {
	if err := godotenv.Load(); err == nil {
		log.Debug().Msg("loaded .env")
	}

	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
			log.Warn().Str("key", k).Str("value", v).Msg("not an integer, using default")
		}
		return def
	}
	atof := func(k string, def float64) float64 {
		if v := os.Getenv(k); v != "" {
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				return f
			}
			log.Warn().Str("key", k).Str("value", v).Msg("not a number, using default")
		}
		return def
	}

	c := Config{
		AppEnv:            env("APP_ENV", "prod"),
		LogLevel:          env("LOG_LEVEL", "info"),
		HTTPAddr:          env("HTTP_ADDR", ":8080"),
		MetricsAddr:       env("METRICS_ADDR", ":9100"),
		MySQLDSN:          env("MYSQL_DSN", "root:root@tcp(localhost:3306)/hk_itinerary?parseTime=true&charset=utf8mb4,utf8&loc=UTC"),
		RedisAddr:         env("REDIS_ADDR", "localhost:6379"),
		RedisDB:           atoi("REDIS_DB", 0),
		RedisPass:         env("REDIS_PASSWORD", ""),
		LLMBaseURL:        env("LLM_BASE_URL", "https://chatapi.akash.network/api/v1"),
		LLMKey:            env("LLM_API_KEY", ""),
		LLMModel:          env("LLM_MODEL", "Meta-Llama-3-1-8B-Instruct-FP8"),
		GovAttractionsURL: env("GOV_ATTRACTIONS_URL", "https://www.tourism.gov.hk/datagovhk/major_attractions/major_attractions_info_en.csv"),
		HKOForecastURL:    env("HKO_FORECAST_URL", "https://data.weather.gov.hk/weatherAPI/opendata/weather.php?dataType=fnd&lang=en"),
		SeedWorkers:       atoi("SEED_WORKERS", 8),
		SourceTimeout:     time.Duration(atoi("SOURCE_TIMEOUT_MS", 8000)) * time.Millisecond,
		CacheTTL:          time.Duration(atoi("CACHE_TTL_SECONDS", 3600)) * time.Second,
		MaxVenuesPerDay:   atoi("MAX_VENUES_PER_DAY", 3),
		FatigueCeiling:    atoi("FATIGUE_CEILING", 10),
		RestThreshold:     atoi("REST_THRESHOLD", 6),
		DedupRadiusM:      atof("DEDUP_RADIUS_M", 150),
		SeniorDiscount:    atof("SENIOR_DISCOUNT", 0.2),
		ChildDiscount:     atof("CHILD_DISCOUNT", 0.1),
		BudgetOverage:     atof("BUDGET_OVERAGE_TOLERANCE", 0.10),
		RelaxationOrder:   list("RELAXATION_ORDER", []string{"weather", "diversity", "budget"}),
	}
	if c.LLMKey == "" {
		log.Warn().Msg("LLM_API_KEY is empty; the AI-generated tier will be skipped")
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func list(k string, def []string) []string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, strings.ToLower(p))
		}
	}
	return out
}
