package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

const (
	SinkGoogleSheets = "gsheet"
	SinkExcel        = "xlsx"
)

var ErrInvalidSettings = errors.New("invalid settings")

// Settings is read from the environment (after .env) and, when CONFIG_FILE
// points at a yaml file, from that file with environment overrides.
// Secrets only come from the environment (yaml:"-").
type Settings struct {
	LogLevel string `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`

	HubSpot   HubSpotSettings   `yaml:"hubspot"`
	Sheets    SheetSettings     `yaml:"sheets"`
	Generator GeneratorSettings `yaml:"generator"`
	Redis     RedisSettings     `yaml:"redis"`
	PubSub    PubSubSettings    `yaml:"pubsub"`
}

type HubSpotSettings struct {
	APIKey          string        `yaml:"-" env:"HUBSPOT_API_KEY" validate:"required"`
	BaseURL         string        `yaml:"base_url" env:"HUBSPOT_BASE_URL" env-default:"https://api.hubapi.com" validate:"required,url"`
	RateLimitPerSec int           `yaml:"rate_limit_per_sec" env:"HUBSPOT_RATE_LIMIT_PER_SEC" env-default:"9" validate:"gte=0"`
	PageSize        int           `yaml:"page_size" env:"HUBSPOT_PAGE_SIZE" env-default:"100" validate:"min=1,max=100"`
	Timeout         time.Duration `yaml:"timeout" env:"HUBSPOT_TIMEOUT" env-default:"30s"`
	CompanyCacheTTL time.Duration `yaml:"company_cache_ttl" env:"HUBSPOT_COMPANY_CACHE_TTL" env-default:"24h"`
}

type SheetSettings struct {
	Sink            string `yaml:"sink" env:"EXPORT_SINK" env-default:"gsheet" validate:"oneof=gsheet xlsx"`
	CredentialsFile string `yaml:"credentials_file" env:"GOOGLE_CREDENTIALS_FILE" validate:"required_if=Sink gsheet"`
	SpreadsheetID   string `yaml:"spreadsheet_id" env:"SPREADSHEET_ID"`
	SpreadsheetName string `yaml:"spreadsheet_name" env:"SPREADSHEET_NAME" env-default:"HubSpot - Sales Pipeline Analysis"`
	DealTab         string `yaml:"deal_tab" env:"SHEET_DEAL_TAB" env-default:"HubSpot - Deal" validate:"required"`
	CompanyTab      string `yaml:"company_tab" env:"SHEET_COMPANY_TAB" env-default:"HubSpot - Company" validate:"required"`
	OwnerTab        string `yaml:"owner_tab" env:"SHEET_OWNER_TAB" env-default:"HubSpot - Sales Reps" validate:"required"`
	RawTab          string `yaml:"raw_tab" env:"SHEET_RAW_TAB" env-default:"HubSpot Raw Data" validate:"required"`
	XLSXPath        string `yaml:"xlsx_path" env:"XLSX_PATH" env-default:"hubspot_pipeline.xlsx" validate:"required_if=Sink xlsx"`
	GCSBucket       string `yaml:"gcs_bucket" env:"GCS_BUCKET"`
	GCSPrefix       string `yaml:"gcs_prefix" env:"GCS_PREFIX" env-default:"pipeline-exports"`
	GCSCredentials  string `yaml:"-" env:"GCS_CREDENTIALS_JSON"`
}

type GeneratorSettings struct {
	Seed          uint64 `yaml:"seed" env:"PIPELINE_SEED" env-default:"0"`
	MinOffsetDays int    `yaml:"min_offset_days" env:"STAGE_OFFSET_MIN_DAYS" env-default:"2" validate:"min=1"`
	MaxOffsetDays int    `yaml:"max_offset_days" env:"STAGE_OFFSET_MAX_DAYS" env-default:"25" validate:"gtefield=MinOffsetDays"`
	DealCount     int    `yaml:"deal_count" env:"GENERATOR_DEAL_COUNT" env-default:"100" validate:"min=1"`
}

type RedisSettings struct {
	Address  string        `yaml:"address" env:"REDIS_ADDRESS"`
	Password string        `yaml:"-" env:"REDIS_PASSWORD"`
	LockTTL  time.Duration `yaml:"lock_ttl" env:"EXPORT_LOCK_TTL" env-default:"10m"`
}

type PubSubSettings struct {
	ProjectID       string `yaml:"project_id" env:"PUBSUB_PROJECT_ID"`
	CredentialsJSON string `yaml:"-" env:"PUBSUB_CREDENTIALS_JSON"`
	SummaryTopic    string `yaml:"summary_topic" env:"PIPELINE_EXPORT_TOPIC"`
}

var validate = validator.New()

func init() {
	// Load env from .env
	godotenv.Load()
}

// LoadSettings reads and validates the settings every tool needs. Sheet
// settings are validated separately by RequireSheets.
func LoadSettings() (*Settings, error) {
	var s Settings
	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		if err := cleanenv.ReadConfig(path, &s); err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(&s); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}
	if err := checkStruct(s.HubSpot); err != nil {
		return nil, err
	}
	if err := checkStruct(s.Generator); err != nil {
		return nil, err
	}
	SetLogLevel(s.LogLevel)
	return &s, nil
}

// RequireSheets validates the spreadsheet sink settings.
func (s *Settings) RequireSheets() error {
	return checkStruct(s.Sheets)
}

// PubSubProjectID prefers the explicit setting, then the usual GCP env vars.
func (s *Settings) PubSubProjectID() string {
	if s.PubSub.ProjectID != "" {
		return s.PubSub.ProjectID
	}
	if v := os.Getenv("GOOGLE_CLOUD_PROJECT"); v != "" {
		return v
	}
	return os.Getenv("GCP_PROJECT")
}

func checkStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalidSettings, err)
	}
	return fmt.Errorf("%w: %s", ErrInvalidSettings, describeValidationErrors(verrs))
}

func describeValidationErrors(verrs validator.ValidationErrors) string {
	msgs := make([]string, 0, len(verrs))
	for _, ve := range verrs {
		msgs = append(msgs, ve.Namespace()+" "+ve.Tag())
	}
	sort.Strings(msgs)
	return strings.Join(msgs, ", ")
}
