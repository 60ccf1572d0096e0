package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"github.com/vfg2006/insights-ingestor/internal/domain"
)

// MaxThumbnailConcurrency limita as consultas simultâneas de miniaturas
const MaxThumbnailConcurrency = 20

type Config struct {
	App          App          `mapstructure:",squash"`
	Server       Server       `mapstructure:",squash"`
	Database     Database     `mapstructure:",squash"`
	Meta         Meta         `mapstructure:",squash"`
	Ingestion    Ingestion    `mapstructure:",squash"`
	InsightsSync InsightsSync `mapstructure:",squash"`
	Cors         Cors         `mapstructure:",squash"`
}

type Server struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
}

type Database struct {
	DSN      string `mapstructure:"-"`
	Driver   string `mapstructure:"database_driver"`
	Password string `mapstructure:"database_password"`
	URL      string `mapstructure:"database_url"`
	User     string `mapstructure:"database_user"`
}

type Meta struct {
	BaseURL           string        `mapstructure:"meta_base_url"`
	URL               string        `mapstructure:"-"`
	Version           string        `mapstructure:"meta_version"`
	AccessToken       string        `mapstructure:"meta_access_token"`
	AdAccountID       string        `mapstructure:"meta_ad_account_id"`
	RequestsPerSecond float64       `mapstructure:"meta_requests_per_second"`
	RequestsBurst     int           `mapstructure:"meta_requests_burst"`
	HTTPTimeout       time.Duration `mapstructure:"meta_http_timeout"`
}

// AccountPath devolve o identificador da conta no formato esperado pela Graph API
func (m Meta) AccountPath() string {
	if strings.HasPrefix(m.AdAccountID, "act_") {
		return m.AdAccountID
	}
	return "act_" + m.AdAccountID
}

type Ingestion struct {
	DatePreset           string            `mapstructure:"ingest_date_preset"`
	TimeIncrement        int               `mapstructure:"ingest_time_increment"`
	PageLimit            int               `mapstructure:"ingest_page_limit"`
	MaxPages             int               `mapstructure:"ingest_max_pages"`
	ThumbnailConcurrency int               `mapstructure:"ingest_thumbnail_concurrency"`
	ThumbnailWidth       int               `mapstructure:"ingest_thumbnail_width"`
	ThumbnailHeight      int               `mapstructure:"ingest_thumbnail_height"`
	RunTimeout           time.Duration     `mapstructure:"ingest_run_timeout"`
	CustomConversions    map[string]string `mapstructure:"ingest_custom_conversions"`
	ConversionMatch      string            `mapstructure:"ingest_conversion_match"`
}

// ConversionTable monta a tabela de conversões personalizadas configurada
func (i Ingestion) ConversionTable() domain.ConversionTable {
	columns := make(map[string]string, len(i.CustomConversions))
	for id, column := range i.CustomConversions {
		columns[id] = column
	}

	match := domain.MatchMode(i.ConversionMatch)
	if match == "" {
		match = domain.MatchAny
	}

	return domain.ConversionTable{Columns: columns, Match: match}
}

type InsightsSync struct {
	CronSchedule  string   `mapstructure:"insights_sync_cron"`
	Levels        []string `mapstructure:"insights_sync_levels"`
	LookbackDays  int      `mapstructure:"insights_sync_lookback_days"`
	RetentionDays int      `mapstructure:"insights_retention_days"`
	Enabled       bool     `mapstructure:"insights_sync_enabled"`
}

type Cors struct {
	AllowedOrigins []string `mapstructure:"cors_allowed_origins"`
}

type App struct {
	LogLevel string `mapstructure:"log_level"`
}

func SetDefaults(v *viper.Viper) {
	v.SetDefault("HOST", "localhost")
	v.SetDefault("PORT", 8000)

	v.SetDefault("DATABASE_DRIVER", "postgres")
	v.SetDefault("DATABASE_URL", "localhost:5432/insights?sslmode=disable")
	v.SetDefault("DATABASE_USER", "postgres")
	v.SetDefault("DATABASE_PASSWORD", "root")

	v.SetDefault("META_BASE_URL", "https://graph.facebook.com")
	v.SetDefault("META_VERSION", "v22.0")
	v.SetDefault("META_ACCESS_TOKEN", "")
	v.SetDefault("META_AD_ACCOUNT_ID", "")
	v.SetDefault("META_REQUESTS_PER_SECOND", 5)
	v.SetDefault("META_REQUESTS_BURST", 5)
	v.SetDefault("META_HTTP_TIMEOUT", "30s")

	v.SetDefault("INGEST_DATE_PRESET", "last_30d")
	v.SetDefault("INGEST_TIME_INCREMENT", 1)   // um registro por dia
	v.SetDefault("INGEST_PAGE_LIMIT", 500)     // registros por página
	v.SetDefault("INGEST_MAX_PAGES", 50)       // teto de segurança da paginação
	v.SetDefault("INGEST_THUMBNAIL_CONCURRENCY", 10)
	v.SetDefault("INGEST_THUMBNAIL_WIDTH", 1920)
	v.SetDefault("INGEST_THUMBNAIL_HEIGHT", 1080)
	v.SetDefault("INGEST_RUN_TIMEOUT", "5m")
	v.SetDefault("INGEST_CUSTOM_CONVERSIONS", "")
	v.SetDefault("INGEST_CONVERSION_MATCH", string(domain.MatchAny))

	v.SetDefault("INSIGHTS_SYNC_CRON", "0 3 * * *") // Todos os dias às 3h da manhã
	v.SetDefault("INSIGHTS_SYNC_LEVELS", "ad,adset,campaign")
	v.SetDefault("INSIGHTS_SYNC_LOOKBACK_DAYS", 7)
	v.SetDefault("INSIGHTS_RETENTION_DAYS", 0) // 0 mantém os dados permanentemente
	v.SetDefault("INSIGHTS_SYNC_ENABLED", false)

	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")

	v.SetDefault("LOG_LEVEL", "debug")
}

func NewConfig() (*Config, error) {
	loadEnvFile() // ONLY LOCAL

	v := viper.New()
	v.SetConfigType("env")
	v.SetConfigFile(".env")

	if err := v.ReadInConfig(); err != nil {
		logrus.Debug("config: usando variáveis de ambiente (viper não conseguiu ler .env): ", err)
	}

	return Load(v)
}

// Load aplica os defaults, lê o ambiente e decodifica a configuração
func Load(v *viper.Viper) (*Config, error) {
	SetDefaults(v)
	v.AutomaticEnv()

	config := &Config{}
	err := v.Unmarshal(config, viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			StringToConversionTableHookFunc(),
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	))
	if err != nil {
		return nil, fmt.Errorf("erro ao decodificar configuração: %w", err)
	}

	config.Meta.BaseURL = strings.TrimRight(config.Meta.BaseURL, "/")
	config.Meta.URL = fmt.Sprintf("%s/%s", config.Meta.BaseURL, config.Meta.Version)

	if config.Ingestion.ThumbnailConcurrency > MaxThumbnailConcurrency {
		logrus.WithFields(logrus.Fields{
			"configured": config.Ingestion.ThumbnailConcurrency,
			"max":        MaxThumbnailConcurrency,
		}).Warn("config: concorrência de miniaturas acima do limite, ajustando")
		config.Ingestion.ThumbnailConcurrency = MaxThumbnailConcurrency
	}

	config.Database.DSN = fmt.Sprintf(
		"%s://%s:%s@%s",
		config.Database.Driver,
		config.Database.User,
		config.Database.Password,
		config.Database.URL,
	)

	return config, nil
}

// Validate confere o que é obrigatório antes de qualquer chamada à API
func (c *Config) Validate() error {
	switch {
	case c.Meta.AccessToken == "":
		return &domain.ConfigError{Field: "META_ACCESS_TOKEN", Reason: "token de acesso não configurado"}
	case c.Meta.AdAccountID == "":
		return &domain.ConfigError{Field: "META_AD_ACCOUNT_ID", Reason: "conta de anúncios não configurada"}
	case c.Meta.BaseURL == "" || c.Meta.Version == "":
		return &domain.ConfigError{Field: "META_BASE_URL", Reason: "URL base ou versão da API ausente"}
	case c.Ingestion.PageLimit <= 0:
		return &domain.ConfigError{Field: "INGEST_PAGE_LIMIT", Reason: "deve ser maior que zero"}
	case c.Ingestion.MaxPages <= 0:
		return &domain.ConfigError{Field: "INGEST_MAX_PAGES", Reason: "deve ser maior que zero"}
	case c.Ingestion.ThumbnailConcurrency <= 0:
		return &domain.ConfigError{Field: "INGEST_THUMBNAIL_CONCURRENCY", Reason: "deve ser maior que zero"}
	case c.Ingestion.TimeIncrement < 0:
		return &domain.ConfigError{Field: "INGEST_TIME_INCREMENT", Reason: "não pode ser negativo"}
	}

	return c.Ingestion.ConversionTable().Validate()
}

// SyncLevels converte os níveis configurados para o agendador
func (c *Config) SyncLevels() ([]domain.ReportingLevel, error) {
	levels := make([]domain.ReportingLevel, 0, len(c.InsightsSync.Levels))
	for _, raw := range c.InsightsSync.Levels {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		level, err := domain.ParseReportingLevel(raw)
		if err != nil {
			return nil, err
		}
		levels = append(levels, level)
	}
	return levels, nil
}

// StringToConversionTableHookFunc converte "id:coluna,id:coluna" em map[string]string
func StringToConversionTableHookFunc() mapstructure.DecodeHookFuncType {
	return func(f reflect.Type, t reflect.Type, data interface{}) (interface{}, error) {
		if f.Kind() != reflect.String || t != reflect.TypeOf(map[string]string{}) {
			return data, nil
		}

		return ParseConversionTable(data.(string))
	}
}

func ParseConversionTable(raw string) (map[string]string, error) {
	table := make(map[string]string)
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		id, column, ok := strings.Cut(entry, ":")
		id, column = strings.TrimSpace(id), strings.TrimSpace(column)
		if !ok || id == "" || column == "" {
			return nil, &domain.ConfigError{
				Field:  "INGEST_CUSTOM_CONVERSIONS",
				Reason: fmt.Sprintf("entrada inválida %q, formato esperado <id>:<coluna>", entry),
			}
		}

		table[id] = column
	}
	return table, nil
}

// Função auxiliar para carregar o arquivo .env usando godotenv
func loadEnvFile() {
	cwd, err := os.Getwd()
	if err != nil {
		logrus.Warn("Não foi possível obter o diretório atual:", err)
		return
	}

	locations := []string{
		filepath.Join(cwd, ".env"),
		filepath.Join(filepath.Dir(cwd), ".env"),
		filepath.Join(cwd, "../../.env"),
	}

	for _, location := range locations {
		if err := godotenv.Load(location); err == nil {
			logrus.Info("Arquivo .env carregado com sucesso de:", location)
			return
		}
	}

	logrus.Debug("Nenhum arquivo .env encontrado, usando apenas variáveis de ambiente")
}
