package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/spf13/viper"

	shared "equiploan/internal/config"
)

const (
	defaultLogLevel    = "info"
	defaultEnv         = shared.EnvLocal
	defaultConfigDir   = ".equiploan"
	defaultSnapshotDB  = "snapshot.db"
	defaultSyncMs      = 30000
	defaultSettleMs    = 1500
	defaultTotalUnits  = 40
	defaultAttempts    = 3
	defaultRetryMs     = 1000
	defaultTimeoutMs   = 15000
	defaultPendingMs   = 600000
	defaultSkewMs      = 300000
	BackoffFixed       = "fixed"
	BackoffExponential = "exponential"
)

// Значения по умолчанию для идентификаторов полей формы.
var defaultFormEntries = FormEntries{
	Equipment: "entry.1834514522",
	FullName:  "entry.1486223911",
	Document:  "entry.1695051506",
	Group:     "entry.564849635",
	Phone:     "entry.414930075",
	Professor: "entry.116949605",
	Subject:   "entry.1714096158",
	Type:      "entry.801360829",
	Comment:   "entry.43776270",
}

// FormEntries имена полей формы записи, по одному на поле события.
type FormEntries struct {
	Equipment string `mapstructure:"equipment"`
	FullName  string `mapstructure:"full_name"`
	Document  string `mapstructure:"document"`
	Group     string `mapstructure:"group"`
	Phone     string `mapstructure:"phone"`
	Professor string `mapstructure:"professor"`
	Subject   string `mapstructure:"subject"`
	Type      string `mapstructure:"type"`
	Comment   string `mapstructure:"comment"`
}

type Config struct {
	Env        string `mapstructure:"app_env"`
	LogLevel   string `mapstructure:"log_level"`
	RosterURL  string `mapstructure:"roster_url"`
	HistoryURL string `mapstructure:"history_url"`
	FormURL    string `mapstructure:"form_url"`
	Form       FormEntries

	SyncInterval   time.Duration
	SettleDelay    time.Duration
	TotalUnits     int
	RetryAttempts  int
	RetryDelay     time.Duration
	RetryBackoff   string
	HTTPTimeout    time.Duration
	PendingTTL     time.Duration
	ConfirmSkew    time.Duration
	ConfigDir      string
	DataPath       string
	SnapshotEnable bool

	// SheetTimezone часовой пояс таблицы: литералы Date(...) и даты вида д/м/гггг не содержат зоны.
	// Пустое значение означает часовой пояс хоста.
	SheetTimezone string
	SheetLocation *time.Location
}

// MustLoad загружает конфигурацию клиента и паникует при ошибке
func MustLoad(configFile string) *Config {
	cfg, err := Load(configFile)
	if err != nil {
		panic(fmt.Sprintf("Ошибка конфигурации: %v", err))
	}
	return cfg
}

// Load загружает конфигурацию из .env, переменных окружения и необязательного файла.
func Load(configFile string) (*Config, error) {
	if _, err := shared.LoadEnvFile(".env", "../.env"); err != nil {
		fmt.Printf("Ошибка загрузки .env файла: %v\n", err)
	}

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("ошибка чтения файла конфигурации: %w", err)
		}
	}

	return fromViper(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", defaultEnv)
	v.SetDefault("LOG_LEVEL", defaultLogLevel)
	v.SetDefault("ROSTER_URL", "")
	v.SetDefault("HISTORY_URL", "")
	v.SetDefault("FORM_URL", "")
	v.SetDefault("SYNC_INTERVAL_MS", defaultSyncMs)
	v.SetDefault("SUBMISSION_SETTLE_MS", defaultSettleMs)
	v.SetDefault("TOTAL_UNITS", defaultTotalUnits)
	v.SetDefault("RETRY_ATTEMPTS", defaultAttempts)
	v.SetDefault("RETRY_DELAY_MS", defaultRetryMs)
	v.SetDefault("RETRY_BACKOFF", BackoffFixed)
	v.SetDefault("HTTP_TIMEOUT_MS", defaultTimeoutMs)
	v.SetDefault("PENDING_TTL_MS", defaultPendingMs)
	v.SetDefault("CONFIRM_SKEW_MS", defaultSkewMs)
	v.SetDefault("CONFIG_DIR", defaultConfigDir)
	v.SetDefault("DATA_PATH", "")
	v.SetDefault("SNAPSHOT_ENABLED", true)
	v.SetDefault("SHEET_TIMEZONE", "")

	v.SetDefault("FORM_ENTRY_EQUIPMENT", defaultFormEntries.Equipment)
	v.SetDefault("FORM_ENTRY_FULL_NAME", defaultFormEntries.FullName)
	v.SetDefault("FORM_ENTRY_DOCUMENT", defaultFormEntries.Document)
	v.SetDefault("FORM_ENTRY_GROUP", defaultFormEntries.Group)
	v.SetDefault("FORM_ENTRY_PHONE", defaultFormEntries.Phone)
	v.SetDefault("FORM_ENTRY_PROFESSOR", defaultFormEntries.Professor)
	v.SetDefault("FORM_ENTRY_SUBJECT", defaultFormEntries.Subject)
	v.SetDefault("FORM_ENTRY_TYPE", defaultFormEntries.Type)
	v.SetDefault("FORM_ENTRY_COMMENT", defaultFormEntries.Comment)
}

func fromViper(v *viper.Viper) (*Config, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}

	configDir := v.GetString("CONFIG_DIR")
	if configDir == defaultConfigDir {
		configDir = filepath.Join(homeDir, configDir)
	}

	dataPath := v.GetString("DATA_PATH")
	if dataPath == "" {
		dataPath = filepath.Join(configDir, defaultSnapshotDB)
	}

	cfg := &Config{
		Env:        v.GetString("APP_ENV"),
		LogLevel:   v.GetString("LOG_LEVEL"),
		RosterURL:  strings.TrimSpace(v.GetString("ROSTER_URL")),
		HistoryURL: strings.TrimSpace(v.GetString("HISTORY_URL")),
		FormURL:    strings.TrimSpace(v.GetString("FORM_URL")),
		Form: FormEntries{
			Equipment: v.GetString("FORM_ENTRY_EQUIPMENT"),
			FullName:  v.GetString("FORM_ENTRY_FULL_NAME"),
			Document:  v.GetString("FORM_ENTRY_DOCUMENT"),
			Group:     v.GetString("FORM_ENTRY_GROUP"),
			Phone:     v.GetString("FORM_ENTRY_PHONE"),
			Professor: v.GetString("FORM_ENTRY_PROFESSOR"),
			Subject:   v.GetString("FORM_ENTRY_SUBJECT"),
			Type:      v.GetString("FORM_ENTRY_TYPE"),
			Comment:   v.GetString("FORM_ENTRY_COMMENT"),
		},
		SyncInterval:   millis(v.GetInt("SYNC_INTERVAL_MS")),
		SettleDelay:    millis(v.GetInt("SUBMISSION_SETTLE_MS")),
		TotalUnits:     v.GetInt("TOTAL_UNITS"),
		RetryAttempts:  v.GetInt("RETRY_ATTEMPTS"),
		RetryDelay:     millis(v.GetInt("RETRY_DELAY_MS")),
		RetryBackoff:   strings.ToLower(v.GetString("RETRY_BACKOFF")),
		HTTPTimeout:    millis(v.GetInt("HTTP_TIMEOUT_MS")),
		PendingTTL:     millis(v.GetInt("PENDING_TTL_MS")),
		ConfirmSkew:    millis(v.GetInt("CONFIRM_SKEW_MS")),
		ConfigDir:      configDir,
		DataPath:       dataPath,
		SnapshotEnable: v.GetBool("SNAPSHOT_ENABLED"),
		SheetTimezone:  strings.TrimSpace(v.GetString("SHEET_TIMEZONE")),
	}

	loc, err := LoadSheetLocation(cfg.SheetTimezone)
	if err != nil {
		return nil, err
	}
	cfg.SheetLocation = loc

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate проверяет обязательные адреса и положительность числовых параметров.
func (c *Config) Validate() error {
	var errs []error

	for name, raw := range map[string]string{
		"roster_url":  c.RosterURL,
		"history_url": c.HistoryURL,
		"form_url":    c.FormURL,
	} {
		if err := validateURL(raw); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}

	if c.SyncInterval <= 0 {
		errs = append(errs, errors.New("sync_interval_ms должен быть положительным"))
	}
	if c.SettleDelay < 0 {
		errs = append(errs, errors.New("submission_settle_ms не может быть отрицательным"))
	}
	if c.TotalUnits <= 0 {
		errs = append(errs, errors.New("total_units должен быть положительным"))
	}
	if c.RetryAttempts <= 0 {
		errs = append(errs, errors.New("retry_attempts должен быть положительным"))
	}
	if c.RetryDelay < 0 {
		errs = append(errs, errors.New("retry_delay_ms не может быть отрицательным"))
	}
	if c.RetryBackoff != BackoffFixed && c.RetryBackoff != BackoffExponential {
		errs = append(errs, fmt.Errorf("retry_backoff: неизвестная стратегия %q", c.RetryBackoff))
	}
	if c.HTTPTimeout <= 0 {
		errs = append(errs, errors.New("http_timeout_ms должен быть положительным"))
	}

	return errors.Join(errs...)
}

// LoadSheetLocation возвращает часовой пояс таблицы; пустое имя дает time.Local.
func LoadSheetLocation(name string) (*time.Location, error) {
	if name == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("sheet_timezone: неизвестный часовой пояс %q: %w", name, err)
	}
	return loc, nil
}

func validateURL(raw string) error {
	if raw == "" {
		return errors.New("не может быть пустым")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("неверный адрес: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("ожидается абсолютный http(s) адрес: %q", raw)
	}
	return nil
}

func millis(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}

// IsProd проверяет, prod ли окружение
func (c *Config) IsProd() bool {
	return c.Env == shared.EnvProd
}

// IsLocal проверяет, local ли окружение
func (c *Config) IsLocal() bool {
	return c.Env == shared.EnvLocal || c.Env == ""
}
