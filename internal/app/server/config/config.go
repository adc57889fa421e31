package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	clientcfg "equiploan/internal/app/client/config"
	shared "equiploan/internal/config"
)

const (
	envPath            = "../../.env"
	defaultRunAddress  = ":8080"
	SnapshotSQLite     = "sqlite"
	SnapshotPostgres   = "postgres"
	defaultSnapshotDrv = SnapshotSQLite
)

type Config struct {
	Env    string
	DB     db
	Server server
	Logger logger
	Client *clientcfg.Config
}

// Значения читаются через viper из SNAPSHOT_DRIVER, DATABASE_URI и RUN_ADDRESS.
type db struct {
	Driver      string
	DatabaseURI string
}

type server struct {
	RunAddress string
}

type logger struct {
	LogLevel string
}

// MustLoad как Load, но паникует при ошибке
func MustLoad(configFile string) *Config {
	cfg, err := Load(configFile)
	if err != nil {
		panic(fmt.Sprintf("Ошибка конфигурации: %v", err))
	}
	return cfg
}

// Load загружает конфигурацию сервера. Параметры ядра (адреса таблиц, интервалы) общие с клиентом.
func Load(configFile string) (*Config, error) {
	if _, err := shared.LoadEnvFile(".env", envPath); err != nil {
		fmt.Printf("Ошибка загрузки .env файла: %v\n", err)
	}

	core, err := clientcfg.Load(configFile)
	if err != nil {
		return nil, err
	}

	viper.AutomaticEnv()
	viper.SetDefault("RUN_ADDRESS", defaultRunAddress)
	viper.SetDefault("SNAPSHOT_DRIVER", defaultSnapshotDrv)

	cfg := &Config{
		Env: core.Env,
		DB: db{
			Driver:      strings.ToLower(viper.GetString("SNAPSHOT_DRIVER")),
			DatabaseURI: viper.GetString("DATABASE_URI"),
		},
		Server: server{RunAddress: viper.GetString("RUN_ADDRESS")},
		Logger: logger{LogLevel: core.LogLevel},
		Client: core,
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.DB.Driver {
	case SnapshotSQLite:
	case SnapshotPostgres:
		if c.DB.DatabaseURI == "" {
			return fmt.Errorf("database_uri обязателен для драйвера %s", SnapshotPostgres)
		}
	default:
		return fmt.Errorf("snapshot_driver: неизвестный драйвер %q", c.DB.Driver)
	}
	if c.Server.RunAddress == "" {
		return fmt.Errorf("run_address не может быть пустым")
	}
	return nil
}
