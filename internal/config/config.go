package config

import (
	"os"

	"github.com/joho/godotenv"
)

const (
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"
)

// LoadEnvFile загружает первый найденный .env файл из списка путей.
// Возвращает путь загруженного файла или пустую строку.
func LoadEnvFile(paths ...string) (string, error) {
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return p, err
		}
		return p, nil
	}
	return "", nil
}
