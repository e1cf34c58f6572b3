package config_test

import (
	"os"
	"testing"
	"time"

	"github.com/linemk/online-store/internal/config"
	"github.com/stretchr/testify/assert"
)

func TestMustLoadByPath_Success(t *testing.T) {
	// Устанавливаем обязательные переменные окружения
	os.Setenv("DB_PASSWORD", "mypassword")
	os.Setenv("JWT_SECRET", "mysecret")
	defer os.Unsetenv("DB_PASSWORD")
	defer os.Unsetenv("JWT_SECRET")

	// Пример содержимого конфигурационного файла
	content := `
env: "local"
http_server:
  address: "localhost:8080"
  timeout: "4s"
  idle_timeout: "60s"
database:
  host: "localhost"
  port: 5432
  user: "postgres"
  name: "store"
jwt:
  token_ttl: 60
kafka:
  enabled: true
  brokers:
    - "localhost:9092"
  topic: "order-events"
migrations:
  path: "./migrations"
`
	// Создаем временный файл с конфигурацией
	tmpFile, err := os.CreateTemp("", "config_test_*.yaml")
	assert.NoError(t, err)
	defer os.Remove(tmpFile.Name())

	_, err = tmpFile.WriteString(content)
	assert.NoError(t, err)
	err = tmpFile.Close()
	assert.NoError(t, err)

	// Загружаем конфигурацию из временного файла
	cfg := config.MustLoadByPath(tmpFile.Name())

	// Проверяем, что конфигурация загружена корректно
	assert.Equal(t, "local", cfg.Env)
	assert.Equal(t, "localhost:8080", cfg.HTTPServer.Address)
	assert.Equal(t, 4*time.Second, cfg.HTTPServer.Timeout)
	assert.Equal(t, 60*time.Second, cfg.HTTPServer.IdleTimeout)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "postgres", cfg.Database.User)
	assert.Equal(t, "store", cfg.Database.Name)
	assert.Equal(t, 60, cfg.JWT.TokenTTL)
	assert.True(t, cfg.Kafka.Enabled)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "order-events", cfg.Kafka.Topic)
	assert.Equal(t, "./migrations", cfg.Migrations.Path)
}

func TestMustLoadByPath_KafkaDisabledByDefault(t *testing.T) {
	os.Setenv("DB_PASSWORD", "mypassword")
	os.Setenv("JWT_SECRET", "mysecret")
	defer os.Unsetenv("DB_PASSWORD")
	defer os.Unsetenv("JWT_SECRET")

	// Секция kafka отсутствует: уведомления должны падать в лог
	content := `
env: "local"
database:
  user: "postgres"
  name: "store"
`
	tmpFile, err := os.CreateTemp("", "config_test_*.yaml")
	assert.NoError(t, err)
	defer os.Remove(tmpFile.Name())

	_, err = tmpFile.WriteString(content)
	assert.NoError(t, err)
	assert.NoError(t, tmpFile.Close())

	cfg := config.MustLoadByPath(tmpFile.Name())

	assert.False(t, cfg.Kafka.Enabled)
	assert.Equal(t, "order-events", cfg.Kafka.Topic)
}

func TestMustLoadByPath_FileNotFound(t *testing.T) {
	// Ожидаем панику, если файла не существует
	assert.Panics(t, func() {
		config.MustLoadByPath("non_existent_config.yaml")
	})
}
