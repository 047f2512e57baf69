package config

import (
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	postgres_wrapper "github.com/voltgrid/tradecore/pkg/infra/postgres"
	redis_wrapper "github.com/voltgrid/tradecore/pkg/infra/redis"
)

type KafkaConfig struct {
	Brokers    []string `yaml:"brokers"`
	TradeTopic string   `yaml:"trade_topic"`
}

type AppConfig struct {
	ServiceName  string                           `yaml:"service_name"`
	HTTPAddr     string                           `yaml:"http_addr"`
	TickSizeFile string                           `yaml:"tick_size_file"`
	EngineDB     *postgres_wrapper.PostgresConfig `yaml:"engine_db"`
	Redis        *redis_wrapper.RedisConfig       `yaml:"redis"`
	Kafka        *KafkaConfig                     `yaml:"kafka"`
}

// Load load config from file and environment variables.
func Load(filePath string) (*AppConfig, error) {
	if len(filePath) == 0 {
		filePath = os.Getenv("CONFIG_FILE")
	}

	fields := []interface{}{
		"func",
		"config.readFromFile",
		"filePath",
		filePath,
	}

	sugar := zap.S().With(fields...)

	sugar.Debug("Load config...")
	zap.S().Debugf("CONFIG_FILE=%v", filePath)

	configBytes, err := os.ReadFile(filePath)
	if err != nil {
		sugar.Error("Failed to load config file")
		return nil, err
	}
	configBytes = []byte(os.ExpandEnv(string(configBytes)))

	cfg := &AppConfig{}

	err = yaml.Unmarshal(configBytes, cfg)
	if err != nil {
		sugar.Error("Failed to parse config file")
		return nil, err
	}

	zap.S().Debugf("config: %+v", cfg)

	return cfg, nil
}
