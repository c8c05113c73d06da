package config

import "time"

// Chat definition chat_service YAML structure
type Chat struct {
	Port  string
	Mongo DatabaseConfig `mapstructure:"mongo"`
	Redis RedisConfig    `mapstructure:"redis"`
	Kafka KafkaConfig    `mapstructure:"kafka"`
	MinIO MinIOConfig    `mapstructure:"minio"`
	Push  RabbitConfig   `mapstructure:"push"`

	// member 資料同庫讀取 (follow graph、顯示名稱)
	PostgreSQL DatabaseConfig `mapstructure:"pg"`

	// call provider credentials
	Agora  CallProviderConfig `mapstructure:"agora"`
	Stream CallProviderConfig `mapstructure:"stream"`
	Zego   CallProviderConfig `mapstructure:"zego"`
	HMS    CallProviderConfig `mapstructure:"hms"`
}

// CallProviderConfig definition call provider credential
type CallProviderConfig struct {
	AppID  string `mapstructure:"app_id"`
	Secret string `mapstructure:"secret"`
}

// Member definition member_service YAML structure
type Member struct {
	Port       string
	SessionTTL time.Duration `mapstructure:"session_ttl"`

	PostgreSQL  DatabaseConfig `mapstructure:"pg"`
	RedisMember RedisConfig    `mapstructure:"redis"`
}

// Notify definition notify_service YAML structure
type Notify struct {
	Push        RabbitConfig `mapstructure:"push"`
	GatewayURL  string       `mapstructure:"gateway_url"`
	MaxAttempts int          `mapstructure:"max_attempts"`
}

// RedisConfig definition redis setting
type RedisConfig struct {
	RedisDB int `mapstructure:"redis_db"`
}

// KafkaConfig definition kafka setting
type KafkaConfig struct {
	Brokers       []string `mapstructure:"brokers"`
	Topic         string   `mapstructure:"topic"`
	RetryInterval int      `mapstructure:"retry_interval"`
	RetryCount    int      `mapstructure:"retry_count"`
}

// MinIOConfig definition minio setting
type MinIOConfig struct {
	Endpoint      string `mapstructure:"endpoint"`
	User          string `mapstructure:"user"`
	Password      string `mapstructure:"password"`
	Bucket        string `mapstructure:"bucket"`
	UseSSL        bool   `mapstructure:"use_ssl"`
	RetryInterval int    `mapstructure:"retry_interval"`
	RetryCount    int    `mapstructure:"retry_count"`
}

// RabbitConfig definition rabbitmq setting
type RabbitConfig struct {
	URL           string `mapstructure:"url"`
	Queue         string `mapstructure:"queue"`
	RetryInterval int    `mapstructure:"retry_interval"`
	RetryCount    int    `mapstructure:"retry_count"`
}

// DatabaseConfig definition db setting
type DatabaseConfig struct {
	Host          string `mapstructure:"host"`
	Port          int    `mapstructure:"port"`
	User          string `mapstructure:"user"`
	Password      string `mapstructure:"password"`
	Database      string `mapstructure:"database"`
	RetryInterval int    `mapstructure:"retry_interval"`
	RetryCount    int    `mapstructure:"retry_count"`
}
