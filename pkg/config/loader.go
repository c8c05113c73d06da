package config

import (
	"bytes"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvInfo 集合服務設定 from .env
type EnvInfo struct {
	// image name
	ChatService   string
	MemberService string
	NotifyService string

	// service ports
	ChatServicePort   string
	MemberServicePort string

	// service yaml path
	ChatServiceYAMLPath   string
	MemberServiceYAMLPath string
	NotifyServiceYAMLPath string

	// service log path
	ChatServiceLogPath   string
	MemberServiceLogPath string
	NotifyServiceLogPath string
}

// EnvConfig 集合服務設定
var (
	EnvConfig = initEnv()
	envConfig EnvInfo
	once      sync.Once
	env       string
)

func initEnv() EnvInfo {
	once.Do(func() {

		path, err := GetPath(".env", 5)
		if err != nil {
			log.Printf("Warning: Could not get .env path: %v", err)
		}

		if err := godotenv.Load(path); err != nil {
			log.Printf("Warning: Could not load .env file: %v", err)
		}

		env = os.Getenv("ENV")

		envConfig = EnvInfo{
			ChatService:   os.Getenv("CHAT_SERVICE"),
			MemberService: os.Getenv("MEMBER_SERVICE"),
			NotifyService: os.Getenv("NOTIFY_SERVICE"),

			ChatServicePort:   os.Getenv("CHAT_SERVICE_PORT"),
			MemberServicePort: os.Getenv("MEMBER_SERVICE_PORT"),

			ChatServiceYAMLPath:   os.Getenv("CHAT_SERVICE_YAML"),
			MemberServiceYAMLPath: os.Getenv("MEMBER_SERVICE_YAML"),
			NotifyServiceYAMLPath: os.Getenv("NOTIFY_SERVICE_YAML"),

			ChatServiceLogPath:   os.Getenv("CHAT_SERVICE_LOG"),
			MemberServiceLogPath: os.Getenv("MEMBER_SERVICE_LOG"),
			NotifyServiceLogPath: os.Getenv("NOTIFY_SERVICE_LOG"),
		}
	})

	return envConfig
}

// IsProduction check run env
func IsProduction() bool {
	return env == "production"
}

// IsLocal check run env
func IsLocal() bool {
	return env == "local"
}

// LoadConfig 加載配置
func LoadConfig[T any](serviceName string, configPath string) T {
	v := viper.New()
	v.SetConfigName(serviceName)
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)

	// 自動讀取環境變數
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		log.Fatalf("Error loading config file: %v", err)
	}

	rawConfig, err := os.ReadFile(v.ConfigFileUsed())
	if err != nil {
		log.Fatalf("Error reading raw config file: %v", err)
	}

	// 替換 ${} 占位符為環境變數的值
	expandedConfig := os.ExpandEnv(string(rawConfig))

	if err := v.ReadConfig(bytes.NewBuffer([]byte(expandedConfig))); err != nil {
		log.Fatalf("Error reading expanded config: %v", err)
	}

	var cfg T
	if err := v.Unmarshal(&cfg); err != nil {
		log.Fatalf("Error unmarshaling config: %v", err)
	}
	return cfg
}

// GetRedisSetting get redis sentinel setting from .env
func GetRedisSetting() (string, []string) {
	path, err := GetPath(".env", 5)
	if err != nil {
		log.Printf("Warning: Could not get .env path: %v", err)
	}

	if err := godotenv.Load(path); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	envs := os.Environ()

	var (
		masterName    string
		sentinelAddrs []string
	)

	// 動態解析 REDIS_SENTINEL*_IP 和端口
	for _, env := range envs {
		parts := strings.SplitN(env, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key, value := parts[0], parts[1]

		if strings.HasPrefix(key, "REDIS_SENTINEL") && strings.HasSuffix(key, "_IP") {
			portKey := strings.Replace(key, "_IP", "_PORT", 1)
			port := os.Getenv(portKey)
			if port != "" {
				sentinelAddrs = append(sentinelAddrs, fmt.Sprintf("%s:%s", value, port))
			}
		}
	}

	masterName = os.Getenv("REDIS_MASTER_NAME")
	if masterName == "" {
		masterName = "mymaster"
	}

	return masterName, sentinelAddrs
}

// GetPath use fileName loop maxCount find file path
func GetPath(fileName string, maxCount int) (string, error) {
	path := "./" + fileName

	for i := 0; i < maxCount; i++ {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
		path = "../" + path
	}
	return "", errors.New(fileName + "can't find path ")
}
