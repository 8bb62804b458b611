package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
)

type Config struct {
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	RedisHost string
	RedisPort string

	EtcdEndpoints     []string
	LeaderElectionTTL int

	APIPort string

	// Output persistence
	OutputBackend  string // "s3" or "local"
	OutputS3Bucket string
	OutputS3Region string
	OutputLocalDir string

	// Log stream transport
	LogTransport string // "redis" or "file"
	LogStreamDir string

	MonitorChecksFile string
	MonitorInterval   string

	SystemConfigPath string
}

func LoadConfig() *Config {
	return &Config{
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "armada"),
		DBPassword: getEnv("DB_PASSWORD", "password"),
		DBName:     getEnv("DB_NAME", "armada"),

		RedisHost: getEnv("REDIS_HOST", "localhost"),
		RedisPort: getEnv("REDIS_PORT", "6379"),

		EtcdEndpoints:     []string{getEnv("ETCD_ENDPOINTS", "localhost:2379")},
		LeaderElectionTTL: getEnvAsInt("LEADER_ELECTION_TTL", 15),

		APIPort: getEnv("API_PORT", "8080"),

		OutputBackend:  getEnv("OUTPUT_BACKEND", "local"),
		OutputS3Bucket: getEnv("OUTPUT_S3_BUCKET", "armada-run-output"),
		OutputS3Region: getEnv("OUTPUT_S3_REGION", "us-east-1"),
		OutputLocalDir: getEnv("OUTPUT_LOCAL_DIR", "/var/lib/armada/output"),

		LogTransport: getEnv("LOG_TRANSPORT", "redis"),
		LogStreamDir: getEnv("LOG_STREAM_DIR", "/var/log/armada/streams"),

		MonitorChecksFile: getEnv("MONITOR_CHECKS_FILE", "/etc/armada/checks.yaml"),
		MonitorInterval:   getEnv("MONITOR_INTERVAL", "10s"),

		SystemConfigPath: getEnv("SYSTEM_CONFIG_PATH", DefaultSystemConfigPath),
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return fallback
}

// DefaultSystemConfigPath is where the host-level armada config lives.
const DefaultSystemConfigPath = "/etc/armada/armada.json"

var (
	// ErrNotConfigured means the host has no system config file.
	ErrNotConfigured = errors.New("armada is not configured on this host")
	// ErrNoCluster means the system config does not name a cluster.
	ErrNoCluster = errors.New("no cluster defined in system config")
)

// SystemConfig is the host-level configuration shared by every armada
// process on a box: which cluster this host belongs to and the registries
// deploy tooling should talk to.
type SystemConfig struct {
	Cluster        string            `json:"cluster"`
	DockerRegistry string            `json:"docker_registry"`
	GitBase        string            `json:"git_base"`
	APIEndpoints   map[string]string `json:"api_endpoints"` // cluster -> URL
}

// LoadSystemConfig reads the JSON system config from path.
func LoadSystemConfig(path string) (*SystemConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotConfigured, path)
		}
		return nil, fmt.Errorf("could not load system config %s: %w", path, err)
	}

	var sc SystemConfig
	if err := json.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("could not parse system config %s: %w", path, err)
	}
	return &sc, nil
}

// GetCluster returns the cluster this host belongs to.
func (sc *SystemConfig) GetCluster() (string, error) {
	if sc.Cluster == "" {
		return "", ErrNoCluster
	}
	return sc.Cluster, nil
}
