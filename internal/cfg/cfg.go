// Package cfg loads pipeline configuration from a YAML file with
// environment-variable overrides. The config covers the MongoDB source,
// the train/test split, KNN hyper-parameters, the tuning grid, and the
// output locations for reports and model artifacts.
package cfg

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Settings struct {
	MongoURI       string
	Database       string
	Collection     string
	ConnectTimeout time.Duration

	Seed         int64
	TestFraction float64

	Neighbors  int
	Metric     string
	MinkowskiP float64
	Weighting  string

	CVFolds       int
	GridNeighbors []int
	GridMetrics   []string
	GridWeights   []string

	OutputDir         string
	BaselineModelPath string
	TunedModelPath    string
	ArchivePath       string
	MetricsPort       int
}

type ConfigFile struct {
	Mongo struct {
		URI            string `yaml:"uri"`
		Database       string `yaml:"database"`
		Collection     string `yaml:"collection"`
		ConnectTimeout string `yaml:"connectTimeout"`
	} `yaml:"mongo"`

	Split struct {
		// Seed is a pointer so an explicit 0 is distinguishable from
		// the key being absent.
		Seed         *int64  `yaml:"seed"`
		TestFraction float64 `yaml:"testFraction"`
	} `yaml:"split"`

	Model struct {
		Neighbors  int     `yaml:"neighbors"`
		Metric     string  `yaml:"metric"`
		MinkowskiP float64 `yaml:"minkowskiP"`
		Weighting  string  `yaml:"weighting"`
	} `yaml:"model"`

	Tuning struct {
		Folds     int      `yaml:"folds"`
		Neighbors []int    `yaml:"neighbors"`
		Metrics   []string `yaml:"metrics"`
		Weights   []string `yaml:"weights"`
	} `yaml:"tuning"`

	Output struct {
		Dir           string `yaml:"dir"`
		BaselineModel string `yaml:"baselineModel"`
		TunedModel    string `yaml:"tunedModel"`
		ArchivePath   string `yaml:"archivePath"`
	} `yaml:"output"`

	System struct {
		MetricsPort int `yaml:"metricsPort"`
	} `yaml:"system"`
}

func Load() (Settings, error) {
	// Try to load from YAML file first
	if configPath := os.Getenv("CONFIG_FILE"); configPath != "" {
		return LoadFile(configPath)
	}

	// Fallback to environment variables and defaults
	return loadFromEnv()
}

// LoadFile loads settings from a YAML config file, applying environment
// overrides on top of the file values.
func LoadFile(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var config ConfigFile
	if err := yaml.Unmarshal(data, &config); err != nil {
		return Settings{}, fmt.Errorf("failed to parse config file: %w", err)
	}

	connectTimeout, err := time.ParseDuration(config.Mongo.ConnectTimeout)
	if err != nil {
		connectTimeout = 10 * time.Second
	}

	settings := Settings{
		MongoURI:       getEnvOrDefault("MONGO_URI", config.Mongo.URI),
		Database:       getEnvOrDefault("MONGO_DATABASE", config.Mongo.Database),
		Collection:     getEnvOrDefault("MONGO_COLLECTION", config.Mongo.Collection),
		ConnectTimeout: getDurationOrDefault("MONGO_CONNECT_TIMEOUT", connectTimeout),

		Seed:         getInt64FromEnvOrConfig("SPLIT_SEED", seedOrDefault(config.Split.Seed, 77)),
		TestFraction: getFloatFromEnvOrConfig("TEST_FRACTION", config.Split.TestFraction),

		Neighbors:  getIntFromEnvOrConfig("KNN_NEIGHBORS", config.Model.Neighbors),
		Metric:     getEnvOrDefault("KNN_METRIC", config.Model.Metric),
		MinkowskiP: getFloatFromEnvOrConfig("KNN_MINKOWSKI_P", config.Model.MinkowskiP),
		Weighting:  getEnvOrDefault("KNN_WEIGHTING", config.Model.Weighting),

		CVFolds:       getIntFromEnvOrConfig("CV_FOLDS", config.Tuning.Folds),
		GridNeighbors: splitIntsOrDefault(os.Getenv("GRID_NEIGHBORS"), config.Tuning.Neighbors),
		GridMetrics:   splitOrDefault(os.Getenv("GRID_METRICS"), config.Tuning.Metrics),
		GridWeights:   splitOrDefault(os.Getenv("GRID_WEIGHTS"), config.Tuning.Weights),

		OutputDir:         getEnvOrDefault("OUTPUT_DIR", config.Output.Dir),
		BaselineModelPath: getEnvOrDefault("BASELINE_MODEL_PATH", config.Output.BaselineModel),
		TunedModelPath:    getEnvOrDefault("TUNED_MODEL_PATH", config.Output.TunedModel),
		ArchivePath:       getEnvOrDefault("ARCHIVE_PATH", config.Output.ArchivePath),
		MetricsPort:       getIntFromEnvOrConfig("METRICS_PORT", config.System.MetricsPort),
	}

	applyDefaults(&settings)

	if err := validateSettings(&settings); err != nil {
		return Settings{}, fmt.Errorf("configuration validation failed: %w", err)
	}

	return settings, nil
}

func loadFromEnv() (Settings, error) {
	settings := Settings{
		MongoURI:       getEnvOrDefault("MONGO_URI", "mongodb://localhost:27017"),
		Database:       getEnvOrDefault("MONGO_DATABASE", "customers"),
		Collection:     getEnvOrDefault("MONGO_COLLECTION", "segmentation"),
		ConnectTimeout: getDurationOrDefault("MONGO_CONNECT_TIMEOUT", 10*time.Second),

		Seed:         getInt64OrDefault("SPLIT_SEED", 77),
		TestFraction: getFloatOrDefault("TEST_FRACTION", 0.25),

		Neighbors:  getIntOrDefault("KNN_NEIGHBORS", 5),
		Metric:     getEnvOrDefault("KNN_METRIC", "euclidean"),
		MinkowskiP: getFloatOrDefault("KNN_MINKOWSKI_P", 3),
		Weighting:  getEnvOrDefault("KNN_WEIGHTING", "uniform"),

		CVFolds:       getIntOrDefault("CV_FOLDS", 5),
		GridNeighbors: splitIntsOrDefault(os.Getenv("GRID_NEIGHBORS"), nil),
		GridMetrics:   splitOrDefault(os.Getenv("GRID_METRICS"), nil),
		GridWeights:   splitOrDefault(os.Getenv("GRID_WEIGHTS"), nil),

		OutputDir:         getEnvOrDefault("OUTPUT_DIR", "output"),
		BaselineModelPath: getEnvOrDefault("BASELINE_MODEL_PATH", "models/knn_baseline.gob"),
		TunedModelPath:    getEnvOrDefault("TUNED_MODEL_PATH", "models/knn_tuned.gob"),
		ArchivePath:       os.Getenv("ARCHIVE_PATH"),          // optional
		MetricsPort:       getIntOrDefault("METRICS_PORT", 0), // 0 disables the endpoint
	}

	applyDefaults(&settings)

	if err := validateSettings(&settings); err != nil {
		return Settings{}, fmt.Errorf("configuration validation failed: %w", err)
	}

	return settings, nil
}

// applyDefaults fills zero values left by a sparse YAML file so that a
// minimal config still produces a runnable pipeline.
func applyDefaults(s *Settings) {
	if s.TestFraction == 0 {
		s.TestFraction = 0.25
	}
	if s.Neighbors == 0 {
		s.Neighbors = 5
	}
	if s.Metric == "" {
		s.Metric = "euclidean"
	}
	if s.MinkowskiP == 0 {
		s.MinkowskiP = 3
	}
	if s.Weighting == "" {
		s.Weighting = "uniform"
	}
	if s.CVFolds == 0 {
		s.CVFolds = 5
	}
	if len(s.GridNeighbors) == 0 {
		s.GridNeighbors = []int{3, 5, 7, 9, 11}
	}
	if len(s.GridMetrics) == 0 {
		s.GridMetrics = []string{"euclidean", "manhattan", "haversine", "chebyshev", "minkowski"}
	}
	if len(s.GridWeights) == 0 {
		s.GridWeights = []string{"distance", "uniform"}
	}
	if s.OutputDir == "" {
		s.OutputDir = "output"
	}
	if s.BaselineModelPath == "" {
		s.BaselineModelPath = "models/knn_baseline.gob"
	}
	if s.TunedModelPath == "" {
		s.TunedModelPath = "models/knn_tuned.gob"
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultValue
}

func getInt64OrDefault(key string, defaultValue int64) int64 {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.ParseInt(v, 10, 64); err == nil {
			return i
		}
	}
	return defaultValue
}

func getFloatOrDefault(key string, defaultValue float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getIntFromEnvOrConfig(key string, configValue int) int {
	return getIntOrDefault(key, configValue)
}

func getInt64FromEnvOrConfig(key string, configValue int64) int64 {
	return getInt64OrDefault(key, configValue)
}

func getFloatFromEnvOrConfig(key string, configValue float64) float64 {
	return getFloatOrDefault(key, configValue)
}

// seedOrDefault resolves an optional YAML seed. A present 0 is a valid
// seed, only an absent key falls back to the default.
func seedOrDefault(v *int64, defaultValue int64) int64 {
	if v != nil {
		return *v
	}
	return defaultValue
}

func splitIntsOrDefault(v string, defaultValue []int) []int {
	if v == "" {
		return defaultValue
	}
	parts := strings.Split(v, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		i, err := strconv.Atoi(p)
		if err != nil {
			return defaultValue
		}
		out = append(out, i)
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

func splitOrDefault(v string, defaultValue []string) []string {
	if v == "" {
		return defaultValue
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
