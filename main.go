package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
	"gopkg.in/yaml.v2"

	"cvdrisk/cohort"
	qhttp "cvdrisk/http"
	"cvdrisk/model"
	"cvdrisk/risk"
)

type Config struct {
	Model struct {
		Path string `yaml:"path"`
	} `yaml:"model"`
	Cohort struct {
		Driver string `yaml:"driver"` // csv | sqlite
		Path   string `yaml:"path"`
	} `yaml:"cohort"`
	Http struct {
		Port           int `yaml:"port"`
		TimeoutSeconds int `yaml:"timeout_seconds"`
	} `yaml:"http"`
	Log struct {
		Level      string `yaml:"level"`
		File       string `yaml:"file"`
		MaxSizeMB  int    `yaml:"max_size_mb"`
		MaxBackups int    `yaml:"max_backups"`
	} `yaml:"log"`
}

func main() {
	// 1. Load config
	config, err := loadConfig("config.yaml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := buildLogger(config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	// 2. Load the model artifact; any failure here is fatal, the process
	// cannot serve predictions without it.
	ensemble, err := model.Load(config.Model.Path)
	if err != nil {
		logger.Fatal("failed to load model", zap.Error(err))
	}
	logger.Info("model loaded",
		zap.String("path", config.Model.Path),
		zap.Int("features", ensemble.NumFeatures()),
		zap.Int("trees", len(ensemble.Trees)),
	)

	explainer, err := model.NewExplainer(ensemble)
	if err != nil {
		logger.Fatal("failed to build explainer", zap.Error(err))
	}

	// 3. Load the reference cohort (read-only for the process lifetime)
	ref, err := loadCohort(config)
	if err != nil {
		logger.Fatal("failed to load cohort", zap.Error(err))
	}
	if ref.Len() == 0 {
		logger.Fatal("reference cohort is empty")
	}
	logger.Info("cohort loaded", zap.String("driver", config.Cohort.Driver), zap.Int("rows", ref.Len()))

	specs, err := risk.SpecsFor(ref)
	if err != nil {
		logger.Fatal("failed to derive feature specs", zap.Error(err))
	}

	qhttp.SetPredictor(ensemble, explainer, ref, specs)

	// 4. Start HTTP server
	serverConfig := qhttp.DefaultServerConfig()
	if config.Http.Port != 0 {
		serverConfig.Port = config.Http.Port
	}
	if config.Http.TimeoutSeconds != 0 {
		serverConfig.Timeout = time.Duration(config.Http.TimeoutSeconds) * time.Second
	}
	server := qhttp.NewServer(serverConfig, logger)
	go func() {
		if err := server.Start(); err != nil {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// 5. Handle graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	if err := server.Stop(); err != nil {
		logger.Warn("server forced to shutdown", zap.Error(err))
	}

	logger.Info("exiting")
}

func loadConfig(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var config Config
	if err := yaml.NewDecoder(file).Decode(&config); err != nil {
		return nil, err
	}
	return &config, nil
}

func loadCohort(config *Config) (*cohort.Cohort, error) {
	switch config.Cohort.Driver {
	case "", "csv":
		return cohort.LoadCSV(config.Cohort.Path, risk.FeatureNames())
	case "sqlite":
		store, err := cohort.OpenSQLite(config.Cohort.Path, risk.FeatureNames())
		if err != nil {
			return nil, err
		}
		defer store.Close()
		return store.Load()
	default:
		return nil, fmt.Errorf("unsupported cohort driver %q", config.Cohort.Driver)
	}
}

func buildLogger(config *Config) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if config.Log.Level != "" {
		if err := level.Set(config.Log.Level); err != nil {
			return nil, err
		}
	}

	sink := zapcore.AddSync(os.Stdout)
	if config.Log.File != "" {
		sink = zapcore.AddSync(&lumberjack.Logger{
			Filename:   config.Log.File,
			MaxSize:    config.Log.MaxSizeMB,
			MaxBackups: config.Log.MaxBackups,
		})
	}

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
		sink,
		level,
	)
	return zap.New(core), nil
}
