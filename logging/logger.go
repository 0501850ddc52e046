package logging

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// PlainFormatter writes "LEVL timestamp message key=value ..." lines.
type PlainFormatter struct {
	TimestampFormat string
	LevelDesc       []string
}

func (f *PlainFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	var sb strings.Builder

	sb.WriteString(f.LevelDesc[entry.Level])
	sb.WriteByte(' ')
	sb.WriteString(entry.Time.Format(f.TimestampFormat))
	sb.WriteByte(' ')
	sb.WriteString(entry.Message)

	if len(entry.Data) > 0 {
		keys := make([]string, 0, len(entry.Data))
		for key := range entry.Data {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			fmt.Fprintf(&sb, " %s=%v", key, entry.Data[key])
		}
	}

	sb.WriteByte('\n')
	return []byte(sb.String()), nil
}

func NewPlainFormatter() *PlainFormatter {
	return &PlainFormatter{
		TimestampFormat: "2006-01-02 15:04:05",
		LevelDesc:       []string{"PANC", "FATL", "ERRO", "WARN", "INFO", "DEBG", "TRAC"},
	}
}

type Config struct {
	Debug      bool   `koanf:"debug"`
	Filename   string `koanf:"filename"`
	MaxSizeMB  int    `koanf:"max_size"` // MB
	MaxBackups int    `koanf:"max_backups"`
	MaxAgeDays int    `koanf:"max_age"` // Days
	Compress   bool   `koanf:"compress"`
}

func (cfg *Config) Validate() error {
	var errs []error
	if cfg.MaxSizeMB < 0 {
		errs = append(errs, fmt.Errorf("logging.max_size must not be negative, got %d", cfg.MaxSizeMB))
	}
	if cfg.MaxBackups < 0 {
		errs = append(errs, fmt.Errorf("logging.max_backups must not be negative, got %d", cfg.MaxBackups))
	}
	if cfg.MaxAgeDays < 0 {
		errs = append(errs, fmt.Errorf("logging.max_age must not be negative, got %d", cfg.MaxAgeDays))
	}
	return errors.Join(errs...)
}

func GetDefaultConfig() Config {
	return Config{
		MaxSizeMB:  50,
		MaxBackups: 5,
		MaxAgeDays: 30,
		Compress:   true,
	}
}

// CreateLogger logs to stdout and, with a filename set, to a rotating file
// as well. rotate starts a fresh file for this run.
func (cfg *Config) CreateLogger(rotate bool, wrapStdlibDefault bool) *logrus.Logger {
	return cfg.createLogger(os.Stdout, rotate, wrapStdlibDefault)
}

func (cfg *Config) createLogger(stdout io.Writer, rotate bool, wrapStdlibDefault bool) *logrus.Logger {
	output := stdout

	if cfg.Filename != "" {
		lumberjackLogger := &lumberjack.Logger{
			Filename:   cfg.Filename,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   cfg.Compress,
			LocalTime:  true,
		}

		if rotate {
			lumberjackLogger.Rotate()
		}

		output = io.MultiWriter(output, lumberjackLogger)
	}

	logger := logrus.New()
	logger.SetFormatter(NewPlainFormatter())
	if cfg.Debug {
		logger.SetLevel(logrus.DebugLevel)
	} else {
		logger.SetLevel(logrus.InfoLevel)
	}
	logger.SetOutput(output)

	if wrapStdlibDefault {
		log.SetFlags(0)
		log.SetOutput(logger.Writer())
	}

	return logger
}
