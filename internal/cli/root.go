package cli

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	port       string
	configPath string
	logLevel   string
)

// Execute runs the CLI.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	envPort := os.Getenv("PORT")
	if envPort == "" {
		envPort = "12345"
	}
	envConfig := os.Getenv("CONFIG_PATH")
	if envConfig == "" {
		envConfig = "config/config.yaml"
	}
	envLevel := os.Getenv("LOG_LEVEL")
	if envLevel == "" {
		envLevel = "info"
	}

	cmd := &cobra.Command{
		Use:   "flashquiz",
		Short: "Real-time multiplayer flashcard quiz over TCP",
	}

	cmd.PersistentFlags().StringVar(&port, "port", envPort, "port to listen on")
	cmd.PersistentFlags().StringVar(&configPath, "config", envConfig, "path to YAML config")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", envLevel, "log level (trace..error)")
	cmd.AddCommand(NewStartCmd(&configPath, &port, &logLevel))
	cmd.AddCommand(NewMigrateCmd(&configPath))
	cmd.AddCommand(NewClientCmd())
	return cmd
}

// newLogger builds the process logger at the requested level.
func newLogger(level string) *logrus.Logger {
	logger := logrus.New()
	formatter := new(logrus.TextFormatter)
	formatter.FullTimestamp = true
	logger.SetFormatter(formatter)

	switch strings.ToLower(level) {
	case "trace":
		logger.SetLevel(logrus.TraceLevel)
	case "debug":
		logger.SetLevel(logrus.DebugLevel)
	case "info":
		logger.SetLevel(logrus.InfoLevel)
	case "warn":
		logger.SetLevel(logrus.WarnLevel)
	case "error":
		logger.SetLevel(logrus.ErrorLevel)
	default:
		logger.SetLevel(logrus.InfoLevel)
	}
	return logger
}
