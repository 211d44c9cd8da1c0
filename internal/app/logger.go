package app

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// NewLogger создаёт логгер: в development цветная консоль, в production
// JSON в stdout плюс, если задан путь, файл с ротацией через lumberjack.
func NewLogger(env, logFile string) *zap.Logger {
	if env != "production" {
		config := zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		config.OutputPaths = []string{"stdout"}

		logger, err := config.Build()
		if err != nil {
			panic("failed to create logger: " + err.Error())
		}
		return logger
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoder := zapcore.NewJSONEncoder(encoderConfig)

	cores := []zapcore.Core{
		zapcore.NewCore(encoder, zapcore.AddSync(os.Stdout), zapcore.InfoLevel),
	}

	if logFile != "" {
		rotated := &lumberjack.Logger{
			Filename:   logFile,
			MaxSize:    100, // МБ
			MaxBackups: 5,
			MaxAge:     30, // дней
			Compress:   true,
		}
		cores = append(cores, zapcore.NewCore(encoder, zapcore.AddSync(rotated), zapcore.InfoLevel))
	}

	return zap.New(zapcore.NewTee(cores...))
}
