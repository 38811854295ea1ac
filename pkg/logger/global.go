// pkg/logger/global.go
package logger

var globalLogger *Logger

func InitGlobal(logPath, logLevel string, debug bool) error {
	l, err := NewLogger(logPath, logLevel, debug)
	if err != nil {
		return err
	}
	globalLogger = l
	return nil
}

// GetLogger возвращает глобальный логгер; до инициализации это консольный логгер уровня INFO
func GetLogger() *Logger {
	if globalLogger == nil {
		l, err := NewLogger("", LevelInfo, false)
		if err != nil {
			return NewNop()
		}
		globalLogger = l
	}
	return globalLogger
}

// Глобальные методы для удобства
func Debug(format string, v ...interface{}) {
	GetLogger().Debug(format, v...)
}

func Info(format string, v ...interface{}) {
	GetLogger().Info(format, v...)
}

func Warn(format string, v ...interface{}) {
	GetLogger().Warn(format, v...)
}

func Error(format string, v ...interface{}) {
	GetLogger().Error(format, v...)
}

func Close() {
	if globalLogger != nil {
		globalLogger.Close()
	}
}
