package log

import (
	"log/slog"
	"os"

	"github.com/lmittmann/tint"
)

func setupSLog(level Severity) {
	handlerLogLevel := level.toSLogLevel()

	var logHandler slog.Handler
	if GlobalWriter != nil {
		logHandler = tint.NewHandler(
			GlobalWriter,
			&tint.Options{
				AddSource:  true,
				Level:      handlerLogLevel,
				TimeFormat: timeFormat,
				NoColor:    !GlobalWriter.UsesColor(),
			},
		)
	} else {
		logHandler = tint.NewHandler(os.Stderr, &tint.Options{
			AddSource:  true,
			Level:      handlerLogLevel,
			TimeFormat: timeFormat,
			NoColor:    true,
		})
	}

	slog.SetDefault(slog.New(logHandler))
	slog.SetLogLoggerLevel(handlerLogLevel)
}
