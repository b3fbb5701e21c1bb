// SPDX-License-Identifier: MIT

package main

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

const logDir = "logs/"

// Tests run against a no-op logger; main swaps in the real one.
var logger = zap.NewNop()

func initLogger(verbose bool) {
	var core zapcore.Core
	if verbose {
		encoderCfg := zap.NewDevelopmentEncoderConfig()
		consoleEncoder := zapcore.NewConsoleEncoder(encoderCfg)
		core = zapcore.NewCore(consoleEncoder, zapcore.AddSync(zapcore.Lock(os.Stderr)), zapcore.DebugLevel)
	} else {
		w := zapcore.AddSync(&lumberjack.Logger{
			Filename: logDir + "topviews-builder.log",
			MaxSize:  100, // MB
			MaxAge:   7,   // days
			Compress: true,
		})
		core = zapcore.NewCore(
			zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
			w,
			zapcore.InfoLevel,
		)
	}
	logger = zap.New(core)
}
