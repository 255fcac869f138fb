package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"

	"go.uber.org/zap"
	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"

	"cssdedup/misc"
)

type LoggerConfig struct {
	Level       string `yaml:"level" validate:"required,oneof=none debug normal"`
	Destination string `yaml:"destination,omitempty" sanitize:"path_clean,assure_dir_exists_for_file" validate:"omitempty,filepath"`
	Mode        string `yaml:"mode,omitempty" validate:"omitempty,oneof=append overwrite"`
}

type LoggingConfig struct {
	FileLogger    LoggerConfig `yaml:"file"`
	ConsoleLogger LoggerConfig `yaml:"console"`
}

// Prepare returns our standard logger - configured zap logger for use by the program.
func (conf *LoggingConfig) Prepare(rpt *Report) (*zap.Logger, error) {
	consoleHP, consoleLP := conf.consoleCores()

	fileCore, redirected, err := conf.fileCore(rpt)
	if err != nil {
		return nil, err
	}

	log := zap.New(zapcore.NewTee(consoleHP, consoleLP, fileCore), zap.AddCaller())
	if len(redirected) != 0 {
		// log was redirected - we need to report this
		log.Warn("Log file was redirected to new location", zap.String("location", redirected))
	}
	return log.Named(misc.GetAppName()), nil
}

func consoleEncoderConfig(stream *os.File) zapcore.EncoderConfig {
	ec := zap.NewDevelopmentEncoderConfig()
	ec.EncodeCaller = nil
	if EnableColorOutput(stream) {
		ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
		ec.TimeKey = zapcore.OmitKey
	} else {
		ec.EncodeLevel = zapcore.CapitalLevelEncoder
	}
	return ec
}

// consoleCores splits console output by priority. Processed stylesheets may
// be written to stdout, so both cores write to stderr.
func (conf *LoggingConfig) consoleCores() (hp, lp zapcore.Core) {
	var lowest zapcore.Level
	switch conf.ConsoleLogger.Level {
	case "normal":
		lowest = zapcore.InfoLevel
	case "debug":
		lowest = zapcore.DebugLevel
	default:
		return zapcore.NewNopCore(), zapcore.NewNopCore()
	}

	lp = zapcore.NewCore(zapcore.NewConsoleEncoder(consoleEncoderConfig(os.Stderr)), zapcore.Lock(os.Stderr),
		zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
			return lowest <= lvl && lvl < zapcore.ErrorLevel
		}))
	hp = zapcore.NewCore(newEncoder(consoleEncoderConfig(os.Stderr)), zapcore.Lock(os.Stderr),
		zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
			return lvl >= zapcore.ErrorLevel
		}))
	return hp, lp
}

func openLog(fname, mode string) (*os.File, error) {
	flags := os.O_CREATE | os.O_WRONLY
	if mode == "append" {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}
	return os.OpenFile(fname, flags, 0644)
}

// fileCore returns core writing to log file and name of the file actually
// used when requested destination was not accessible.
func (conf *LoggingConfig) fileCore(rpt *Report) (zapcore.Core, string, error) {
	level, mode := conf.FileLogger.Level, conf.FileLogger.Mode
	if rpt != nil {
		// if report is requested always set maximum available logging level for file logger
		level, mode = "debug", "overwrite"
	}

	var enabler zap.AtomicLevel
	switch level {
	case "debug":
		enabler = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "normal":
		enabler = zap.NewAtomicLevelAt(zap.InfoLevel)
	default:
		return zapcore.NewNopCore(), "", nil
	}
	encoder := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())

	// capture panic log if possible, quietly ignore failures
	ef, err := openLog(filepath.Join(filepath.Dir(conf.FileLogger.Destination), misc.GetAppName()+"-panic.log"), mode)
	if err != nil {
		ef, err = os.CreateTemp("", misc.GetAppName()+"-panic.*.log")
	}
	if err == nil {
		debug.SetCrashOutput(ef, debug.CrashOptions{})
		rpt.Store("panic.log", ef.Name())
		ef.Close()
	}

	if f, err := openLog(conf.FileLogger.Destination, mode); err == nil {
		rpt.Store("final.log", f.Name())
		return zapcore.NewCore(encoder, zapcore.Lock(f), enabler), "", nil
	}
	f, err := os.CreateTemp("", misc.GetAppName()+".*.log")
	if err != nil {
		return nil, "", fmt.Errorf("unable to access file log destination (%s): %w", conf.FileLogger.Destination, err)
	}
	rpt.Store("final.log", f.Name())
	return zapcore.NewCore(encoder, zapcore.Lock(f), enabler), f.Name(), nil
}

// When logging error to console - do not output verbose message.

type consoleEnc struct {
	zapcore.Encoder
}

func newEncoder(cfg zapcore.EncoderConfig) zapcore.Encoder {
	return consoleEnc{zapcore.NewConsoleEncoder(cfg)}
}

func (c consoleEnc) Clone() zapcore.Encoder {
	return consoleEnc{c.Encoder.Clone()}
}

func (c consoleEnc) EncodeEntry(ent zapcore.Entry, fields []zapcore.Field) (*buffer.Buffer, error) {
	newFields := make([]zapcore.Field, 0, len(fields))
	for _, f := range fields {
		if f.Type == zapcore.ErrorType {
			e := f.Interface.(error)
			f.Interface = errors.New(e.Error())
		}
		newFields = append(newFields, f)
	}
	return c.Encoder.EncodeEntry(ent, newFields)
}
