package envutil

import (
	"os"
	"strconv"
	"strings"

	"github.com/yungbote/sessioncache/internal/platform/logger"
)

func String(name, def string, log *logger.Logger) string {
	if log != nil {
		log = log.With("env_var", name)
	}
	v, ok := os.LookupEnv(name)
	v = strings.TrimSpace(v)
	if !ok || v == "" {
		log.Debug("Environment variable not found, using default", "default", def)
		return def
	}
	log.Debug("Environment variable found, using environment", "environment", v)
	return v
}

func Int64(name string, def int64, log *logger.Logger) int64 {
	if log != nil {
		log = log.With("env_var", name)
	}
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}
	i, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		log.Debug("Environment variable could not be parsed as int, using default", "providedVal", v, "defaultVal", def, "error", err)
		return def
	}
	return i
}

func Bool(name string, def bool, log *logger.Logger) bool {
	v := strings.TrimSpace(strings.ToLower(os.Getenv(name)))
	switch v {
	case "":
		return def
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		if log != nil {
			log.Debug("Environment variable could not be parsed as bool, using default", "env_var", name, "providedVal", v, "defaultVal", def)
		}
		return def
	}
}

// List splits a comma separated variable, dropping blanks.
func List(name string, def []string) []string {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}

func Float64(name string, def float64, log *logger.Logger) float64 {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		log.Debug("Environment variable could not be parsed as float, using default", "env_var", name, "providedVal", v, "defaultVal", def, "error", err)
		return def
	}
	return f
}
