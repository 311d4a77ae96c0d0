// Package secrets resolves credentials given as literals, ${VAR} references
// or mounted secret files (Docker/Kubernetes). Secret values are never logged.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/amsot/twfcode/internal/errors"
	"github.com/amsot/twfcode/internal/logger"
)

const componentName = "secrets"

// maxSecretFileSize limits secret file reads; secrets are tokens, not documents.
const maxSecretFileSize = 64 * 1024

func configError(err error, key string) error {
	return errors.New(err).
		Component(componentName).
		Category(errors.CategoryConfiguration).
		Context("source", key).
		Build()
}

// ExpandString expands ${VAR} and ${VAR:-default} references.
// A referenced variable that is unset and has no default is an error.
func ExpandString(s string) (string, error) {
	if s == "" {
		return "", nil
	}

	var missing []string
	expanded := os.Expand(s, func(key string) string {
		name, fallback, hasFallback := strings.Cut(key, ":-")
		if value := os.Getenv(name); value != "" {
			return value
		}
		if hasFallback {
			return fallback
		}
		missing = append(missing, name)
		return ""
	})

	if len(missing) > 0 {
		return "", configError(fmt.Errorf("missing required environment variable(s): %s", strings.Join(missing, ", ")), "env")
	}
	return expanded, nil
}

// ReadFile reads a secret file, trimming trailing newlines. Group or world
// readable files are accepted with a warning.
func ReadFile(path string) (string, error) {
	if path == "" {
		return "", configError(fmt.Errorf("secret file path is empty"), "file")
	}
	cleanPath := filepath.Clean(path)

	info, err := os.Stat(cleanPath)
	if err != nil {
		return "", configError(fmt.Errorf("failed to stat secret file %s: %w", cleanPath, err), "file")
	}
	if !info.Mode().IsRegular() {
		return "", configError(fmt.Errorf("secret path is not a regular file: %s", cleanPath), "file")
	}
	if info.Size() > maxSecretFileSize {
		return "", configError(fmt.Errorf("secret file too large (max %d bytes): %s", maxSecretFileSize, cleanPath), "file")
	}

	if perm := info.Mode().Perm(); perm&0o077 != 0 {
		logger.Global().Module(componentName).Warn("secret file is readable by group or others",
			logger.String("path", cleanPath),
			logger.String("mode", fmt.Sprintf("%04o", perm)))
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return "", configError(fmt.Errorf("failed to read secret file %s: %w", cleanPath, err), "file")
	}

	secret := strings.TrimRight(string(data), "\r\n")
	if secret == "" {
		return "", configError(fmt.Errorf("secret file is empty: %s", cleanPath), "file")
	}
	return secret, nil
}

// Resolve returns the secret from filePath when set, otherwise value with
// environment references expanded. Both empty resolves to "".
func Resolve(filePath, value string) (string, error) {
	if filePath != "" {
		return ReadFile(filePath)
	}
	return ExpandString(value)
}
