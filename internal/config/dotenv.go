package config

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// LoadDotenv applies a .env file to the process environment. Variables
// already set win over file entries; an absent file is not an error, so
// callers can point at $SCRIBE_PATH/.env unconditionally.
//
// Lines are KEY=VALUE, with blank lines, # comments, and an optional
// "export " prefix tolerated. Values may be wrapped in single or double
// quotes.
func LoadDotenv(path string) error {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("open dotenv: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimPrefix(line, "export ")

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}

		// The environment takes precedence over the file.
		if _, exists := os.LookupEnv(key); exists {
			continue
		}
		os.Setenv(key, stripQuotes(strings.TrimSpace(value)))
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read dotenv: %w", err)
	}
	return nil
}

// stripQuotes removes one matching pair of surrounding quotes, if present.
func stripQuotes(s string) string {
	if len(s) < 2 {
		return s
	}
	first, last := s[0], s[len(s)-1]
	if first != last {
		return s
	}
	if first == '"' || first == '\'' {
		return s[1 : len(s)-1]
	}
	return s
}
