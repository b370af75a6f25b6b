package keyfile

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bnema/campaign-checkin-cli/internal/domain"
)

// Line is one non-empty entry with its 1-based position in the file.
type Line struct {
	Number int
	Value  string
}

// ReadLines returns trimmed non-empty lines, skipping # comments.
func ReadLines(path string) ([]Line, error) {
	file, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, err
	}
	defer func() { _ = file.Close() }()

	var lines []Line
	scanner := bufio.NewScanner(file)
	number := 0
	for scanner.Scan() {
		number++
		value := strings.TrimSpace(scanner.Text())
		if value == "" || strings.HasPrefix(value, "#") {
			continue
		}
		lines = append(lines, Line{Number: number, Value: value})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan %s: %w", path, err)
	}

	return lines, nil
}

// ReadPrivateKeys loads the account list. A missing or empty file is an error.
func ReadPrivateKeys(path string) ([]Line, error) {
	lines, err := ReadLines(path)
	if err != nil {
		return nil, fmt.Errorf("read private keys file: %w", err)
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("%w in %s", domain.ErrNoAccounts, path)
	}

	return lines, nil
}

// ReadProxies loads proxy candidates. A missing file yields no entries.
func ReadProxies(path string) ([]string, error) {
	lines, err := ReadLines(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read proxy file: %w", err)
	}

	proxies := make([]string, 0, len(lines))
	for _, line := range lines {
		proxies = append(proxies, line.Value)
	}
	return proxies, nil
}
