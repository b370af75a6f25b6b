package toml

import "fmt"

const currentSchemaVersion = 1

type fileSchema struct {
	Version int            `toml:"version"`
	Reports []reportSchema `toml:"reports"`
}

func (s *fileSchema) applyDefaults() {
	if s.Version == 0 {
		s.Version = currentSchemaVersion
	}
}

func (s fileSchema) validateVersion() error {
	if s.Version > currentSchemaVersion {
		return fmt.Errorf("unsupported reports schema version %d (current %d)", s.Version, currentSchemaVersion)
	}

	return nil
}

type reportSchema struct {
	Address    string       `toml:"address"`
	Name       string       `toml:"name"`
	Points     float64      `toml:"points"`
	CheckIn    string       `toml:"checkin"`
	Proxy      string       `toml:"proxy,omitempty"`
	Claimed    []string     `toml:"claimed,omitempty"`
	Tasks      []taskSchema `toml:"tasks,omitempty"`
	Failure    string       `toml:"failure,omitempty"`
	StartedAt  string       `toml:"started_at"`
	FinishedAt string       `toml:"finished_at"`
}

type taskSchema struct {
	ID      string `toml:"id"`
	Title   string `toml:"title"`
	Claimed bool   `toml:"claimed"`
}
