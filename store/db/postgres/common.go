package postgres

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/mvpforge/mvpforge/store"
)

// placeholder returns a placeholder for PostgreSQL (uses $1, $2, ...)
func placeholder(n int) string {
	return fmt.Sprintf("$%d", n)
}

// placeholders returns n placeholders for PostgreSQL
func placeholders(n int) string {
	list := []string{}
	for i := 0; i < n; i++ {
		list = append(list, placeholder(i+1))
	}
	return strings.Join(list, ", ")
}

func marshalStages(stages []store.Stage) (string, error) {
	if stages == nil {
		stages = []store.Stage{}
	}
	raw, err := json.Marshal(stages)
	if err != nil {
		return "", errors.Wrap(err, "failed to marshal completed stages")
	}
	return string(raw), nil
}

func unmarshalStages(raw string) ([]store.Stage, error) {
	stages := []store.Stage{}
	if raw == "" {
		return stages, nil
	}
	if err := json.Unmarshal([]byte(raw), &stages); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal completed stages")
	}
	return stages, nil
}
