package report

import (
	"encoding/json"
	"os"

	"dartscope/internal/core/errors"
)

func writeJSON(env *Envelope, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, errors.CodeInternal, "creating json report")
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(env); err != nil {
		f.Close()
		return errors.Wrap(err, errors.CodeInternal, "encoding json report")
	}
	return f.Close()
}
