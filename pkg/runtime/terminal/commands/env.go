package commands

import (
	"encoding/json"
	"io"

	"github.com/de-tools/revops-pilot/pkg/runtime/app"
)

// Env is shared by all commands
type Env struct {
	NewApp app.Factory
	Output io.Writer
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
