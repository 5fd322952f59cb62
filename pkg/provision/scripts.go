package provision

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ScriptList decodes scripts from either a list of {path, source} objects
// or an object of path to source, keeping the object's key order.
type ScriptList []Script

func (l *ScriptList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*l = nil
		return nil
	}

	if data[0] == '[' {
		var scripts []Script
		if err := json.Unmarshal(data, &scripts); err != nil {
			return err
		}
		*l = scripts
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return errors.New("scripts must be a list or an object")
	}

	scripts := make([]Script, 0)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		path, _ := tok.(string)

		var source string
		if err := dec.Decode(&source); err != nil {
			return fmt.Errorf("script %q: %w", path, err)
		}
		scripts = append(scripts, Script{Path: path, Source: source})
	}
	*l = scripts
	return nil
}
