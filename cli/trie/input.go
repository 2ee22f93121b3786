package trie

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/statecommit/balance-mpt/pkg/core/balances"
	"gopkg.in/yaml.v3"
)

var errNoInput = errors.New("no input file specified, use option '--in' or '-i'")

// readEntries reads the list of balance entries from a JSON (".json"
// extension) or YAML (anything else) file.
func readEntries(path string) ([]balances.Entry, error) {
	if path == "" {
		return nil, errNoInput
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("can't read input: %w", err)
	}

	var entries []balances.Entry
	if strings.EqualFold(filepath.Ext(path), ".json") {
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(&entries)
	} else {
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		err = dec.Decode(&entries)
	}
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("can't parse %s: %w", path, err)
	}
	return entries, nil
}

// entriesFromArgs converts "address balance" argument pairs to entries.
func entriesFromArgs(args []string) ([]balances.Entry, error) {
	if len(args) == 0 || len(args)%2 != 0 {
		return nil, errors.New("expected one or more <address> <balance> pairs")
	}
	entries := make([]balances.Entry, 0, len(args)/2)
	for i := 0; i < len(args); i += 2 {
		entries = append(entries, balances.Entry{Address: args[i], Balance: args[i+1]})
	}
	return entries, nil
}
