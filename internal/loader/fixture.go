package loader

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/leapstack-labs/scriptdeps/pkg/core"
	"gopkg.in/yaml.v3"
)

// datasetFile is the on-disk YAML form of a dataset.
type datasetFile struct {
	Scripts []*core.ScriptRecord `yaml:"scripts"`
}

// DatasetError reports a malformed dataset file.
type DatasetError struct {
	File    string
	Index   int
	Message string
}

func (e *DatasetError) Error() string {
	where := e.File
	if e.Index > 0 {
		where = fmt.Sprintf("%s: script #%d", e.File, e.Index)
	}
	if where == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", where, e.Message)
}

// LoadDatasetFile reads a YAML dataset file. Unknown fields are rejected.
// Records go through the same first-wins and dedup rules as parsed blocks.
func LoadDatasetFile(path string) (*core.Dataset, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is chosen by the user
	if err != nil {
		return nil, err
	}
	ds, err := ParseDataset(data)
	if err != nil {
		var de *DatasetError
		if errors.As(err, &de) {
			de.File = path
		}
		return nil, err
	}
	return ds, nil
}

// ParseDataset decodes YAML dataset content.
func ParseDataset(data []byte) (*core.Dataset, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var file datasetFile
	if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return nil, &DatasetError{Message: fmt.Sprintf("invalid YAML: %v", err)}
	}

	ds := core.NewDataset()
	for i, rec := range file.Scripts {
		if rec == nil {
			return nil, &DatasetError{Index: i + 1, Message: "empty entry"}
		}
		rec.Name = core.CanonicalName(rec.Name)
		if rec.Name == "" {
			return nil, &DatasetError{Index: i + 1, Message: "missing name"}
		}
		rec.Placeholder = false
		for j, call := range rec.Calls {
			rec.Calls[j] = core.CanonicalName(call)
		}
		ds.Add(Normalize(rec))
	}
	return ds, nil
}

// WriteDatasetYAML writes ds in the form LoadDatasetFile reads.
func WriteDatasetYAML(w io.Writer, ds *core.Dataset) error {
	file := datasetFile{Scripts: ds.Records()}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(file); err != nil {
		return fmt.Errorf("encode dataset: %w", err)
	}
	return enc.Close()
}
