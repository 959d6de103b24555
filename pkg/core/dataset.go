package core

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Dataset is the canonical name-keyed collection of scripts.
// Iteration order is insertion order, which is first-seen order in the dump.
type Dataset struct {
	records map[string]*ScriptRecord
	order   []string
}

// NewDataset creates an empty dataset.
func NewDataset() *Dataset {
	return &Dataset{
		records: make(map[string]*ScriptRecord),
	}
}

// Add inserts rec unless a record with the same name already exists.
// It returns false when the record was dropped.
func (d *Dataset) Add(rec *ScriptRecord) bool {
	if rec == nil || rec.Name == "" {
		return false
	}
	if _, exists := d.records[rec.Name]; exists {
		return false
	}
	d.records[rec.Name] = rec
	d.order = append(d.order, rec.Name)
	return true
}

// Get returns the record for name.
func (d *Dataset) Get(name string) (*ScriptRecord, bool) {
	rec, ok := d.records[name]
	return rec, ok
}

// Has reports whether name has a record.
func (d *Dataset) Has(name string) bool {
	_, ok := d.records[name]
	return ok
}

// Len returns the number of records.
func (d *Dataset) Len() int {
	return len(d.order)
}

// Names returns the record names in insertion order.
func (d *Dataset) Names() []string {
	return append([]string{}, d.order...)
}

// Records returns the records in insertion order.
func (d *Dataset) Records() []*ScriptRecord {
	out := make([]*ScriptRecord, 0, len(d.order))
	for _, name := range d.order {
		out = append(out, d.records[name])
	}
	return out
}

// Snapshot returns the renderer view of the whole dataset.
func (d *Dataset) Snapshot() Snapshot {
	snap := Snapshot{
		Order:   d.Names(),
		Scripts: make(map[string]ScriptEntry, len(d.order)),
	}
	for _, name := range d.order {
		rec := d.records[name]
		snap.Scripts[name] = ScriptEntry{
			DA2Jobs: nonNil(rec.DA2Jobs),
			OpsJobs: nonNil(rec.OpsJobs),
			Calls:   nonNil(rec.Calls),
		}
	}
	return snap
}

// Snapshot is the serializable dataset handed to a renderer:
// name -> {da2_jobs, ops_jobs, calls}. It marshals as a JSON object whose keys
// keep dump order.
type Snapshot struct {
	Order   []string
	Scripts map[string]ScriptEntry
}

// ScriptEntry is one script in a Snapshot.
type ScriptEntry struct {
	DA2Jobs []string `json:"da2_jobs" yaml:"da2_jobs"`
	OpsJobs []string `json:"ops_jobs" yaml:"ops_jobs"`
	Calls   []string `json:"calls" yaml:"calls"`
}

// MarshalJSON writes the scripts as one object in Order.
func (s Snapshot) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range s.Order {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(s.Scripts[name])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a name -> entry object, recording key order.
func (s *Snapshot) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("snapshot must be a JSON object")
	}

	s.Order = nil
	s.Scripts = make(map[string]ScriptEntry)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected snapshot key %v", tok)
		}
		var entry ScriptEntry
		if err := dec.Decode(&entry); err != nil {
			return fmt.Errorf("script %q: %w", name, err)
		}
		if _, dup := s.Scripts[name]; !dup {
			s.Order = append(s.Order, name)
		}
		s.Scripts[name] = entry
	}
	_, err = dec.Token()
	return err
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
