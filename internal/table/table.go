// Package table reads and writes the flat tabular files exchanged between
// pipeline stages. Every table has an explicit versioned schema shared by its
// producer and consumers, and a YAML manifest written next to the data file so
// a schema drift is caught at read time rather than as silent column-order
// coupling.
package table

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Schema identifies a stage table and fixes its column order.
type Schema struct {
	Name    string   `yaml:"name"`
	Version int      `yaml:"version"`
	Columns []string `yaml:"columns"`
}

// FileName returns the data file name for the schema.
func (s Schema) FileName() string { return s.Name + ".csv" }

func (s Schema) manifestName() string { return s.Name + ".schema.yaml" }

// Path returns the data file path under dir.
func (s Schema) Path(dir string) string { return filepath.Join(dir, s.FileName()) }

// Writer writes a stage table. Rows accumulate in a temp file; the data file
// and manifest only appear once Close succeeds, so a mid-stage failure leaves
// the previous checkpoint intact.
type Writer struct {
	schema  Schema
	dir     string
	tmpPath string
	f       *os.File
	csv     *csv.Writer
	rows    int
}

// NewWriter creates the data directory if needed and opens a temp file for
// the table.
func NewWriter(dir string, schema Schema) (*Writer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, eris.Wrapf(err, "table: create dir %s", dir)
	}
	tmpPath := filepath.Join(dir, schema.FileName()+".tmp")
	f, err := os.Create(tmpPath)
	if err != nil {
		return nil, eris.Wrapf(err, "table: create %s", tmpPath)
	}
	w := &Writer{schema: schema, dir: dir, tmpPath: tmpPath, f: f, csv: csv.NewWriter(f)}
	if err := w.csv.Write(schema.Columns); err != nil {
		f.Close()
		return nil, eris.Wrap(err, "table: write header")
	}
	return w, nil
}

// Write appends one row. The row must match the schema's column count.
func (w *Writer) Write(row []string) error {
	if len(row) != len(w.schema.Columns) {
		return eris.Errorf("table: %s row has %d fields, schema %s v%d has %d columns",
			w.schema.Name, len(row), w.schema.Name, w.schema.Version, len(w.schema.Columns))
	}
	if err := w.csv.Write(row); err != nil {
		return eris.Wrapf(err, "table: write %s row", w.schema.Name)
	}
	w.rows++
	return nil
}

// Rows returns the number of data rows written so far.
func (w *Writer) Rows() int { return w.rows }

// Close flushes the temp file, writes the schema manifest, and renames the
// temp file into place.
func (w *Writer) Close() error {
	w.csv.Flush()
	if err := w.csv.Error(); err != nil {
		w.f.Close()
		return eris.Wrapf(err, "table: flush %s", w.schema.Name)
	}
	if err := w.f.Close(); err != nil {
		return eris.Wrapf(err, "table: close %s", w.tmpPath)
	}

	manifest, err := yaml.Marshal(w.schema)
	if err != nil {
		return eris.Wrap(err, "table: marshal manifest")
	}
	manifestPath := filepath.Join(w.dir, w.schema.manifestName())
	if err := os.WriteFile(manifestPath, manifest, 0o644); err != nil {
		return eris.Wrapf(err, "table: write %s", manifestPath)
	}

	finalPath := w.schema.Path(w.dir)
	if err := os.Rename(w.tmpPath, finalPath); err != nil {
		return eris.Wrapf(err, "table: rename %s", finalPath)
	}

	zap.L().Debug("table: wrote stage table",
		zap.String("table", w.schema.Name),
		zap.Int("version", w.schema.Version),
		zap.Int("rows", w.rows),
	)
	return nil
}

// Abort discards the temp file. Safe to call after a failed Close.
func (w *Writer) Abort() {
	_ = w.f.Close()
	_ = os.Remove(w.tmpPath)
}

// Read streams the table under dir, calling fn for each data row. The header
// must match the schema exactly; if a manifest is present its version must
// match too.
func Read(dir string, schema Schema, fn func(row []string) error) error {
	if err := checkManifest(dir, schema); err != nil {
		return err
	}

	path := schema.Path(dir)
	f, err := os.Open(path)
	if err != nil {
		return eris.Wrapf(err, "table: open %s", path)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = len(schema.Columns)

	header, err := r.Read()
	if err != nil {
		return eris.Wrapf(err, "table: read %s header", schema.Name)
	}
	for i, col := range schema.Columns {
		if header[i] != col {
			return eris.Errorf("table: %s column %d is %q, schema %s v%d expects %q",
				schema.Name, i, header[i], schema.Name, schema.Version, col)
		}
	}

	for {
		row, err := r.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return eris.Wrapf(err, "table: read %s row", schema.Name)
		}
		if err := fn(row); err != nil {
			return err
		}
	}
}

// checkManifest compares the on-disk manifest against the schema. A missing
// manifest is tolerated for hand-made fixture tables.
func checkManifest(dir string, schema Schema) error {
	data, err := os.ReadFile(filepath.Join(dir, schema.manifestName()))
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return eris.Wrapf(err, "table: read %s manifest", schema.Name)
	}
	var disk Schema
	if err := yaml.Unmarshal(data, &disk); err != nil {
		return eris.Wrapf(err, "table: parse %s manifest", schema.Name)
	}
	if disk.Version != schema.Version {
		return eris.Errorf("table: %s on disk is schema v%d, this build expects v%d (re-run the producing stage)",
			schema.Name, disk.Version, schema.Version)
	}
	return nil
}

// Exists reports whether the table's data file is present under dir.
func Exists(dir string, schema Schema) bool {
	_, err := os.Stat(schema.Path(dir))
	return err == nil
}
