package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/phaselab/internal/engine"
	"github.com/san-kum/phaselab/internal/render"
	"github.com/san-kum/phaselab/internal/roots"
)

const (
	KindLinear   = "linear"
	KindFunction = "function"

	svgSize = 600
)

// Store writes analysis results into one directory per run.
type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID           string       `json:"id"`
	Kind         string       `json:"kind"`
	Timestamp    time.Time    `json:"timestamp"`
	Title        string       `json:"title"`
	Matrix       []float64    `json:"matrix,omitempty"`
	Eigenvalues  [][2]float64 `json:"eigenvalues,omitempty"`
	Equilibrium  string       `json:"equilibrium,omitempty"`
	Formula      string       `json:"formula,omitempty"`
	Alpha        float64      `json:"alpha,omitempty"`
	Domain       []float64    `json:"domain,omitempty"`
	RealRoots    []string     `json:"real_roots,omitempty"`
	ComplexRoots []string     `json:"complex_roots,omitempty"`
	Summary      string       `json:"summary"`
	Files        []string     `json:"files"`
}

func (s *Store) newRun(kind string) (string, string, error) {
	runID := fmt.Sprintf("%s_%d", kind, time.Now().UnixNano())
	runDir := filepath.Join(s.baseDir, runID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", "", err
	}
	return runID, runDir, nil
}

// save creates a run directory, lets write fill it and finishes with
// metadata.json. A run that fails part way is removed.
func (s *Store) save(meta RunMetadata, write func(runDir string) error) (string, error) {
	runID, runDir, err := s.newRun(meta.Kind)
	if err != nil {
		return "", err
	}
	meta.ID = runID
	meta.Timestamp = time.Now()
	if err := write(runDir); err != nil {
		os.RemoveAll(runDir)
		return "", err
	}
	if err := writeMeta(runDir, meta); err != nil {
		os.RemoveAll(runDir)
		return "", err
	}
	return runID, nil
}

// SaveLinear writes metadata.json, field.csv and phase.svg.
func (s *Store) SaveLinear(res *engine.LinearResult) (string, error) {
	m := res.Matrix
	meta := RunMetadata{
		Kind:        KindLinear,
		Title:       res.Scene.Title,
		Matrix:      []float64{m.A11, m.A12, m.A21, m.A22},
		Equilibrium: res.Equilibrium.String(),
		Summary:     res.Text,
		Files:       []string{"field.csv", "phase.svg"},
	}
	for i := range res.ValuesRe {
		meta.Eigenvalues = append(meta.Eigenvalues, [2]float64{res.ValuesRe[i], res.ValuesIm[i]})
	}

	return s.save(meta, func(runDir string) error {
		x, y, u, v := res.Field.Flatten()
		if err := writeCSV(filepath.Join(runDir, "field.csv"), []string{"x", "y", "u", "v"}, x, y, u, v); err != nil {
			return err
		}
		phase, ok := res.Scene.Panel("phase")
		if !ok {
			return nil
		}
		return os.WriteFile(filepath.Join(runDir, "phase.svg"), []byte(render.PanelSVG(phase, svgSize, svgSize)), 0644)
	})
}

// SaveFunction writes metadata.json, curve.csv, roots.csv and phase.svg.
func (s *Store) SaveFunction(res *engine.FunctionResult) (string, error) {
	in := res.Input
	meta := RunMetadata{
		Kind:         KindFunction,
		Title:        res.Title,
		Formula:      in.Formula,
		Alpha:        in.Alpha,
		Domain:       []float64{in.Start, in.End},
		RealRoots:    roots.Labels(res.Classes.Real),
		ComplexRoots: roots.Labels(res.Classes.Complex),
		Summary:      res.Classes.Summary(),
		Files:        []string{"curve.csv", "roots.csv", "phase.svg"},
	}

	return s.save(meta, func(runDir string) error {
		if err := writeCSV(filepath.Join(runDir, "curve.csv"), []string{"x", "y"}, res.X, res.Y); err != nil {
			return err
		}
		re := make([]float64, len(res.Roots))
		im := make([]float64, len(res.Roots))
		for i, r := range res.Roots {
			re[i], im[i] = r.Re, r.Im
		}
		if err := writeCSV(filepath.Join(runDir, "roots.csv"), []string{"re", "im"}, re, im); err != nil {
			return err
		}
		return os.WriteFile(filepath.Join(runDir, "phase.svg"), []byte(render.PanelSVG(res.Phase, svgSize, svgSize)), 0644)
	})
}

func writeMeta(runDir string, meta RunMetadata) error {
	metaFile, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

// writeCSV writes equally long columns under header.
func writeCSV(path string, header []string, cols ...[]float64) error {
	for _, c := range cols[1:] {
		if len(c) != len(cols[0]) {
			return fmt.Errorf("storage: %s: columns of %d and %d rows", filepath.Base(path), len(cols[0]), len(c))
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return err
	}
	row := make([]string, len(cols))
	for i := range cols[0] {
		for j, c := range cols {
			row[j] = strconv.FormatFloat(c[i], 'g', -1, 64)
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// List returns every run, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}
	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadTable reads a CSV written by this store back into columns keyed by
// header name.
func (s *Store) LoadTable(runID, name string) (map[string][]float64, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, name))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("storage: %s/%s is empty", runID, name)
	}

	header := records[0]
	out := make(map[string][]float64, len(header))
	for _, h := range header {
		out[h] = make([]float64, 0, len(records)-1)
	}
	for _, rec := range records[1:] {
		for j, field := range rec {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("storage: %s/%s: %w", runID, name, err)
			}
			out[header[j]] = append(out[header[j]], v)
		}
	}
	return out, nil
}
