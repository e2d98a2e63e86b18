package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/phaselab/internal/config"
	"github.com/san-kum/phaselab/internal/engine"
)

func newEngine(t *testing.T) *engine.Engine {
	t.Helper()
	eng, err := engine.New(config.DefaultConfig())
	if err != nil {
		t.Fatalf("engine: %v", err)
	}
	return eng
}

func TestStoreSaveLinear(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	res, err := newEngine(t).RecomputeLinearSystem(1, 2, 3, 4)
	if err != nil {
		t.Fatalf("recompute failed: %v", err)
	}
	runID, err := st.SaveLinear(res)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.Kind != KindLinear || len(meta.Matrix) != 4 || meta.Matrix[3] != 4 {
		t.Errorf("metadata %+v", meta)
	}
	if len(meta.Eigenvalues) != 2 {
		t.Errorf("expected 2 eigenvalues, got %d", len(meta.Eigenvalues))
	}

	field, err := st.LoadTable(runID, "field.csv")
	if err != nil {
		t.Fatalf("load field failed: %v", err)
	}
	if len(field["u"]) != 400 {
		t.Errorf("expected 400 samples, got %d", len(field["u"]))
	}
	if math.Abs(field["u"][0]-(field["x"][0]+2*field["y"][0])) > 1e-12 {
		t.Errorf("u column does not match A·p")
	}
	if _, err := os.Stat(filepath.Join(st.baseDir, runID, "phase.svg")); err != nil {
		t.Errorf("phase.svg missing: %v", err)
	}
}

func TestStoreSaveFunction(t *testing.T) {
	st := New(t.TempDir())
	res, err := newEngine(t).RecomputeFunctionAnalysis(context.Background(),
		engine.FunctionInput{Formula: "x^2 + 1", Alpha: 1, Start: -5, End: 5, YLim: 10})
	if err != nil {
		t.Fatalf("recompute failed: %v", err)
	}
	runID, err := st.SaveFunction(res)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.Formula != "x^2 + 1" || len(meta.ComplexRoots) != 2 || len(meta.RealRoots) != 0 {
		t.Errorf("metadata %+v", meta)
	}

	tab, err := st.LoadTable(runID, "roots.csv")
	if err != nil {
		t.Fatalf("load roots failed: %v", err)
	}
	if len(tab["im"]) != 2 || tab["re"][0] != 0 {
		t.Errorf("roots table %v", tab)
	}

	runs, err := st.List()
	if err != nil || len(runs) != 1 || runs[0].ID != runID {
		t.Errorf("list = %v, %v", runs, err)
	}
}

func TestStoreList_Missing(t *testing.T) {
	runs, err := New(filepath.Join(t.TempDir(), "nope")).List()
	if err != nil || len(runs) != 0 {
		t.Errorf("got %v, %v", runs, err)
	}
}

func TestStoreSaveFunction_FailedRunRemoved(t *testing.T) {
	dir := t.TempDir()
	st := New(dir)
	res := &engine.FunctionResult{
		Input: engine.FunctionInput{Formula: "x", Alpha: 1, Start: -1, End: 1, YLim: 1},
		X:     []float64{-1, 1},
		Y:     []float64{-1},
	}
	runID, err := st.SaveFunction(res)
	if err == nil {
		t.Fatalf("ragged curve saved as %s", runID)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("failed run left %d entries behind", len(entries))
	}
}

func TestFunctionJSON_NonFinite(t *testing.T) {
	res := &engine.FunctionResult{
		Input: engine.FunctionInput{Formula: "exp(x)", Alpha: 1, Start: 700, End: 720, YLim: 10},
		X:     []float64{700, 720},
		Y:     []float64{math.Exp(700), math.Inf(1)},
	}
	var buf bytes.Buffer
	if err := WriteJSON(&buf, FunctionJSON(res)); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	var back FunctionData
	if err := json.Unmarshal(buf.Bytes(), &back); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if back.Y[0] == nil || back.Y[1] != nil {
		t.Errorf("y = %v", back.Y)
	}
}

func TestLinearJSON(t *testing.T) {
	res, err := newEngine(t).RecomputeLinearSystem(0, -1, 1, 0)
	if err != nil {
		t.Fatalf("recompute failed: %v", err)
	}
	d := LinearJSON(res)
	if d.Equilibrium != "center" || len(d.Overlay) != 2 {
		t.Errorf("got %+v", d)
	}
}
