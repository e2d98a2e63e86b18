package engine_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"math"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/phaselab/internal/bounds"
	"github.com/san-kum/phaselab/internal/config"
	"github.com/san-kum/phaselab/internal/engine"
	"github.com/san-kum/phaselab/internal/expr"
	"github.com/san-kum/phaselab/internal/linsys"
	"github.com/san-kum/phaselab/internal/phaseline"
	"github.com/san-kum/phaselab/internal/scene"
	"github.com/san-kum/phaselab/internal/solve"
)

type failingRenderer struct{}

func (failingRenderer) Render(context.Context, phaseline.Flow) (scene.Panel, error) {
	return scene.Panel{}, errors.New("renderer unavailable")
}

var _ = Describe("Engine", func() {
	var (
		eng  *engine.Engine
		logs *bytes.Buffer
		ctx  context.Context
	)

	BeforeEach(func() {
		var err error
		logs = &bytes.Buffer{}
		ctx = context.Background()
		eng, err = engine.New(config.DefaultConfig(),
			engine.WithLogger(slog.New(slog.NewTextHandler(logs, nil))))
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("RecomputeLinearSystem", func() {
		It("analyzes the default matrix", func() {
			res, err := eng.RecomputeLinearSystem(10, -8, 10, 10)
			Expect(err).NotTo(HaveOccurred())

			for _, v := range res.Eigen.Values {
				Expect(real(v)).To(BeNumerically("~", 10, 1e-9))
				Expect(math.Abs(imag(v))).To(BeNumerically("~", math.Sqrt(320)/2, 1e-9))
			}
			Expect(res.Text).To(ContainSubstring("8.94427j"))
			Expect(res.Scene.Panels).To(HaveLen(2))
			Expect(res.Scene.Texts).To(HaveLen(2))

			phase, ok := res.Scene.Panel("phase")
			Expect(ok).To(BeTrue())
			field, ok := phase.Find("field")
			Expect(ok).To(BeTrue())
			Expect(field.Len()).To(Equal(linsys.GridSize * linsys.GridSize))
			Expect(field.Scale).To(Equal(config.DefaultQuiverScale))
		})

		It("draws unit eigenvectors scaled for display", func() {
			res, err := eng.RecomputeLinearSystem(1, 2, 3, 4)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Overlay).To(HaveLen(2))
			for _, s := range res.Overlay {
				Expect(math.Hypot(s.X1, s.Y1)).To(BeNumerically("~", linsys.DisplayScale, 1e-9))
			}
		})

		It("follows the configured display settings", func() {
			cfg := config.DefaultConfig()
			cfg.Display.Scale = 5
			cfg.Display.Precision = 2
			cfg.Display.RootDigits = 3
			cfg.Linear.QuiverScale = 1
			custom, err := engine.New(cfg)
			Expect(err).NotTo(HaveOccurred())

			res, err := custom.RecomputeLinearSystem(1.0/3, 0, 0, 2)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Overlay).To(HaveLen(2))
			for _, s := range res.Overlay {
				Expect(math.Hypot(s.X0, s.Y0)).To(BeNumerically("~", 5, 1e-12))
				Expect(math.Hypot(s.X1, s.Y1)).To(BeNumerically("~", 5, 1e-12))
				Expect(math.Abs(s.X1) + math.Abs(s.Y1)).To(BeNumerically("~", 5, 1e-12))
			}
			Expect(res.Text).To(ContainSubstring("0.33"))
			Expect(res.Text).NotTo(ContainSubstring("0.333"))
			Expect(res.Scene.Texts[0].Text).To(Or(ContainSubstring("[0.33, 2.]"), ContainSubstring("[2., 0.33]")))

			phase, _ := res.Scene.Panel("phase")
			field, ok := phase.Find("field")
			Expect(ok).To(BeTrue())
			Expect(field.Scale).To(Equal(1.0))

			fn, err := custom.RecomputeFunctionAnalysis(ctx, engine.FunctionInput{
				Formula: "x - 5", Alpha: 1, Start: -20, End: 20, YLim: 20,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(fn.Classes.Summary()).To(Equal("Real roots: [5.00]\nComplex roots: []"))
			Expect(fn.Digits).To(Equal(3))
		})

		It("integrates orbits whose growth matches the eigenvalues", func() {
			res, err := eng.RecomputeLinearSystem(-1, -4, 4, -1)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Orbits).To(HaveLen(8))
			Expect(res.GrowthRate).To(BeNumerically("~", -1, 1e-2))
			Expect(res.Scene.Texts[1].Text).To(ContainSubstring("Growth rate: -1"))

			for _, o := range res.Orbits {
				last := o.Len() - 1
				Expect(math.Hypot(o.X[last], o.Y[last])).To(BeNumerically("<", math.Hypot(o.X[0], o.Y[0])))
			}
		})

		It("yields a zero field for the zero matrix", func() {
			res, err := eng.RecomputeLinearSystem(0, 0, 0, 0)
			Expect(err).NotTo(HaveOccurred())
			_, _, u, v := res.Field.Flatten()
			Expect(u).To(HaveEach(0.0))
			Expect(v).To(HaveEach(0.0))
		})

		It("is deterministic", func() {
			a, err := eng.RecomputeLinearSystem(3, -1, 2, 0.5)
			Expect(err).NotTo(HaveOccurred())
			b, err := eng.RecomputeLinearSystem(3, -1, 2, 0.5)
			Expect(err).NotTo(HaveOccurred())
			Expect(a).To(Equal(b))
		})

		It("keeps the previous result on failure", func() {
			good, err := eng.RecomputeLinearSystem(1, 0, 0, -1)
			Expect(err).NotTo(HaveOccurred())

			_, err = eng.RecomputeLinearSystem(math.NaN(), 0, 0, 1)
			Expect(err).To(MatchError(linsys.ErrNonFinite))
			var re *engine.RecomputeError
			Expect(errors.As(err, &re)).To(BeTrue())
			Expect(re.Op).To(Equal(engine.OpLinear))

			Expect(eng.LastLinear()).To(BeIdenticalTo(good))
			Expect(logs.String()).To(ContainSubstring("recompute failed"))
		})
	})

	Describe("RecomputeFunctionAnalysis", func() {
		input := func(formula string, alpha float64) engine.FunctionInput {
			return engine.FunctionInput{Formula: formula, Alpha: alpha, Start: -20, End: 20, YLim: 20}
		}

		It("finds a conjugate pair for x^2 + 1", func() {
			res, err := eng.RecomputeFunctionAnalysis(ctx, input("x^2 + alpha", 1))
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Classes.Real).To(BeEmpty())
			Expect(res.Classes.Complex).To(HaveLen(2))
			ys := []float64{res.Classes.Complex[0].Y, res.Classes.Complex[1].Y}
			Expect(ys).To(ConsistOf(1.0, -1.0))
			for _, p := range res.Classes.Complex {
				Expect(p.X).To(Equal(0.0))
			}
		})

		It("places the real root of x - 5 on the axis", func() {
			res, err := eng.RecomputeFunctionAnalysis(ctx, input("x - 5", 1))
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Classes.Complex).To(BeEmpty())
			Expect(res.Classes.Real).To(HaveLen(1))
			Expect(res.Classes.Real[0].X).To(Equal(5.0))
			Expect(res.Classes.Real[0].Y).To(Equal(0.0))
			Expect(res.Classes.Real[0].Label).To(Equal("5.00000"))
		})

		It("builds the full scene", func() {
			res, err := eng.RecomputeFunctionAnalysis(ctx, input("x", 1))
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Title).To(Equal("Function: x with alpha = 1.0"))
			Expect(res.X).To(HaveLen(config.DefaultSamples))
			Expect(res.Scene.Panels).To(HaveLen(3))

			curve, ok := res.Scene.Panel("function")
			Expect(ok).To(BeTrue())
			Expect(curve.YLim).To(Equal(scene.Limits{Min: -20, Max: 20}))
			_, ok = res.Scene.Panel("phase")
			Expect(ok).To(BeTrue())
		})

		It("rejects syntax errors and keeps the last result", func() {
			good, err := eng.RecomputeFunctionAnalysis(ctx, input("x", 1))
			Expect(err).NotTo(HaveOccurred())

			_, err = eng.RecomputeFunctionAnalysis(ctx, input("x +* 2", 1))
			Expect(errors.Is(err, expr.ErrParse)).To(BeTrue())
			Expect(eng.LastFunction()).To(BeIdenticalTo(good))
		})

		It("reports domain errors", func() {
			_, err := eng.RecomputeFunctionAnalysis(ctx, input("sqrt(x)", 1))
			Expect(errors.Is(err, expr.ErrDomain)).To(BeTrue())
			Expect(eng.LastFunction()).To(BeNil())
		})

		It("reports an identically zero function as a solver failure", func() {
			_, err := eng.RecomputeFunctionAnalysis(ctx, input("x - x", 1))
			Expect(errors.Is(err, solve.ErrSolverFailure)).To(BeTrue())
		})

		It("surfaces solver timeouts", func() {
			slow, err := engine.New(config.DefaultConfig(), engine.WithSolver(solve.New(time.Nanosecond, 0)))
			Expect(err).NotTo(HaveOccurred())
			_, err = slow.RecomputeFunctionAnalysis(ctx, input("x^3 - 2", 1))
			Expect(errors.Is(err, solve.ErrSolverTimeout)).To(BeTrue())
			Expect(slow.LastFunction()).To(BeNil())
		})

		It("propagates renderer failures", func() {
			broken, err := engine.New(config.DefaultConfig(), engine.WithRenderer(failingRenderer{}))
			Expect(err).NotTo(HaveOccurred())
			_, err = broken.RecomputeFunctionAnalysis(ctx, input("x", 1))
			Expect(err).To(MatchError(ContainSubstring("renderer unavailable")))
		})

		It("rejects non-numeric text fields", func() {
			_, err := eng.RecomputeFunctionText(ctx, "x", "one", "-20", "20", "20")
			Expect(errors.Is(err, bounds.ErrInvalidInput)).To(BeTrue())

			res, err := eng.RecomputeFunctionText(ctx, "alpha*x - 1", "0.1", "-20", "20", "20")
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Classes.Real).To(HaveLen(1))
			Expect(res.Classes.Real[0].X).To(Equal(10.0))
		})

		It("reruns the last input when alpha moves", func() {
			_, err := eng.RecomputeFunctionAnalysis(ctx, input("x^2 - alpha", 1))
			Expect(err).NotTo(HaveOccurred())
			res, err := eng.SetAlpha(ctx, 4)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Input.Formula).To(Equal("x^2 - alpha"))
			xs := []float64{res.Classes.Real[0].X, res.Classes.Real[1].X}
			Expect(xs).To(ConsistOf(2.0, -2.0))
		})
	})

	Describe("UpdateBounds", func() {
		It("resets the value to min and recomputes", func() {
			Expect(eng.UpdateBounds("a11", "-5", "5", "0.5")).To(Succeed())
			s, err := eng.Sliders().Slider("a11")
			Expect(err).NotTo(HaveOccurred())
			Expect(s.Value).To(Equal(-5.0))
			Expect(eng.LastLinear()).NotTo(BeNil())
			Expect(eng.LastLinear().Matrix.A11).To(Equal(-5.0))
		})

		It("is idempotent", func() {
			Expect(eng.UpdateBounds("a22", "-1", "1", "0.1")).To(Succeed())
			first := eng.Sliders().Snapshot()
			firstLinear := eng.LastLinear()
			Expect(eng.UpdateBounds("a22", "-1", "1", "0.1")).To(Succeed())
			Expect(eng.Sliders().Snapshot()).To(Equal(first))
			Expect(eng.LastLinear().Analysis).To(Equal(firstLinear.Analysis))
		})

		It("rejects a non-numeric step without touching state", func() {
			_, err := eng.RecomputeFromSliders()
			Expect(err).NotTo(HaveOccurred())
			before := eng.Sliders().Snapshot()
			last := eng.LastLinear()

			err = eng.UpdateBounds("a12", "-1", "1", "abc")
			Expect(errors.Is(err, bounds.ErrInvalidInput)).To(BeTrue())
			Expect(eng.Sliders().Snapshot()).To(Equal(before))
			Expect(eng.LastLinear()).To(BeIdenticalTo(last))
		})

		It("rejects inverted bounds", func() {
			err := eng.UpdateBounds("a21", "3", "1", "1")
			Expect(errors.Is(err, bounds.ErrInvalidBounds)).To(BeTrue())
		})

		It("reruns the function analysis for alpha", func() {
			_, err := eng.RecomputeFunctionAnalysis(ctx, engine.FunctionInput{Formula: "x - alpha", Alpha: 1, Start: -20, End: 20, YLim: 20})
			Expect(err).NotTo(HaveOccurred())
			Expect(eng.UpdateBounds(engine.AlphaSlider, "3", "6", "1")).To(Succeed())
			Expect(eng.LastFunction().Input.Alpha).To(Equal(3.0))
			Expect(eng.LastFunction().Classes.Real[0].X).To(Equal(3.0))
		})
	})

	Describe("slider hook", func() {
		It("recomputes the linear system when a coefficient slider moves", func() {
			_, err := eng.Sliders().SetValue("a21", -3)
			Expect(err).NotTo(HaveOccurred())
			Expect(eng.LastLinear()).NotTo(BeNil())
			Expect(eng.LastLinear().Matrix.A21).To(Equal(-3.0))
		})

		It("runs the configured function when alpha moves first", func() {
			Expect(eng.LastFunction()).To(BeNil())
			_, err := eng.Sliders().SetValue(engine.AlphaSlider, 2)
			Expect(err).NotTo(HaveOccurred())
			Expect(eng.LastFunction()).NotTo(BeNil())
			Expect(eng.LastFunction().Input.Formula).To(Equal(config.DefaultFormula))
			Expect(eng.LastFunction().Input.Alpha).To(Equal(2.0))
		})

		It("reports a rejected slider value as a recompute error", func() {
			_, err := eng.RecomputeFunctionAnalysis(ctx, engine.FunctionInput{Formula: "x - alpha", Alpha: 1, Start: -20, End: 20, YLim: 20})
			Expect(err).NotTo(HaveOccurred())
			last := eng.LastFunction()

			_, err = eng.SetAlpha(ctx, math.NaN())
			Expect(errors.Is(err, bounds.ErrInvalidInput)).To(BeTrue())
			var re *engine.RecomputeError
			Expect(errors.As(err, &re)).To(BeTrue())
			Expect(re.Op).To(Equal(engine.OpFunction))
			Expect(eng.LastFunction()).To(BeIdenticalTo(last))
		})
	})

	Describe("SetCoefficient", func() {
		It("snaps to the slider step", func() {
			res, err := eng.SetCoefficient("a12", 2.4)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Matrix.A12).To(Equal(2.0))
		})

		It("rejects alpha", func() {
			_, err := eng.SetCoefficient(engine.AlphaSlider, 1)
			Expect(errors.Is(err, bounds.ErrUnknownCoefficient)).To(BeTrue())
		})
	})
})
