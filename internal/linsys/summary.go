package linsys

import (
	"strconv"
	"strings"
)

// Precision is the default number of decimals shown in the summary.
const Precision = 5

// Summary renders the eigenvalues and the eigenvector matrix with prec
// decimals, one column per eigenvector, e.g.
//
//	Eigenvalues:
//	[10.+8.94427j, 10.-8.94427j]
func Summary(d EigenDecomposition, prec int) string {
	s := ValuesText(d, prec) + "\n\n" + VectorsText(d, prec)
	if d.Defective() {
		s += "\n\ndefective: eigenvectors may be parallel"
	}
	return s
}

func ValuesText(d EigenDecomposition, prec int) string {
	var b strings.Builder
	b.WriteString("Eigenvalues:\n[")
	for i, v := range d.Values {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(formatComplex(v, prec))
	}
	b.WriteString("]")
	return b.String()
}

func VectorsText(d EigenDecomposition, prec int) string {
	var b strings.Builder
	b.WriteString("Eigenvectors:\n[")
	for row := 0; row < 2; row++ {
		if row > 0 {
			b.WriteString(",\n ")
		}
		b.WriteString("[")
		for col := 0; col < 2; col++ {
			if col > 0 {
				b.WriteString(", ")
			}
			b.WriteString(formatComplex(d.Vectors[col][row], prec))
		}
		b.WriteString("]")
	}
	b.WriteString("]")
	return b.String()
}

func formatComplex(z complex128, prec int) string {
	if imag(z) == 0 {
		return formatReal(real(z), prec)
	}
	im := formatReal(imag(z), prec)
	if !strings.HasPrefix(im, "-") {
		im = "+" + im
	}
	return formatReal(real(z), prec) + im + "j"
}

// formatReal rounds to prec decimals and drops trailing zeros but keeps
// the point, so 10 prints as "10.".
func formatReal(v float64, prec int) string {
	if v == 0 {
		v = 0
	}
	s := strconv.FormatFloat(v, 'f', prec, 64)
	if strings.ContainsAny(s, "nN") {
		return s
	}
	s = strings.TrimRight(s, "0")
	if s == "-0." {
		s = "0."
	}
	return s
}
