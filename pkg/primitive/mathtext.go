package primitive

import (
	"strings"
	"unicode"

	"gitlab.com/tinyland/lab/chartkit/pkg/surface"
	"gitlab.com/tinyland/lab/chartkit/pkg/value"
)

func defaultLabel(d Datum) string { return value.Label(d) }

// mathSymbols maps the TeX commands understood in math labels.
var mathSymbols = map[string]string{
	"alpha": "α", "beta": "β", "gamma": "γ", "delta": "δ", "epsilon": "ε",
	"zeta": "ζ", "eta": "η", "theta": "θ", "kappa": "κ", "lambda": "λ",
	"mu": "μ", "nu": "ν", "xi": "ξ", "pi": "π", "rho": "ρ", "sigma": "σ",
	"tau": "τ", "phi": "φ", "chi": "χ", "psi": "ψ", "omega": "ω",
	"Gamma": "Γ", "Delta": "Δ", "Theta": "Θ", "Lambda": "Λ", "Pi": "Π",
	"Sigma": "Σ", "Phi": "Φ", "Psi": "Ψ", "Omega": "Ω",
	"times": "×", "cdot": "·", "pm": "±", "leq": "≤", "geq": "≥",
	"neq": "≠", "approx": "≈", "infty": "∞", "partial": "∂", "nabla": "∇",
	"sum": "∑", "int": "∫", "sqrt": "√", "degree": "°",
}

// mathRun is a stretch of math text at one baseline.
type mathRun struct {
	text  string
	shift string // "", "super" or "sub"
}

// parseMath splits a TeX-style string into runs. Only ^ and _ (with an
// optional {group}), backslash commands from mathSymbols and the $
// delimiters are interpreted; everything else is literal.
func parseMath(s string) []mathRun {
	s = strings.ReplaceAll(s, "$", "")
	var runs []mathRun
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			runs = append(runs, mathRun{text: cur.String()})
			cur.Reset()
		}
	}
	rs := []rune(s)
	for i := 0; i < len(rs); i++ {
		switch r := rs[i]; {
		case r == '\\':
			j := i + 1
			for j < len(rs) && unicode.IsLetter(rs[j]) {
				j++
			}
			name := string(rs[i+1 : j])
			if sym, ok := mathSymbols[name]; ok {
				cur.WriteString(sym)
			} else {
				cur.WriteString(name)
			}
			i = j - 1
		case (r == '^' || r == '_') && i+1 < len(rs):
			flush()
			shift := "super"
			if r == '_' {
				shift = "sub"
			}
			var arg string
			if rs[i+1] == '{' {
				end := i + 2
				for end < len(rs) && rs[end] != '}' {
					end++
				}
				arg = string(rs[i+2 : end])
				i = end
			} else {
				arg = string(rs[i+1])
				i++
			}
			inner := parseMath(arg)
			var b strings.Builder
			for _, in := range inner {
				b.WriteString(in.text)
			}
			runs = append(runs, mathRun{text: b.String(), shift: shift})
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return runs
}

// setMathText replaces the children of a text node with one tspan per run.
func setMathText(n *surface.Node, s string) {
	n.Clear()
	n.SetText("")
	for _, run := range parseMath(s) {
		ts := n.Append("tspan").SetText(run.text)
		if run.shift != "" {
			ts.SetAttr("baseline-shift", run.shift).SetAttr("font-size", "70%")
		}
	}
}
