package qpu

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/oqtopus-team/oqtopus-engine/progcheck/core"
)

var qasmNames = map[core.GateKind]string{
	core.GateI:     "id",
	core.GateX:     "x",
	core.GateY:     "y",
	core.GateZ:     "z",
	core.GateH:     "h",
	core.GateS:     "s",
	core.GateSD:    "sdg",
	core.GateT:     "t",
	core.GateTD:    "tdg",
	core.GateRX:    "rx",
	core.GateRY:    "ry",
	core.GateRZ:    "rz",
	core.GateU1:    "p",
	core.GateU3:    "u3",
	core.GateCX:    "cx",
	core.GateCY:    "cy",
	core.GateCZ:    "cz",
	core.GateCH:    "ch",
	core.GateCRX:   "crx",
	core.GateCRY:   "cry",
	core.GateCRZ:   "crz",
	core.GateCU1:   "cp",
	core.GateSW:    "swap",
	core.GateISW:   "iswap",
	core.GateISWDG: "inv @ iswap",
	core.GateRXX:   "rxx",
	core.GateRYY:   "ryy",
	core.GateRZZ:   "rzz",
	core.GateCSW:   "cswap",
	core.GateCCX:   "ccx",
	core.GateCCZ:   "ccz",
}

// definitions of gates outside stdgates.inc, keyed by the name they declare
var qasmDefinitions = map[string]string{
	"iswap": "gate iswap a, b { s a; s b; h a; cx a, b; cx b, a; h b; }",
	"rxx":   "gate rxx(theta) a, b { h a; h b; cx a, b; rz(theta) b; cx a, b; h a; h b; }",
	"ryy":   "gate ryy(theta) a, b { rx(pi/2) a; rx(pi/2) b; cx a, b; rz(theta) b; cx a, b; rx(-pi/2) a; rx(-pi/2) b; }",
	"rzz":   "gate rzz(theta) a, b { cx a, b; rz(theta) b; cx a, b; }",
	"ccz":   "gate ccz a, b, c { h c; ccx a, b, c; h c; }",
}

// ToQASM renders p as OpenQASM 3 with registers q and c.
func ToQASM(p *core.Program) (string, error) {
	if err := p.Validate(); err != nil {
		return "", err
	}
	var body strings.Builder
	used := map[string]struct{}{}
	for _, op := range p.Operations {
		if op.IsMeasurement() {
			for i, q := range op.Qubits {
				fmt.Fprintf(&body, "c[%d] = measure q[%d];\n", op.Cbits[i], q)
			}
			continue
		}
		name := qasmNames[op.Kind]
		base := strings.TrimPrefix(name, "inv @ ")
		if _, ok := qasmDefinitions[base]; ok {
			used[base] = struct{}{}
		}
		body.WriteString(name)
		if len(op.Params) > 0 {
			ps := make([]string, len(op.Params))
			for i, v := range op.Params {
				ps[i] = strconv.FormatFloat(v, 'g', -1, 64)
			}
			fmt.Fprintf(&body, "(%s)", strings.Join(ps, ", "))
		}
		qs := make([]string, len(op.Qubits))
		for i, q := range op.Qubits {
			qs[i] = fmt.Sprintf("q[%d]", q)
		}
		fmt.Fprintf(&body, " %s;\n", strings.Join(qs, ", "))
	}

	var out strings.Builder
	out.WriteString("OPENQASM 3;\ninclude \"stdgates.inc\";\n")
	defs := make([]string, 0, len(used))
	for name := range used {
		defs = append(defs, qasmDefinitions[name])
	}
	sort.Strings(defs)
	for _, d := range defs {
		out.WriteString(d + "\n")
	}
	fmt.Fprintf(&out, "qubit[%d] q;\n", p.QubitCount)
	if p.CbitCount > 0 {
		fmt.Fprintf(&out, "bit[%d] c;\n", p.CbitCount)
	}
	if body.Len() > 0 {
		out.WriteString("\n" + body.String())
	}
	return out.String(), nil
}
