package core

import (
	"strings"
)

type GateKind int

const (
	GateI GateKind = iota
	GateX
	GateY
	GateZ
	GateH
	GateS
	GateSD
	GateT
	GateTD
	GateRX
	GateRY
	GateRZ
	GateU1
	GateU3
	GateCX
	GateCY
	GateCZ
	GateCH
	GateCRX
	GateCRY
	GateCRZ
	GateCU1
	GateSW
	GateISW
	GateISWDG
	GateRXX
	GateRYY
	GateRZZ
	GateCSW
	GateCCX
	GateCCZ
	GateMeasure
)

// variadic arity, used by measurement only
const anyArity = -1

type gateSpec struct {
	name    string
	nQubits int
	nParams int
}

var gateSpecs = map[GateKind]gateSpec{
	GateI:       {"I", 1, 0},
	GateX:       {"X", 1, 0},
	GateY:       {"Y", 1, 0},
	GateZ:       {"Z", 1, 0},
	GateH:       {"H", 1, 0},
	GateS:       {"S", 1, 0},
	GateSD:      {"SD", 1, 0},
	GateT:       {"T", 1, 0},
	GateTD:      {"TD", 1, 0},
	GateRX:      {"RX", 1, 1},
	GateRY:      {"RY", 1, 1},
	GateRZ:      {"RZ", 1, 1},
	GateU1:      {"U1", 1, 1},
	GateU3:      {"U3", 1, 3},
	GateCX:      {"CX", 2, 0},
	GateCY:      {"CY", 2, 0},
	GateCZ:      {"CZ", 2, 0},
	GateCH:      {"CH", 2, 0},
	GateCRX:     {"CRX", 2, 1},
	GateCRY:     {"CRY", 2, 1},
	GateCRZ:     {"CRZ", 2, 1},
	GateCU1:     {"CU1", 2, 1},
	GateSW:      {"SW", 2, 0},
	GateISW:     {"ISW", 2, 0},
	GateISWDG:   {"ISWDG", 2, 0},
	GateRXX:     {"RXX", 2, 1},
	GateRYY:     {"RYY", 2, 1},
	GateRZZ:     {"RZZ", 2, 1},
	GateCSW:     {"CSW", 3, 0},
	GateCCX:     {"CCX", 3, 0},
	GateCCZ:     {"CCZ", 3, 0},
	GateMeasure: {"M", anyArity, 0},
}

var gateAliases = map[string]GateKind{
	"MA":       GateMeasure,
	"MEASURE":  GateMeasure,
	"ID":       GateI,
	"CNOT":     GateCX,
	"SWAP":     GateSW,
	"ISWAP":    GateISW,
	"ISWAPDG":  GateISWDG,
	"CCNOT":    GateCCX,
	"TOFFOLI":  GateCCX,
	"CSWAP":    GateCSW,
	"FREDKIN":  GateCSW,
	"SDG":      GateSD,
	"SDAG":     GateSD,
	"SDAGGER":  GateSD,
	"TDG":      GateTD,
	"TDAG":     GateTD,
	"TDAGGER":  GateTD,
	"R1":       GateU1,
	"P":        GateU1,
	"CR1":      GateCU1,
	"CR":       GateCU1,
	"CP":       GateCU1,
	"U":        GateU3,
	"IDENTITY": GateI,
}

var gateByName map[string]GateKind

func init() {
	gateByName = make(map[string]GateKind, len(gateSpecs)+len(gateAliases))
	for k, s := range gateSpecs {
		gateByName[s.name] = k
	}
	for alias, k := range gateAliases {
		gateByName[alias] = k
	}
}

// ParseGateKind maps a gate name or one of its aliases to its canonical kind.
func ParseGateKind(name string) (GateKind, error) {
	k, ok := gateByName[strings.ToUpper(strings.TrimSpace(name))]
	if !ok {
		return 0, NewValidationError("gate is not supported: %s", name)
	}
	return k, nil
}

func (g GateKind) String() string {
	if s, ok := gateSpecs[g]; ok {
		return s.name
	}
	return "unknown"
}

func (g GateKind) IsValid() bool {
	_, ok := gateSpecs[g]
	return ok
}

// NumQubits returns -1 for measurement, which takes any number of operands.
func (g GateKind) NumQubits() int {
	return gateSpecs[g].nQubits
}

func (g GateKind) NumParams() int {
	return gateSpecs[g].nParams
}

func (g GateKind) IsMeasurement() bool {
	return g == GateMeasure
}

// inverse returns the kind and parameters that undo g. params is never modified.
func (g GateKind) inverse(params []float64) (GateKind, []float64, error) {
	switch g {
	case GateMeasure:
		return g, nil, NewValidationError("measurement cannot be inverted")
	case GateS:
		return GateSD, nil, nil
	case GateSD:
		return GateS, nil, nil
	case GateT:
		return GateTD, nil, nil
	case GateTD:
		return GateT, nil, nil
	case GateISW:
		return GateISWDG, nil, nil
	case GateISWDG:
		return GateISW, nil, nil
	case GateRX, GateRY, GateRZ, GateCRX, GateCRY, GateCRZ, GateRXX, GateRYY, GateRZZ, GateU1, GateCU1:
		return g, []float64{-params[0]}, nil
	case GateU3:
		// U3(θ,φ,λ)^† = U3(-θ,-λ,-φ)
		return g, []float64{-params[0], -params[2], -params[1]}, nil
	default:
		return g, append([]float64(nil), params...), nil
	}
}
