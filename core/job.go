package core

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-openapi/strfmt"
	"github.com/google/uuid"
	"github.com/mohae/deepcopy"
	"go.uber.org/zap"
)

type CheckKind string

const (
	EquivalenceCheck CheckKind = "equivalence"
	IdentityCheck    CheckKind = "identity"
	KeepPurityCheck  CheckKind = "keep_purity"
	UnitarityCheck   CheckKind = "unitarity"
	KeepBasisCheck   CheckKind = "keep_basis"
)

var checkKinds = []CheckKind{EquivalenceCheck, IdentityCheck, KeepPurityCheck, UnitarityCheck, KeepBasisCheck}

func ToCheckKind(s string) (CheckKind, error) {
	n := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")
	for _, k := range checkKinds {
		if string(k) == n {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown check kind: %s", s)
}

// Arity is the number of programs the check relates.
func (k CheckKind) Arity() int {
	if k == EquivalenceCheck {
		return 2
	}
	return 1
}

// CheckJob is one relation check over named programs and its outcome.
type CheckJob struct {
	ID           string
	Kind         CheckKind
	ProgramNames []string
	Programs     []*Program
	// Overrides replaces the configured parameters of this check only.
	// Keys are the setting names, e.g. "npoints" or "epsilon".
	Overrides map[string]float64
	Status    Status
	Verdict   bool
	Message   string
	Created   strfmt.DateTime
	Ended     strfmt.DateTime
}

func NewCheckJob(kind CheckKind, names []string, programs []*Program) (*CheckJob, error) {
	if len(programs) != kind.Arity() {
		return nil, fmt.Errorf("%s check takes %d programs, got %d", kind, kind.Arity(), len(programs))
	}
	if len(names) != len(programs) {
		return nil, fmt.Errorf("%d names are given for %d programs", len(names), len(programs))
	}
	return &CheckJob{
		ID:           uuid.NewString(),
		Kind:         kind,
		ProgramNames: append([]string(nil), names...),
		Programs:     programs,
		Overrides:    map[string]float64{},
		Status:       READY,
		Created:      strfmt.DateTime(time.Now()),
	}, nil
}

func (j *CheckJob) Clone() *CheckJob {
	c := deepcopy.Copy(j).(*CheckJob)
	c.Created = *j.Created.DeepCopy()
	c.Ended = *j.Ended.DeepCopy()
	return c
}

func (j *CheckJob) IsFinished() bool {
	return j.Status == SUCCEEDED || j.Status == FAILED || j.Status == CANCELLED
}

func (j *CheckJob) Elapsed() time.Duration {
	if !j.IsFinished() {
		return 0
	}
	return time.Time(j.Ended).Sub(time.Time(j.Created))
}

func (j *CheckJob) SetVerdict(verdict bool) {
	j.Verdict = verdict
	j.Status = SUCCEEDED
	j.Ended = strfmt.DateTime(time.Now())
}

func (j *CheckJob) SetFailureWithError(err error) (msg string) {
	msg = err.Error()
	zap.L().Info(fmt.Sprintf("check(%s) failed/reason:%s", j.ID, msg))
	j.Message = msg
	j.Verdict = false
	j.Status = FAILED
	j.Ended = strfmt.DateTime(time.Now())
	return msg
}
