package report

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/go-faster/jx"
	"github.com/olekukonko/tablewriter"
	"github.com/oqtopus-team/oqtopus-engine/progcheck/core"
	"github.com/tidwall/pretty"
	"golang.org/x/exp/maps"
)

const (
	FormatTable = "table"
	FormatJSON  = "json"
)

var (
	holdsColor    = color.New(color.FgGreen, color.Bold)
	violatedColor = color.New(color.FgRed, color.Bold)
	errorColor    = color.New(color.FgYellow)
)

type Summary struct {
	Total     int
	Holds     int
	Violated  int
	Failed    int
	Cancelled int
	Pending   int
}

func Summarize(jobs []*core.CheckJob) Summary {
	s := Summary{Total: len(jobs)}
	for _, j := range jobs {
		switch j.Status {
		case core.SUCCEEDED:
			if j.Verdict {
				s.Holds++
			} else {
				s.Violated++
			}
		case core.FAILED:
			s.Failed++
		case core.CANCELLED:
			s.Cancelled++
		default:
			s.Pending++
		}
	}
	return s
}

func (s Summary) String() string {
	return fmt.Sprintf("%d checks: %d hold, %d violated, %d failed, %d cancelled, %d pending",
		s.Total, s.Holds, s.Violated, s.Failed, s.Cancelled, s.Pending)
}

// Write renders jobs in the given format.
func Write(w io.Writer, format string, jobs []*core.CheckJob) error {
	switch format {
	case FormatTable, "":
		return WriteTable(w, jobs)
	case FormatJSON:
		return WriteJSON(w, jobs, true)
	default:
		return fmt.Errorf("unknown report format: %s", format)
	}
}

// verdict is the text of the verdict column.
func verdict(j *core.CheckJob) string {
	switch j.Status {
	case core.SUCCEEDED:
		if j.Verdict {
			return "holds"
		}
		return "violated"
	case core.FAILED:
		return "error"
	default:
		return j.Status.String()
	}
}

func colorize(j *core.CheckJob) string {
	v := verdict(j)
	switch v {
	case "holds":
		return holdsColor.Sprint(v)
	case "violated":
		return violatedColor.Sprint(v)
	case "error":
		return errorColor.Sprint(v)
	}
	return v
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func WriteTable(w io.Writer, jobs []*core.CheckJob) error {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"ID", "Check", "Programs", "Verdict", "Elapsed", "Message"})
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	for _, j := range jobs {
		table.Append([]string{
			shortID(j.ID),
			string(j.Kind),
			strings.Join(j.ProgramNames, ", "),
			colorize(j),
			j.Elapsed().Round(time.Millisecond).String(),
			j.Message,
		})
	}
	table.Render()
	_, err := fmt.Fprintln(w, Summarize(jobs))
	return err
}

func encodeJob(e *jx.Encoder, j *core.CheckJob) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Str(j.ID) })
		e.Field("check", func(e *jx.Encoder) { e.Str(string(j.Kind)) })
		e.Field("programs", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for _, name := range j.ProgramNames {
					e.Str(name)
				}
			})
		})
		e.Field("status", func(e *jx.Encoder) { e.Str(j.Status.String()) })
		e.Field("verdict", func(e *jx.Encoder) {
			if j.Status == core.SUCCEEDED {
				e.Bool(j.Verdict)
			} else {
				e.Null()
			}
		})
		if len(j.Overrides) > 0 {
			e.Field("overrides", func(e *jx.Encoder) {
				e.Obj(func(e *jx.Encoder) {
					for _, k := range sortedKeys(j.Overrides) {
						e.Field(k, func(e *jx.Encoder) { e.Float64(j.Overrides[k]) })
					}
				})
			})
		}
		if j.Message != "" {
			e.Field("message", func(e *jx.Encoder) { e.Str(j.Message) })
		}
		e.Field("created", func(e *jx.Encoder) { e.Str(j.Created.String()) })
		if j.IsFinished() {
			e.Field("elapsed_ms", func(e *jx.Encoder) { e.Int64(j.Elapsed().Milliseconds()) })
		}
	})
}

// EncodeJSON renders jobs and their summary as one compact JSON object.
func EncodeJSON(jobs []*core.CheckJob) []byte {
	s := Summarize(jobs)
	e := jx.GetEncoder()
	defer jx.PutEncoder(e)
	e.Obj(func(e *jx.Encoder) {
		e.Field("checks", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for _, j := range jobs {
					encodeJob(e, j)
				}
			})
		})
		e.Field("summary", func(e *jx.Encoder) {
			e.Obj(func(e *jx.Encoder) {
				e.Field("total", func(e *jx.Encoder) { e.Int(s.Total) })
				e.Field("holds", func(e *jx.Encoder) { e.Int(s.Holds) })
				e.Field("violated", func(e *jx.Encoder) { e.Int(s.Violated) })
				e.Field("failed", func(e *jx.Encoder) { e.Int(s.Failed) })
				e.Field("cancelled", func(e *jx.Encoder) { e.Int(s.Cancelled) })
				e.Field("pending", func(e *jx.Encoder) { e.Int(s.Pending) })
			})
		})
	})
	return append([]byte(nil), e.Bytes()...)
}

func WriteJSON(w io.Writer, jobs []*core.CheckJob, indent bool) error {
	b := EncodeJSON(jobs)
	if indent {
		b = pretty.Pretty(b)
	} else {
		b = append(b, '\n')
	}
	_, err := w.Write(b)
	return err
}

func sortedKeys(m map[string]float64) []string {
	keys := maps.Keys(m)
	sort.Strings(keys)
	return keys
}
