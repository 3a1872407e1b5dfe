package driver

import (
	"encoding/json"
	"fmt"
	"io"

	"indentguard/internal/observ"
)

// TimingPayload is one entry of the --timings output.
type TimingPayload struct {
	Kind    string               `json:"kind"` // "file" | "run"
	Path    string               `json:"path,omitempty"`
	Cached  bool                 `json:"cached,omitempty"`
	TotalMS float64              `json:"total_ms"`
	Phases  []observ.PhaseReport `json:"phases"`
}

func filePayload(path string, cached bool, timer *observ.Timer) TimingPayload {
	r := timer.Report()
	return TimingPayload{Kind: "file", Path: path, Cached: cached, TotalMS: r.TotalMS, Phases: r.Phases}
}

func runPayload(agg *observ.Aggregate) TimingPayload {
	r := agg.Report()
	return TimingPayload{Kind: "run", TotalMS: r.TotalMS, Phases: r.Phases}
}

// TimingPayloads returns one entry per file and a final "run" entry.
func (r *Run) TimingPayloads() []TimingPayload {
	out := make([]TimingPayload, 0, len(r.Files)+1)
	for i := range r.Files {
		if r.Files[i].Timer != nil || r.Files[i].Cached {
			out = append(out, filePayload(r.Files[i].Path, r.Files[i].Cached, r.Files[i].Timer))
		}
	}
	return append(out, runPayload(r.Timings))
}

// TimingPayloads returns one entry per file and a final "run" entry.
func (r *FixRun) TimingPayloads() []TimingPayload {
	out := make([]TimingPayload, 0, len(r.Files)+1)
	for i := range r.Files {
		if r.Files[i].Timer != nil {
			out = append(out, filePayload(r.Files[i].Path, false, r.Files[i].Timer))
		}
	}
	return append(out, runPayload(r.Timings))
}

// WriteTimings prints payloads as NDJSON or as text tables.
func WriteTimings(w io.Writer, payloads []TimingPayload, asJSON bool) error {
	for _, p := range payloads {
		if asJSON {
			data, err := json.Marshal(p)
			if err != nil {
				return err
			}
			if _, err := fmt.Fprintf(w, "%s\n", data); err != nil {
				return err
			}
			continue
		}
		title := "run"
		if p.Kind == "file" {
			title = p.Path
			if p.Cached {
				title += " (cached)"
			}
		}
		report := observ.Report{TotalMS: p.TotalMS, Phases: p.Phases}
		if _, err := fmt.Fprintf(w, "%s %s", title, report.Summary()); err != nil {
			return err
		}
	}
	return nil
}
