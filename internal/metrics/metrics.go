// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package metrics records per-run counters in a Prometheus registry and
// writes them in the text exposition format, for node_exporter's textfile
// collector or any other scraper of static files.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"grimm.is/docwriter/internal/diag"
)

// Registry holds the docwriter metrics. Each Registry owns its own
// prometheus.Registry, so several can coexist in one process.
type Registry struct {
	reg *prometheus.Registry

	Runs        *prometheus.CounterVec
	Files       *prometheus.CounterVec
	Blocks      prometheus.Counter
	References  *prometheus.CounterVec
	Diagnostics *prometheus.CounterVec
	Documents   prometheus.Counter
	Sections    prometheus.Gauge
	Entries     prometheus.Gauge
	Duration    prometheus.Gauge
	LastSuccess prometheus.Gauge
}

// NewRegistry creates and registers all metrics.
func NewRegistry() *Registry {
	r := &Registry{
		reg: prometheus.NewRegistry(),
		Runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "docwriter_runs_total",
				Help: "Pipeline runs by outcome",
			},
			[]string{"status"},
		),
		Files: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "docwriter_files_total",
				Help: "Input files by read outcome",
			},
			[]string{"status"},
		),
		Blocks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "docwriter_blocks_total",
			Help: "Documentation blocks extracted",
		}),
		References: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "docwriter_references_total",
				Help: "Cross-references by resolution result",
			},
			[]string{"result"},
		),
		Diagnostics: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "docwriter_diagnostics_total",
				Help: "Diagnostics by severity and code",
			},
			[]string{"severity", "code"},
		),
		Documents: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "docwriter_documents_total",
			Help: "Documents rendered",
		}),
		Sections: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "docwriter_sections",
			Help: "Sections in the last model",
		}),
		Entries: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "docwriter_entries",
			Help: "Entries in the last model",
		}),
		Duration: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "docwriter_run_duration_seconds",
			Help: "Wall time of the last run",
		}),
		LastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "docwriter_last_success_timestamp_seconds",
			Help: "Unix time of the last successful run",
		}),
	}
	r.reg.MustRegister(r.Runs, r.Files, r.Blocks, r.References, r.Diagnostics,
		r.Documents, r.Sections, r.Entries, r.Duration, r.LastSuccess)
	return r
}

// Gatherer exposes the underlying registry.
func (r *Registry) Gatherer() prometheus.Gatherer { return r.reg }

// Run is what one pipeline run reports.
type Run struct {
	Files       int
	FailedFiles int
	Blocks      int
	Sections    int
	Entries     int
	Refs        int
	Unresolved  int
	Documents   int
	Diagnostics diag.List
	Duration    time.Duration
	Finished    time.Time
	Failed      bool
}

// Observe records one run.
func (r *Registry) Observe(run Run) {
	status := "ok"
	if run.Failed {
		status = "failed"
	}
	r.Runs.WithLabelValues(status).Inc()
	r.Files.WithLabelValues("read").Add(float64(run.Files - run.FailedFiles))
	r.Files.WithLabelValues("failed").Add(float64(run.FailedFiles))
	r.Blocks.Add(float64(run.Blocks))
	r.References.WithLabelValues("resolved").Add(float64(run.Refs - run.Unresolved))
	r.References.WithLabelValues("unresolved").Add(float64(run.Unresolved))
	for _, d := range run.Diagnostics {
		r.Diagnostics.WithLabelValues(d.Severity.String(), string(d.Code)).Inc()
	}
	r.Documents.Add(float64(run.Documents))
	r.Sections.Set(float64(run.Sections))
	r.Entries.Set(float64(run.Entries))
	r.Duration.Set(run.Duration.Seconds())
	if !run.Failed && !run.Finished.IsZero() {
		r.LastSuccess.Set(float64(run.Finished.Unix()))
	}
}

// WriteTextfile writes all metrics to path atomically.
func (r *Registry) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.reg)
}
