// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Skywatch (https://www.skywatchhq.com/).
// Copyright 2023 Skywatch, Inc.

package tracer

import (
	"encoding/json"
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/skywatchhq/sw-trace-go/internal/globalconfig"
	"github.com/skywatchhq/sw-trace-go/internal/log"
	"github.com/skywatchhq/sw-trace-go/internal/version"
)

type startupInfo struct {
	Date                  string            `json:"date"`                    // ISO 8601 date and time of start
	OSName                string            `json:"os_name"`                 // Windows, Darwin, Debian, etc.
	OSVersion             string            `json:"os_version"`              // Version of the OS
	Version               string            `json:"version"`                 // Tracer version
	Lang                  string            `json:"lang"`                    // "Go"
	LangVersion           string            `json:"lang_version"`            // Go version, e.g. go1.22
	Architecture          string            `json:"architecture"`            // Architecture of the host machine
	Service               string            `json:"service"`                 // Tracer service
	ProjectID             string            `json:"project_id"`              // Project traces are recorded under
	CollectorAddr         string            `json:"collector_addr"`          // The address of the collector
	CollectorError        string            `json:"collector_error"`         // Any error that occurred trying to connect to the collector
	LogExporter           bool              `json:"log_exporter"`            // Whether batches go to the log instead of the collector
	Debug                 bool              `json:"debug"`                   // Whether debug mode is enabled
	Sampler               string            `json:"sampler"`                 // Description of the active sampler
	FlushInterval         string            `json:"flush_interval"`          // Interval of the scheduled flush
	BufferSize            int               `json:"buffer_size"`             // Maximum number of queued traces
	BufferBytes           int               `json:"buffer_bytes"`            // Maximum encoded size of the queued traces
	DropPolicy            string            `json:"drop_policy"`             // Which trace a full queue discards
	GlobalLabels          map[string]string `json:"global_labels"`           // Labels applied to all spans
	RuntimeMetricsEnabled bool              `json:"runtime_metrics_enabled"` // Whether or not runtime metrics are enabled
	GlobalService         string            `json:"global_service"`          // Global service string. If not empty, should be the same as Service.
}

// collectorReachable reports whether the configured collector answers on the
// traces endpoint.
func collectorReachable(t *tracer) error {
	req, err := http.NewRequest("POST", fmt.Sprintf("http://%s/v1/projects/%s/traces", t.config.collectorAddr, t.config.projectID), nil)
	if err != nil {
		return fmt.Errorf("cannot create http request: %v", err)
	}
	resp, err := t.config.httpClient.Do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

// samplerDescription renders the active sampler for the startup log.
func samplerDescription(s Sampler) string {
	switch s := s.(type) {
	case *rateLimitedSampler:
		return fmt.Sprintf("rate-limited at %.2f traces/s", s.limit)
	case RateSampler:
		return fmt.Sprintf("probabilistic at rate %f", s.Rate())
	default:
		return fmt.Sprintf("%T", s)
	}
}

// logStartup generates a startup log record with the tracer configuration.
func logStartup(t *tracer) {
	labels := make(map[string]string)
	for _, l := range t.config.globalLabels {
		labels[l.Key] = l.Value
	}

	info := startupInfo{
		Date:                  time.Now().Format(time.RFC3339),
		OSName:                osName(),
		OSVersion:             osVersion(),
		Version:               version.Tag,
		Lang:                  "Go",
		LangVersion:           runtime.Version(),
		Architecture:          runtime.GOARCH,
		Service:               t.config.service,
		ProjectID:             t.config.projectID,
		CollectorAddr:         t.config.collectorAddr,
		LogExporter:           t.config.logToStdout,
		Debug:                 t.config.debug,
		Sampler:               samplerDescription(t.config.sampler),
		FlushInterval:         t.config.flushInterval.String(),
		BufferSize:            t.config.bufferSize,
		BufferBytes:           t.config.bufferBytes,
		DropPolicy:            t.config.dropPolicy.String(),
		GlobalLabels:          labels,
		RuntimeMetricsEnabled: t.config.runtimeMetrics,
		GlobalService:         globalconfig.ServiceName(),
	}
	if !t.config.logToStdout {
		if err := collectorReachable(t); err != nil {
			info.CollectorError = err.Error()
			log.Warn("DIAGNOSTICS Unable to reach collector: %v", err)
		}
	}
	bs, err := json.Marshal(info)
	if err != nil {
		log.Warn("Failed to serialize json for startup log: (%v) %#v\n", err, info)
		return
	}
	log.Info("Startup: %s\n", string(bs))
}
