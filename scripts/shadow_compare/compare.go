package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"
	"time"
)

// Fields that legitimately differ between two backends holding the same data.
var volatileFields = map[string]struct{}{
	"id": {}, "_id": {}, "__v": {}, "createdAt": {}, "updatedAt": {}, "dateTime": {}, "url": {},
}

type target struct {
	Method   string          `json:"method"`
	Path     string          `json:"path"`
	Critical bool            `json:"critical"`
	Body     json.RawMessage `json:"body,omitempty"`
}

type targetFile struct {
	Targets []target `json:"targets"`
}

type outcome struct {
	Target        target
	GoStatus      int
	LegacyStatus  int
	BodyMatch     bool
	GoLatency     time.Duration
	LegacyLatency time.Duration
	Err           error
}

func (o outcome) diverged() bool {
	return o.Err != nil || o.GoStatus != o.LegacyStatus || !o.BodyMatch
}

func parseTargets(data []byte) ([]target, error) {
	var file targetFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode targets: %w", err)
	}
	if len(file.Targets) == 0 {
		return nil, fmt.Errorf("no targets defined")
	}
	return file.Targets, nil
}

type replayer struct {
	client     *http.Client
	goBase     string
	legacyBase string
}

func (p replayer) compare(t target) outcome {
	out := outcome{Target: t}
	goStatus, goBody, goLatency, err := p.call(p.goBase, t)
	if err != nil {
		out.Err = fmt.Errorf("go backend: %w", err)
		return out
	}
	legacyStatus, legacyBody, legacyLatency, err := p.call(p.legacyBase, t)
	if err != nil {
		out.Err = fmt.Errorf("legacy backend: %w", err)
		return out
	}
	out.GoStatus, out.LegacyStatus = goStatus, legacyStatus
	out.GoLatency, out.LegacyLatency = goLatency, legacyLatency
	out.BodyMatch = sameDocument(goBody, legacyBody)
	return out
}

func (p replayer) call(base string, t target) (int, []byte, time.Duration, error) {
	method := strings.ToUpper(strings.TrimSpace(t.Method))
	if method == "" {
		method = http.MethodGet
	}
	url := strings.TrimRight(base, "/") + "/" + strings.TrimLeft(t.Path, "/")

	var body io.Reader
	if len(t.Body) > 0 {
		body = bytes.NewReader(t.Body)
	}
	req, err := http.NewRequest(method, url, body)
	if err != nil {
		return 0, nil, 0, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := p.client.Do(req)
	if err != nil {
		return 0, nil, 0, err
	}
	defer resp.Body.Close() //nolint:errcheck
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, 0, err
	}
	return resp.StatusCode, data, time.Since(start), nil
}

// sameDocument compares two JSON bodies after dropping volatile fields. Error documents only
// need to agree on having an "error" key since wording differs between backends.
func sameDocument(a, b []byte) bool {
	if bytes.Equal(bytes.TrimSpace(a), bytes.TrimSpace(b)) {
		return true
	}
	var left, right interface{}
	if json.Unmarshal(a, &left) != nil || json.Unmarshal(b, &right) != nil {
		return false
	}
	if isErrorDocument(left) && isErrorDocument(right) {
		return true
	}
	return reflect.DeepEqual(strip(left), strip(right))
}

func isErrorDocument(v interface{}) bool {
	doc, ok := v.(map[string]interface{})
	if !ok {
		return false
	}
	_, has := doc["error"]
	return has && len(doc) == 1
}

func strip(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(val))
		for k, child := range val {
			if _, skip := volatileFields[k]; skip {
				continue
			}
			out[k] = strip(child)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, child := range val {
			out[i] = strip(child)
		}
		return out
	}
	return v
}
