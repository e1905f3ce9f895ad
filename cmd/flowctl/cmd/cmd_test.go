package cmd_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/cognifloe/control-plane/cmd/flowctl/cmd"
	"github.com/cognifloe/control-plane/pkg/models"
)

func run(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	t.Setenv("COGNIFLOE_REMOTE_URL", "")

	var out, errOut bytes.Buffer
	root := cmd.NewRootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err = root.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func TestPredict_LocalJSON(t *testing.T) {
	stdout, stderr, err := run(t, "predict", "--volume", "5000", "--tier", "medium")
	if err != nil {
		t.Fatalf("predict error = %v", err)
	}

	var got models.PredictionResult
	if err := json.Unmarshal([]byte(stdout), &got); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, stdout)
	}
	if got.SuccessProbability != 69 || got.Source != "local" || got.AgentCount != 5 {
		t.Errorf("result = %+v", got)
	}
	if !strings.Contains(stderr, "note:") {
		t.Errorf("stderr = %q, want an advisory note", stderr)
	}
}

func TestPredict_YAML(t *testing.T) {
	stdout, _, err := run(t, "predict", "--volume", "5000", "-o", "yaml")
	if err != nil {
		t.Fatalf("predict error = %v", err)
	}
	var got map[string]any
	if err := yaml.Unmarshal([]byte(stdout), &got); err != nil {
		t.Fatalf("output is not YAML: %v\n%s", err, stdout)
	}
	if got["successProbability"] != 69 || got["riskLevel"] != "High" {
		t.Errorf("yaml = %v", got)
	}
	if strings.HasPrefix(strings.TrimSpace(stdout), "{") {
		t.Errorf("yaml output is in flow style:\n%s", stdout)
	}
}

func TestPredict_Remote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"predicted_hours":2.5,"success_probability":0.91,"confidence":0.85,
			"risk_level":"Low","time_range":{"min":2,"max":3},"factors":{},"risk_factors":[]}`))
	}))
	defer srv.Close()

	stdout, stderr, err := run(t, "predict", "--remote-url", srv.URL)
	if err != nil {
		t.Fatalf("predict error = %v", err)
	}
	var got models.PredictionResult
	if err := json.Unmarshal([]byte(stdout), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Source != "remote" || got.SuccessProbability != 91 {
		t.Errorf("result = %+v, want remote 91", got)
	}
	if strings.Contains(stderr, "note:") {
		t.Errorf("stderr = %q, want no advisory for a remote result", stderr)
	}
}

func TestPredict_NegativeVolume(t *testing.T) {
	if _, _, err := run(t, "predict", "--volume", "-3"); err == nil {
		t.Error("predict --volume -3 error = nil, want error")
	}
}

func TestAnalyze(t *testing.T) {
	stdout, _, err := run(t, "analyze", "--description", "Digitize these", "--file", "scan.pdf")
	if err != nil {
		t.Fatalf("analyze error = %v", err)
	}
	var got struct {
		Source string                `json:"source"`
		Result models.AnalysisResult `json:"result"`
	}
	if err := json.Unmarshal([]byte(stdout), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Source != "local" {
		t.Errorf("source = %q, want local", got.Source)
	}
	found := false
	for _, a := range got.Result.SuggestedAgents {
		if a.ID == "document-intelligence" {
			found = true
		}
	}
	if !found {
		t.Errorf("agents = %+v, want document-intelligence for a PDF", got.Result.SuggestedAgents)
	}
}

func TestAnalyze_RequiresInput(t *testing.T) {
	if _, _, err := run(t, "analyze"); err == nil {
		t.Error("analyze without input error = nil, want error")
	}
}

func TestInsights_SynthesizesSteps(t *testing.T) {
	stdout, _, err := run(t, "insights", "--description", "Manual review of security incidents")
	if err != nil {
		t.Fatalf("insights error = %v", err)
	}
	var got models.Insights
	if err := json.Unmarshal([]byte(stdout), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.CostBenefit.ManualHoursPerExecution <= 0 {
		t.Errorf("cost benefit = %+v, want steps to be synthesized", got.CostBenefit)
	}
	if len(got.Bottlenecks) == 0 {
		t.Error("bottlenecks empty for a manual review workflow")
	}
}

func TestDetect(t *testing.T) {
	stdout, _, err := run(t, "detect", "--success-rate", "0.4", "--errors", "15")
	if err != nil {
		t.Fatalf("detect error = %v", err)
	}
	var got models.AnomalyReport
	if err := json.Unmarshal([]byte(stdout), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !got.IsAnomaly || got.Severity != "Critical" {
		t.Errorf("report = %+v, want a Critical anomaly", got)
	}
}

func TestDetect_RejectsOutOfRange(t *testing.T) {
	for _, args := range [][]string{
		{"detect", "--success-rate", "1.5"},
		{"detect", "--errors=-1"},
	} {
		if _, _, err := run(t, args...); err == nil {
			t.Errorf("%v error = nil, want error", args)
		}
	}
}

func TestCatalog(t *testing.T) {
	stdout, _, err := run(t, "catalog")
	if err != nil {
		t.Fatalf("catalog error = %v", err)
	}
	var got struct {
		Tags     []map[string]any `json:"tags"`
		Defaults []map[string]any `json:"defaults"`
	}
	if err := json.Unmarshal([]byte(stdout), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got.Tags) != 12 || len(got.Defaults) != 3 {
		t.Errorf("tags = %d defaults = %d, want 12 and 3", len(got.Tags), len(got.Defaults))
	}
}

func TestInvalidOutput(t *testing.T) {
	if _, _, err := run(t, "catalog", "-o", "xml"); err == nil {
		t.Error("-o xml error = nil, want error")
	}
}
