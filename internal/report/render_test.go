package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/setevik/rfkpi/internal/kpi"
)

func testReport() *kpi.Report {
	return &kpi.Report{
		LineCount:      42,
		MalformedCount: 3,
		SampleCount:    17,
		AttemptCount:   7,
		Verdicts: []kpi.Verdict{
			{Name: "rsrp", Outcome: kpi.OutcomePass, Summary: "RSRP: 1/17 samples below -110 dBm (5.9%), limit 20%"},
			{Name: "handover_success_rate", Outcome: kpi.OutcomeFail, Summary: "handover success rate: 5/7 (71.4%), minimum 95.0%"},
			{Name: "call_setup", Outcome: kpi.OutcomeNoData, Summary: "call setup: no request/complete pair"},
		},
	}
}

func TestFormat(t *testing.T) {
	out := Format("bench01", "drive_test.txt", testReport())

	for _, want := range []string{
		"bench01",
		"drive_test.txt",
		"42 parsed, 3 malformed",
		"17 RF samples, 7 handover attempts",
		"[PASS] RSRP:",
		"[FAIL] handover success rate:",
		"[NO DATA] call setup:",
		"Result: FAILED (1 of 3 checks)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestFormatAllPassed(t *testing.T) {
	rep := &kpi.Report{
		Verdicts: []kpi.Verdict{
			{Name: "rsrp", Outcome: kpi.OutcomePass, Summary: "RSRP: ok"},
			{Name: "call_setup", Outcome: kpi.OutcomeNoData, Summary: "call setup: no data"},
		},
	}

	out := Format("bench01", "a.txt", rep)
	if !strings.Contains(out, "Result: PASSED (2 checks)") {
		t.Errorf("output missing pass result:\n%s", out)
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, "bench01", "drive_test.txt", testReport()); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}

	var decoded struct {
		Instance string `json:"instance"`
		Source   string `json:"source"`
		Passed   bool   `json:"passed"`
		Verdicts []struct {
			Name    string `json:"name"`
			Outcome string `json:"outcome"`
		} `json:"verdicts"`
	}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("decoding output: %v", err)
	}

	if decoded.Instance != "bench01" {
		t.Errorf("instance = %q, want bench01", decoded.Instance)
	}
	if decoded.Passed {
		t.Error("passed = true, want false (report has a FAIL verdict)")
	}
	if len(decoded.Verdicts) != 3 {
		t.Fatalf("verdicts = %d, want 3", len(decoded.Verdicts))
	}
	if decoded.Verdicts[1].Outcome != "FAIL" {
		t.Errorf("verdict[1].outcome = %q, want FAIL", decoded.Verdicts[1].Outcome)
	}
}
