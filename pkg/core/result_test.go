package core

import "testing"

func TestFlowResult_ComputeSummary(t *testing.T) {
	flow := &FlowResult{
		Name: "checkout",
		Steps: []StepResult{
			{Index: 0, Status: StatusPassed},
			{Index: 1, Status: StatusPassed},
			{Index: 2, Status: StatusKnownIssue, KnownIssue: "123"},
			{Index: 3, Status: StatusFailed},
			{Index: 4, Status: StatusSkipped},
		},
	}

	flow.ComputeSummary()

	if flow.TotalSteps != 5 {
		t.Errorf("TotalSteps = %d, want 5", flow.TotalSteps)
	}
	if flow.PassedSteps != 2 {
		t.Errorf("PassedSteps = %d, want 2", flow.PassedSteps)
	}
	if flow.FailedSteps != 1 {
		t.Errorf("FailedSteps = %d, want 1", flow.FailedSteps)
	}
	if flow.SkippedSteps != 1 {
		t.Errorf("SkippedSteps = %d, want 1", flow.SkippedSteps)
	}
	if flow.KnownIssueSteps != 1 {
		t.Errorf("KnownIssueSteps = %d, want 1", flow.KnownIssueSteps)
	}
}

func TestFlowResult_AggregateStatus(t *testing.T) {
	tests := []struct {
		name     string
		steps    []StepResult
		expected StepStatus
	}{
		{
			"all passed",
			[]StepResult{{Status: StatusPassed}, {Status: StatusPassed}},
			StatusPassed,
		},
		{
			"one failed",
			[]StepResult{{Status: StatusPassed}, {Status: StatusFailed}, {Status: StatusSkipped}},
			StatusFailed,
		},
		{
			"one errored",
			[]StepResult{{Status: StatusPassed}, {Status: StatusErrored}},
			StatusErrored,
		},
		{
			"known issue only",
			[]StepResult{{Status: StatusPassed}, {Status: StatusKnownIssue}},
			StatusKnownIssue,
		},
		{
			"known issue plus failure still fails",
			[]StepResult{{Status: StatusKnownIssue}, {Status: StatusFailed}},
			StatusFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &FlowResult{Steps: tt.steps}
			if got := f.AggregateStatus(); got != tt.expected {
				t.Errorf("AggregateStatus() = %s, want %s", got, tt.expected)
			}
		})
	}
}

func TestFlowResult_Verdicts(t *testing.T) {
	f := &FlowResult{
		Steps: []StepResult{
			{Verdicts: []Verdict{{Name: "url", Outcome: OutcomePass}}},
			{Verdicts: []Verdict{{Name: "text", Outcome: OutcomeFail}, {Name: "visible", Outcome: OutcomePass}}},
		},
	}

	all := f.Verdicts()
	if len(all) != 3 {
		t.Fatalf("Verdicts() returned %d, want 3", len(all))
	}
	if all[1].Name != "text" || all[1].Passed() {
		t.Errorf("Verdicts() order or outcome wrong: %+v", all[1])
	}
}

func TestSuiteResult_ComputeSummary(t *testing.T) {
	suite := &SuiteResult{
		Flows: []FlowResult{
			{Status: StatusPassed},
			{Status: StatusKnownIssue},
			{Status: StatusFailed},
			{Status: StatusSkipped},
		},
	}

	suite.ComputeSummary()

	// Known-issue flows count into passed but keep their own counter.
	if suite.PassedFlows != 2 {
		t.Errorf("PassedFlows = %d, want 2", suite.PassedFlows)
	}
	if suite.KnownIssueFlows != 1 {
		t.Errorf("KnownIssueFlows = %d, want 1", suite.KnownIssueFlows)
	}
	if suite.FailedFlows != 1 {
		t.Errorf("FailedFlows = %d, want 1", suite.FailedFlows)
	}
	if suite.SkippedFlows != 1 {
		t.Errorf("SkippedFlows = %d, want 1", suite.SkippedFlows)
	}
}

func TestSuiteResult_Success(t *testing.T) {
	tests := []struct {
		name     string
		flows    []FlowResult
		expected bool
	}{
		{"empty suite is not success", nil, false},
		{"all passed", []FlowResult{{Status: StatusPassed}}, true},
		{"known issue counts as success", []FlowResult{{Status: StatusPassed}, {Status: StatusKnownIssue}}, true},
		{"failure breaks success", []FlowResult{{Status: StatusPassed}, {Status: StatusFailed}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &SuiteResult{Flows: tt.flows}
			if got := s.Success(); got != tt.expected {
				t.Errorf("Success() = %v, want %v", got, tt.expected)
			}
		})
	}
}
