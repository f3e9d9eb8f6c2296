package submission_test

import (
	"errors"
	"testing"

	"github.com/greenstart/esgscope/pkg/scoring"
	"github.com/greenstart/esgscope/pkg/submission"
)

func TestParseCategory(t *testing.T) {
	tests := []struct {
		in      string
		want    scoring.Category
		wantErr bool
	}{
		{"ENVIRONMENTAL", scoring.Environmental, false},
		{"social", scoring.Social, false},
		{" Governance ", scoring.Governance, false},
		{"FINANCIAL", "", true},
		{"", "", true},
	}

	for _, tc := range tests {
		got, err := submission.ParseCategory(tc.in)
		if tc.wantErr {
			if !errors.Is(err, submission.ErrUnknownCategory) {
				t.Errorf("ParseCategory(%q) error = %v, want ErrUnknownCategory", tc.in, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParseCategory(%q) unexpected error: %v", tc.in, err)
		}
		if got != tc.want {
			t.Errorf("ParseCategory(%q) = %s, want %s", tc.in, got, tc.want)
		}
	}
}

func TestDecode_Environmental(t *testing.T) {
	raw := []byte(`{"carbonEmissions":12.5,"energyUsage":4250,"renewableEnergy":25,"wasteRecycled":68,"waterUsage":1250,"paperUsage":120}`)

	m, issues, err := submission.Decode(scoring.Environmental, raw)
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if len(issues) != 0 {
		t.Errorf("expected no issues, got %v", issues)
	}

	env, ok := m.(scoring.EnvironmentalMetrics)
	if !ok {
		t.Fatalf("expected EnvironmentalMetrics, got %T", m)
	}
	if env.CarbonEmissions != 12.5 || env.PaperUsage != 120 {
		t.Errorf("unexpected values: %+v", env)
	}
	if got := scoring.EnvironmentalScore(env); got != 54 {
		t.Errorf("EnvironmentalScore = %d, want 54", got)
	}
}

func TestDecode_StringEncodedPayload(t *testing.T) {
	raw := []byte(`"{\"genderDiversity\":42,\"employeeTurnover\":18,\"trainingHours\":24,\"payEquityRatio\":0.94,\"communityInvestment\":2.5,\"employeeSatisfaction\":4.2}"`)

	m, issues, err := submission.Decode(scoring.Social, raw)
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if len(issues) != 0 {
		t.Errorf("expected no issues, got %v", issues)
	}
	if got := scoring.SocialScore(m.(scoring.SocialMetrics)); got != 52 {
		t.Errorf("SocialScore = %d, want 52", got)
	}
}

func TestDecode_FormStrings(t *testing.T) {
	raw := []byte(`{"boardDiversity":"40","ethicsViolations":"1","policyCoverage":" 85 ","dataBreaches":"0","complianceScore":"92","riskAssessmentFrequency":"2"}`)

	m, issues, err := submission.Decode(scoring.Governance, raw)
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if len(issues) != 0 {
		t.Errorf("expected no issues, got %v", issues)
	}
	if got := scoring.GovernanceScore(m.(scoring.GovernanceMetrics)); got != 76 {
		t.Errorf("GovernanceScore = %d, want 76", got)
	}
}

func TestDecode_InvalidFieldsFallBackToZero(t *testing.T) {
	raw := []byte(`{"genderDiversity":"n/a","employeeTurnover":null,"trainingHours":true,"payEquityRatio":"NaN","communityInvestment":5}`)

	m, issues, err := submission.Decode(scoring.Social, raw)
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}

	soc := m.(scoring.SocialMetrics)
	if soc.GenderDiversity != 0 || soc.EmployeeTurnover != 0 || soc.TrainingHours != 0 || soc.PayEquityRatio != 0 {
		t.Errorf("invalid fields should be zero: %+v", soc)
	}
	if soc.CommunityInvestment != 5 {
		t.Errorf("CommunityInvestment = %v, want 5", soc.CommunityInvestment)
	}

	// genderDiversity, employeeTurnover, trainingHours, payEquityRatio, employeeSatisfaction (missing)
	if len(issues) != 5 {
		t.Fatalf("expected 5 issues, got %d: %v", len(issues), issues)
	}
	for _, is := range issues {
		if !errors.Is(is, submission.ErrInvalidMetricValue) {
			t.Errorf("issue %v does not wrap ErrInvalidMetricValue", is)
		}
	}
}

func TestDecode_Malformed(t *testing.T) {
	for _, raw := range []string{`{not json`, `[1,2,3]`, `42`, `"just a string"`} {
		_, _, err := submission.Decode(scoring.Environmental, []byte(raw))
		if !errors.Is(err, submission.ErrMalformedPayload) {
			t.Errorf("Decode(%s) error = %v, want ErrMalformedPayload", raw, err)
		}
	}
}

func TestDecodeTagged_UnknownCategory(t *testing.T) {
	_, _, err := submission.DecodeTagged("FINANCIAL", []byte(`{}`))
	if !errors.Is(err, submission.ErrUnknownCategory) {
		t.Errorf("expected ErrUnknownCategory, got %v", err)
	}
}
