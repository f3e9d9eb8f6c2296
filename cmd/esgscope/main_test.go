package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

const (
	envJSON = `{"carbonEmissions":12.5,"energyUsage":4250,"renewableEnergy":25,"wasteRecycled":68,"waterUsage":1250,"paperUsage":120}`
	socJSON = `{"genderDiversity":42,"employeeTurnover":18,"trainingHours":24,"payEquityRatio":0.94,"communityInvestment":2.5,"employeeSatisfaction":4.2}`
	govJSON = `{"boardDiversity":40,"ethicsViolations":1,"policyCoverage":85,"dataBreaches":0,"complianceScore":92,"riskAssessmentFrequency":2}`
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestScoreCmdFlags(t *testing.T) {
	cmd := newScoreCmd()
	f := cmd.Flags()

	outputFmt, _ := f.GetString("output")
	if outputFmt != "text" {
		t.Errorf("default output = %q, want text", outputFmt)
	}

	for _, flag := range []string{"input", "environmental", "social", "governance", "policy", "industry", "output", "config"} {
		if f.Lookup(flag) == nil {
			t.Errorf("missing flag: %s", flag)
		}
	}
}

func TestScoreCmd_OutputMarkdown(t *testing.T) {
	dir := t.TempDir()
	env := writeFile(t, dir, "env.json", envJSON)

	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"score", "--environmental", env, "--output", "markdown", "--config", filepath.Join(dir, "missing.yaml")})

	if err := root.Execute(); err != nil {
		t.Fatalf("score --output markdown: %v", err)
	}
	if !strings.Contains(out.String(), "## ESG Rating:") {
		t.Errorf("expected markdown heading:\n%s", out.String())
	}
}

func TestRootCmdSubcommands(t *testing.T) {
	root := newRootCmd()
	for _, name := range []string{"score", "rate", "benchmark"} {
		if c, _, err := root.Find([]string{name}); err != nil || c.Name() != name {
			t.Errorf("missing subcommand %s", name)
		}
	}
}

func TestRunScore_SeparateFiles(t *testing.T) {
	dir := t.TempDir()
	opts := scoreOpts{
		environmental: writeFile(t, dir, "env.json", envJSON),
		social:        writeFile(t, dir, "soc.json", socJSON),
		governance:    writeFile(t, dir, "gov.json", govJSON),
		outputFmt:     "json",
		configPath:    filepath.Join(dir, "missing.yaml"),
	}

	var buf bytes.Buffer
	if err := runScore(opts, &buf, zerolog.Nop()); err != nil {
		t.Fatalf("runScore() error: %v", err)
	}

	var card struct {
		OverallScore int `json:"overallScore"`
		Rating       struct {
			Rating string `json:"rating"`
		} `json:"rating"`
	}
	if err := json.Unmarshal(buf.Bytes(), &card); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, buf.String())
	}
	if card.OverallScore != 61 || card.Rating.Rating != "BBB" {
		t.Errorf("got overall %d rating %s, want 61 BBB", card.OverallScore, card.Rating.Rating)
	}
}

func TestRunScore_CombinedInputAndPolicy(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	dir := t.TempDir()
	input := writeFile(t, dir, "all.json",
		`{"environmental":`+envJSON+`,"social":`+socJSON+`,"governance":`+govJSON+`}`)

	var buf bytes.Buffer
	err := runScore(scoreOpts{
		inputPath:  input,
		policy:     "reported_average",
		industry:   "Technology",
		outputFmt:  "text",
		configPath: filepath.Join(dir, "missing.yaml"),
	}, &buf, zerolog.Nop())
	if err != nil {
		t.Fatalf("runScore() error: %v", err)
	}

	output := buf.String()
	for _, want := range []string{"Overall 61", "Overall policy: reported_average", "Benchmark (Technology)"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in output:\n%s", want, output)
		}
	}
}

func TestRunScore_PolicyFromConfig(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "config.yaml", "scoring:\n  overall_policy: reported_average\n")
	env := writeFile(t, dir, "env.json", envJSON)

	var buf bytes.Buffer
	if err := runScore(scoreOpts{environmental: env, outputFmt: "json", configPath: cfgPath}, &buf, zerolog.Nop()); err != nil {
		t.Fatalf("runScore() error: %v", err)
	}
	// a single reported category is its own average
	if !strings.Contains(buf.String(), `"overallScore": 54`) {
		t.Errorf("expected overall 54 under reported_average:\n%s", buf.String())
	}
}

func TestRunScore_Errors(t *testing.T) {
	dir := t.TempDir()
	noConfig := filepath.Join(dir, "missing.yaml")
	bad := writeFile(t, dir, "bad.json", `[1,2]`)
	env := writeFile(t, dir, "env.json", envJSON)

	tests := []struct {
		name string
		opts scoreOpts
	}{
		{"no inputs", scoreOpts{configPath: noConfig}},
		{"missing file", scoreOpts{social: filepath.Join(dir, "nope.json"), configPath: noConfig}},
		{"not an object", scoreOpts{social: bad, configPath: noConfig}},
		{"unknown policy", scoreOpts{environmental: env, policy: "median", configPath: noConfig}},
		{"unknown output", scoreOpts{environmental: env, outputFmt: "xml", configPath: noConfig}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if err := runScore(tc.opts, &bytes.Buffer{}, zerolog.Nop()); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestRunRate(t *testing.T) {
	var buf bytes.Buffer
	if err := runRate("72", "text", &buf); err != nil {
		t.Fatalf("runRate() error: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "A (Average)") {
		t.Errorf("unexpected output: %q", buf.String())
	}

	for _, bad := range []string{"abc", "100.5", "-3"} {
		if err := runRate(bad, "text", &bytes.Buffer{}); err == nil {
			t.Errorf("runRate(%q) expected error", bad)
		}
	}
}

func TestRunBenchmark(t *testing.T) {
	var buf bytes.Buffer
	if err := runBenchmark("manufacturing", "text", &buf); err != nil {
		t.Fatalf("runBenchmark() error: %v", err)
	}
	if !strings.Contains(buf.String(), "Manufacturing: average 54") {
		t.Errorf("unexpected output:\n%s", buf.String())
	}
	if !strings.Contains(buf.String(), "AAA") {
		t.Errorf("expected distribution rows:\n%s", buf.String())
	}
}

func TestFirstNonEmpty(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{[]string{"a", "b", "c"}, "a"},
		{[]string{"", "b", "c"}, "b"},
		{[]string{"", "", "c"}, "c"},
		{[]string{"", "", ""}, ""},
	}

	for _, tt := range tests {
		got := firstNonEmpty(tt.args...)
		if got != tt.want {
			t.Errorf("firstNonEmpty(%v) = %q, want %q", tt.args, got, tt.want)
		}
	}
}
