package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenstart/esgscope/internal/rescore"
	"github.com/greenstart/esgscope/internal/store"
	"github.com/greenstart/esgscope/pkg/scoring"
)

const (
	testKey    = "secret"
	envPayload = `{"carbonEmissions":12.5,"energyUsage":4250,"renewableEnergy":25,"wasteRecycled":68,"waterUsage":1250,"paperUsage":120}`
	socPayload = `{"genderDiversity":42,"employeeTurnover":18,"trainingHours":24,"payEquityRatio":0.94,"communityInvestment":2.5,"employeeSatisfaction":4.2}`
	govPayload = `{"boardDiversity":40,"ethicsViolations":1,"policyCoverage":85,"dataBreaches":0,"complianceScore":92,"riskAssessmentFrequency":2}`
)

type testServer struct {
	handler http.Handler
	store   *store.Memory
	cache   *CardCache
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	st := store.NewMemory()
	svc := rescore.NewService(st, scoring.NewEngine(scoring.PolicyWeighted),
		rescore.WithReports(rescore.NewLocalStorage(t.TempDir())))
	cache := NewCardCache(10)
	h := NewHandler(Config{
		Service:  svc,
		Store:    st,
		Cache:    cache,
		APIKey:   testKey,
		Industry: "General",
		Log:      zerolog.Nop(),
	})
	return &testServer{handler: h.Router(), store: st, cache: cache}
}

func (s *testServer) do(t *testing.T, method, path, body string, authed bool) *httptest.ResponseRecorder {
	t.Helper()
	var rdr *bytes.Reader
	if body != "" {
		rdr = bytes.NewReader([]byte(body))
	} else {
		rdr = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rdr)
	req.Header.Set("Content-Type", "application/json")
	if authed {
		req.Header.Set("X-API-Key", testKey)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodGet, "/healthz", "", false)
	assert.Equal(t, http.StatusOK, rec.Code)

	h := NewHandler(Config{
		Store:  store.NewMemory(),
		Log:    zerolog.Nop(),
		Health: func(context.Context) error { return errors.New("down") },
	})
	rec = httptest.NewRecorder()
	h.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestScoreEndpoint(t *testing.T) {
	s := newTestServer(t)

	body := `{"environmental":` + envPayload + `,"social":` + socPayload + `,"governance":` + govPayload + `}`
	rec := s.do(t, http.MethodPost, "/api/v1/score", body, false)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	card := decode[scoring.ScoreCard](t, rec)
	assert.Equal(t, 54, card.EnvironmentalScore)
	assert.Equal(t, 52, card.SocialScore)
	assert.Equal(t, 76, card.GovernanceScore)
	assert.Equal(t, 61, card.OverallScore)
	assert.Equal(t, scoring.RatingBBB, card.Rating.Rating)
	assert.Equal(t, scoring.PolicyWeighted, card.Policy)
}

func TestScoreEndpoint_PolicyAndIssues(t *testing.T) {
	s := newTestServer(t)

	body := `{"environmental":` + envPayload + `,"governance":{"boardDiversity":"n/a"},"policy":"reported_average"}`
	rec := s.do(t, http.MethodPost, "/api/v1/score", body, false)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decode[map[string]json.RawMessage](t, rec)
	assert.JSONEq(t, `"reported_average"`, string(resp["policy"]))

	var issues map[string][]string
	require.NoError(t, json.Unmarshal(resp["issues"], &issues))
	assert.Len(t, issues["GOVERNANCE"], 6)
	assert.Contains(t, issues["GOVERNANCE"][0], "invalid metric value")
}

func TestScoreEndpoint_BadRequests(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name string
		body string
	}{
		{"not json", `{`},
		{"no categories", `{}`},
		{"unknown policy", `{"social":` + socPayload + `,"policy":"median"}`},
		{"category not an object", `{"social":[1,2]}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := s.do(t, http.MethodPost, "/api/v1/score", tc.body, false)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
		})
	}
}

func TestRatingEndpoint(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/v1/ratings/85", "", false)
	require.Equal(t, http.StatusOK, rec.Code)
	info := decode[scoring.RatingInfo](t, rec)
	assert.Equal(t, scoring.RatingAAA, info.Rating)
	assert.Equal(t, scoring.Leader, info.Category)

	rec = s.do(t, http.MethodGet, "/api/v1/ratings/54.5", "", false)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, scoring.RatingBB, decode[scoring.RatingInfo](t, rec).Rating)

	for _, bad := range []string{"101", "-1", "abc"} {
		rec = s.do(t, http.MethodGet, "/api/v1/ratings/"+bad, "", false)
		assert.Equal(t, http.StatusBadRequest, rec.Code, bad)
	}
}

func TestBenchmarkEndpoint(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/v1/benchmarks/technology", "", false)
	require.Equal(t, http.StatusOK, rec.Code)
	b := decode[scoring.IndustryBenchmark](t, rec)
	assert.Equal(t, scoring.IndustryTechnology, b.Industry)
	assert.Equal(t, 62, b.Average)
}

func TestWriteEndpointsRequireAPIKey(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/v1/companies", `{"name":"Greenstart"}`, false)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/v1/submissions/x/review", `{"status":"APPROVED"}`, false)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// reads stay open
	rec = s.do(t, http.MethodGet, "/api/v1/companies", "", false)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCompanyEndpoints(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/v1/companies", `{"name":"Greenstart","industry":"Technology"}`, true)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	c := decode[store.Company](t, rec)

	rec = s.do(t, http.MethodPost, "/api/v1/companies", `{"name":"Greenstart"}`, true)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/v1/companies", `{"name":"  "}`, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/companies/"+c.ID, "", false)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Technology", decode[store.Company](t, rec).Industry)

	rec = s.do(t, http.MethodGet, "/api/v1/companies/unknown", "", false)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// unscored companies report zeros
	rec = s.do(t, http.MethodGet, "/api/v1/companies/"+c.ID+"/scores", "", false)
	require.Equal(t, http.StatusOK, rec.Code)
	sc := decode[store.Score](t, rec)
	assert.Equal(t, 0, sc.OverallScore)

	rec = s.do(t, http.MethodGet, "/api/v1/companies/unknown/scores", "", false)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/v1/companies/"+c.ID+"/rescore", "", true)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestSubmissionWorkflow(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	c, err := s.store.CreateCompany(ctx, "Greenstart", "Technology")
	require.NoError(t, err)
	base := "/api/v1/companies/" + c.ID

	ids := map[string]string{}
	for typ, payload := range map[string]string{"ENVIRONMENTAL": envPayload, "SOCIAL": socPayload, "GOVERNANCE": govPayload} {
		rec := s.do(t, http.MethodPost, base+"/submissions", `{"type":"`+typ+`","data":`+payload+`}`, true)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		resp := decode[submitResponse](t, rec)
		assert.Equal(t, store.StatusPending, resp.Submission.Status)
		assert.Empty(t, resp.Issues)
		ids[typ] = resp.Submission.ID
	}

	rec := s.do(t, http.MethodPost, base+"/submissions", `{"type":"FINANCIAL","data":{}}`, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodGet, base+"/submissions?type=social", "", false)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]store.Submission](t, rec), 1)

	// invalid reviews
	rec = s.do(t, http.MethodPost, "/api/v1/submissions/"+ids["SOCIAL"]+"/review", `{"status":"MAYBE"}`, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = s.do(t, http.MethodPost, "/api/v1/submissions/"+ids["SOCIAL"]+"/review", `{"status":"REJECTED"}`, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = s.do(t, http.MethodPost, "/api/v1/submissions/missing/review", `{"status":"APPROVED"}`, true)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	for _, typ := range []string{"ENVIRONMENTAL", "SOCIAL", "GOVERNANCE"} {
		rec = s.do(t, http.MethodPost, "/api/v1/submissions/"+ids[typ]+"/review", `{"status":"APPROVED","reviewerId":"esg-team"}`, true)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}
	res := decode[rescore.ReviewResult](t, rec)
	require.NotNil(t, res.Card)
	assert.Equal(t, 61, res.Card.OverallScore)

	// decisions are final
	rec = s.do(t, http.MethodPost, "/api/v1/submissions/"+ids["ENVIRONMENTAL"]+"/review", `{"status":"REJECTED","rejectionReason":"restated"}`, true)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(t, http.MethodGet, base+"/scores", "", false)
	require.Equal(t, http.StatusOK, rec.Code)
	sc := decode[store.Score](t, rec)
	assert.Equal(t, 54, sc.EnvironmentalScore)
	assert.Equal(t, 52, sc.SocialScore)
	assert.Equal(t, 76, sc.GovernanceScore)
	assert.Equal(t, 61, sc.OverallScore)
	assert.Equal(t, scoring.RatingBBB, sc.Rating)

	// scorecard is served from the archive and then cached
	rec = s.do(t, http.MethodGet, base+"/scorecard", "", false)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 61, decode[scoring.ScoreCard](t, rec).OverallScore)
	assert.Equal(t, 1, s.cache.Len())

	rec = s.do(t, http.MethodGet, base+"/scorecard?format=markdown", "", false)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/markdown")
	assert.Contains(t, rec.Body.String(), "## ESG Rating: :yellow_circle: BBB (overall 61)")
	assert.Contains(t, rec.Body.String(), "### Benchmark: Technology")

	rec = s.do(t, http.MethodGet, base+"/scorecard?format=text", "", false)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "\033[")

	rec = s.do(t, http.MethodGet, base+"/scorecard?format=pdf", "", false)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, base+"/rescore", "", true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, s.cache.Len(), "rescore must invalidate the cached card")

	rec = s.do(t, http.MethodGet, "/api/v1/peers?industry=Technology", "", false)
	require.Equal(t, http.StatusOK, rec.Code)
	peers := decode[peersResponse](t, rec)
	assert.Equal(t, scoring.IndustryTechnology, peers.Industry)
	assert.Equal(t, 1, peers.Peers.Count)
	assert.Equal(t, 61.0, peers.Peers.Mean)
}

func TestCardCache(t *testing.T) {
	c := NewCardCache(2)
	a, b, d := &scoring.ScoreCard{OverallScore: 1}, &scoring.ScoreCard{OverallScore: 2}, &scoring.ScoreCard{OverallScore: 3}

	c.Put("a", a)
	c.Put("b", b)
	c.Get("a") // a is now most recent
	c.Put("d", d)

	assert.Nil(t, c.Get("b"), "least recently used entry should be evicted")
	assert.Same(t, a, c.Get("a"))
	assert.Same(t, d, c.Get("d"))

	c.Invalidate("a")
	assert.Nil(t, c.Get("a"))
	assert.Equal(t, 1, c.Len())
	c.Invalidate("missing")
}

func TestCardCache_PutAfterInvalidateIsDropped(t *testing.T) {
	c := NewCardCache(4)
	stale := &scoring.ScoreCard{OverallScore: 19}

	gen := c.Generation("acme")
	// a rescore finishes while the old card is being read
	c.Invalidate("acme")

	assert.False(t, c.PutIfCurrent("acme", gen, stale))
	assert.Nil(t, c.Get("acme"), "stale card must not be cached")

	fresh := &scoring.ScoreCard{OverallScore: 61}
	assert.True(t, c.PutIfCurrent("acme", c.Generation("acme"), fresh))
	assert.Same(t, fresh, c.Get("acme"))
}
