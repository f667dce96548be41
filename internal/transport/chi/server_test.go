package chi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func doRequest(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, http.NoBody)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeBody[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rr.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func TestMatchInterests(t *testing.T) {
	router, _ := newTestRouter(t, sportsTags()...)

	rr := doRequest(t, router, "POST", "/v1/match",
		`{"personal_interests":["ice hockey"],"professional_interests":["computer science"]}`)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}

	resp := decodeBody[matchListResponse](t, rr)
	if resp.Total == 0 {
		t.Fatal("expected matches")
	}
	names := make(map[string]bool)
	for _, item := range resp.Items {
		names[item.Tag.Name] = true
		if item.Score <= 0 || item.Score > 1 {
			t.Errorf("score %f out of range", item.Score)
		}
	}
	if !names["Ice Hockey"] || !names["Computer Science"] {
		t.Errorf("matched names = %v", names)
	}
}

func TestMatchInterests_BadJSON(t *testing.T) {
	router, _ := newTestRouter(t, sportsTags()...)

	rr := doRequest(t, router, "POST", "/v1/match", `{not json`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
	resp := decodeBody[errorResponse](t, rr)
	if resp.Code != codeBadRequest {
		t.Errorf("code = %q", resp.Code)
	}
}

func TestMatchInterests_TranscriptRecovery(t *testing.T) {
	router, _ := newTestRouter(t, sportsTags()...)

	rr := doRequest(t, router, "POST", "/v1/match",
		`{"transcript":"She mentioned she still follows rowing closely."}`)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	resp := decodeBody[matchListResponse](t, rr)
	found := false
	for _, item := range resp.Items {
		if item.Tag.Name == "Rowing" && item.Source == "transcript" {
			found = true
		}
	}
	if !found {
		t.Errorf("rowing not recovered from transcript: %+v", resp.Items)
	}
}

func TestMatchByCategory(t *testing.T) {
	router, _ := newTestRouter(t, sportsTags()...)

	rr := doRequest(t, router, "POST", "/v1/match/category",
		`{"interests":["ice hockey"],"category":"Personal"}`)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	resp := decodeBody[matchListResponse](t, rr)
	for _, item := range resp.Items {
		if item.Tag.Category != "Personal" {
			t.Errorf("match outside category: %+v", item)
		}
	}
}

func TestMatchByCategory_InvalidCategory(t *testing.T) {
	router, _ := newTestRouter(t, sportsTags()...)

	rr := doRequest(t, router, "POST", "/v1/match/category",
		`{"interests":["chess"],"category":"Sports"}`)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
	resp := decodeBody[errorResponse](t, rr)
	if resp.Code != codeValidationFailed {
		t.Errorf("code = %q", resp.Code)
	}
}

func TestSearchTags(t *testing.T) {
	router, _ := newTestRouter(t, sportsTags()...)

	rr := doRequest(t, router, "GET", "/v1/tags/search?q=hocky&limit=3", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}

	resp := decodeBody[tagListResponse](t, rr)
	if resp.Total == 0 || resp.Items[0].Name != "Ice Hockey" {
		t.Errorf("items = %+v", resp.Items)
	}
}

func TestSearchTags_MissingQuery(t *testing.T) {
	router, _ := newTestRouter(t, sportsTags()...)

	rr := doRequest(t, router, "GET", "/v1/tags/search", "")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
}

func TestSearchTags_InvalidLimit(t *testing.T) {
	router, _ := newTestRouter(t, sportsTags()...)

	for _, limit := range []string{"0", "-1", "999", "abc"} {
		rr := doRequest(t, router, "GET", "/v1/tags/search?q=x&limit="+limit, "")
		if rr.Code != http.StatusBadRequest {
			t.Errorf("limit %s: status = %d, want 400", limit, rr.Code)
		}
	}
}

func TestReplaceTags(t *testing.T) {
	router, _ := newTestRouter(t)

	rr := doRequest(t, router, "PUT", "/v1/tags",
		`{"tags":[{"id":"10","name":"Sailing","category":"Personal"}]}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}

	// The new catalog is published immediately.
	rr = doRequest(t, router, "POST", "/v1/match", `{"personal_interests":["sailing"]}`)
	resp := decodeBody[matchListResponse](t, rr)
	if resp.Total != 1 || resp.Items[0].Tag.Name != "Sailing" {
		t.Errorf("items = %+v", resp.Items)
	}
}

func TestReplaceTags_InvalidTag(t *testing.T) {
	router, _ := newTestRouter(t)

	rr := doRequest(t, router, "PUT", "/v1/tags", `{"tags":[{"name":"No ID"}]}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
}

func TestRefreshCatalog(t *testing.T) {
	router, _ := newTestRouter(t, sportsTags()...)

	rr := doRequest(t, router, "POST", "/v1/catalog/refresh", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}

	resp := decodeBody[map[string]int](t, rr)
	if resp["tags"] != len(sportsTags()) {
		t.Errorf("tags = %d, want %d", resp["tags"], len(sportsTags()))
	}
}

func TestRecordInteraction(t *testing.T) {
	router, repo := newTestRouter(t, sportsTags()...)

	rr := doRequest(t, router, "POST", "/v1/interactions",
		`{"prospect":"Pat Doe","officer":"Officer A","transcript":"Pat still plays ice hockey on weekends."}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}

	resp := decodeBody[interactionResponse](t, rr)
	if resp.ID == "" {
		t.Fatal("missing interaction id")
	}
	if rr.Header().Get("Location") != "/v1/interactions/"+resp.ID {
		t.Errorf("location = %q", rr.Header().Get("Location"))
	}
	if len(resp.Matches) == 0 {
		t.Error("expected transcript-recovered matches")
	}
	if _, ok := repo.items[resp.ID]; !ok {
		t.Error("interaction not persisted")
	}
}

func TestRecordInteraction_MissingProspect(t *testing.T) {
	router, _ := newTestRouter(t)

	rr := doRequest(t, router, "POST", "/v1/interactions", `{"transcript":"note"}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
	resp := decodeBody[errorResponse](t, rr)
	if resp.Code != codeValidationFailed {
		t.Errorf("code = %q", resp.Code)
	}
}

func TestGetInteraction_NotFound(t *testing.T) {
	router, _ := newTestRouter(t)

	rr := doRequest(t, router, "GET", "/v1/interactions/missing", "")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rr.Code)
	}
	resp := decodeBody[errorResponse](t, rr)
	if resp.Code != codeInteractionNotFound {
		t.Errorf("code = %q", resp.Code)
	}
}

func TestInteractionLifecycle(t *testing.T) {
	router, _ := newTestRouter(t, sportsTags()...)

	rr := doRequest(t, router, "POST", "/v1/interactions",
		`{"prospect":"Pat Doe","transcript":"Talked about rowing."}`)
	created := decodeBody[interactionResponse](t, rr)

	rr = doRequest(t, router, "GET", "/v1/interactions/"+created.ID, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("get status = %d", rr.Code)
	}

	rr = doRequest(t, router, "GET", "/v1/interactions", "")
	list := decodeBody[interactionListResponse](t, rr)
	if list.Total != 1 {
		t.Errorf("list total = %d, want 1", list.Total)
	}

	rr = doRequest(t, router, "POST", "/v1/interactions/"+created.ID+"/rematch", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("rematch status = %d", rr.Code)
	}

	rr = doRequest(t, router, "DELETE", "/v1/interactions/"+created.ID, "")
	if rr.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", rr.Code)
	}

	rr = doRequest(t, router, "GET", "/v1/interactions/"+created.ID, "")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("get after delete status = %d", rr.Code)
	}
}

func TestHealthCheck(t *testing.T) {
	router, _ := newTestRouter(t)

	rr := doRequest(t, router, "GET", "/health", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}

	resp := decodeBody[map[string]any](t, rr)
	if resp["status"] != "ok" {
		t.Errorf("status = %v", resp["status"])
	}
}
