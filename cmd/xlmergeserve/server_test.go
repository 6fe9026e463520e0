package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ruslano69/xlmerge/pkg/history"
	"github.com/ruslano69/xlmerge/pkg/table"
	"github.com/ruslano69/xlmerge/pkg/xlsx"
)

func testRouter(t *testing.T) (http.Handler, *history.MemoryStore) {
	t.Helper()
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	repo := history.NewMemory()
	saver, err := history.NewSaver(t.TempDir(), repo)
	if err != nil {
		t.Fatalf("NewSaver() error = %v", err)
	}
	return newRouter(cfg, repo, saver), repo
}

type upload struct {
	name  string
	table *table.Table
}

// uploadBody builds a multipart body with in-memory workbooks plus
// extra form fields. Part order follows the slice order.
func uploadBody(t *testing.T, fields map[string]string, files []upload) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, u := range files {
		part, err := mw.CreateFormFile("files", u.name)
		if err != nil {
			t.Fatal(err)
		}
		if err := xlsx.Write(u.table, part, ""); err != nil {
			t.Fatalf("write workbook %s: %v", u.name, err)
		}
	}
	for k, v := range fields {
		mw.WriteField(k, v)
	}
	mw.Close()
	return &buf, mw.FormDataContentType()
}

func uploadTables() []upload {
	staff := table.New("Emp ID", "Name")
	staff.AppendRow([]string{"1", "Alice"})
	staff.AppendRow([]string{"2", "Bob"})
	staff.AppendRow([]string{"3", "Carol"})
	payroll := table.New("employee_id", "Salary")
	payroll.AppendRow([]string{"2", "500"})
	payroll.AppendRow([]string{"3", "700"})
	payroll.AppendRow([]string{"4", "900"})
	return []upload{{"staff.xlsx", staff}, {"payroll.xlsx", payroll}}
}

func TestHealthz(t *testing.T) {
	router, _ := testRouter(t)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
}

func TestMerge_Outer(t *testing.T) {
	router, _ := testRouter(t)
	body, contentType := uploadBody(t, map[string]string{"join": "outer"}, uploadTables())
	req := httptest.NewRequest(http.MethodPost, "/api/merge", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}
	var resp mergeResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Stats.TotalRows != 4 || resp.Stats.FullyMatched != 2 || resp.Stats.Unmatched != 2 {
		t.Errorf("stats = %+v", resp.Stats)
	}
	if len(resp.Sources) != 2 {
		t.Fatalf("sources = %v", resp.Sources)
	}
	if resp.Sources[0].KeyColumn != "Emp ID" {
		t.Errorf("inferred key = %q", resp.Sources[0].KeyColumn)
	}
	if resp.Record != nil {
		t.Error("record saved without save=1")
	}
}

func TestMerge_SaveAndDownload(t *testing.T) {
	router, _ := testRouter(t)
	body, contentType := uploadBody(t, map[string]string{
		"save":     "1",
		"basename": "weekly",
	}, uploadTables())
	req := httptest.NewRequest(http.MethodPost, "/api/merge", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}
	var resp mergeResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Record == nil || resp.Record.BaseName != "weekly" {
		t.Fatalf("record = %+v", resp.Record)
	}

	for _, kind := range []string{"clean", "colored"} {
		rr := httptest.NewRecorder()
		url := fmt.Sprintf("/api/history/%d/%s", resp.Record.ID, kind)
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, url, nil))
		if rr.Code != http.StatusOK {
			t.Errorf("download %s: status = %d", kind, rr.Code)
		}
		got, err := xlsx.Read(bytes.NewReader(rr.Body.Bytes()), kind+".xlsx", "")
		if err != nil {
			t.Errorf("download %s is not a workbook: %v", kind, err)
			continue
		}
		if got.RowCount() != 4 {
			t.Errorf("download %s rows = %d", kind, got.RowCount())
		}
	}
}

func TestMerge_KeyOverrides(t *testing.T) {
	router, _ := testRouter(t)
	a := table.New("code", "v")
	a.AppendRow([]string{"x", "1"})
	b := table.New("code", "w")
	b.AppendRow([]string{"x", "2"})
	body, contentType := uploadBody(t, map[string]string{
		"keys": `{"a.xlsx": "code", "b.xlsx": "code"}`,
	}, []upload{{"a.xlsx", a}, {"b.xlsx", b}})
	req := httptest.NewRequest(http.MethodPost, "/api/merge", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}
	var resp mergeResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Sources[0].KeyColumn != "code" {
		t.Errorf("override ignored: key = %q", resp.Sources[0].KeyColumn)
	}
}

func TestMerge_MissingKeyIs422(t *testing.T) {
	router, _ := testRouter(t)
	body, contentType := uploadBody(t, map[string]string{
		"keys": `{"staff.xlsx": "No Such Column"}`,
	}, uploadTables())
	req := httptest.NewRequest(http.MethodPost, "/api/merge", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rr.Code)
	}
}

func TestMerge_OneFileIs400(t *testing.T) {
	router, _ := testRouter(t)
	a := table.New("id", "v")
	a.AppendRow([]string{"1", "x"})
	body, contentType := uploadBody(t, nil, []upload{{"a.xlsx", a}})
	req := httptest.NewRequest(http.MethodPost, "/api/merge", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
}

func TestHistory_ListAndDelete(t *testing.T) {
	router, repo := testRouter(t)
	id, err := repo.Create(context.Background(), &history.Record{BaseName: "r", CleanPath: "/tmp/r.xlsx"})
	if err != nil {
		t.Fatal(err)
	}

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/history/", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("list status = %d", rr.Code)
	}
	var records []history.Record
	if err := json.Unmarshal(rr.Body.Bytes(), &records); err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 || records[0].ID != id {
		t.Errorf("records = %v", records)
	}

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/api/history/%d", id), nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("delete status = %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/api/history/%d", id), nil))
	if rr.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", rr.Code)
	}
}

func TestHistory_Clear(t *testing.T) {
	router, repo := testRouter(t)
	if _, err := repo.Create(context.Background(), &history.Record{BaseName: "r", CleanPath: "/tmp/r.xlsx"}); err != nil {
		t.Fatal(err)
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/history/clear", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("clear status = %d", rr.Code)
	}
	records, err := repo.List(context.Background())
	if err != nil || len(records) != 0 {
		t.Errorf("List() after clear = %v, %v", records, err)
	}
}
