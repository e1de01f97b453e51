package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coursegrid/coursegrid"
	"github.com/coursegrid/coursegrid/store"
)

type fakeSource struct {
	sections []coursegrid.Section
	lastF    store.Filter
}

func (f *fakeSource) List(_ context.Context, filter store.Filter) ([]coursegrid.Section, error) {
	f.lastF = filter
	return f.sections, nil
}

func (f *fakeSource) Get(_ context.Context, id int) (coursegrid.Section, error) {
	for _, s := range f.sections {
		if s.ID == id {
			return s, nil
		}
	}
	return coursegrid.Section{}, store.ErrNotFound
}

func testServer(sections ...coursegrid.Section) (*fakeSource, *httptest.Server) {
	src := &fakeSource{sections: sections}
	srv := NewServer(src, slog.New(slog.DiscardHandler))
	return src, httptest.NewServer(srv.Router())
}

func get(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, body
}

func TestParseFilter(t *testing.T) {
	q, err := url.ParseQuery("q=german&teacher=Vance&blended=true&min_rating=3.5&days_off=MW&time_end=1700")
	require.NoError(t, err)

	f, err := parseFilter(q)
	require.NoError(t, err)
	assert.Equal(t, "german", f.Q)
	assert.Equal(t, "Vance", f.Teacher)
	assert.True(t, f.Blended)
	require.NotNil(t, f.MinRating)
	assert.Equal(t, 3.5, *f.MinRating)
	assert.Equal(t, "MW", f.DaysOff)
	assert.Equal(t, 1700, f.TimeEnd)
	assert.Equal(t, 0, f.TimeStart)
}

func TestParseFilter_RejectsInvalidValues(t *testing.T) {
	for _, raw := range []string{
		"days_off=XYZ",
		"days_off=MTWRFS",
		"time_start=9am",
		"time_start=900",
		"min_rating=high",
		"blended=maybe",
	} {
		q, err := url.ParseQuery(raw)
		require.NoError(t, err)
		_, err = parseFilter(q)
		assert.Error(t, err, raw)
	}
}

func TestListSections_AppliesSchedulePostFilter(t *testing.T) {
	morning := coursegrid.Section{ID: 1, Code: "101-101-AB", Title: "Biology", LecLabs: []coursegrid.LecLab{
		{SectionID: 1, Time: coursegrid.TimeMap{"M": {"0900-1000"}}},
	}}
	evening := coursegrid.Section{ID: 2, Code: "101-102-AB", Title: "Biology II", LecLabs: []coursegrid.LecLab{
		{SectionID: 2, Time: coursegrid.TimeMap{"W": {"1800-1930"}}},
	}}
	_, ts := testServer(morning, evening)
	defer ts.Close()

	resp, body := get(t, ts.URL+"/sections?time_end=1700")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got []coursegrid.Section
	require.NoError(t, json.Unmarshal(body, &got))
	require.Len(t, got, 1)
	assert.Equal(t, 1, got[0].ID)
}

func TestListSections_ForwardsFilterToStore(t *testing.T) {
	src, ts := testServer()
	defer ts.Close()

	resp, _ := get(t, ts.URL+"/sections?course=German&honours=1")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "German", src.lastF.Course)
	assert.True(t, src.lastF.Honours)
}

func TestListSections_BadQueryIs400(t *testing.T) {
	_, ts := testServer()
	defer ts.Close()

	resp, _ := get(t, ts.URL+"/sections?days_off=monday")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetSection(t *testing.T) {
	sec := coursegrid.Section{ID: 7, Code: "609-101-AB", Title: "German I"}
	_, ts := testServer(sec)
	defer ts.Close()

	resp, body := get(t, ts.URL+"/sections/7")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got coursegrid.Section
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, sec, got)
}

func TestGetSection_Missing(t *testing.T) {
	_, ts := testServer()
	defer ts.Close()

	resp, _ := get(t, ts.URL+"/sections/42")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = get(t, ts.URL+"/sections/not-a-number")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
