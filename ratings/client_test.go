package ratings

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSchoolRef = "School-1420"

func searchHit(pid int, firstName, lastName string) string {
	return fmt.Sprintf(
		`"__typename":"Teacher","id":"VGVhY2hlci0%d=","legacyId":%d,"avgRating":4.2,"numRatings":12,"school":{"__ref":"%s"},"firstName":"%s","lastName":"%s"`,
		pid, pid, testSchoolRef, firstName, lastName)
}

func statsBody(numRatings int, avg, difficulty, takeAgain float64) string {
	return fmt.Sprintf(
		`{"teacher":{"numRatings":%d,"avgRatingRounded":%.1f,"avgRating":%g,"avgDifficulty":%g,"wouldTakeAgainPercent":%g}}`,
		numRatings, avg, avg, difficulty, takeAgain)
}

// ratingServer serves canned search and stats pages keyed by query.
func ratingServer(t *testing.T, searches map[string]string, stats map[string]string) *Client {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/search/professors/1420", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, searches[r.URL.Query().Get("q")])
	})
	mux.HandleFunc("/ShowRatings.jsp", func(w http.ResponseWriter, r *http.Request) {
		body, ok := stats[r.URL.Query().Get("tid")]
		if !ok {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, body)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return NewClient(srv.URL, "1420", testSchoolRef, slog.New(slog.DiscardHandler))
}

func TestClient_SearchCandidates(t *testing.T) {
	c := ratingServer(t, map[string]string{
		"vance": "[" + searchHit(101, "Robert", "vance") + "," + searchHit(102, "Roberta", "vance") + "]",
	}, nil)

	candidates, err := c.SearchCandidates(context.Background(), "vance")
	require.NoError(t, err)
	assert.Equal(t, []Candidate{
		{PID: "101", FirstName: "Robert"},
		{PID: "102", FirstName: "Roberta"},
	}, candidates)
}

func TestClient_SearchCandidates_IgnoresOtherSchools(t *testing.T) {
	otherSchool := `"__typename":"Teacher","id":"VGVhY2hlci05OQ==","legacyId":99,"school":{"__ref":"School-9999"},"firstName":"Rob","lastName":"vance"`
	c := ratingServer(t, map[string]string{
		"vance": "[" + otherSchool + "," + searchHit(101, "Robert", "vance") + "]",
	}, nil)

	candidates, err := c.SearchCandidates(context.Background(), "vance")
	require.NoError(t, err)
	assert.Equal(t, []Candidate{{PID: "101", FirstName: "Robert"}}, candidates)
}

func TestClient_Stats(t *testing.T) {
	c := ratingServer(t, nil, map[string]string{
		"101": statsBody(18, 4.5, 2.9, 83),
	})

	r, err := c.Stats(context.Background(), "101", "Vance, Robert")
	require.NoError(t, err)
	require.NotNil(t, r)
	assert.Equal(t, &Rating{
		Prof:       "Vance, Robert",
		Score:      86.0,
		Avg:        4.5,
		NumRatings: 18,
		TakeAgain:  83,
		Difficulty: 2.9,
		Status:     StatusFound,
		PID:        "101",
	}, r)
}

func TestClient_Stats_NoDataYieldsNil(t *testing.T) {
	c := ratingServer(t, nil, map[string]string{
		"200": `{"teacher":null}`,
	})

	r, err := c.Stats(context.Background(), "200", "Ghost, Casper")
	require.NoError(t, err)
	assert.Nil(t, r)
}

func TestScore(t *testing.T) {
	// Two phantom midpoint ratings pull small samples toward 50%.
	assert.InDelta(t, 86.0, score(4.5, 18), 0.001)
	assert.InDelta(t, 66.7, score(5.0, 1), 0.001)
	assert.InDelta(t, 50.0, score(0, 0), 0.001)
	assert.InDelta(t, 98.5, score(5.0, 66), 0.001)
}

func TestCloseness(t *testing.T) {
	assert.InDelta(t, 1.0, closeness("juan jose", "juan"), 0.001)
	assert.InDelta(t, 1.0, closeness("roberta", "robert"), 0.001)
	assert.InDelta(t, 0.5, closeness("rob", "robert"), 0.001)
	assert.InDelta(t, 0.0, closeness("robert", "bob"), 0.001)
	assert.InDelta(t, 0.0, closeness("anything", ""), 0.001)
}

func TestClient_Lookup_FuzzyMatchPicksClosestFirstName(t *testing.T) {
	c := ratingServer(t, map[string]string{
		"vance": "[" + searchHit(101, "Bob", "vance") + "," + searchHit(102, "Robert", "vance") + "]",
	}, map[string]string{
		"102": statsBody(10, 4.0, 3.1, 75),
	})

	r := c.Lookup(context.Background(), "Vance, Robert", nil)
	assert.Equal(t, StatusFound, r.Status)
	assert.Equal(t, "102", r.PID)
	assert.Equal(t, 75, r.TakeAgain)
}

func TestClient_Lookup_SavedPIDSkipsSearch(t *testing.T) {
	// No search pages registered: a search would come back empty.
	c := ratingServer(t, nil, map[string]string{
		"777": statsBody(5, 3.8, 2.2, 60),
	})

	r := c.Lookup(context.Background(), "Mandich, Aleksandra", map[string]string{
		"Mandich, Aleksandra": "777",
	})
	assert.Equal(t, StatusFound, r.Status)
	assert.Equal(t, "777", r.PID)
}

func TestClient_Lookup_UnknownProfessorDegradesToNotFound(t *testing.T) {
	c := ratingServer(t, map[string]string{}, nil)

	r := c.Lookup(context.Background(), "Nobody, Knows", nil)
	assert.Equal(t, Rating{Prof: "Nobody, Knows", Status: StatusNotFound}, r)
}

func TestClient_Lookup_NameWithoutCommaIsNotSearched(t *testing.T) {
	c := ratingServer(t, nil, nil)

	r := c.Lookup(context.Background(), "TBA-English", nil)
	assert.Equal(t, StatusNotFound, r.Status)
	assert.Empty(t, r.PID)
}

func TestClient_LookupAll(t *testing.T) {
	c := ratingServer(t, map[string]string{
		"vance": "[" + searchHit(101, "Robert", "vance") + "]",
	}, map[string]string{
		"101": statsBody(18, 4.5, 2.9, 83),
		"777": statsBody(5, 3.8, 2.2, 60),
	})

	ratings := c.LookupAll(context.Background(),
		[]string{"Vance, Robert", "Mandich, Aleksandra", "Nobody, Knows"},
		map[string]string{"Mandich, Aleksandra": "777"},
		4)

	require.Len(t, ratings, 3)
	assert.Equal(t, StatusFound, ratings["Vance, Robert"].Status)
	assert.Equal(t, StatusFound, ratings["Mandich, Aleksandra"].Status)
	assert.Equal(t, StatusNotFound, ratings["Nobody, Knows"].Status)
}
