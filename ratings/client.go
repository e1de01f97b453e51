package ratings

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

// Status records whether the rating service knew the professor.
type Status string

const (
	StatusFound    Status = "found"
	StatusNotFound Status = "foundn't"
)

// Rating holds one professor's scraped rating statistics. Score is a
// bayesian-smoothed percentage so professors with a handful of perfect
// ratings do not outrank consistently good ones.
type Rating struct {
	Prof       string  `json:"prof"`
	Score      float64 `json:"score"`
	Avg        float64 `json:"avg"`
	NumRatings int     `json:"nRating"`
	TakeAgain  int     `json:"takeAgain"`
	Difficulty float64 `json:"difficulty"`
	Status     Status  `json:"status"`
	PID        string  `json:"pId,omitempty"`
}

// Candidate is one search hit: a professor id with the first name the
// service has on file for it.
type Candidate struct {
	PID       string
	FirstName string
}

const defaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10.15; rv:139.0) Gecko/20100101 Firefox/139.0"

// Client scrapes professor ratings. The base URL is injectable so tests
// can point it at a local server; the zero value is not usable, construct
// with NewClient.
type Client struct {
	http      *http.Client
	baseURL   string
	schoolID  string
	schoolRef string
	log       *slog.Logger
}

// NewClient creates a rating client for one school.
func NewClient(baseURL, schoolID, schoolRef string, log *slog.Logger) *Client {
	if log == nil {
		log = slog.Default()
	}
	return &Client{
		http:      &http.Client{},
		baseURL:   strings.TrimRight(baseURL, "/"),
		schoolID:  schoolID,
		schoolRef: schoolRef,
		log:       log,
	}
}

func (c *Client) get(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", errors.Wrap(err, "failed to build request")
	}
	req.Header.Set("User-Agent", defaultUserAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", errors.Wrapf(err, "failed to fetch %s", url)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", errors.Errorf("unexpected status %d fetching %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.Wrap(err, "failed to read response body")
	}
	return string(body), nil
}

// SearchCandidates queries the professor search page for lastName and
// returns the (pid, first name) pairs embedded in the page's relay state.
func (c *Client) SearchCandidates(ctx context.Context, lastName string) ([]Candidate, error) {
	url := fmt.Sprintf("%s/search/professors/%s?q=%s", c.baseURL, c.schoolID, lastName)
	body, err := c.get(ctx, url)
	if err != nil {
		return nil, err
	}

	pattern := regexp.MustCompile(
		`"__typename":"Teacher","id":"[\w=]+","legacyId":(\d+),` +
			`[^{}]*"school":\{"__ref":"` + regexp.QuoteMeta(c.schoolRef) + `"\},` +
			`"firstName":"([\w' \-,]+)","lastName":"` + regexp.QuoteMeta(lastName))

	var candidates []Candidate
	for _, m := range pattern.FindAllStringSubmatch(body, -1) {
		candidates = append(candidates, Candidate{PID: m[1], FirstName: m[2]})
	}
	return candidates, nil
}

// Stats fetches the rating statistics for one professor id. It returns
// nil without error when the page carries no stats for this school.
func (c *Client) Stats(ctx context.Context, pid, prof string) (*Rating, error) {
	url := fmt.Sprintf("%s/ShowRatings.jsp?tid=%s", c.baseURL, pid)
	body, err := c.get(ctx, url)
	if err != nil {
		return nil, err
	}

	pattern := regexp.MustCompile(
		`"numRatings":([\d.]+).*?"avgRating":([\d.]+).*?"avgDifficulty":([\d.]+),"wouldTakeAgainPercent":([\d.]+)`)
	m := pattern.FindStringSubmatch(body)
	if m == nil {
		return nil, nil
	}

	numRatings, err1 := strconv.ParseFloat(m[1], 64)
	avg, err2 := strconv.ParseFloat(m[2], 64)
	difficulty, err3 := strconv.ParseFloat(m[3], 64)
	takeAgain, err4 := strconv.ParseFloat(m[4], 64)
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
		return nil, nil
	}

	r := &Rating{
		Prof:       prof,
		Avg:        round1(avg),
		NumRatings: int(math.Round(numRatings)),
		TakeAgain:  int(math.Round(takeAgain)),
		Difficulty: round1(difficulty),
		Status:     StatusFound,
		PID:        pid,
	}
	r.Score = score(r.Avg, r.NumRatings)
	return r, nil
}

// score smooths the average toward the midpoint by two phantom ratings
// of 2.5 and rescales to a percentage.
func score(avg float64, n int) float64 {
	return round1(((avg*float64(n))+5)/(float64(n)+2)*100/5)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// Lookup resolves one professor to a rating. A saved pid short-circuits
// the search; otherwise the last name is searched and the candidate whose
// first name is closest (subsequence closeness above 0.5) wins. A miss at
// any stage degrades to a not-found rating rather than an error.
func (c *Client) Lookup(ctx context.Context, prof string, savedPIDs map[string]string) Rating {
	rating := Rating{Prof: prof, Status: StatusNotFound}

	pid := savedPIDs[prof]
	if pid == "" {
		normalized := strings.ToLower(NormalizeName(prof))
		surname, given, ok := strings.Cut(normalized, ", ")
		if !ok {
			return rating
		}

		candidates, err := c.SearchCandidates(ctx, surname)
		if err != nil {
			c.log.Warn("professor search failed", "prof", prof, "error", err)
			return rating
		}
		if len(candidates) == 0 {
			return rating
		}

		pid = candidates[0].PID
		best := 0.0
		for _, cand := range candidates {
			cl := closeness(strings.ToLower(cand.FirstName), given)
			if cl > best && cl > 0.5 {
				pid = cand.PID
				best = cl
			}
		}
	}

	stats, err := c.Stats(ctx, pid, prof)
	if err != nil {
		c.log.Warn("rating fetch failed", "prof", prof, "pid", pid, "error", err)
	}
	if stats != nil {
		rating = *stats
	}
	rating.PID = pid
	return rating
}

// closeness measures how much of target is consumed matching candidate as
// a subsequence, in order. 1.0 means candidate is a prefix-subsequence
// covering all of target.
func closeness(candidate, target string) float64 {
	if len(target) == 0 {
		return 0
	}
	i := 0
	for _, ch := range []byte(target) {
		if i < len(candidate) && ch == candidate[i] {
			i++
			if i == len(candidate) {
				break
			}
		}
	}
	return float64(i) / float64(len(target))
}

// LookupAll fans the lookups out over a small worker pool, one job per
// distinct professor. The pool shares nothing with the parser; it runs
// strictly after parsing has finished.
func (c *Client) LookupAll(ctx context.Context, profs []string, savedPIDs map[string]string, workers int) map[string]Rating {
	if workers < 1 {
		workers = 8
	}

	jobs := make(chan string)
	results := make(chan Rating)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for prof := range jobs {
				results <- c.Lookup(ctx, prof, savedPIDs)
			}
		}()
	}

	go func() {
		for _, prof := range profs {
			jobs <- prof
		}
		close(jobs)
		wg.Wait()
		close(results)
	}()

	ratings := make(map[string]Rating, len(profs))
	for r := range results {
		ratings[r.Prof] = r
	}
	return ratings
}
