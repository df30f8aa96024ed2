package fred

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"AllocDesk/internal/domain/models"
	xhttp "AllocDesk/pkg/http"
	xutil "AllocDesk/pkg/util"
)

// Client fetches monthly macro series from the FRED fredgraph CSV endpoint.
// The endpoint needs no API key.
type Client struct {
	baseURL  string
	http     *xhttp.Client
	trailing int
}

// New creates a FRED client. trailing is the rolling-mean window in months.
func New(baseURL string, timeout time.Duration, trailing int) *Client {
	if trailing <= 0 {
		trailing = 12
	}
	return &Client{
		baseURL:  baseURL,
		http:     xhttp.NewClient(xhttp.WithTimeout(timeout)),
		trailing: trailing,
	}
}

// Series returns the indicator with its latest value and trailing mean.
// Available is false when the payload yields fewer observations than the
// trailing window, so the caller cannot evaluate the macro test.
func (c *Client) Series(ctx context.Context, id string) (models.MacroIndicator, error) {
	out := models.MacroIndicator{SeriesID: id}

	var raw []byte
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    fmt.Sprintf("%s/graph/fredgraph.csv", c.baseURL),
		QueryParams: map[string][]string{
			"id": {id},
		},
	}, &raw)
	if err != nil {
		return out, fmt.Errorf("fred series %s: %w", id, err)
	}

	months, values, err := parseCSV(raw)
	if err != nil {
		return out, fmt.Errorf("fred series %s: %w", id, err)
	}
	if len(values) < c.trailing {
		return out, fmt.Errorf("fred series %s: %d observations, need %d", id, len(values), c.trailing)
	}

	// rolling mean over the trailing window, defined from index trailing-1 on
	for i := c.trailing - 1; i < len(values); i++ {
		sum := 0.0
		for j := i - c.trailing + 1; j <= i; j++ {
			sum += values[j]
		}
		out.Observations = append(out.Observations, models.MacroObservation{
			Month: months[i],
			Value: values[i],
			Mean:  sum / float64(c.trailing),
		})
	}
	if len(out.Observations) > c.trailing {
		out.Observations = out.Observations[len(out.Observations)-c.trailing:]
	}

	last := out.Observations[len(out.Observations)-1]
	out.Latest = last.Value
	out.TrailingMean = last.Mean
	out.Available = true
	return out, nil
}

// parseCSV reads the two-column fredgraph payload. Rows with a "." value
// (FRED's missing marker) or an unparseable date are dropped.
func parseCSV(raw []byte) ([]string, []float64, error) {
	r := csv.NewReader(bytes.NewReader(raw))
	r.FieldsPerRecord = -1

	var months []string
	var values []float64
	header := true
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("parse csv: %w", err)
		}
		if header {
			header = false
			continue
		}
		if len(rec) < 2 || rec[1] == "." {
			continue
		}
		t, err := time.Parse("2006-01-02", rec[0])
		if err != nil {
			continue
		}
		v, err := strconv.ParseFloat(rec[1], 64)
		if err != nil {
			continue
		}
		months = append(months, xutil.MonthKey(t))
		values = append(values, v)
	}
	if len(values) == 0 {
		return nil, nil, fmt.Errorf("no observations")
	}
	return months, values, nil
}
