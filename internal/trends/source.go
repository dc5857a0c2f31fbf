package trends

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/EmpoweredVote/LSG-Trends/internal/results"
	"github.com/EmpoweredVote/LSG-Trends/internal/trendfeed"
	"github.com/google/uuid"
)

// TrendSource yields the candidate rows of the latest trend snapshot.
type TrendSource interface {
	Rows(ctx context.Context) ([]results.Row, error)
	Name() string
}

// FileTrendSource reads a detailed trend CSV from disk.
type FileTrendSource struct {
	Path string
}

func (s FileTrendSource) Name() string { return "file:" + s.Path }

func (s FileTrendSource) Rows(ctx context.Context) ([]results.Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rows, err := results.ParseTrendCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.Path, err)
	}
	return rows, nil
}

// FeedTrendSource scrapes the live trend feed.
type FeedTrendSource struct {
	Client    *trendfeed.Client
	Districts []trendfeed.District
}

func (s FeedTrendSource) Name() string { return "feed" }

func (s FeedTrendSource) Rows(ctx context.Context) ([]results.Row, error) {
	districts := s.Districts
	if len(districts) == 0 {
		districts = trendfeed.Districts
	}
	return s.Client.Scrape(ctx, districts)
}

// snapshotNamespace scopes snapshot IDs.
var snapshotNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://trend.kerala.nic.in/lsg-trends/snapshot"))

// SnapshotID derives a stable identifier from the content of rows. The same
// rows in the same order always give the same ID.
func SnapshotID(rows []results.Row) (string, error) {
	var buf bytes.Buffer
	if err := results.WriteTrendCSV(&buf, rows); err != nil {
		return "", err
	}
	return uuid.NewSHA1(snapshotNamespace, buf.Bytes()).String(), nil
}
