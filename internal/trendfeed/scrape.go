package trendfeed

import (
	"context"
	"errors"

	"github.com/EmpoweredVote/LSG-Trends/internal/logger"
	"github.com/EmpoweredVote/LSG-Trends/internal/registry"
	"github.com/EmpoweredVote/LSG-Trends/internal/results"
	"golang.org/x/sync/errgroup"
)

type task struct {
	district string
	reqType  string
	body     LocalBody
}

// Scrape walks every tier of the given districts and returns trend rows in
// district, tier and local-body order. Failures of single local bodies or
// wards are logged and skipped; only cancellation aborts the scrape.
func (c *Client) Scrape(ctx context.Context, districts []District) ([]results.Row, error) {
	var tasks []task
	for _, d := range districts {
		for _, rt := range RequestTypes {
			bodies, err := c.LocalBodies(ctx, d.Code, rt)
			if err != nil {
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				continue
			}
			for _, b := range bodies {
				tasks = append(tasks, task{district: d.Name, reqType: rt, body: b})
			}
		}
	}

	perTask := make([][]results.Row, len(tasks))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)
	for i, t := range tasks {
		g.Go(func() error {
			rows, err := c.ScrapeLocalBody(gctx, t.district, t.reqType, t.body)
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return err
				}
				logger.FeedError("localbody "+t.body.Code, err)
			}
			perTask[i] = rows
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []results.Row
	for _, rows := range perTask {
		out = append(out, rows...)
	}
	return out, nil
}

// ScrapeLocalBody fetches every ward of one local body. A ward whose
// candidates cannot be fetched is skipped.
func (c *Client) ScrapeLocalBody(ctx context.Context, district, reqType string, lb LocalBody) ([]results.Row, error) {
	wards, err := c.Wards(ctx, lb.Code, reqType)
	if err != nil {
		return nil, err
	}

	lbType := "Unknown"
	if t, ok := registry.TypeFromCode(lb.Code); ok {
		lbType = t.Label()
	}

	var rows []results.Row
	for _, w := range wards {
		cands, err := c.Candidates(ctx, w.Code, reqType)
		if err != nil {
			if ctx.Err() != nil {
				return rows, ctx.Err()
			}
			continue
		}
		for _, cand := range cands {
			party := cand.Party
			if party == "" {
				party = "Ind/Other"
			}
			rows = append(rows, results.Row{
				District:      district,
				LBType:        lbType,
				LBCode:        lb.Code,
				LBName:        lb.Name,
				WardNo:        w.Number,
				WardName:      w.Name,
				CandidateCode: cand.Code,
				CandidateName: cand.Name,
				Party:         party,
				Votes:         cand.Votes,
				Status:        status(cand),
			})
		}
	}
	return rows, nil
}

func status(c Candidate) string {
	switch {
	case c.Won:
		return "Won"
	case c.Leading:
		return "Leading"
	}
	return "Lost"
}
