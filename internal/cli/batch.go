package cli

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/observability"
	"github.com/aretw0/arbor/pkg/ports"
	"github.com/goccy/go-json"
	"golang.org/x/sync/errgroup"
)

// BatchResult is one output line of a batch evaluation.
type BatchResult struct {
	Line   int    `json:"line"`
	Result any    `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
	Code   string `json:"code,omitempty"`
}

// EvaluateBatch evaluates every JSON object in r (one per line) against ev
// with at most limit evaluations in flight, and writes one JSON result per
// input line to w in input order. Evaluation failures are reported per line;
// only malformed input or write errors abort the batch.
func EvaluateBatch(ctx context.Context, ev ports.Evaluator, r io.Reader, w io.Writer, limit int) (failed int, err error) {
	var lines []domain.MapFacts
	var numbers []int

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	n := 0
	for scanner.Scan() {
		n++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		facts := domain.MapFacts{}
		dec := json.NewDecoder(bytes.NewReader(line))
		dec.UseNumber()
		if err := dec.Decode(&facts); err != nil {
			return 0, fmt.Errorf("line %d: invalid facts: %w", n, err)
		}
		lines = append(lines, facts)
		numbers = append(numbers, n)
	}
	if err := scanner.Err(); err != nil {
		return 0, fmt.Errorf("failed to read facts: %w", err)
	}

	results := make([]BatchResult, len(lines))
	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, facts := range lines {
		g.Go(func() error {
			res := BatchResult{Line: numbers[i]}
			out, err := ev.Evaluate(gctx, facts)
			if err != nil {
				res.Error = err.Error()
				res.Code = observability.Outcome(err)
			} else {
				res.Result = out
			}
			results[i] = res
			return gctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	enc := json.NewEncoder(w)
	for _, res := range results {
		if res.Error != "" {
			failed++
		}
		if err := enc.Encode(res); err != nil {
			return failed, fmt.Errorf("failed to write result: %w", err)
		}
	}
	return failed, nil
}
