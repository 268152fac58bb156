// Package extractor implements FFDB's read pipeline: identifiers -> index lookup ->
// range planning -> byte-source reads -> codec decode -> ordered output.
package extractor

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/pschou/go-ffdb/codec"
	"github.com/pschou/go-ffdb/index"
	"github.com/pschou/go-ffdb/rangeplan"
)

// Options configures one extraction run.
type Options struct {
	Policy      index.DuplicatesPolicy
	Mode        rangeplan.Mode
	CoalesceGap int64
	CoalesceMax int64
	Threads     int
	Verify      bool
}

func (o Options) withDefaults() Options {
	if o.Threads <= 0 {
		o.Threads = 1
	}
	return o
}

// ErrMissingIdentifier marks a Result for an identifier that had no match in the
// index. It is reported, not fatal: extraction continues for the rest.
var ErrMissingIdentifier = errors.New("ffdb: unknown identifier")

// Result is one extracted entry, or a per-identifier/per-duplicate failure.
// RequestIndex ties the result back to its position in the caller's ids slice;
// one request index may own several Results when Options.Policy is index.All.
type Result struct {
	ID           []byte
	RequestIndex int
	Record       index.Record
	Data         []byte
	Err          error
}

// Summary aggregates per-entry failures for the CLI's exit-code decision.
type Summary struct {
	Missing int
	Corrupt int
	Fatal   int
}

// Source is the subset of bytesource.Source the extractor depends on.
type Source interface {
	ReadAt(ctx context.Context, offset, length int64) ([]byte, error)
}

// Extractor ties together the store, byte source, and codec context needed to
// resolve identifiers into decoded entries.
type Extractor struct {
	Store  *index.Store
	Source Source
	Codec  codec.Context
	Opts   Options
}

// Run resolves ids and returns one Result per (id, matched record) pair. Results
// are grouped by RequestIndex; within a group with Options.Policy == index.All,
// Results appear in flatfile order. Missing identifiers produce a
// single Result carrying ErrMissingIdentifier. Results are not reordered to match
// ids order beyond grouping by RequestIndex in ascending order — callers that need
// strict positional output should iterate grouping by RequestIndex themselves.
func (e *Extractor) Run(ctx context.Context, ids [][]byte) ([]Result, Summary, error) {
	opts := e.Opts.withDefaults()

	groups := e.Store.LookupMany(ids, opts.Policy)

	var flatRecords []index.Record
	var flatIndex []int // unique flat position, passed to Plan as its "requestIndex" so
	// EntrySlice.RequestIndex becomes a direct results-slice position regardless of
	// any reordering Plan performs for merged retrieval.
	var flatIDs [][]byte
	var flatRequest []int // the caller's original ids index this flat record belongs to
	var summary Summary

	for i, recs := range groups {
		if len(recs) == 0 {
			summary.Missing++
			continue
		}
		for _, r := range recs {
			flatIndex = append(flatIndex, len(flatRecords))
			flatRequest = append(flatRequest, i)
			flatIDs = append(flatIDs, ids[i])
			flatRecords = append(flatRecords, r)
		}
	}

	results := make([]Result, len(flatRecords))
	for i := range results {
		results[i] = Result{ID: flatIDs[i], RequestIndex: flatRequest[i]}
	}
	for i, g := range groups {
		if len(g) == 0 {
			results = append(results, Result{ID: ids[i], RequestIndex: i, Err: ErrMissingIdentifier})
		}
	}

	if len(flatRecords) == 0 {
		return results, summary, nil
	}

	plan := rangeplan.Plan(flatRecords, flatIndex, opts.Mode, opts.CoalesceGap, opts.CoalesceMax)

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	sem := make(chan struct{}, opts.Threads)

	for _, req := range plan {
		req := req
		sem <- struct{}{}
		g.Go(func() error {
			defer func() { <-sem }()
			return e.fulfill(gctx, req, results, &mu, &summary)
		})
	}
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return nil, summary, err
	}
	sort.SliceStable(results, func(a, b int) bool { return results[a].RequestIndex < results[b].RequestIndex })
	return results, summary, nil
}

// fulfill decodes one planned read request's entries into results. Each
// EntrySlice.RequestIndex is the exact results-slice position Run assigned its
// flat record, set via the flatIndex identity mapping passed to rangeplan.Plan.
func (e *Extractor) fulfill(ctx context.Context, req rangeplan.ReadRequest, results []Result, mu *sync.Mutex, summary *Summary) error {
	raw, err := e.Source.ReadAt(ctx, req.Offset, req.Length)
	if err != nil {
		mu.Lock()
		for _, entry := range req.Entries {
			results[entry.RequestIndex].Record = entry.Record
			results[entry.RequestIndex].Err = fmt.Errorf("ffdb: %w", err)
		}
		summary.Fatal += len(req.Entries)
		mu.Unlock()
		return nil // sibling entries still complete.
	}
	for _, entry := range req.Entries {
		encoded := raw[entry.Start : entry.Start+int(entry.Record.Length)]
		var data []byte
		var decErr error
		if e.Opts.Verify && entry.Record.HasChecksum {
			data, decErr = codec.DecodeVerified(e.Codec, encoded, entry.Record.Checksum)
		} else {
			data, decErr = codec.Decode(e.Codec, encoded)
		}
		mu.Lock()
		results[entry.RequestIndex].Record = entry.Record
		if decErr != nil {
			results[entry.RequestIndex].Err = decErr
			if errors.Is(decErr, codec.ErrCorruptEntry) {
				summary.Corrupt++
			} else {
				summary.Fatal++
			}
		} else {
			results[entry.RequestIndex].Data = data
		}
		mu.Unlock()
	}
	return nil
}
