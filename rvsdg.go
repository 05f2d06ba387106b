package rvsdg

import (
	"context"
	"io"
	"os"

	"github.com/wippyai/rvsdg/errors"
	"github.com/wippyai/rvsdg/ir"
	"github.com/wippyai/rvsdg/prune"
)

// Config configures Transform.
type Config struct {
	Prune prune.Config
	// Fixpoint repeats pruning rounds until nothing changes.
	Fixpoint bool
}

// Output is the result of Transform.
type Output struct {
	// Graph is the parsed graph after pruning. Replaced terms remain
	// addressable, so the ids in Result still resolve here.
	Graph *ir.Graph
	// Extracted holds only the reachable canonical terms of Graph.
	Extracted *ir.Graph
	Result    *prune.Result
}

// WriteText prints the extracted graph in text form.
func (o *Output) WriteText(w io.Writer) error {
	return ir.Print(w, o.Extracted)
}

// Transform parses src, prunes common passthrough outputs and extracts the
// canonical result.
func Transform(ctx context.Context, src []byte, cfg Config) (*Output, error) {
	g, err := ir.Parse(string(src))
	if err != nil {
		return nil, err
	}

	run := prune.Run
	if cfg.Fixpoint {
		run = prune.Fixpoint
	}
	res, err := run(ctx, g, cfg.Prune)
	if err != nil {
		return nil, err
	}

	x, _, err := g.Extract()
	if err != nil {
		return nil, err
	}
	return &Output{Graph: g, Extracted: x, Result: res}, nil
}

// ReadSource reads a graph from path, or from r when path is empty or "-".
func ReadSource(path string, r io.Reader) ([]byte, error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, errors.Load("read stdin", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Load("read "+path, err)
	}
	return data, nil
}
