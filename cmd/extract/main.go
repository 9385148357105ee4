// Command extract runs the extraction pipeline on a local file and prints the
// result, without touching the database.
// Usage: go run ./cmd/extract [-mode local|remote] [-format json|xlsx|csv] [-o out] <file.pdf|file.png|file.txt ...>
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"sva/internal/config"
	"sva/internal/domain"
	"sva/internal/export"
	"sva/internal/extractor"
	"sva/internal/extractor/providers"
	"sva/internal/port"
	"sva/internal/render"
	"sva/internal/segment"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	mode := flag.String("mode", string(domain.ModeLocal), "extraction mode: local or remote")
	format := flag.String("format", "json", "output format: json, xlsx or csv")
	outPath := flag.String("o", "", "output file (default stdout)")
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		return fmt.Errorf("no input file given")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	providers.Register()
	remote, err := extractor.NewFromConfig(&cfg.Extractor)
	if err != nil {
		return fmt.Errorf("initializing remote extractor: %w", err)
	}
	selector := extractor.NewSelector(segment.NewEngine(), remote)

	req, err := buildRequest(context.Background(), render.NewRenderer(cfg.Extractor.MaxPages), flag.Args())
	if err != nil {
		return err
	}
	req.Mode = domain.ExtractionMode(*mode)

	out, err := selector.Extract(context.Background(), *req)
	if err != nil {
		return fmt.Errorf("extracting %s: %w", req.FileName, err)
	}
	for _, r := range out.Rejected {
		log.Printf("rejected line of %q: %s (%s)", r.Supplier, r.Line, r.Reason)
	}

	var w io.Writer = os.Stdout
	if *outPath != "" {
		f, err := os.Create(*outPath)
		if err != nil {
			return fmt.Errorf("creating %s: %w", *outPath, err)
		}
		defer func() { _ = f.Close() }()
		w = f
	}

	if *format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out.Result)
	}
	f, err := export.ParseFormat(*format)
	if err != nil {
		return err
	}
	return export.Write(w, f, out.Result)
}

// buildRequest reads the input files. A single .txt file is used as the
// document text; otherwise the first argument is the document and any
// further arguments are page images.
func buildRequest(ctx context.Context, r *render.Renderer, paths []string) (*extractor.Request, error) {
	first := paths[0]
	data, err := os.ReadFile(first)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", first, err)
	}
	name := filepath.Base(first)

	if strings.EqualFold(filepath.Ext(first), ".txt") {
		return &extractor.Request{
			FileName: name,
			Pages:    []port.Page{{Number: 1, Text: string(data)}},
		}, nil
	}

	var images [][]byte
	for _, p := range paths[1:] {
		img, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", p, err)
		}
		images = append(images, img)
	}

	rendered, err := r.Render(ctx, port.RenderInput{FileName: name, Data: data, Images: images})
	if err != nil {
		return nil, fmt.Errorf("rendering %s: %w", name, err)
	}
	return &extractor.Request{
		FileName:    name,
		ContentType: rendered.ContentType,
		Document:    data,
		Pages:       rendered.Pages,
	}, nil
}
