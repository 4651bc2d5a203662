package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	reportflow "github.com/alnah/go-reportflow"
	"github.com/alnah/go-reportflow/internal/datasource"
	"github.com/alnah/go-reportflow/internal/fileutil"
)

// File permission constants.
const (
	dirPermissions  = 0o750 // rwxr-x---: owner full, group read+execute
	filePermissions = 0o644 // rw-r--r--: owner read+write, others read
)

// renderJob is one data file and where its report goes.
type renderJob struct {
	DataPath   string
	OutputPath string // stdoutPath for standard output
}

// renderResult holds the outcome of a single report.
type renderResult struct {
	DataPath string
	Files    []string // written files; PNG writes one per page
	Pages    int
	Err      error
	Duration time.Duration
}

// resolveJobs pairs each data file with its output path.
// output is a file (single data file), a directory, stdoutPath, or empty
// for defaultDir or the data file's own directory.
func resolveJobs(dataPaths []string, output, defaultDir string, format reportflow.OutputFormat) ([]renderJob, error) {
	ext := format.Extension()

	if output == stdoutPath {
		if len(dataPaths) != 1 || format == reportflow.OutputPNG {
			return nil, ErrStdoutOutput
		}
		return []renderJob{{DataPath: dataPaths[0], OutputPath: stdoutPath}}, nil
	}

	if output != "" && len(dataPaths) == 1 && strings.EqualFold(filepath.Ext(output), "."+ext) {
		return []renderJob{{DataPath: dataPaths[0], OutputPath: output}}, nil
	}

	dir := output
	if dir == "" {
		dir = defaultDir
	}
	jobs := make([]renderJob, 0, len(dataPaths))
	for _, path := range dataPaths {
		jobs = append(jobs, renderJob{DataPath: path, OutputPath: fileutil.OutputPath(path, dir, ext)})
	}
	return jobs, nil
}

// renderBatch renders jobs concurrently using the renderer pool.
// Results keep the order of jobs.
func renderBatch(ctx context.Context, pool Pool, jobs []renderJob, p *renderParams) []renderResult {
	if len(jobs) == 0 {
		return nil
	}

	concurrency := min(pool.Size(), len(jobs))

	results := make([]renderResult, len(jobs))
	var wg sync.WaitGroup
	queue := make(chan int, len(jobs))

	for range concurrency {
		wg.Add(1)
		go func() {
			defer wg.Done()

			r, err := pool.Acquire()
			if err != nil {
				// Renderer creation failed, mark this worker's jobs as failed
				for idx := range queue {
					results[idx] = renderResult{DataPath: jobs[idx].DataPath, Err: err}
				}
				return
			}
			defer pool.Release(r)

			for idx := range queue {
				if ctx.Err() != nil {
					results[idx] = renderResult{DataPath: jobs[idx].DataPath, Err: ctx.Err()}
					continue
				}
				results[idx] = renderFile(ctx, r, jobs[idx], p)
			}
		}()
	}

	for i := range jobs {
		queue <- i
	}
	close(queue)

	wg.Wait()
	return results
}

// renderFile renders one data file and writes the output.
// The template is parsed per report so no state is shared between workers.
func renderFile(ctx context.Context, r ReportRenderer, job renderJob, p *renderParams) renderResult {
	start := p.now()
	result := renderResult{DataPath: job.DataPath}
	fail := func(err error) renderResult {
		result.Err = err
		result.Duration = p.now().Sub(start)
		return result
	}

	report, err := reportflow.ParseReport(p.template)
	if err != nil {
		return fail(fmt.Errorf("parsing %s: %w", p.templatePath, err))
	}

	data, err := os.ReadFile(job.DataPath) // #nosec G304 -- user-provided path
	if err != nil {
		return fail(fmt.Errorf("%w: %v", ErrReadData, err))
	}
	records, err := datasource.Load(data, datasource.FormatFromPath(job.DataPath))
	if err != nil {
		return fail(fmt.Errorf("loading records: %w", err))
	}

	page, err := pageSettings(report.Page, p.page)
	if err != nil {
		return fail(err)
	}

	p.logger.Debug("rendering report", "data", job.DataPath, "records", len(records))
	res, err := r.Render(ctx, reportflow.Input{
		Report:     report,
		Records:    records,
		Format:     p.format,
		CSS:        p.css,
		GroupBy:    p.groupBy,
		SortBy:     p.sortBy,
		Parameters: p.parameters,
		Page:       page,
	})
	if err != nil {
		return fail(err)
	}
	result.Pages = len(res.Pages)

	if job.OutputPath == stdoutPath {
		if _, err := p.stdout.Write(payload(res, p.format)); err != nil {
			return fail(fmt.Errorf("%w: stdout: %v", ErrWriteOutput, err))
		}
		result.Files = []string{"stdout"}
		result.Duration = p.now().Sub(start)
		return result
	}

	files, err := writeOutput(job.OutputPath, res, p.format)
	if err != nil {
		return fail(err)
	}
	result.Files = files
	result.Duration = p.now().Sub(start)
	return result
}

// payload returns the single document for a format.
func payload(res *reportflow.Result, format reportflow.OutputFormat) []byte {
	switch format {
	case reportflow.OutputPDF:
		return res.PDF
	case reportflow.OutputYAML:
		return res.YAML
	default:
		return res.HTML
	}
}

// writeOutput writes the rendered report. PNG output writes one numbered
// file per page next to path.
func writeOutput(path string, res *reportflow.Result, format reportflow.OutputFormat) ([]string, error) {
	if err := os.MkdirAll(filepath.Dir(path), dirPermissions); err != nil {
		return nil, fmt.Errorf("%w: creating output directory: %v", ErrWriteOutput, err)
	}

	if format != reportflow.OutputPNG {
		// #nosec G306 -- reports are meant to be readable
		if err := os.WriteFile(path, payload(res, format), filePermissions); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrWriteOutput, err)
		}
		return []string{path}, nil
	}

	files := make([]string, 0, len(res.PNG))
	for i, img := range res.PNG {
		pagePath := pageImagePath(path, i+1)
		// #nosec G306 -- reports are meant to be readable
		if err := os.WriteFile(pagePath, img, filePermissions); err != nil {
			return files, fmt.Errorf("%w: %v", ErrWriteOutput, err)
		}
		files = append(files, pagePath)
	}
	return files, nil
}

// pageImagePath numbers a page image: "out/sales.png" page 2 is
// "out/sales-2.png".
func pageImagePath(path string, page int) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + "-" + strconv.Itoa(page) + ext
}

// resultSummary holds the count of succeeded and failed reports.
type resultSummary struct {
	Succeeded int
	Failed    int
}

// countResults tallies succeeded and failed reports.
func countResults(results []renderResult) resultSummary {
	var summary resultSummary
	for _, r := range results {
		if r.Err != nil {
			summary.Failed++
		} else {
			summary.Succeeded++
		}
	}
	return summary
}

// firstError returns the first failure in job order.
func firstError(results []renderResult) error {
	for _, r := range results {
		if r.Err != nil {
			return r.Err
		}
	}
	return nil
}

// printResults outputs one line per report. Failures always go to errOut.
func printResults(results []renderResult, quiet, verbose bool, out, errOut io.Writer) resultSummary {
	summary := countResults(results)

	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(errOut, "FAILED %s: %v%s\n", r.DataPath, r.Err, hintFor(r.Err))
			continue
		}

		if quiet {
			continue
		}

		if verbose {
			fmt.Fprintf(out, "%s -> %s (%d pages, %v)\n", r.DataPath, strings.Join(r.Files, ", "), r.Pages, r.Duration.Round(time.Millisecond))
		} else {
			fmt.Fprintf(out, "Created %s\n", strings.Join(r.Files, ", "))
		}
	}

	if !quiet && len(results) > 1 {
		fmt.Fprintf(out, "\n%d succeeded, %d failed\n", summary.Succeeded, summary.Failed)
	}

	return summary
}
