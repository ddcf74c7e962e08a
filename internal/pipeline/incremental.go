package pipeline

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"github.com/theirongolddev/cashpulse/internal/source"
	"github.com/theirongolddev/cashpulse/internal/store"
)

// ProgressFunc is called during import to report progress.
// current is the number of files processed so far, total is the total count.
type ProgressFunc func(current, total int)

// ImportStore is the write side the importer needs.
type ImportStore interface {
	GetTrackedFiles(ctx context.Context) (map[string]store.FileInfo, error)
	SaveImport(ctx context.Context, b store.ImportBatch, path string, fi store.FileInfo) error
}

// ImportOptions controls ImportDir.
type ImportOptions struct {
	Parse source.ParseOptions
	// Force re-imports files even when their mtime and size are unchanged.
	Force    bool
	Workers  int
	Progress ProgressFunc
	Logger   logrus.FieldLogger
}

// ImportResult summarises an import run.
type ImportResult struct {
	TotalFiles  int
	Skipped     int
	Imported    int
	Records     int
	ParseErrors int
	FileErrors  int
}

// ImportDir discovers import files under path, skips those the tracker has
// already seen unchanged, parses the rest with a bounded worker pool and
// saves each file's records in its own transaction.
func ImportDir(ctx context.Context, path string, st ImportStore, opts ImportOptions) (*ImportResult, error) {
	log := opts.Logger
	if log == nil {
		l := logrus.New()
		l.SetLevel(logrus.PanicLevel)
		log = l
	}

	files, err := source.ScanDir(path)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", path, err)
	}

	result := &ImportResult{TotalFiles: len(files)}
	if len(files) == 0 {
		return result, nil
	}

	tracked, err := st.GetTrackedFiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading file tracker: %w", err)
	}

	var toParse []source.DiscoveredFile
	for _, f := range files {
		prev, ok := tracked[f.Path]
		if !opts.Force && ok && prev.MtimeNs == f.MtimeNs && prev.SizeBytes == f.SizeBytes {
			result.Skipped++
			continue
		}
		toParse = append(toParse, f)
	}

	if len(toParse) == 0 {
		return result, nil
	}

	numWorkers := opts.Workers
	if numWorkers < 1 {
		numWorkers = runtime.GOMAXPROCS(0)
	}
	if numWorkers > len(toParse) {
		numWorkers = len(toParse)
	}

	work := make(chan int, len(toParse))
	results := make([]source.ParseResult, len(toParse))
	var wg sync.WaitGroup
	var processed atomic.Int64

	for i := range toParse {
		work <- i
	}
	close(work)

	wg.Add(numWorkers)
	for w := 0; w < numWorkers; w++ {
		go func() {
			defer wg.Done()
			for idx := range work {
				if ctx.Err() != nil {
					results[idx] = source.ParseResult{Err: ctx.Err()}
					continue
				}
				results[idx] = source.ParseFile(toParse[idx], opts.Parse)
				n := processed.Add(1)
				if opts.Progress != nil {
					opts.Progress(int(n)+result.Skipped, result.TotalFiles)
				}
			}
		}()
	}

	wg.Wait()

	for i, pr := range results {
		f := toParse[i]
		entry := log.WithField("file", f.Path)
		if pr.Err != nil {
			result.FileErrors++
			entry.WithError(pr.Err).Warn("import file failed")
			continue
		}
		result.ParseErrors += pr.ParseErrors
		for _, le := range pr.LineErrors {
			entry.WithField("line", le.Line).WithError(le.Err).Debug("skipped line")
		}

		b := pr.Batch
		fi := store.FileInfo{MtimeNs: f.MtimeNs, SizeBytes: f.SizeBytes, Records: b.Len()}
		err := st.SaveImport(ctx, store.ImportBatch{
			Accounts:     b.Accounts,
			Transactions: b.Transactions,
			Goals:        b.Goals,
			BudgetItems:  b.BudgetItems,
			Settings:     b.Settings,
		}, f.Path, fi)
		if err != nil {
			return result, fmt.Errorf("saving %s: %w", f.Path, err)
		}
		result.Imported++
		result.Records += b.Len()
		entry.WithFields(logrus.Fields{
			"records":      b.Len(),
			"parse_errors": pr.ParseErrors,
		}).Info("imported file")
	}

	return result, nil
}
