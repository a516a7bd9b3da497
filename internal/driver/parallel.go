package driver

import (
	"context"
	"io/fs"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"cooklang/internal/diag"
	"cooklang/internal/source"
)

// DirResult is the outcome for one file of a directory walk.
type DirResult struct {
	// Path is the file path as walked.
	Path   string
	Result *Result
	// FromCache is set when the recipe came from the disk cache.
	FromCache bool
}

// ListRecipeFiles returns all *.cook files under dir, sorted for
// deterministic order.
func ListRecipeFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(path, ".cook") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// ParseDir parses every *.cook file under dir in parallel. jobs <= 0 uses
// GOMAXPROCS. cache may be nil. onDone, when set, is called after each file
// finishes, from the worker goroutine.
func (p *Parser) ParseDir(ctx context.Context, dir string, jobs int, cache *RecipeCache, onDone func(DirResult)) ([]DirResult, error) {
	files, err := ListRecipeFiles(dir)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, nil
	}

	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	// indexes are unique per goroutine, no mutex needed
	results := make([]DirResult, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(files)))

	for i, path := range files {
		i, path := i, path
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			results[i] = p.parseOne(dir, path, cache)
			if onDone != nil {
				onDone(results[i])
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

func (p *Parser) parseOne(dir, path string, cache *RecipeCache) DirResult {
	// rooting the set at the walked dir keeps displayed paths relative
	fileSet := source.NewFileSetWithBase(dir)
	id, err := fileSet.Load(path)
	if err != nil {
		bag := diag.NewBag(p.maxDiag)
		bag.Add(diag.Diagnostic{
			Severity: diag.SevError,
			Code:     diag.IOLoadFileError,
			Message:  "failed to load file: " + err.Error(),
		})
		return DirResult{Path: path, Result: &Result{Bag: bag, FileSet: fileSet}}
	}
	file := fileSet.Get(id)

	if cache != nil {
		recipe, diags, hit, err := cache.Get(file.Hash, p.ext)
		if err == nil && hit {
			bag := diag.NewBag(p.maxDiag)
			for _, d := range diags {
				bag.Add(d)
			}
			return DirResult{
				Path:      path,
				Result:    &Result{Recipe: recipe, Bag: bag, FileSet: fileSet, File: file},
				FromCache: true,
			}
		}
	}

	result := p.parse(fileSet, id)
	if cache != nil {
		// best effort, a failed write only loses the speedup
		_ = cache.Put(p.ext, result)
	}
	return DirResult{Path: path, Result: result}
}
