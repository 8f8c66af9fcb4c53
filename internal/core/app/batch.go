package app

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"declschema/internal/core/config"
	"declschema/internal/core/errors"
	"declschema/internal/core/ports"
	"declschema/internal/schema"
	"declschema/internal/shared/util"
)

// Run extracts req.Path. A file is encoded to the output writer; a directory
// is processed in batch mode.
func (a *App) Run(ctx context.Context, req ports.ExtractRequest) (ports.ExtractResult, error) {
	info, err := os.Stat(req.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return ports.ExtractResult{}, errors.AddContext(
				errors.Wrap(err, errors.CodeNotFound, "input path not found"), errors.CtxPath, req.Path)
		}
		return ports.ExtractResult{}, errors.Wrap(err, errors.CodeInternal, "stat input path")
	}
	if info.IsDir() {
		return a.RunBatch(ctx, req.Path)
	}
	return a.RunFile(ctx, req.Path)
}

// RunFile writes the encoded schema of one file to the output writer. Nothing
// is written unless extraction and encoding both succeed.
func (a *App) RunFile(ctx context.Context, path string) (ports.ExtractResult, error) {
	cfg := a.Config()
	s, err := a.ExtractFile(ctx, path)
	if err != nil {
		return ports.ExtractResult{}, err
	}
	data, err := Encode(s, cfg.Output.Format, cfg.Output.Pretty)
	if err != nil {
		return ports.ExtractResult{}, err
	}

	a.mu.Lock()
	_, err = a.out.Write(data)
	a.mu.Unlock()
	if err != nil {
		return ports.ExtractResult{}, errors.Wrap(err, errors.CodeInternal, "write output")
	}
	return ports.ExtractResult{Files: 1, Declarations: declarationCount(s)}, nil
}

// RunBatch extracts every selected file below root in lexical order and writes
// one output document per input. The first failure aborts the batch.
func (a *App) RunBatch(ctx context.Context, root string) (ports.ExtractResult, error) {
	cfg := a.Config()
	start := time.Now()

	files, err := a.CollectFiles(root)
	if err != nil {
		return ports.ExtractResult{}, err
	}
	a.Logger.Info("batch started", "root", root, "files", len(files))

	result := ports.ExtractResult{}
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		out, n, err := a.extractTo(ctx, cfg, root, file)
		if err != nil {
			return result, err
		}
		result.Files++
		result.Declarations += n
		result.Written = append(result.Written, out)
	}

	a.Logger.Info("batch finished",
		"root", root,
		"files", result.Files,
		"declarations", result.Declarations,
		"duration", time.Since(start),
	)
	return result, nil
}

func (a *App) extractTo(ctx context.Context, cfg *config.Config, root, file string) (string, int, error) {
	s, err := a.ExtractFile(ctx, file)
	if err != nil {
		return "", 0, err
	}
	data, err := Encode(s, cfg.Output.Format, cfg.Output.Pretty)
	if err != nil {
		return "", 0, err
	}
	out, err := config.OutputPath(cfg, root, file)
	if err != nil {
		return "", 0, errors.AddContext(errors.Wrap(err, errors.CodeInternal, "map output path"), errors.CtxPath, file)
	}
	if err := util.WriteFileWithDirs(out, data, 0o644); err != nil {
		return "", 0, errors.AddContext(errors.Wrap(err, errors.CodeInternal, "write output file"), errors.CtxPath, out)
	}
	a.Logger.Debug("output written", "input", file, "output", out)
	return out, declarationCount(s), nil
}

// CollectFiles lists the files below root selected by the batch globs and
// supported by the parser, sorted by slash-separated relative path.
func (a *App) CollectFiles(root string) ([]string, error) {
	cfg, p := a.snapshot()
	matcher, err := util.NewPathMatcher(cfg.Batch.Include, cfg.Batch.Exclude)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeValidationError, "compile batch globs")
	}

	type entry struct{ rel, path string }
	var entries []entry
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if d.IsDir() {
			if rel != "." && matcher.Excluded(rel) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || !matcher.Match(rel) {
			return nil
		}
		if !p.IsSupportedPath(path) {
			a.Logger.Debug("skipping unsupported file", "path", path)
			return nil
		}
		entries = append(entries, entry{rel: rel, path: path})
		return nil
	})
	if err != nil {
		return nil, errors.AddContext(errors.Wrap(err, errors.CodeInternal, "walk input directory"), errors.CtxPath, root)
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].rel < entries[j].rel })
	files := make([]string, len(entries))
	for i, e := range entries {
		files[i] = e.path
	}
	return files, nil
}

func declarationCount(s schema.Schema) int {
	total := 0
	for _, n := range s.Count() {
		total += n
	}
	return total
}
