// Copyright (c) 2026 dawgtools
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	apperr "dawgtools/cli/internal/errors"
	"dawgtools/cli/internal/extract"
	"dawgtools/cli/internal/httperrors"
)

type extractOptions struct {
	infile     string
	dirname    string
	promptFile string
	outfile    string
	model      string
	cacheDir   string
	noCache    bool
}

func newExtractBatchCmd(a *app) *cobra.Command {
	var o extractOptions
	c := &cobra.Command{
		Use:   "<schema>",
		Short: "Extract features from one or more input files",
		Long: `Extract features from text files with a language model.

Requires OPENAI_API_KEY (or a key stored with 'dawgtools login').
OPENAI_BASE_URL can be used to set a custom API base URL.

Given a function schema file and a directory of text files, write one CSV
row per extracted item:

  dawgtools extract_batch schema.json -d input_texts -o features.csv

Model responses are cached per schema and model so that files already
processed are not sent again. Changing the schema file starts a new cache.`,
		Args: usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runExtractBatch(cmd, args[0], o)
		},
	}

	f := c.Flags()
	f.StringVarP(&o.infile, "infile", "i", "", "A single input file")
	f.StringVarP(&o.dirname, "dirname", "d", "", "A directory of .txt and .md input files")
	f.StringVarP(&o.promptFile, "prompt", "p", "", "File with extra instructions sent after each input")
	f.StringVarP(&o.outfile, "outfile", "o", "", "Output CSV file (default stdout)")
	f.StringVarP(&o.model, "model", "m", "", "Model name (default extract.model, gpt-5.1)")
	f.StringVar(&o.cacheDir, "cache-dir", "", "Directory containing cached results (default extract.cache_dir, extract_batch_cache)")
	f.BoolVarP(&o.noCache, "no-cache", "n", false, "Query the model even when a cached result exists")
	return c
}

func (a *app) runExtractBatch(cmd *cobra.Command, schemaPath string, o extractOptions) error {
	files, err := extract.CollectInputs(o.infile, o.dirname)
	if err != nil {
		return err
	}
	schema, err := extract.LoadSchema(schemaPath)
	if err != nil {
		return err
	}

	var prompt string
	if o.promptFile != "" {
		b, err := os.ReadFile(o.promptFile)
		if err != nil {
			return apperr.Wrap(apperr.IO, "reading prompt file", err)
		}
		prompt = string(b)
	}

	model := firstNonEmpty(o.model, a.cfg.Extract.Model)
	cache, err := extract.OpenCache(firstNonEmpty(o.cacheDir, a.cfg.Extract.CacheDir), schema)
	if err != nil {
		return err
	}

	client, err := extract.NewClient(extract.ClientConfig{
		APIKey:            a.loadAPIKey(),
		BaseURL:           a.cfg.OpenAI.BaseURL,
		Timeout:           a.cfg.OpenAI.Timeout,
		RequestsPerMinute: a.cfg.OpenAI.RequestsPerMinute,
	}, a.log)
	if err != nil {
		return err
	}

	w, err := openOutput(cmd, o.outfile)
	if err != nil {
		return err
	}

	stderr := cmd.ErrOrStderr()
	var current string
	batch := &extract.Batch{
		Schema:  schema,
		Cache:   cache,
		Client:  client,
		Model:   model,
		Prompt:  prompt,
		NoCache: o.noCache,
		Log:     a.log,
		OnStart: func(path string, cached bool) {
			current = path
			if cached {
				progress(stderr, "Loading cached results for %s...", path)
			} else {
				progress(stderr, "Processing %s...", path)
			}
		},
	}

	a.log.Info("extracting",
		zap.Int("files", len(files)),
		zap.String("model", model),
		zap.String("cache", cache.Dir))
	stats, err := batch.Run(cmd.Context(), files, w)
	if cerr := w.Close(); err == nil && cerr != nil {
		err = apperr.Wrap(apperr.IO, "closing output", cerr)
	}
	if err != nil {
		if apperr.KindOf(err) == apperr.External && current != "" {
			httperrors.FormatModelError(stderr, err, httperrors.ExtractHostFromURL(a.cfg.OpenAI.BaseURL), "processing "+current)
		}
		return err
	}

	a.log.Info("extraction complete",
		zap.Int("files", stats.Files),
		zap.Int("cached", stats.Cached),
		zap.Int("model_calls", stats.Called),
		zap.Int("rows", stats.Rows))
	if stats.Invalid > 0 {
		a.log.Warn("some items did not match the schema", zap.Int("items", stats.Invalid))
	}
	return nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
