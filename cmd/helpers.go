// Copyright (c) 2026 dawgtools
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"dawgtools/cli/internal/config"
	"dawgtools/cli/internal/dsn"
	apperr "dawgtools/cli/internal/errors"
	"dawgtools/cli/internal/keychain"
	"dawgtools/cli/internal/logging"
	"dawgtools/cli/internal/output"
	"dawgtools/cli/internal/sqlexec"
)

// parsePairs turns var=val arguments into a map. The value is everything
// after the first '='.
func parsePairs(flag string, pairs []string) (map[string]any, error) {
	params := make(map[string]any, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok || k == "" {
			return nil, apperr.Newf(apperr.Usage, "%s expects var=val, got %q", flag, p)
		}
		params[k] = v
	}
	return params, nil
}

// loadParamsFile reads a JSON or YAML mapping of template parameters.
func loadParamsFile(path string) (map[string]any, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, apperr.Wrap(apperr.IO, "reading params file", err)
	}

	params := map[string]any{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(raw, &params)
	default:
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.UseNumber()
		err = dec.Decode(&params)
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.Usage, "params file "+path+" must hold a mapping", err)
	}
	return params, nil
}

// openOutput returns the command's stdout for an empty name and a file
// (gzip-compressed for .gz) otherwise.
func openOutput(cmd *cobra.Command, name string) (io.WriteCloser, error) {
	if name == "" {
		return nopCloser{cmd.OutOrStdout()}, nil
	}
	return output.Open(name)
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// resolveDSN picks the connection string: the flag, then DAWGTOOLS_DSN or
// the config file, then the OS keychain, then the shared default server.
func (a *app) resolveDSN(flag string) (raw, source string) {
	if s := strings.TrimSpace(flag); s != "" {
		return s, "--dsn flag"
	}
	if s := strings.TrimSpace(a.cfg.DB.DSN); s != "" {
		return s, "DAWGTOOLS_DSN or config file"
	}
	if km, err := a.keychain(); err == nil {
		if s, err := km.LoadDBDSN(); err == nil && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s), "OS keychain"
		}
	} else {
		a.log.Debug("keychain unavailable", zap.Error(err))
	}
	return config.DefaultDSN, "built-in default"
}

// openDB resolves raw and connects.
func (a *app) openDB(ctx context.Context, raw string) (*sqlexec.Executor, error) {
	connStr, dialect, err := dsn.Resolve(raw)
	if err != nil {
		return nil, apperr.Wrap(apperr.Config, "database connection string", err)
	}
	a.log.Info("connecting", zap.String("dsn", logging.Mask(connStr)), zap.String("dialect", string(dialect.Type)))
	return sqlexec.Open(ctx, connStr, dialect, a.log)
}

// explainDBError prints a diagnosis for database failures and passes err on.
func explainDBError(cmd *cobra.Command, err error) error {
	if apperr.KindOf(err) == apperr.External {
		var inner error = err
		for u := errors.Unwrap(inner); u != nil; u = errors.Unwrap(inner) {
			inner = u
		}
		fmt.Fprintln(cmd.ErrOrStderr(), logging.FormatDBError(inner.Error()))
	}
	return err
}

// loadAPIKey returns the configured key, falling back to the keychain.
func (a *app) loadAPIKey() string {
	if a.cfg.OpenAI.APIKey != "" {
		return a.cfg.OpenAI.APIKey
	}
	km, err := a.keychain()
	if err != nil {
		a.log.Debug("keychain unavailable", zap.Error(err))
		return ""
	}
	key, err := km.LoadAPIKey()
	if err != nil && !errors.Is(err, keychain.ErrNotFound) {
		a.log.Warn("reading API key from keychain failed", zap.Error(err))
	}
	return key
}
