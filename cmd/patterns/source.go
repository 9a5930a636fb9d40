package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ilkoid/poncho-patterns/pkg/customtokens"
	"github.com/ilkoid/poncho-patterns/pkg/s3storage"
	"github.com/ilkoid/poncho-patterns/pkg/source"
	"github.com/ilkoid/poncho-patterns/pkg/tokens"
	"github.com/ilkoid/poncho-patterns/pkg/utils"
)

// sourceFlags — флаги выбора выборки, общие для analyze/generate/group/gallery/tui.
type sourceFlags struct {
	dir     string
	s3      bool
	prefix  string
	include []string
	exclude []string
	limit   int
}

func (f *sourceFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.dir, "dir", "", "local directory with sample images (overrides source.dir)")
	cmd.Flags().BoolVar(&f.s3, "s3", false, "read samples from the S3 bucket in config")
	cmd.Flags().StringVar(&f.prefix, "prefix", "", "S3 key prefix (overrides source.prefix)")
	cmd.Flags().StringSliceVar(&f.include, "include", nil, "glob patterns to include (doublestar syntax)")
	cmd.Flags().StringSliceVar(&f.exclude, "exclude", nil, "glob patterns to exclude")
	cmd.Flags().IntVar(&f.limit, "limit", 0, "maximum number of sample files (0 uses wizard.sample_limit)")
}

// open создаёт источник по флагам поверх секции source конфига.
func (f *sourceFlags) open() (source.Source, error) {
	c := cfg()
	include, exclude := c.Source.Include, c.Source.Exclude
	if len(f.include) > 0 {
		include = f.include
	}
	if len(f.exclude) > 0 {
		exclude = f.exclude
	}

	if f.s3 || (f.dir == "" && c.Source.Dir == "" && c.S3.Enabled()) {
		client, err := s3storage.New(c.S3)
		if err != nil {
			return nil, err
		}
		prefix := c.Source.Prefix
		if f.prefix != "" {
			prefix = f.prefix
		}
		return source.NewS3Source(client, prefix, include, exclude)
	}

	dir := f.dir
	if dir == "" {
		dir = c.Source.Dir
	}
	if dir == "" {
		return nil, fmt.Errorf("no sample source: pass --dir or configure source.dir or s3.bucket")
	}
	return source.NewDirSource(dir, include, exclude)
}

func (f *sourceFlags) sampleLimit() int {
	if f.limit > 0 {
		return f.limit
	}
	return cfg().Wizard.SampleLimit
}

// load читает список файлов источника и возвращает имена выборки и
// сопоставление имя → ключ.
func (f *sourceFlags) load(ctx context.Context) (source.Source, []string, map[string]string, error) {
	src, err := f.open()
	if err != nil {
		return nil, nil, nil, err
	}
	entries, err := src.List(ctx)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("list %s: %w", src.Describe(), err)
	}
	names := source.Sample(source.Names(entries), f.sampleLimit())
	utils.Info("Samples loaded", "source", src.Describe(), "files", len(entries), "sample", len(names))
	if len(names) == 0 {
		return nil, nil, nil, fmt.Errorf("no image files found in %s", src.Describe())
	}
	return src, names, source.KeysByName(entries), nil
}

// customTokensPath: config → дефолтный путь в пользовательском конфиге.
func customTokensPath() (string, error) {
	if p := cfg().App.CustomTokensPath; p != "" {
		return p, nil
	}
	return customtokens.DefaultPath()
}

// loadCustomTokens читает файл пользовательских токенов. Некорректные
// строки пропускаются с предупреждением в stderr.
func loadCustomTokens(cmd *cobra.Command) (*customtokens.Manager, []tokens.CustomToken, error) {
	path, err := customTokensPath()
	if err != nil {
		return nil, nil, err
	}
	m := customtokens.NewManager(path)
	invalid, err := m.Load()
	if err != nil {
		return nil, nil, err
	}
	for _, e := range invalid {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s: %v\n", path, e)
	}
	return m, m.Tokens(), nil
}
