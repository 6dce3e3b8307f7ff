package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/solrmap/internal/domain"
	"github.com/kailas-cloud/solrmap/internal/domain/document"
	"github.com/kailas-cloud/solrmap/internal/domain/field"
	"github.com/kailas-cloud/solrmap/internal/domain/query"
	"github.com/kailas-cloud/solrmap/internal/domain/response"
	"github.com/kailas-cloud/solrmap/internal/schemaxml"
	indexuc "github.com/kailas-cloud/solrmap/internal/usecase/index"
	"github.com/kailas-cloud/solrmap/internal/version"
)

var errUnavailable = fmt.Errorf("search index: %w", domain.ErrUnavailable)

func setupCommands(root *cobra.Command, c *cli) {
	root.AddCommand(
		schemaCmd(c),
		fieldsCmd(c),
		queryCmd(c),
		commitCmd(c),
		optimizeCmd(c),
		pingCmd(c),
		flushCmd(c),
		reindexCmd(c),
		purgeCacheCmd(c),
		versionCmd(),
	)
}

func schemaCmd(c *cli) *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Write schema.xml for the declared schemas",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := c.config()
			if err != nil {
				return err
			}
			reg, err := cfg.Registry()
			if err != nil {
				return err
			}
			if path == "" {
				path = cfg.SolrHome.SchemaPath
			}
			if path == "" {
				return errors.New("no schema path: set solr_home.schema_path or use --path")
			}
			target, err := schemaTarget(path)
			if err != nil {
				return err
			}

			if err := writeSchema(target, reg.Schemas()); err != nil {
				return err
			}
			okColor.Fprintf(cmd.OutOrStdout(), "Created schema.xml at %s\n", target)
			return nil
		},
	}
	cmd.Flags().StringVar(&path, "path", "", "file or directory to write schema.xml to")
	return cmd
}

// createFile opens the schema.xml target for writing.
var createFile = func(name string) (io.WriteCloser, error) {
	return os.Create(filepath.Clean(name))
}

// writeSchema renders schema.xml to target. A failed Close is a failed write.
func writeSchema(target string, schemas []*document.Schema) (err error) {
	f, err := createFile(target)
	if err != nil {
		return fmt.Errorf("create %s: %w", target, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("write %s: %w", target, cerr)
		}
	}()
	return schemaxml.Render(f, schemas, schemaxml.Options{Version: version.Version})
}

// schemaTarget resolves a directory to its schema.xml. The parent of a new file must exist.
func schemaTarget(path string) (string, error) {
	info, err := os.Stat(path)
	switch {
	case err == nil && info.IsDir():
		return filepath.Join(path, "schema.xml"), nil
	case err == nil:
		return path, nil
	case !errors.Is(err, fs.ErrNotExist):
		return "", fmt.Errorf("stat %s: %w", path, err)
	}
	if _, err := os.Stat(filepath.Dir(path)); err != nil {
		return "", fmt.Errorf("path does not exist: %s", path)
	}
	return path, nil
}

func fieldsCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "fields",
		Short: "Print the field declarations schema.xml will contain",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := c.config()
			if err != nil {
				return err
			}
			reg, err := cfg.Registry()
			if err != nil {
				return err
			}
			fields, copies := document.SchemaConfig(reg.Schemas())
			out := cmd.OutOrStdout()
			headColor.Fprintln(out, "########## FIELDS ##########")
			fmt.Fprintln(out, fields)
			headColor.Fprintln(out, "######## COPY FIELDS #######")
			fmt.Fprintln(out, copies)
			return nil
		},
	}
}

func queryCmd(c *cli) *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "query key=value...",
		Short: "Run a search built from key=value parameters",
		Example: "  solrmap query q=obama facet.field=category rows=5\n" +
			"  solrmap query q=obama hl=false --dry-run",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pairs, err := query.ParseParams(args)
			if err != nil {
				return err
			}
			if dryRun {
				cfg, err := c.config()
				if err != nil {
					return err
				}
				defaults, err := cfg.QueryDefaults()
				if err != nil {
					return err
				}
				q, err := query.NewBuilder(defaults...).Build(pairs)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), q.QueryString())
				return nil
			}

			a, err := c.app(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			res, err := a.Search.Search(cmd.Context(), pairs)
			if err != nil {
				return err
			}
			if res == nil {
				return errUnavailable
			}
			printResult(cmd.OutOrStdout(), res)
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the query string without sending it")
	return cmd
}

func printResult(w io.Writer, res *response.Result) {
	headColor.Fprintf(w, "%d results", res.Count)
	dimColor.Fprintf(w, " (page %d of %d, %d ms)\n", res.Start/max(res.Rows, 1)+1, res.Pages(), res.QTime)

	for i := range res.Documents {
		d := &res.Documents[i]
		okColor.Fprintf(w, "%s %s\n", d.ModelTag(), field.FormatValue(d.PrimaryKey().Value()))
		values := d.Values()
		names := make([]string, 0, len(values))
		for name, v := range values {
			if v != nil && name != "id" && name != "model" {
				names = append(names, name)
			}
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(w, "  %s: %s\n", name, field.FormatValue(values[name]))
		}
		if hl := d.Highlight(); hl != "" {
			dimColor.Fprintf(w, "  highlight: %s\n", hl)
		}
	}

	for _, f := range res.Facets {
		headColor.Fprintf(w, "%s\n", f.Name)
		for _, v := range f.Values {
			fmt.Fprintf(w, "  %s%s (%d)\n", strings.Repeat("  ", v.Level), v.Name, v.Count)
		}
	}
}

func updateCmd(c *cli, use, short, done string, op func(*cobra.Command, *indexuc.Service) (*response.Result, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := c.app(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			res, err := op(cmd, a.Index)
			if err != nil {
				return err
			}
			if res == nil {
				return errUnavailable
			}
			if !res.Success() {
				return fmt.Errorf("%s rejected with status %d", use, res.Status)
			}
			okColor.Fprintf(cmd.OutOrStdout(), "%s (%d ms)\n", done, res.QTime)
			return nil
		},
	}
}

func commitCmd(c *cli) *cobra.Command {
	return updateCmd(c, "commit", "Make pending index changes visible", "Committed",
		func(cmd *cobra.Command, s *indexuc.Service) (*response.Result, error) {
			return s.Commit(cmd.Context())
		})
}

func optimizeCmd(c *cli) *cobra.Command {
	return updateCmd(c, "optimize", "Merge index segments", "Optimized",
		func(cmd *cobra.Command, s *indexuc.Service) (*response.Result, error) {
			return s.Optimize(cmd.Context())
		})
}

func pingCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check that the search index responds",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := c.app(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			out := cmd.OutOrStdout()
			if err := a.Transport.Ping(cmd.Context()); err != nil {
				errColor.Fprintf(out, "FAIL %s\n", a.Transport)
				return err
			}
			okColor.Fprintf(out, "OK %s\n", a.Transport)
			return nil
		},
	}
}

func flushCmd(c *cli) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "flush",
		Short: "Remove the index data directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := c.config()
			if err != nil {
				return err
			}
			dir := cfg.SolrHome.DataDir
			if dir == "" {
				return errors.New("solr_home.data_dir is not configured")
			}
			if _, err := os.Stat(dir); err != nil {
				return fmt.Errorf("data directory has already been deleted or does not exist: %s", dir)
			}

			out := cmd.OutOrStdout()
			if !yes {
				fmt.Fprintf(out, "Do you wish to delete %s: [y/N] ", dir)
				answer, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && !errors.Is(err, io.EOF) {
					return fmt.Errorf("read confirmation: %w", err)
				}
				answer = strings.ToLower(strings.TrimSpace(answer))
				if answer != "y" && answer != "yes" {
					fmt.Fprintf(out, "Did not remove %s\n", dir)
					return nil
				}
			}
			if err := os.RemoveAll(dir); err != nil {
				return fmt.Errorf("remove %s: %w", dir, err)
			}
			okColor.Fprintf(out, "Removed %s\n", dir)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

func reindexCmd(c *cli) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "reindex",
		Short: "Reindex every declared model from a JSON Lines record dump",
		Long: "Each line is a JSON object {\"app\", \"model\", \"id\", \"url\", \"attrs\"}. " +
			"Records of undeclared models are skipped.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var r io.Reader = cmd.InOrStdin()
			if file != "-" {
				f, err := os.Open(filepath.Clean(file))
				if err != nil {
					return fmt.Errorf("open records: %w", err)
				}
				defer func() { _ = f.Close() }()
				r = f
			}

			a, err := c.app(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			src, err := indexuc.NewJSONLSource(r, a.Config.Search.Separator)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Starting to reindex %d records\n", src.Len())
			report, err := a.Index.Reindex(cmd.Context(), src)
			if err != nil {
				return err
			}

			keys := make([]string, 0, len(report.Models))
			for k := range report.Models {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				fmt.Fprintf(out, "  %s: %d\n", k, report.Models[k])
			}
			okColor.Fprintf(out, "Finished reindex %s: %d documents in %d batches\n",
				report.BatchID, report.Documents, report.Batches)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "-", "JSON Lines record file, - for stdin")
	return cmd
}

func purgeCacheCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "purge-cache",
		Short: "Drop every cached select response",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := c.app(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			if a.Cache == nil {
				return errors.New("response cache is disabled")
			}
			n, err := a.Cache.Purge(cmd.Context())
			if err != nil {
				return err
			}
			okColor.Fprintf(cmd.OutOrStdout(), "Purged %d cached responses\n", n)
			return nil
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "solrmap %s\n", version.String())
		},
	}
}
