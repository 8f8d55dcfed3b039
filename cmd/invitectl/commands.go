package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ginvite/ginvite-api/internal/domain"
	"github.com/ginvite/ginvite-api/internal/platform/config"
	"github.com/ginvite/ginvite-api/internal/platform/observability"
	"github.com/ginvite/ginvite-api/internal/platform/storage"
	"github.com/ginvite/ginvite-api/internal/services"
	"github.com/ginvite/ginvite-api/internal/themes"
)

type cliRuntime struct {
	cfg      config.Config
	logger   *zap.Logger
	registry *themes.Registry
	site     services.SiteSettings
}

func (o *rootOptions) overrides() map[string]string {
	values := make(map[string]string)
	if v := strings.TrimSpace(o.baseURL); v != "" {
		values["GINVITE_SITE_BASE_URL"] = v
	}
	if v := strings.TrimSpace(o.timezone); v != "" {
		values["GINVITE_SITE_TIMEZONE"] = v
	}
	if v := strings.TrimSpace(o.logLevel); v != "" {
		values["GINVITE_LOG_LEVEL"] = v
	}
	return values
}

func (o *rootOptions) load(ctx context.Context) (context.Context, *cliRuntime, error) {
	cfg, err := config.Load(ctx, config.WithOptionalRemote(), config.WithEnvMap(o.overrides()))
	if err != nil {
		return ctx, nil, err
	}
	logger, err := observability.NewLogger(cfg.LogLevel)
	if err != nil {
		return ctx, nil, fmt.Errorf("initialise logger: %w", err)
	}
	logger = logger.Named("invitectl")
	metrics := observability.DefaultMetrics()
	registry, err := themes.NewDefaultRegistry(themes.WithMetrics(metrics))
	if err != nil {
		return ctx, nil, err
	}
	rt := &cliRuntime{
		cfg:      cfg,
		logger:   logger,
		registry: registry,
		site: services.SiteSettings{
			BaseURL:             cfg.Site.BaseURL,
			Location:            cfg.Site.Location,
			PlaceholderImageURL: cfg.Site.PlaceholderImageURL,
			CalendarURL:         cfg.Site.CalendarURL,
		},
	}
	return observability.WithLogger(ctx, logger), rt, nil
}

func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "" || path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return data, nil
}

func newPrepareCmd(root *rootOptions) *cobra.Command {
	var (
		file   string
		slug   string
		render bool
	)
	cmd := &cobra.Command{
		Use:   "prepare --file record.json [--slug SLUG] [--render]",
		Short: "Normalize one invitation record into its page view",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, rt, err := root.load(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = rt.logger.Sync() }()

			raw, err := readInput(cmd, file)
			if err != nil {
				return err
			}
			svc, err := services.NewInvitationService(services.InvitationServiceDeps{
				Themes: rt.registry,
				Site:   rt.site,
			})
			if err != nil {
				return err
			}
			view, err := svc.Prepare(ctx, domain.UnwrapRecord(raw), slug)
			if err != nil {
				return err
			}
			if render {
				return svc.RenderPage(ctx, cmd.OutOrStdout(), view)
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(view)
		},
	}
	cmd.Flags().StringVar(&file, "file", "-", "record file, or - for stdin")
	cmd.Flags().StringVar(&slug, "slug", "", "slug the record is served under")
	cmd.Flags().BoolVar(&render, "render", false, "write the guest page HTML instead of JSON")
	return cmd
}

func newSitemapCmd(root *rootOptions) *cobra.Command {
	var (
		file   string
		bucket string
		object string
	)
	cmd := &cobra.Command{
		Use:   "sitemap --file records.json [--bucket BUCKET --object NAME]",
		Short: "Build a sitemap from exported records",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, rt, err := root.load(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = rt.logger.Sync() }()

			raw, err := readInput(cmd, file)
			if err != nil {
				return err
			}
			records, err := domain.ParseRecordList(raw)
			if err != nil {
				return err
			}
			doc, err := services.NewSitemapBuilder(rt.site, rt.cfg.Sitemap.Workers, nil).BuildXML(ctx, records)
			if err != nil {
				return err
			}

			bucket = strings.TrimSpace(bucket)
			if bucket == "" {
				bucket = strings.TrimSpace(rt.cfg.Sitemap.Bucket)
			}
			if bucket == "" {
				_, err := cmd.OutOrStdout().Write(doc)
				return err
			}
			if object == "" {
				object = rt.cfg.Sitemap.Object
			}

			client, err := storage.NewGCSClient(ctx, storage.ClientOptions{})
			if err != nil {
				return err
			}
			defer client.Close()
			publisher, err := storage.NewPublisher(client)
			if err != nil {
				return err
			}
			target := storage.SitemapTarget{Publisher: publisher, Bucket: bucket, Object: object}
			if err := target.PublishSitemap(ctx, doc); err != nil {
				return err
			}
			rt.logger.Info("sitemap uploaded", zap.String("bucket", bucket), zap.String("object", object), zap.Int("records", len(records)))
			fmt.Fprintf(cmd.ErrOrStderr(), "uploaded gs://%s/%s (%d bytes)\n", bucket, strings.TrimLeft(object, "/"), len(doc))
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "-", "records file (array or {\"data\": [...]}), or - for stdin")
	cmd.Flags().StringVar(&bucket, "bucket", "", "upload to this Cloud Storage bucket instead of stdout")
	cmd.Flags().StringVar(&object, "object", "", "object name for the upload (default from GINVITE_SITEMAP_OBJECT)")
	return cmd
}

func newThemesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "themes",
		Short: "List registered themes and their category bindings",
		RunE: func(cmd *cobra.Command, args []string) error {
			registry, err := themes.NewDefaultRegistry()
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "KEY\tNAME\tCATEGORIES")
			for _, info := range registry.Themes() {
				fmt.Fprintf(w, "%s\t%s\t%s\n", info.Key, info.Name, strings.Join(info.Categories, ", "))
			}
			return w.Flush()
		},
	}
}
