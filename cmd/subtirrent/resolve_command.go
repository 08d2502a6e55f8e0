package main

import (
	"github.com/spf13/cobra"

	"github.com/Belphemur/Subtirrent/internal/config"
	"github.com/Belphemur/Subtirrent/internal/models"
)

func newResolveCommand(ctx *commandContext) *cobra.Command {
	var (
		mediaID  string
		filename string
		size     int64
		apiKey   string
		format   string
		langs    []string
	)

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve the embedded subtitles of a debrid-hosted media file once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if apiKey == "" {
				apiKey = cfg.Debrid.APIKey
			}
			if format == "" {
				format = cfg.Subtitle.Format
			}
			if len(langs) == 0 {
				langs = cfg.Subtitle.PreferredLanguages
			}

			rt, err := newPipelineRuntime(cfg)
			if err != nil {
				return err
			}
			defer func() {
				if err := rt.Close(); err != nil {
					logger := config.GetLogger()
					logger.Error().Err(err).Msg("Failed to release resources")
				}
			}()

			resp := rt.pipeline.ResolveSubtitles(cmd.Context(), models.ResolveRequest{
				MediaID:            mediaID,
				Filename:           filename,
				SizeHint:           size,
				APIKey:             apiKey,
				Format:             models.OutputFormat(format),
				PreferredLanguages: langs,
			})
			return writeJSON(cmd, resp)
		},
	}

	cmd.Flags().StringVar(&mediaID, "media-id", "", "Media identifier, e.g. tt0903747:1:2")
	cmd.Flags().StringVar(&filename, "filename", "", "Optional filename hint")
	cmd.Flags().Int64Var(&size, "size", 0, "Expected file size in bytes")
	cmd.Flags().StringVar(&apiKey, "api-key", "", "Debrid API key (defaults to debrid.api_key)")
	cmd.Flags().StringVar(&format, "format", "", "Output format, srt or vtt (defaults to subtitle.format)")
	cmd.Flags().StringSliceVar(&langs, "lang", nil, "Preferred languages, repeatable")
	_ = cmd.MarkFlagRequired("media-id")
	_ = cmd.MarkFlagRequired("size")

	return cmd
}
