package main

import (
	"fmt"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/Belphemur/Subtirrent/internal/language"
	"github.com/Belphemur/Subtirrent/internal/models"
)

type probedTrack struct {
	Index    int    `json:"index"`
	Codec    string `json:"codec"`
	Language string `json:"language"`
	Name     string `json:"name"`
	Title    string `json:"title,omitempty"`
}

func newProbeCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool
	var ffprobePath string

	cmd := &cobra.Command{
		Use:   "probe <url>",
		Short: "List the subtitle tracks embedded in a media URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			probeCfg := *cfg
			if ffprobePath != "" {
				probeCfg.FFmpeg.FFprobePath = ffprobePath
			}

			streams, err := newProber(&probeCfg).Probe(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			tracks := subtitleTracks(streams)
			if jsonOutput {
				return writeJSON(cmd, tracks)
			}
			if len(tracks) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No subtitle tracks found")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTracks(tracks))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the tracks as JSON")
	cmd.Flags().StringVar(&ffprobePath, "ffprobe", "", "Override the ffprobe executable")
	return cmd
}

func subtitleTracks(streams []models.MediaStream) []probedTrack {
	tracks := []probedTrack{}
	for _, stream := range streams {
		if !stream.IsSubtitle() {
			continue
		}
		lang := language.Canonicalize(stream.Language)
		tracks = append(tracks, probedTrack{
			Index:    stream.Index,
			Codec:    stream.CodecName,
			Language: lang,
			Name:     language.DisplayName(lang),
			Title:    stream.Title,
		})
	}
	return tracks
}

func renderTracks(tracks []probedTrack) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Index", "Codec", "Language", "Name", "Title"})
	for _, track := range tracks {
		tw.AppendRow(table.Row{strconv.Itoa(track.Index), track.Codec, track.Language, track.Name, track.Title})
	}
	return tw.Render()
}
