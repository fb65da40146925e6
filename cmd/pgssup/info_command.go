package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/ristryder/pgssup/bluraysup"
	"github.com/ristryder/pgssup/common"
	"github.com/ristryder/pgssup/interfaces"
	"github.com/spf13/cobra"
)

type colorCounter interface {
	ColorCount() int
}

func newInfoCommand(ctx *commandContext) *cobra.Command {
	var segmentsFlag bool

	cmd := &cobra.Command{
		Use:   "info <file.sup>",
		Short: "List the subtitles or segments of a .sup stream",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stream, err := common.NewFileStream(args[0])
			if err != nil {
				return errors.Mark(err, bluraysup.ErrIOFailure)
			}
			defer stream.Close()

			logger, err := ctx.logger(cmd)
			if err != nil {
				return err
			}
			logger.Debug("stream opened", "path", args[0], "bytes", stream.Size(), "memory_mapped", stream.IsMemoryMapped())

			out := cmd.OutOrStdout()
			if segmentsFlag {
				return printSegments(out, stream.Bytes())
			}

			displaySets, err := bluraysup.ParseBluRaySup(stream.Bytes(), bluraysup.ColorModelFullRange)
			if err != nil {
				return errors.Mark(errors.Wrapf(err, "failed to read %s", args[0]), bluraysup.ErrMalformedInput)
			}

			paragraphs := make([]interfaces.BinaryParagraphWithPosition, 0, len(displaySets))
			for i := range displaySets {
				paragraphs = append(paragraphs, &displaySets[i])
			}

			return printParagraphs(out, paragraphs)
		},
	}

	cmd.Flags().BoolVar(&segmentsFlag, "segments", false, "List every segment header instead of subtitles")

	return cmd
}

func printParagraphs(out io.Writer, paragraphs []interfaces.BinaryParagraphWithPosition) error {
	headers := []string{"#", "Start", "End", "Forced", "Position", "Size", "Colors", "Screen"}
	aligns := []columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight}

	rows := make([][]string, 0, len(paragraphs))
	for i, paragraph := range paragraphs {
		size := "-"
		if bitmap := paragraph.GetBitmap(); bitmap != nil {
			bounds := bitmap.Bounds()
			size = common.Size{Height: bounds.Dy(), Width: bounds.Dx()}.String()
		}

		colors := "-"
		if counter, ok := paragraph.(colorCounter); ok {
			colors = strconv.Itoa(counter.ColorCount())
		}

		forced := "no"
		if paragraph.IsForced() {
			forced = "yes"
		}

		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			paragraph.StartTimeCode().String(),
			paragraph.EndTimeCode().String(),
			forced,
			paragraph.Position().String(),
			size,
			colors,
			paragraph.ScreenSize().String(),
		})
	}

	if _, err := fmt.Fprintln(out, renderTable(out, headers, rows, aligns)); err != nil {
		return err
	}
	_, err := fmt.Fprintf(out, "%d subtitles\n", len(paragraphs))
	return err
}

func printSegments(out io.Writer, buffer []byte) error {
	segments, err := bluraysup.ReadSegments(buffer)
	if err != nil {
		return errors.Mark(err, bluraysup.ErrMalformedInput)
	}

	headers := []string{"Offset", "Type", "PTS", "DTS", "Length"}
	aligns := []columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignRight}

	rows := make([][]string, 0, len(segments))
	for _, segment := range segments {
		rows = append(rows, []string{
			strconv.Itoa(segment.Offset),
			segment.Type.String(),
			bluraysup.PtsToTimeString(segment.PtsTimestamp),
			bluraysup.PtsToTimeString(segment.DtsTimestamp),
			strconv.Itoa(segment.Size),
		})
	}

	if _, err := fmt.Fprintln(out, renderTable(out, headers, rows, aligns)); err != nil {
		return err
	}
	_, err = fmt.Fprintf(out, "%d segments\n", len(segments))
	return err
}
