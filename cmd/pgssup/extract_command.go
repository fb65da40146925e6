package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/anthonynsimon/bild/imgio"
	"github.com/cockroachdb/errors"
	"github.com/ristryder/pgssup/bluraysup"
	"github.com/ristryder/pgssup/common"
	"github.com/ristryder/pgssup/manifest"
	"github.com/spf13/cobra"
)

const extractedManifestName = "subtitles.xml"

func newExtractCommand(ctx *commandContext) *cobra.Command {
	var colorModelFlag string

	cmd := &cobra.Command{
		Use:   "extract <file.sup> <directory>",
		Short: "Write the subtitles of a .sup stream as PNG images plus a manifest",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			modelName := cfg.Extract.ColorModel
			if colorModelFlag != "" {
				modelName = colorModelFlag
			}
			colorModel, err := bluraysup.ParseColorModel(modelName)
			if err != nil {
				return err
			}

			logger, err := ctx.logger(cmd)
			if err != nil {
				return err
			}

			stream, err := common.NewFileStream(args[0])
			if err != nil {
				return errors.Mark(err, bluraysup.ErrIOFailure)
			}
			defer stream.Close()

			displaySets, err := bluraysup.ParseBluRaySup(stream.Bytes(), colorModel)
			if err != nil {
				return errors.Mark(errors.Wrapf(err, "failed to read %s", args[0]), bluraysup.ErrMalformedInput)
			}

			dir, err := filepath.Abs(args[1])
			if err != nil {
				return errors.Wrapf(err, "failed to resolve %s", args[1])
			}
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return errors.Mark(errors.Wrapf(err, "failed to create %s", dir), bluraysup.ErrIOFailure)
			}

			extracted := &manifest.Manifest{Dir: dir}
			for i := range displaySets {
				displaySet := &displaySets[i]

				bitmap, err := displaySet.Bitmap()
				if err != nil {
					return errors.Wrapf(err, "subtitle %d", i+1)
				}

				imagePath := filepath.Join(dir, fmt.Sprintf("sub%05d.png", i))
				if err := imgio.Save(imagePath, bitmap, imgio.PNGEncoder()); err != nil {
					return errors.Mark(errors.Wrapf(err, "failed to write %s", imagePath), bluraysup.ErrIOFailure)
				}

				extracted.AddEntry(displaySet.StartTimeCode(), displaySet.EndTimeCode(), imagePath, displaySet.Position(), displaySet.IsForced())
				logger.Debug("subtitle extracted", "subtitle", i+1, "image", imagePath, "colors", displaySet.ColorCount())
			}

			manifestPath := filepath.Join(dir, extractedManifestName)
			if err := writeManifest(manifestPath, extracted); err != nil {
				return err
			}

			screenSize := "-"
			if len(displaySets) > 0 {
				screenSize = displaySets[0].ScreenSize().String()
			}
			logger.Info("subtitles extracted", "subtitles", len(displaySets), "manifest", manifestPath, "video_size", screenSize, "color_model", colorModel.String())

			return nil
		},
	}

	cmd.Flags().StringVar(&colorModelFlag, "color-model", "", "YCbCr to RGB conversion: full, bt601 or bt709 (default from config)")

	return cmd
}

func writeManifest(path string, m *manifest.Manifest) error {
	file, err := os.Create(path)
	if err != nil {
		return errors.Mark(errors.Wrapf(err, "failed to create %s", path), bluraysup.ErrIOFailure)
	}

	if err := m.Encode(file); err != nil {
		_ = file.Close()
		return errors.Mark(err, bluraysup.ErrIOFailure)
	}

	if err := file.Close(); err != nil {
		return errors.Mark(errors.Wrapf(err, "failed to close %s", path), bluraysup.ErrIOFailure)
	}

	return nil
}
