package main

import (
	"bufio"
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/gofrs/flock"
	"github.com/ristryder/pgssup/bluraysup"
	"github.com/ristryder/pgssup/common"
	"github.com/ristryder/pgssup/manifest"
	"github.com/spf13/cobra"
)

const outputBufferSize = 1 << 20

const encodeLongHelp = `Build a .sup stream from a subtitle manifest.

Manifest structure:

<pgssup defaultoffset="0,920">
    <subtitle starttime="00:00:54.384" endtime="00:00:56.932" image="sub00000.png" />
    <subtitle starttime="00:00:59.837" endtime="00:01:01.411" offset="1000,50" image="sub00001.png" />
    <subtitle starttime="00:01:10.734" endtime="00:01:12.638" view="forced" image="sub00002.png" />
</pgssup>

defaultoffset: offset of subtitles without their own offset (default 0,0)
offset:        position of the subtitle on the video frame
view:          "forced" shows the subtitle even when subtitles are off
image:         PNG with at most 256 colors (255 if it has transparent pixels)

The output file is only replaced once every subtitle has been encoded.`

type encodeOptions struct {
	DefaultOffset common.Position
	ManifestPath  string
	OutputPath    string
	VideoSize     common.Size
	Workers       int
}

func newEncodeCommand(ctx *commandContext) *cobra.Command {
	var sizeFlag string
	var offsetFlag string
	var workersFlag int

	cmd := &cobra.Command{
		Use:   "encode <manifest.xml> <output.sup>",
		Short: "Build a .sup stream from a subtitle manifest",
		Long:  encodeLongHelp,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			opts := encodeOptions{
				ManifestPath: args[0],
				OutputPath:   args[1],
				VideoSize:    cfg.VideoSize(),
				Workers:      cfg.Encoding.Workers,
			}
			if opts.DefaultOffset, err = cfg.DefaultPosition(); err != nil {
				return err
			}

			if sizeFlag != "" {
				if opts.VideoSize, err = common.ParseSize(sizeFlag); err != nil {
					return errors.Wrap(err, "video size failed")
				}
			}
			if offsetFlag != "" {
				if opts.DefaultOffset, err = common.ParsePosition(offsetFlag); err != nil {
					return err
				}
			}
			if cmd.Flags().Changed("workers") {
				if workersFlag < 1 {
					return errors.Newf("--workers must be at least 1, got %d", workersFlag)
				}
				opts.Workers = workersFlag
			}

			logger, err := ctx.logger(cmd)
			if err != nil {
				return err
			}

			return runEncode(cmd.Context(), opts, logger)
		},
	}

	cmd.Flags().StringVarP(&sizeFlag, "size", "s", "", "Size of the video frame as WxH (default from config, 1920x1080)")
	cmd.Flags().StringVar(&offsetFlag, "offset", "", "Offset x,y for subtitles without one when the manifest has no defaultoffset")
	cmd.Flags().IntVarP(&workersFlag, "workers", "w", 0, "Number of subtitles encoded concurrently (default from config)")

	return cmd
}

func runEncode(ctx context.Context, opts encodeOptions, logger *slog.Logger) error {
	logger.Info("parsing manifest", "path", opts.ManifestPath)

	m, err := manifest.Load(opts.ManifestPath)
	if err != nil {
		return err
	}

	encoder, err := bluraysup.NewEncoder(opts.VideoSize)
	if err != nil {
		return err
	}

	lock := flock.New(opts.OutputPath + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return errors.Mark(errors.Wrapf(err, "failed to lock %s", opts.OutputPath), bluraysup.ErrIOFailure)
	}
	if !locked {
		return errors.Newf("%s is being written by another process", opts.OutputPath)
	}
	defer func() {
		_ = lock.Unlock()
		_ = os.Remove(lock.Path())
	}()

	logger.Info("encoding subtitles", "subtitles", len(m.Entries), "video_size", opts.VideoSize.String(), "workers", opts.Workers)

	return writeStream(ctx, opts, m, encoder, logger)
}

// writeStream writes into a temporary file next to the output and renames it
// into place, a failed run never leaves a partial stream at OutputPath.
func writeStream(ctx context.Context, opts encodeOptions, m *manifest.Manifest, encoder *bluraysup.Encoder, logger *slog.Logger) (err error) {
	file, err := os.CreateTemp(filepath.Dir(opts.OutputPath), "."+filepath.Base(opts.OutputPath)+".*.tmp")
	if err != nil {
		return errors.Mark(errors.Wrap(err, "failed to create output file"), bluraysup.ErrIOFailure)
	}
	defer func() {
		if err != nil {
			_ = file.Close()
			_ = os.Remove(file.Name())
		}
	}()

	buffered := bufio.NewWriterSize(file, outputBufferSize)
	writer := bluraysup.NewSupWriter(buffered, encoder)
	writer.SetLogger(logger)

	if _, err = writer.WriteFrom(ctx, len(m.Entries), m.CueSource(opts.DefaultOffset), opts.Workers); err != nil {
		return err
	}

	if err = buffered.Flush(); err != nil {
		return errors.Mark(errors.Wrap(err, "failed to flush output file"), bluraysup.ErrIOFailure)
	}
	if err = file.Chmod(0o644); err != nil {
		return errors.Mark(errors.Wrap(err, "failed to set output file mode"), bluraysup.ErrIOFailure)
	}
	if err = file.Close(); err != nil {
		return errors.Mark(errors.Wrap(err, "failed to close output file"), bluraysup.ErrIOFailure)
	}
	if err = os.Rename(file.Name(), opts.OutputPath); err != nil {
		return errors.Mark(errors.Wrapf(err, "failed to move output into %s", opts.OutputPath), bluraysup.ErrIOFailure)
	}

	logger.Info("stream written", "path", opts.OutputPath, "subtitles", writer.CuesWritten(), "bytes", writer.BytesWritten())

	return nil
}
