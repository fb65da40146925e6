package bluraysup

import (
	"context"
	"io"
	"log/slog"

	"github.com/cockroachdb/errors"
	"github.com/ristryder/pgssup/common"
	"golang.org/x/sync/errgroup"
)

// CueStats summarizes one written cue for logging.
type CueStats struct {
	BitmapBytes  int
	ColorCount   int
	EndMs        int64
	Forced       bool
	Index        int
	SegmentBytes int
	Size         common.Size
	StartMs      int64
}

// SupWriter appends encoded cues to a .sup stream in the order they are given.
// A failed write leaves a partial stream behind which callers must discard.
type SupWriter struct {
	bytesWritten int64
	cuesWritten  int
	encoder      *Encoder
	logger       *slog.Logger
	w            io.Writer
}

// CueSource returns the cue at index. WriteFrom calls it from the worker that
// encodes the cue, so cues can be loaded lazily.
type CueSource func(index int) (Cue, error)

type encodeResult struct {
	cue     Cue
	encoded *EncodedCue
	index   int
}

func NewSupWriter(w io.Writer, encoder *Encoder) *SupWriter {
	return &SupWriter{encoder: encoder, logger: slog.New(slog.DiscardHandler), w: w}
}

func (s *SupWriter) BytesWritten() int64 {
	return s.bytesWritten
}

func (s *SupWriter) CuesWritten() int {
	return s.cuesWritten
}

func (s *SupWriter) SetLogger(logger *slog.Logger) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s.logger = logger
}

// WriteCue encodes and writes the next cue of the stream.
func (s *SupWriter) WriteCue(cue Cue) (CueStats, error) {
	index := s.cuesWritten
	encoded, encodeErr := s.encoder.EncodeCue(cue)
	if encodeErr != nil {
		return CueStats{}, &CueError{Index: index, Err: encodeErr}
	}

	return s.write(encodeResult{cue: cue, encoded: encoded, index: index})
}

// WriteAll writes cues in input order. With more than one worker cues are
// encoded concurrently, at most workers encoded cues are held in memory.
func (s *SupWriter) WriteAll(ctx context.Context, cues []Cue, workers int) ([]CueStats, error) {
	return s.WriteFrom(ctx, len(cues), func(index int) (Cue, error) {
		return cues[index], nil
	}, workers)
}

// WriteFrom writes count cues taken from source in index order. A cue is
// requested only once a worker slot is free, so at most workers cues are
// loaded or waiting to be written at any time.
func (s *SupWriter) WriteFrom(ctx context.Context, count int, source CueSource, workers int) ([]CueStats, error) {
	stats := make([]CueStats, 0, count)
	base := s.cuesWritten

	if workers <= 1 {
		for i := 0; i < count; i++ {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return stats, ctxErr
			}

			cue, loadErr := loadCue(source, i, base)
			if loadErr != nil {
				return stats, loadErr
			}

			cueStats, writeErr := s.WriteCue(cue)
			if writeErr != nil {
				return stats, writeErr
			}
			stats = append(stats, cueStats)
		}

		return stats, nil
	}

	pending := make([]chan encodeResult, count)
	for i := range pending {
		pending[i] = make(chan encodeResult, 1)
	}
	slots := make(chan struct{}, workers)

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		for i := 0; i < count; i++ {
			select {
			case slots <- struct{}{}:
			case <-groupCtx.Done():
				return nil
			}

			group.Go(func() error {
				cue, loadErr := loadCue(source, i, base)
				if loadErr != nil {
					return loadErr
				}

				encoded, encodeErr := s.encoder.EncodeCue(cue)
				if encodeErr != nil {
					return &CueError{Index: base + i, Err: encodeErr}
				}

				//the raster is not needed once the segments exist
				cue.Image = nil
				pending[i] <- encodeResult{cue: cue, encoded: encoded, index: base + i}

				return nil
			})
		}

		return nil
	})

	group.Go(func() error {
		for i := 0; i < count; i++ {
			select {
			case result := <-pending[i]:
				cueStats, writeErr := s.write(result)
				<-slots
				if writeErr != nil {
					return writeErr
				}
				stats = append(stats, cueStats)
			case <-groupCtx.Done():
				return groupCtx.Err()
			}
		}

		return nil
	})

	if waitErr := group.Wait(); waitErr != nil {
		return stats, waitErr
	}

	return stats, nil
}

func loadCue(source CueSource, i, base int) (Cue, error) {
	cue, err := source(i)
	if err != nil {
		var cueErr *CueError
		if errors.As(err, &cueErr) {
			return Cue{}, err
		}

		return Cue{}, &CueError{Index: base + i, Err: err}
	}

	return cue, nil
}

func (s *SupWriter) write(result encodeResult) (CueStats, error) {
	cue := result.cue
	bytesWritten, writeErr := s.w.Write(result.encoded.Data)
	s.bytesWritten += int64(bytesWritten)
	if writeErr != nil {
		return CueStats{}, &CueError{Index: result.index, Err: errors.Mark(errors.Wrap(writeErr, "failed to write segments"), ErrIOFailure)}
	}

	s.cuesWritten++

	stats := CueStats{
		BitmapBytes:  result.encoded.BitmapBytes,
		ColorCount:   result.encoded.ColorCount,
		EndMs:        cue.EndMs,
		Forced:       cue.Forced,
		Index:        result.index,
		SegmentBytes: len(result.encoded.Data),
		Size:         result.encoded.Size,
		StartMs:      cue.StartMs,
	}

	s.logger.Info("subtitle included",
		"subtitle", stats.Index+1,
		"start", common.TimeCode{TotalMilliseconds: cue.StartMs}.String(),
		"end", common.TimeCode{TotalMilliseconds: cue.EndMs}.String(),
		"forced", stats.Forced,
		"colors", stats.ColorCount,
		"size", stats.Size.String(),
		"bytes", stats.SegmentBytes,
		"bitmap_bytes", stats.BitmapBytes,
	)

	return stats, nil
}
