// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package heading turns NMEA compass and GPS sentences into the alpha
// angle of the orientation widget.
package heading

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"math"
	"strings"

	nmea "github.com/adrianmo/go-nmea"
	serial "github.com/jacobsa/go-serial/serial"
	"go.uber.org/zap"

	"github.com/relabs-tech/orientation_widget/internal/logging"
	"github.com/relabs-tech/orientation_widget/internal/orientation"
)

// Reading is a heading in degrees clockwise from true north.
type Reading struct {
	Heading  float64 `json:"heading"`
	Sentence string  `json:"sentence"` // NMEA data type, e.g. "HDT"
}

// ParseSentence extracts a heading from one NMEA line. ok is false for
// sentence types without a heading and for fixes flagged invalid.
func ParseSentence(line string) (r Reading, ok bool, err error) {
	sentence, err := nmea.Parse(line)
	if err != nil {
		return Reading{}, false, err
	}

	switch sentence.DataType() {
	case nmea.TypeHDT:
		m := sentence.(nmea.HDT)
		return Reading{Heading: m.Heading, Sentence: nmea.TypeHDT}, true, nil
	case nmea.TypeTHS:
		m := sentence.(nmea.THS)
		if m.Status == nmea.InvalidTHS {
			return Reading{}, false, nil
		}
		return Reading{Heading: m.Heading, Sentence: nmea.TypeTHS}, true, nil
	case nmea.TypeRMC:
		// course over ground stands in for heading on plain GPS receivers
		m := sentence.(nmea.RMC)
		if m.Validity != nmea.ValidRMC {
			return Reading{}, false, nil
		}
		return Reading{Heading: m.Course, Sentence: nmea.TypeRMC}, true, nil
	default:
		return Reading{}, false, nil
	}
}

// Alpha converts a compass heading to device alpha, which grows
// counter-clockwise. The result is in [0, 360).
func Alpha(heading float64) float64 {
	a := math.Mod(360-heading, 360)
	if a < 0 {
		a += 360
	}
	if a >= 360 {
		a = 0
	}
	return a
}

// Apply returns current with alpha taken from r.
func Apply(current orientation.DeviceOrientation, r Reading) orientation.DeviceOrientation {
	current.Alpha = Alpha(r.Heading)
	return current
}

// Feed reads NMEA lines from src and calls fn for every heading. It
// returns nil at end of input or when ctx is cancelled; closing src is up
// to the caller.
func Feed(ctx context.Context, src io.Reader, logger *zap.Logger, fn func(Reading)) error {
	logger = logging.OrNop(logger)
	scanner := bufio.NewScanner(src)

	for scanner.Scan() {
		if ctx.Err() != nil {
			return nil
		}

		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "$") {
			continue
		}

		r, ok, err := ParseSentence(line)
		if err != nil {
			// partial sentences are normal right after the port opens
			logger.Debug("nmea parse error", zap.String("line", line), zap.Error(err))
			continue
		}
		if ok {
			fn(r)
		}
	}

	if err := scanner.Err(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("read heading feed: %w", err)
	}
	return nil
}

// OpenSerial opens a compass or GPS serial port with 8N1 framing.
func OpenSerial(port string, baud uint) (io.ReadWriteCloser, error) {
	opts := serial.OpenOptions{
		PortName:              port,
		BaudRate:              baud,
		DataBits:              8,
		StopBits:              1,
		MinimumReadSize:       1,
		ParityMode:            serial.PARITY_NONE,
		InterCharacterTimeout: 0,
	}

	rw, err := serial.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open serial port %s: %w", port, err)
	}
	return rw, nil
}
