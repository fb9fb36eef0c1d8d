package recording

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

var (
	// ErrTooShort is returned for recordings below the minimum duration
	ErrTooShort = errors.New("recording is too short")

	// ErrSilent is returned for recordings without any signal
	ErrSilent = errors.New("recording is silent")

	// ErrCorrupt is returned for files that claim to be WAV but cannot be decoded
	ErrCorrupt = errors.New("recording is corrupt")
)

// silenceThreshold is the peak amplitude (as a fraction of full scale)
// under which a recording counts as silent
const silenceThreshold = 0.001

// Info describes a checked recording
type Info struct {
	Duration   time.Duration
	SampleRate int
	Channels   int
	Checked    bool // False when the format is not inspected (non-WAV)
}

// Validate checks a recording before it is submitted. Only WAV files are
// inspected; other formats are passed through for the service to judge.
func Validate(path string, minDuration time.Duration) (Info, error) {
	if !strings.EqualFold(filepath.Ext(path), ".wav") {
		if _, err := os.Stat(path); err != nil {
			return Info{}, fmt.Errorf("failed to stat recording: %w", err)
		}
		return Info{}, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return Info{}, fmt.Errorf("failed to open recording: %w", err)
	}
	defer f.Close()

	decoder := wav.NewDecoder(f)
	if !decoder.IsValidFile() {
		return Info{}, ErrCorrupt
	}

	if err := decoder.FwdToPCM(); err != nil {
		return Info{}, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}

	info := Info{
		SampleRate: int(decoder.SampleRate),
		Channels:   int(decoder.NumChans),
		Checked:    true,
	}

	frameSize := int(decoder.NumChans) * int(decoder.BitDepth) / 8
	if frameSize <= 0 || decoder.SampleRate == 0 {
		return info, fmt.Errorf("%w: invalid format", ErrCorrupt)
	}
	frames := decoder.PCMSize / frameSize
	info.Duration = time.Duration(frames) * time.Second / time.Duration(decoder.SampleRate)

	if info.Duration < minDuration {
		return info, fmt.Errorf("%w: %s < %s", ErrTooShort, info.Duration.Round(time.Millisecond), minDuration)
	}

	silent, err := isSilent(decoder)
	if err != nil {
		return info, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if silent {
		return info, ErrSilent
	}

	return info, nil
}

// isSilent scans the PCM data in chunks and stops at the first sample
// above the silence threshold
func isSilent(decoder *wav.Decoder) (bool, error) {
	bitDepth := int(decoder.BitDepth)
	if bitDepth <= 0 {
		return false, fmt.Errorf("invalid bit depth %d", bitDepth)
	}
	threshold := silenceThreshold * float64(int64(1)<<(uint(bitDepth)-1))

	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: int(decoder.NumChans),
			SampleRate:  int(decoder.SampleRate),
		},
		Data:           make([]int, 4096),
		SourceBitDepth: bitDepth,
	}

	for {
		n, err := decoder.PCMBuffer(buf)
		if err != nil {
			return false, err
		}
		if n == 0 {
			return true, nil
		}
		for _, v := range buf.Data[:n] {
			if v < 0 {
				v = -v
			}
			if float64(v) > threshold {
				return false, nil
			}
		}
	}
}
