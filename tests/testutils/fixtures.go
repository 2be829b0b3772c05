package testutils

import (
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/farcloser/ringdown/internal/wavfile"
)

// SampleRate is used by every generated fixture.
const SampleRate = 48000

// RingDown synthesizes an exponentially decaying sinusoid: amplitude 0.8, frequency f0 in Hz,
// decay constant tau in seconds.
func RingDown(f0, tau, seconds float64) []float64 {
	count := int(seconds * SampleRate)
	samples := make([]float64, count)

	for i := range samples {
		t := float64(i) / SampleRate
		samples[i] = 0.8 * math.Exp(-t/tau) * math.Sin(2*math.Pi*f0*t)
	}

	return samples
}

// WriteWAV stores samples as a mono WAV file in dir and returns its path.
func WriteWAV(tb testing.TB, dir, name string, samples []float64, bitDepth int) string {
	tb.Helper()

	path := filepath.Join(dir, name)

	file, err := os.Create(path)
	if err != nil {
		tb.Fatalf("creating %s: %v", path, err)
	}
	defer file.Close()

	if err := wavfile.Write(file, samples, SampleRate, bitDepth); err != nil {
		tb.Fatalf("writing %s: %v", path, err)
	}

	return path
}

// WritePCM16 stores samples as headerless 16-bit little-endian mono PCM and returns its path.
func WritePCM16(tb testing.TB, dir, name string, samples []float64) string {
	tb.Helper()

	data := make([]byte, 2*len(samples))
	for i, sample := range samples {
		value := int16(math.Round(max(-1, min(1, sample)) * math.MaxInt16))
		binary.LittleEndian.PutUint16(data[2*i:], uint16(value)) //nolint:gosec // two's complement reinterpretation
	}

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		tb.Fatalf("writing %s: %v", path, err)
	}

	return path
}

// WriteFile stores arbitrary content (CSV spectra, YAML configs) and returns its path.
func WriteFile(tb testing.TB, dir, name, content string) string {
	tb.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		tb.Fatalf("writing %s: %v", path, err)
	}

	return path
}

// LorentzianCSV renders a magnitude spectrum peaking at f0 with the given half-power width.
func LorentzianCSV(f0, width float64) string {
	var csv strings.Builder

	csv.WriteString("frequency_hz,magnitude\n")

	half := width / 2
	for i := range 2001 {
		freq := f0 - 50 + float64(i)*0.05
		diff := freq - f0
		mag := 1 / math.Sqrt(1+diff*diff/(half*half))
		csv.WriteString(strconv.FormatFloat(freq, 'f', 3, 64) + "," + strconv.FormatFloat(mag, 'g', 8, 64) + "\n")
	}

	return csv.String()
}
