package audio

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	silenceStartRe = regexp.MustCompile(`silence_start:\s*(-?[\d.]+)`)
	silenceEndRe   = regexp.MustCompile(`silence_end:\s*([\d.]+)`)
	durationRe     = regexp.MustCompile(`Duration:\s*(\d+):(\d+):(\d+)\.(\d+)`)
)

// ParseSilences extracts silence spans from ffmpeg silencedetect output:
//
//	[silencedetect @ 0x...] silence_start: 4.0
//	[silencedetect @ 0x...] silence_end: 4.7 | silence_duration: 0.7
//
// A trailing start without an end is returned with End = -1.
func ParseSilences(output string) []Silence {
	var silences []Silence
	open := false
	var current Silence

	for _, line := range strings.Split(output, "\n") {
		if m := silenceStartRe.FindStringSubmatch(line); m != nil {
			v, err := strconv.ParseFloat(m[1], 64)
			if err != nil {
				continue
			}
			if v < 0 {
				v = 0
			}
			current = Silence{Start: v, End: -1}
			open = true
			continue
		}
		if m := silenceEndRe.FindStringSubmatch(line); m != nil && open {
			v, err := strconv.ParseFloat(m[1], 64)
			if err != nil {
				continue
			}
			current.End = v
			silences = append(silences, current)
			open = false
		}
	}
	if open {
		silences = append(silences, current)
	}
	return silences
}

// ParseDuration extracts the input duration in seconds from ffmpeg's
// "Duration: HH:MM:SS.ff" banner line.
func ParseDuration(output string) (float64, bool) {
	m := durationRe.FindStringSubmatch(output)
	if m == nil {
		return 0, false
	}
	h, _ := strconv.Atoi(m[1])
	mins, _ := strconv.Atoi(m[2])
	s, _ := strconv.Atoi(m[3])
	frac, _ := strconv.ParseFloat("0."+m[4], 64)
	return float64(h*3600+mins*60+s) + frac, true
}
