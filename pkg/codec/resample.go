package codec

// Resample converts a slice of int16 samples from fromRate to toRate using
// linear interpolation. Output length is floor(len(samples) * toRate /
// fromRate). Returns the input unchanged when the rates are equal, and
// rejects non-positive rates.
//
// Grounded on square-key-labs-strawgo-ai/src/audio/converter.go's Resample,
// generalized to match the spec's exact output-length contract (that
// implementation computes length via division by the inverse ratio, which
// rounds differently at the boundary; this one computes the length spec
// mandates directly).
func Resample(samples []int16, fromRate, toRate int) ([]int16, error) {
	if fromRate <= 0 || toRate <= 0 {
		return nil, ErrInvalidSampleRate
	}
	if fromRate == toRate {
		return samples, nil
	}
	if len(samples) == 0 {
		return []int16{}, nil
	}

	outLen := len(samples) * toRate / fromRate
	out := make([]int16, outLen)
	ratio := float64(fromRate) / float64(toRate)

	for i := 0; i < outLen; i++ {
		srcPos := float64(i) * ratio
		srcIdx := int(srcPos)
		frac := srcPos - float64(srcIdx)

		if srcIdx+1 < len(samples) {
			s1 := float64(samples[srcIdx])
			s2 := float64(samples[srcIdx+1])
			out[i] = int16(s1 + (s2-s1)*frac)
		} else {
			out[i] = samples[len(samples)-1]
		}
	}

	return out, nil
}
