package analysis_test

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-grain/dsp/core"
	"github.com/cwbudde/algo-grain/measure/analysis"
)

func ExampleAnalyze() {
	const sampleRate = 48000.0
	frames := make([]core.StereoFrame, 4096)
	for i := range frames {
		frames[i] = core.Mono(float32(0.25 * math.Sin(2*math.Pi*750*float64(i)/sampleRate)))
	}

	res, err := analysis.Analyze(frames, analysis.Config{SampleRate: sampleRate})
	if err != nil {
		panic(err)
	}

	fmt.Printf("dominant: %.0f Hz\n", res.DominantFreq)
	fmt.Printf("peak: %.1f dBFS\n", res.PeakDB)
	// Output:
	// dominant: 750 Hz
	// peak: -12.0 dBFS
}
