package effects_test

import (
	"fmt"

	"github.com/cwbudde/algo-grain/dsp/core"
	"github.com/cwbudde/algo-grain/dsp/effects"
)

func ExampleStereoDelay_Process() {
	params := effects.DelayParams{Mix: 1, Feedback: 0.5, TimeL: 0.02, TimeR: 0.03}

	d, err := effects.NewStereoDelay(100, params, effects.DefaultFeedbackParams(), nil, nil)
	if err != nil {
		fmt.Println("error")
		return
	}

	for i := 0; i < 7; i++ {
		in := core.StereoFrame{}
		if i == 0 {
			in = core.StereoFrame{L: 1, R: 1}
		}
		out := d.Process(in)
		fmt.Printf("%.2f %.2f\n", out.L, out.R)
	}
	// Output:
	// 0.00 0.00
	// 0.00 0.00
	// 1.00 0.00
	// 0.00 1.00
	// 0.50 0.00
	// 0.00 0.00
	// 0.25 0.50
}
