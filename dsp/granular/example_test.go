package granular_test

import (
	"fmt"

	"github.com/cwbudde/algo-grain/dsp/core"
	"github.com/cwbudde/algo-grain/dsp/granular"
	"github.com/cwbudde/algo-grain/source"
)

func ExampleEngine() {
	decoder := source.DecoderFunc(func(path string) (*source.Buffer, error) {
		frames := make([]core.StereoFrame, 48000)
		for i := range frames {
			frames[i] = core.Mono(0.5)
		}
		return &source.Buffer{Path: path, Frames: frames, SampleRate: 48000}, nil
	})

	params := core.NewMailbox[granular.Params]()
	gate := core.NewMailbox[bool]()

	engine, err := granular.NewEngine("loop.wav", params, gate, nil, granular.WithDecoder(decoder))
	if err != nil {
		panic(err)
	}
	defer engine.Close()

	if err := engine.Init(); err != nil {
		panic(err)
	}

	p := granular.DefaultParams()
	p.Density = 48
	params.Send(p)
	gate.Send(true)

	block := make([]core.StereoFrame, 4800)
	engine.ProcessBlock(block)

	size, _ := engine.BufferSize()
	fmt.Println("frames:", size)
	fmt.Println("grains:", engine.ActiveGrains())
	// Output:
	// frames: 48000
	// grains: 4
}
