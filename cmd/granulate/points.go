package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cwbudde/algo-grain/dsp/granular"
)

// parsePoints reads "x,y;x,y;..." into a point set.
func parsePoints(s string) ([]granular.Point, error) {
	var out []granular.Point
	for _, field := range strings.Split(s, ";") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}

		xs, ys, ok := strings.Cut(field, ",")
		if !ok {
			return nil, fmt.Errorf("point %q: want x,y", field)
		}

		x, err := strconv.ParseFloat(strings.TrimSpace(xs), 32)
		if err != nil {
			return nil, fmt.Errorf("point %q: %w", field, err)
		}
		y, err := strconv.ParseFloat(strings.TrimSpace(ys), 32)
		if err != nil {
			return nil, fmt.Errorf("point %q: %w", field, err)
		}

		pt := granular.Point{X: float32(x), Y: float32(y)}
		if !pt.Finite() {
			return nil, fmt.Errorf("point %q: not finite", field)
		}
		out = append(out, pt)
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("no points in %q", s)
	}
	return out, nil
}
