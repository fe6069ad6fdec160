package waveform_test

import (
	"fmt"

	"github.com/cwbudde/pwmfft/stats/waveform"
)

func ExampleCalculate() {
	s := waveform.Calculate([]float64{5, 5, 0, 0, 5, 5, 0, 0}, 8)
	fmt.Printf("dc=%.1f duty=%.2f rising=%d f=%.0f\n", s.DC, s.DutyCycle, s.RisingEdges, s.SwitchingHz)

	// Output:
	// dc=2.5 duty=0.50 rising=1 f=0
}
