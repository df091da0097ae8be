// Package present turns raw generator output into human-scaled values and text.
package present

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/pthm-cable/rtg/fuel"
	"github.com/pthm-cable/rtg/settings"
)

// Format scales rawOutput for display. In electricity mode the value is the
// converted electric output; otherwise it is the raw heat output. Values below
// 1 are shown per minute, everything else per second.
func Format(rawOutput, efficiency float64, s *settings.Settings) (float64, string) {
	scaled := rawOutput
	unit := s.HeatUnits
	if s.GenerateElectricity {
		scaled = rawOutput * efficiency * s.ElectricityScale
		unit = s.ElectricityUnits
	}

	if scaled < 1 {
		scaled *= 60
		unit += "/min"
	} else {
		unit += "/s"
	}

	return math.Round(scaled*100) / 100, unit
}

// Display renders a formatted value with at most two decimals and no
// trailing zeros.
func Display(value float64) string {
	return strconv.FormatFloat(math.Round(value*100)/100, 'f', -1, 64)
}

// PowerDensity returns a fuel's pep scaled for display.
func PowerDensity(pep float64, s *settings.Settings) float64 {
	return pep * s.PowerDensityFactor
}

// Info describes a generator model and every fuel it accepts.
func Info(reg *fuel.Registry, s *settings.Settings, efficiency, volume float64) string {
	var sb strings.Builder
	sb.WriteString("Output decays over time.\n\n")
	fmt.Fprintf(&sb, "Efficiency: %s%%\n", Display(efficiency*100))
	fmt.Fprintf(&sb, "Volume: %s dL\n\n", Display(volume))

	sb.WriteString("Available fuels:")
	if reg.Len() == 0 {
		sb.WriteString(" none")
	}
	for _, c := range reg.Configs() {
		fmt.Fprintf(&sb, "\n    %s (%s)\n", c.ResourceName, c.ResourceAbbr)
		fmt.Fprintf(&sb, "        half-life: %s years\n", strconv.FormatFloat(c.HalflifeYears, 'g', 6, 64))
		fmt.Fprintf(&sb, "        %s: %s %s", s.PowerDensityLabel,
			strconv.FormatFloat(PowerDensity(c.Pep, s), 'g', 6, 64), s.PowerDensityUnits)
	}
	return sb.String()
}
