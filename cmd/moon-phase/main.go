package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/chrissnell/waqt/pkg/lunar"
	"github.com/chrissnell/waqt/pkg/sky"
	"github.com/chrissnell/waqt/pkg/timefmt"
)

func main() {
	var (
		timeStr string
		lat     float64
		lon     float64
		zone    string
	)
	flag.StringVar(&timeStr, "time", "", "Time to calculate phase for (RFC3339 format, e.g., 2024-01-15T12:00:00Z)")
	flag.Float64Var(&lat, "lat", 0, "Observer latitude; with -lon enables orientation and rise/set progress")
	flag.Float64Var(&lon, "lon", 0, "Observer longitude")
	flag.StringVar(&zone, "tz", "UTC", "IANA time zone used for moonrise and moonset days")
	flag.Parse()

	loc, err := time.LoadLocation(zone)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading time zone: %v\n", err)
		os.Exit(1)
	}

	var t time.Time
	if timeStr == "" {
		t = time.Now().UTC()
	} else {
		t, err = time.Parse(time.RFC3339, timeStr)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing time: %v\n", err)
			os.Exit(1)
		}
	}

	observer := lat != 0 || lon != 0

	var phase lunar.MoonPhase
	if observer {
		phase = lunar.Phase(t, lat, lon)
	} else {
		phase = lunar.GeocentricPhase(t)
	}

	fmt.Printf("Moon Phase for %s\n", t.Format(time.RFC3339))
	fmt.Printf("  Phase:        %.1f%% (%.4f)\n", phase.Phase*100, phase.Phase)
	fmt.Printf("  Phase Name:   %s\n", phase.Name())
	fmt.Printf("  Illumination: %.1f%%\n", phase.Fraction*100)
	fmt.Printf("  Age:          %.1f days\n", phase.AgeDays())
	if phase.Waxing() {
		fmt.Printf("  Direction:    Waxing\n")
	} else {
		fmt.Printf("  Direction:    Waning\n")
	}
	fmt.Printf("  Shadow:       %s\n", lunar.ShadowPath(phase.Phase))

	if !observer {
		return
	}

	limb := lunar.Limb(phase, lat)
	progress := lunar.ComputeMoonPosition(t.In(loc), lat, lon, nil)
	fmt.Printf("  Rotation:     %.1f° (scaleX %.0f)\n", limb.Rotation, limb.ScaleX)
	if progress <= 1 {
		fmt.Printf("  Orbit:        %.3f (above horizon, altitude %.2f)\n", progress, sky.Altitude(progress))
	} else {
		fmt.Printf("  Orbit:        %.3f (below horizon)\n", progress)
	}

	rs := lunar.SuncalcRiseSet(t.In(loc), lat, lon)
	if !rs.Rise.IsZero() {
		fmt.Printf("  Moonrise:     %s\n", timefmt.Widget(rs.Rise.In(loc)))
	}
	if !rs.Set.IsZero() {
		fmt.Printf("  Moonset:      %s\n", timefmt.Widget(rs.Set.In(loc)))
	}
}
