package profile

import (
	"sort"
	"strconv"
	"strings"
)

// Step is one entry of a manual power schedule: apply Power (percent)
// once the bean temperature reaches Temp or the clock reaches Time
// (minutes), whichever the roaster hits first.
type Step struct {
	Temp  float64
	Time  float64
	Power float64
}

// ParseSteps parses schedule entries of the form "temp,mm:ss,power", e.g.
// "140,4:50,80". Whitespace and semicolons are tolerated, seconds are
// optional, and entries that do not parse are skipped. The result is
// sorted by temperature.
func ParseSteps(entries []string) []Step {
	steps := make([]Step, 0, len(entries))

	for _, entry := range entries {
		cleaned := strings.NewReplacer(" ", "", ";", ",").Replace(strings.TrimSpace(entry))
		fields := strings.Split(cleaned, ",")
		if len(fields) < 3 {
			continue
		}

		temp, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			continue
		}

		clock := strings.Split(fields[1], ":")
		minutes, err := strconv.ParseFloat(clock[0], 64)
		if err != nil {
			continue
		}
		if len(clock) > 1 {
			secs, err := strconv.ParseFloat(clock[1], 64)
			if err != nil {
				continue
			}
			minutes += secs / 60
		}

		power, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			continue
		}

		if temp <= 0 && minutes <= 0 {
			continue
		}

		steps = append(steps, Step{Temp: temp, Time: minutes, Power: power})
	}

	sort.Slice(steps, func(i, j int) bool { return steps[i].Temp < steps[j].Temp })
	return steps
}
