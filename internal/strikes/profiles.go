package strikes

import (
	"fmt"
	"strings"

	wheelerr "github.com/quantwheel/options-wheel-bot/internal/errors"
)

// Profile selects how far out of the money the optimizer hunts for strikes.
type Profile string

const (
	ProfileAggressive   Profile = "aggressive"
	ProfileModerate     Profile = "moderate"
	ProfileConservative Profile = "conservative"
	ProfileDefensive    Profile = "defensive"
)

// Band is an inclusive numeric band over sigma distance or absolute delta.
type Band struct {
	Min float64
	Max float64
}

// Contains reports whether v falls inside the band.
func (b Band) Contains(v float64) bool {
	return v >= b.Min && v <= b.Max
}

// ParseProfile normalizes and validates a profile name.
func ParseProfile(s string) (Profile, error) {
	p := Profile(strings.ToLower(strings.TrimSpace(s)))
	switch p {
	case ProfileAggressive, ProfileModerate, ProfileConservative, ProfileDefensive:
		return p, nil
	default:
		return "", wheelerr.NewConfigurationError("strikes", "profile",
			fmt.Sprintf("unknown profile %q", s))
	}
}

// SigmaBand returns the sigma-distance band the profile targets.
func (p Profile) SigmaBand() (Band, error) {
	switch p {
	case ProfileAggressive:
		return Band{Min: 0.5, Max: 1.0}, nil
	case ProfileModerate:
		return Band{Min: 1.0, Max: 1.5}, nil
	case ProfileConservative:
		return Band{Min: 1.5, Max: 2.0}, nil
	case ProfileDefensive:
		return Band{Min: 2.0, Max: 2.5}, nil
	default:
		return Band{}, wheelerr.NewConfigurationError("strikes", "sigma_band",
			fmt.Sprintf("unknown profile %q", string(p)))
	}
}

// DeltaBand returns the absolute-delta band used for short-dated chains,
// where sigma distances compress and delta selection is steadier.
func (p Profile) DeltaBand() (Band, error) {
	switch p {
	case ProfileAggressive:
		return Band{Min: 0.25, Max: 0.35}, nil
	case ProfileModerate:
		return Band{Min: 0.15, Max: 0.25}, nil
	case ProfileConservative:
		return Band{Min: 0.10, Max: 0.15}, nil
	case ProfileDefensive:
		return Band{Min: 0.05, Max: 0.10}, nil
	default:
		return Band{}, wheelerr.NewConfigurationError("strikes", "delta_band",
			fmt.Sprintf("unknown profile %q", string(p)))
	}
}

// RoundsAwayFromMoney reports whether the profile rounds theoretical strikes
// away from the money (up for calls, down for puts) instead of to nearest.
func (p Profile) RoundsAwayFromMoney() bool {
	return p == ProfileConservative || p == ProfileDefensive
}

// TargetSigma returns the midpoint of the profile's sigma band, used when a
// single theoretical strike is wanted rather than a band scan.
func (p Profile) TargetSigma() (float64, error) {
	band, err := p.SigmaBand()
	if err != nil {
		return 0, err
	}
	return (band.Min + band.Max) / 2, nil
}
