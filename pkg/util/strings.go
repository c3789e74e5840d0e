package util

import "strconv"

// ParseVolume accepts both integer and float renderings; vendors disagree.
func ParseVolume(s string) (int64, error) {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	return int64(f), nil
}
