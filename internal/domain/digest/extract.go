package digest

// ExtractCurrent reduces a window response into the latest exposure, its
// sky-visibility flag, and the window's exposure count. It is total over any
// decodable payload: missing fields default rather than fail.
//
// Count precedence: the explicit exposures_count wins whenever present;
// on_sky_exposures_count only fills in an absent total, and zero is the
// final fallback.
func ExtractCurrent(resp Response) Current {
	var last *Exposure
	if n := len(resp.Exposures); n > 0 {
		last = &resp.Exposures[n-1]
	}

	var canSeeSky *bool
	if last != nil {
		canSeeSky = last.CanSeeSky
	}

	count := 0
	switch {
	case resp.ExposuresCount != nil:
		count = *resp.ExposuresCount
	case resp.OnSkyExposuresCount != nil:
		count = *resp.OnSkyExposuresCount
	}

	return Current{
		LastExposure:   last,
		LastCanSeeSky:  canSeeSky,
		ExposuresCount: count,
	}
}
