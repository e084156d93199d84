// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.
package pipeline

import "strconv"

// AppendRecord appends the compact text form of a consumed sample to dst and
// returns the extended slice: raw temperature, smoothed temperature, raw
// pressure, smoothed pressure, each to three decimal places, comma-separated,
// e.g. "23.500,23.500,101.300,101.300".
func AppendRecord(
	dst []byte,
	s Sample,
	smoothedTemp, smoothedPress float64,
) []byte {
	dst = strconv.AppendFloat(dst, s.TemperatureC, 'f', 3, 64)
	dst = append(dst, ',')
	dst = strconv.AppendFloat(dst, smoothedTemp, 'f', 3, 64)
	dst = append(dst, ',')
	dst = strconv.AppendFloat(dst, s.PressureKPa, 'f', 3, 64)
	dst = append(dst, ',')
	return strconv.AppendFloat(dst, smoothedPress, 'f', 3, 64)
}
