package decode

import (
	"bytes"
	"encoding/binary"
	"strconv"
	"strings"
	"time"

	"github.com/soniakeys/meeus/v3/julian"
)

type paramsBase struct {
	Seconds int32
	NanoSeconds int32
	NumParams int16
}

// parseRefTime parses the "yyyy/ddd hh:mm:ss" reference-time convention
// (e.g. "1970/001 00:00:00") some recorded parameter blobs use, resolving
// the day-of-year component with meeus/v3/julian.
func parseRefTime(dateStr string) time.Time {
	split := strings.Split(dateStr, " ")
	split2 := strings.Split(split[0], "/")

	year, _ := strconv.Atoi(split2[0])
	doy, _ := strconv.Atoi(split2[1])
	month, day := julian.DayOfYearToCalendar(doy, julian.LeapYearGregorian(year))

	split3 := strings.Split(split[1], ":")
	hms := make([]int, len(split3))
	for i, val := range split3 {
		hms[i], _ = strconv.Atoi(val)
	}

	return time.Date(year, time.Month(month), day, hms[0], hms[1], hms[2], 0, time.UTC)
}

// boolWords and unknownWords normalize the handful of textual spellings a
// recorded parameters blob may use for booleans and "no value recorded".
var boolWords = map[string]bool{
	"yes": true, "no": false, "true": true, "false": false,
}

var unknownWords = map[string]string{
	"unknwn": "unknown", "unknown": "unknown",
}

// ParametersRec decodes a PARAMETERS record: a run-level bag of
// configuration key/value pairs seeded at recording time (e.g. recorded
// ROI geometry, azimuthal-integration geometry, normalizer selection) that
// a replay can use to pre-populate the shared-state collaborator before
// ingesting the first PACKET record.
//
// Each entry is a two-byte string length followed by a "key=value" ASCII
// string; ParametersRec best-effort coerces the value to bool,
// float64, int, or time.Time (for the "reference_time" key), falling back
// to a plain string.
func ParametersRec(buffer []byte) map[string]interface{} {
	var base paramsBase
	reader := bytes.NewReader(buffer)
	_ = binary.Read(reader, binary.BigEndian, &base)

	params := make(map[string]interface{}, base.NumParams)

	startIdx, endIdx := 10, 12 // the 10-byte paramsBase header has already been consumed
	for i := int16(0); i < base.NumParams; i++ {
		paramSize := int16(binary.BigEndian.Uint16(buffer[startIdx:endIdx]))
		startIdx += 2
		endIdx += int(paramSize)

		param := string(buffer[startIdx:endIdx])
		startIdx += int(paramSize)
		endIdx += 2

		split := strings.SplitN(strings.TrimSpace(param), "=", 2)
		if len(split) != 2 {
			continue
		}
		key := strings.ReplaceAll(strings.ToLower(split[0]), " ", "_")
		val := strings.Trim(strings.ToLower(split[1]), "\x00")
		_, isBoolWord := boolWords[val]

		switch {
			case strings.Contains(val, ","):
				svals := strings.Split(val, ",")
				if strings.Contains(val, ".") {
					fvals := make([]float64, 0, len(svals))
					for _, s := range svals {
						if fval, err := strconv.ParseFloat(s, 64); err == nil {
							fvals = append(fvals, fval)
						}
					}
					params[key] = fvals
				} else {
					ivals := make([]int64, 0, len(svals))
					for _, s := range svals {
						if ival, err := strconv.ParseInt(s, 10, 64); err == nil {
							ivals = append(ivals, ival)
						}
					}
					params[key] = ivals
				}
			case strings.Contains(val, "."):
				if fval, err := strconv.ParseFloat(val, 64); err == nil {
					params[key] = fval
				} else {
					params[key] = val
				}
			case isBoolWord:
				params[key] = boolWords[val]
			case unknownWords[val] != "":
				params[key] = unknownWords[val]
			case key == "reference_time":
				params[key] = parseRefTime(val)
			default:
				if ival, err := strconv.Atoi(val); err == nil {
					params[key] = ival
				} else {
					params[key] = val
				}
		}
	}

	params["recorded_time"] = time.Unix(int64(base.Seconds), int64(base.NanoSeconds)).UTC()
	return params
}
