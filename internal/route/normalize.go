package route

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"googlemaps.github.io/maps"

	"github.com/assistive-ai/digitalcane/internal/models"
)

// TransferMarker is appended to every boarding instruction except the last
// one, so the rider knows that alighting point is not the end of the trip.
const TransferMarker = "내려서 환승하세요"

// vehicleNouns maps the Directions vehicle-type enumeration to Korean nouns,
// used when the provider gives no display name for the vehicle.
var vehicleNouns = map[string]string{
	"BUS":              "버스",
	"INTERCITY_BUS":    "버스",
	"TROLLEYBUS":       "버스",
	"SHARE_TAXI":       "버스",
	"SUBWAY":           "지하철",
	"METRO_RAIL":       "전철",
	"RAIL":             "기차",
	"HEAVY_RAIL":       "기차",
	"COMMUTER_TRAIN":   "기차",
	"HIGH_SPEED_TRAIN": "기차",
	"LONG_DISTANCE_TRAIN": "기차",
	"TRAM":             "트램",
	"MONORAIL":         "모노레일",
	"FERRY":            "페리",
	"CABLE_CAR":        "케이블카",
	"GONDOLA_LIFT":     "곤돌라",
	"FUNICULAR":        "케이블카",
}

var busTypes = map[string]bool{
	"BUS": true, "INTERCITY_BUS": true, "TROLLEYBUS": true,
}

var railTypes = map[string]bool{
	"SUBWAY": true, "METRO_RAIL": true, "RAIL": true, "HEAVY_RAIL": true,
	"COMMUTER_TRAIN": true, "HIGH_SPEED_TRAIN": true, "LONG_DISTANCE_TRAIN": true,
}

// Normalize converts raw provider steps into rider-facing boarding steps in
// travel order. Walking legs are dropped; every step except the last carries
// the transfer marker.
func Normalize(steps []*maps.Step) []models.RouteStep {
	var transit []*maps.Step
	for _, s := range steps {
		if strings.EqualFold(s.TravelMode, "WALKING") {
			continue
		}
		if s.TransitDetails == nil {
			continue
		}
		transit = append(transit, s)
	}

	out := make([]models.RouteStep, 0, len(transit))
	for i, s := range transit {
		td := s.TransitDetails
		last := i == len(transit)-1

		display := LineDisplayName(td.Line)
		lineCode := td.Line.ShortName
		if lineCode == "" {
			lineCode = td.Line.Name
		}
		out = append(out, models.RouteStep{
			Kind:        models.StepBoard,
			Instruction: composeInstruction(td, display, last),
			Detail:      stepDetail(s),
			Action:      display + " 탑승",
			StopCount:   int(td.NumStops),
			LineCode:    lineCode,
		})
	}
	return out
}

// LineDisplayName derives the spoken name of a transit line. Preference
// order: the provider's explicit vehicle display name as the noun, then the
// vehicle-type enumeration mapped to a Korean noun. Numeric bus codes become
// "N번 버스", numeric subway and rail codes become "N호선", anything else
// joins the line code with the vehicle noun.
func LineDisplayName(line maps.TransitLine) string {
	code := line.ShortName
	if code == "" {
		code = line.Name
	}

	vehicleType := strings.ToUpper(line.Vehicle.Type)
	noun := line.Vehicle.Name
	if noun == "" {
		noun = vehicleNouns[vehicleType]
	}
	if noun == "" {
		noun = "차량"
	}

	switch {
	case code == "":
		return noun
	case isNumeric(code) && busTypes[vehicleType]:
		return code + "번 버스"
	case isNumeric(code) && railTypes[vehicleType]:
		return code + "호선"
	default:
		return code + " " + noun
	}
}

// composeInstruction builds the full boarding sentence: board stop, line
// display with an optional direction suffix, stop count, alight stop, and
// for intermediate boardings the transfer marker.
func composeInstruction(td *maps.TransitDetails, display string, last bool) string {
	var b strings.Builder

	b.WriteString(td.DepartureStop.Name)
	b.WriteString("에서 ")
	b.WriteString(display)

	// Purely numeric headsigns repeat the line code and add nothing spoken.
	if td.Headsign != "" && !isNumeric(td.Headsign) {
		b.WriteString(" ")
		b.WriteString(td.Headsign)
		b.WriteString(" 방면")
	}
	b.WriteString(" 탑승")

	if td.NumStops > 0 {
		fmt.Fprintf(&b, ", %d개 정거장 이동", td.NumStops)
	}

	b.WriteString(" 후 ")
	b.WriteString(td.ArrivalStop.Name)
	b.WriteString("에서 ")
	if last {
		b.WriteString("하차하세요")
	} else {
		b.WriteString(TransferMarker)
	}

	return b.String()
}

func stepDetail(s *maps.Step) string {
	duration := FormatDuration(s.Duration)
	if s.Distance.HumanReadable == "" {
		return duration
	}
	return duration + " · " + s.Distance.HumanReadable
}

// FormatDuration renders a duration as spoken Korean.
func FormatDuration(d time.Duration) string {
	minutes := int(d.Round(time.Minute) / time.Minute)
	if minutes < 1 {
		return "1분 미만"
	}
	if minutes < 60 {
		return fmt.Sprintf("%d분", minutes)
	}
	if minutes%60 == 0 {
		return fmt.Sprintf("%d시간", minutes/60)
	}
	return fmt.Sprintf("%d시간 %d분", minutes/60, minutes%60)
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
