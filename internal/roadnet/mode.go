package roadnet

import "fmt"

// TravelMode selects which part of the street network counts as routable.
type TravelMode string

const (
	ModeWalk         TravelMode = "walk"
	ModeBike         TravelMode = "bike"
	ModeDrive        TravelMode = "drive"
	ModeDriveService TravelMode = "drive-service"
)

// ParseMode accepts both the canonical mode IDs and the labels the web
// front end submits.
func ParseMode(s string) (TravelMode, error) {
	switch s {
	case "walk", "Walking":
		return ModeWalk, nil
	case "bike", "Cycling":
		return ModeBike, nil
	case "drive", "Driving":
		return ModeDrive, nil
	case "drive-service", "drive_service", "Service_Driving":
		return ModeDriveService, nil
	default:
		return "", fmt.Errorf("unknown travel mode %q", s)
	}
}

const drivableHighways = "motorway|trunk|primary|secondary|tertiary|unclassified|residential|living_street|motorway_link|trunk_link|primary_link|secondary_link|tertiary_link"

// highwayFilter returns the Overpass way filter for a mode. The filters
// follow the usual network-type split: foot and bike traffic gets every
// highway except motorways, vehicles get the drivable classes, and the
// service variant adds service roads.
func (m TravelMode) highwayFilter() string {
	switch m {
	case ModeWalk:
		return `["highway"]["highway"!~"motorway|motorway_link|proposed|construction|abandoned|raceway"]["foot"!~"no"]`
	case ModeBike:
		return `["highway"]["highway"!~"motorway|motorway_link|proposed|construction|abandoned|raceway|footway|steps"]["bicycle"!~"no"]`
	case ModeDriveService:
		return `["highway"~"` + drivableHighways + `|service"]`
	default:
		return `["highway"~"` + drivableHighways + `"]`
	}
}
