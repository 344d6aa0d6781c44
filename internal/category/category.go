package category

// Category is the closed set of hazard types a report can carry.
type Category string

const (
	Flood       Category = "flood"
	Traffic     Category = "traffic"
	Crime       Category = "crime"
	RoadDamage  Category = "road_damage"
	LightOutage Category = "light_outage"
	TidalFlood  Category = "tidal_flood"
	LeveeBreach Category = "levee_breach"
	ShipSinking Category = "ship_sinking"
)

// DecayClass selects which TTL applies to a category's reports.
type DecayClass int

const (
	// FastDecay marks acute, time-sensitive hazards that go stale in hours.
	FastDecay DecayClass = iota
	// SlowDecay marks structural hazards that persist for days.
	SlowDecay
)

type Info struct {
	Label string
	Color string
	Decay DecayClass
}

var table = map[Category]Info{
	Flood:       {Label: "Flood", Color: "#3B82F6", Decay: FastDecay},
	Traffic:     {Label: "Traffic", Color: "#EF4444", Decay: FastDecay},
	Crime:       {Label: "Crime", Color: "#DC2626", Decay: FastDecay},
	RoadDamage:  {Label: "Road Damage", Color: "#F59E0B", Decay: SlowDecay},
	LightOutage: {Label: "Light Outage", Color: "#6B7280", Decay: SlowDecay},
	TidalFlood:  {Label: "Tidal Flood", Color: "#0EA5E9", Decay: FastDecay},
	LeveeBreach: {Label: "Levee Breach", Color: "#7C3AED", Decay: SlowDecay},
	ShipSinking: {Label: "Ship Sinking", Color: "#0F766E", Decay: SlowDecay},
}

func (c Category) Valid() bool {
	_, ok := table[c]
	return ok
}

// Lookup returns the static taxonomy row for a category.
func (c Category) Lookup() (Info, bool) {
	info, ok := table[c]
	return info, ok
}

func (c Category) Decay() DecayClass {
	return table[c].Decay
}

// All returns the taxonomy in a stable order.
func All() []Category {
	return []Category{Flood, Traffic, Crime, RoadDamage, LightOutage, TidalFlood, LeveeBreach, ShipSinking}
}
