package domain

// Coord is a WGS-84 latitude/longitude pair in decimal degrees.
type Coord struct {
	Lat float64
	Lng float64
}

// GazetteerEntry maps a canonical city name and its accepted spelling
// variants to a coordinate. Entries are immutable and loaded once.
type GazetteerEntry struct {
	Name     string
	Variants []string
	Coord    Coord
}

// Gazetteer is a static name-to-coordinate lookup table for the metro region.
// An unresolved name never blocks event creation: Resolve falls back to the
// default coordinate (the region's largest city) and only degrades map
// accuracy.
type Gazetteer struct {
	coords    map[string]Coord
	canonical map[string]string // spelling variant -> canonical name
	def       Coord
}

// NewGazetteer builds the gazetteer from the built-in Minnesota city table.
func NewGazetteer() *Gazetteer {
	g := &Gazetteer{
		coords:    make(map[string]Coord, len(cityEntries)),
		canonical: make(map[string]string),
		def:       Coord{Lat: 44.9778, Lng: -93.2650}, // Minneapolis
	}
	for _, e := range cityEntries {
		g.coords[e.Name] = e.Coord
		for _, v := range e.Variants {
			g.canonical[v] = e.Name
		}
	}
	return g
}

// Resolve looks up a canonical city name, case-sensitively. Unknown names
// resolve to the default coordinate; this method never fails.
func (g *Gazetteer) Resolve(name string) Coord {
	if c, ok := g.coords[name]; ok {
		return c
	}
	return g.def
}

// Canonical normalizes a known spelling variant to its canonical form.
// Names that are already canonical, or unknown, are returned unchanged.
func (g *Gazetteer) Canonical(name string) string {
	if c, ok := g.canonical[name]; ok {
		return c
	}
	return name
}

// Default returns the fallback coordinate used for unresolved names.
func (g *Gazetteer) Default() Coord {
	return g.def
}

// cityEntries is the fixed gazetteer for Twin Cities metro and outstate
// Minnesota towns that appear in the configured sources.
var cityEntries = []GazetteerEntry{
	{Name: "Minneapolis", Coord: Coord{44.9778, -93.2650}},
	{Name: "St. Paul", Variants: []string{"St Paul", "Saint Paul"}, Coord: Coord{44.9537, -93.0900}},
	{Name: "Bloomington", Coord: Coord{44.8408, -93.2982}},
	{Name: "Plymouth", Coord: Coord{45.0105, -93.4555}},
	{Name: "Duluth", Coord: Coord{46.7867, -92.1005}},
	{Name: "Rochester", Coord: Coord{44.0121, -92.4802}},
	{Name: "Mankato", Coord: Coord{44.1636, -94.0000}},
	{Name: "St. Cloud", Variants: []string{"St Cloud", "Saint Cloud"}, Coord: Coord{45.5579, -94.1632}},
	{Name: "Moorhead", Coord: Coord{46.8737, -96.7678}},
	{Name: "Burnsville", Coord: Coord{44.7678, -93.2777}},
	{Name: "Eagan", Coord: Coord{44.8041, -93.1668}},
	{Name: "Eden Prairie", Coord: Coord{44.8547, -93.4708}},
	{Name: "Minnetonka", Coord: Coord{44.9211, -93.4687}},
	{Name: "Edina", Coord: Coord{44.8897, -93.3498}},
	{Name: "Lakeville", Coord: Coord{44.6497, -93.2427}},
	{Name: "Woodbury", Coord: Coord{44.9239, -92.9594}},
	{Name: "Maple Grove", Coord: Coord{45.0724, -93.4558}},
	{Name: "Brooklyn Park", Coord: Coord{45.0941, -93.3563}},
	{Name: "Stillwater", Coord: Coord{45.0566, -92.8065}},
	{Name: "Anoka", Coord: Coord{45.1972, -93.3866}},
	{Name: "Chanhassen", Coord: Coord{44.8619, -93.5272}},
	{Name: "Columbia Heights", Coord: Coord{45.0411, -93.2630}},
	{Name: "Ham Lake", Coord: Coord{45.2469, -93.2077}},
	{Name: "Blaine", Coord: Coord{45.1607, -93.2349}},
	{Name: "St. Louis Park", Variants: []string{"St Louis Park"}, Coord: Coord{44.9481, -93.3478}},
	{Name: "Richfield", Coord: Coord{44.8831, -93.2830}},
	{Name: "Excelsior", Coord: Coord{44.9022, -93.5647}},
	{Name: "Shakopee", Coord: Coord{44.7973, -93.5272}},
	{Name: "Albert Lea", Coord: Coord{43.6481, -93.3687}},
	{Name: "Austin", Coord: Coord{43.6666, -92.9735}},
	{Name: "Bemidji", Coord: Coord{47.4737, -94.8803}},
	{Name: "Cannon Falls", Coord: Coord{44.5094, -92.9054}},
	{Name: "Coon Rapids", Coord: Coord{45.1732, -93.3030}},
	{Name: "Delano", Coord: Coord{45.0424, -93.7888}},
	{Name: "Detroit Lakes", Coord: Coord{46.8171, -95.8453}},
	{Name: "Ely", Coord: Coord{47.9032, -91.8673}},
	{Name: "Eveleth", Coord: Coord{47.4624, -92.5407}},
	{Name: "Lake City", Coord: Coord{44.4497, -92.2685}},
	{Name: "Nisswa", Coord: Coord{46.5199, -94.2886}},
}
