package records

// Reference data is configuration, not computation: the known WRF domains,
// microphysics schemes, radars and hydrometeor classes of the measurement
// campaign. A fresh store is seeded with its product's reference block so
// parsers can validate extracted keys against it.

// Domain describes one WRF model domain.
type Domain struct {
	Name string  `yaml:"name"`
	XRes float64 `yaml:"x_res"` // grid spacing in x direction (m)
	YRes float64 `yaml:"y_res"` // grid spacing in y direction (m)
	Lon0 float64 `yaml:"lon_0"` // domain center longitude (deg)
	Lat0 float64 `yaml:"lat_0"` // domain center latitude (deg)
	XDim int     `yaml:"x_dim"`
	YDim int     `yaml:"y_dim"`
	ZDim int     `yaml:"z_dim"`
}

// MPScheme describes one WRF microphysics scheme. The ID is the WRF
// namelist value, not an invented key.
type MPScheme struct {
	ID   int    `yaml:"id"`
	Name string `yaml:"name"`
}

// Radar describes one radar site.
type Radar struct {
	Name        string  `yaml:"name"`
	Frequency   float64 `yaml:"frequency,omitempty"`   // GHz
	Height      float64 `yaml:"height,omitempty"`      // m above mean sea level
	Beamwidth   float64 `yaml:"beamwidth,omitempty"`   // half-power beamwidth (deg)
	Sensitivity float64 `yaml:"sensitivity,omitempty"` // dBZ
	Longitude   float64 `yaml:"longitude,omitempty"`
	Latitude    float64 `yaml:"latitude,omitempty"`
}

// Reference is the static reference block seeded into a fresh store.
type Reference struct {
	Domains      []Domain   `yaml:"domains,omitempty"`
	Schemes      []MPScheme `yaml:"schemes,omitempty"`
	Radars       []Radar    `yaml:"radars,omitempty"`
	Hydrometeors []string   `yaml:"hydrometeors,omitempty"`
	Kinds        []FileKind `yaml:"kinds,omitempty"`
}

// DefaultReference returns the campaign reference data shared by the
// built-in products.
func DefaultReference() Reference {
	return Reference{
		Domains: []Domain{
			{Name: "Europe", XRes: 10000, YRes: 10000, Lon0: 7.5, Lat0: 50.000015, XDim: 374, YDim: 374, ZDim: 39},
			{Name: "Germany", XRes: 2000, YRes: 2000, Lon0: 11.547821, Lat0: 48.165325, XDim: 220, YDim: 220, ZDim: 39},
			{Name: "Munich", XRes: 400, YRes: 400, Lon0: 11.574249, Lat0: 48.145794, XDim: 360, YDim: 360, ZDim: 39},
		},
		Schemes: []MPScheme{
			{ID: 8, Name: "Thompson"},
			{ID: 10, Name: "Morrison"},
			{ID: 28, Name: "Thompson Aerosol Aware"},
			{ID: 30, Name: "Fast Spectral Bin"},
			{ID: 50, Name: "P3"},
		},
		Radars: []Radar{
			{Name: "Isen", Frequency: 5.5, Height: 678, Beamwidth: 1.0, Sensitivity: -50, Longitude: 12.101779, Latitude: 48.174705},
			{Name: "Mira35", Frequency: 35, Height: 541, Beamwidth: 0.6, Longitude: 11.573396, Latitude: 48.148020},
			{Name: "Poldirad", Frequency: 5.5, Height: 603, Beamwidth: 1.0, Longitude: 11.278898, Latitude: 48.086730},
		},
		Hydrometeors: []string{
			"cloud", "ice", "rain", "snow", "graupel",
			"parimedice", "smallice", "unrimedice", "all",
		},
	}
}

// SchemeByID returns the microphysics scheme with the given WRF ID.
func (r Reference) SchemeByID(id int) (MPScheme, bool) {
	for _, s := range r.Schemes {
		if s.ID == id {
			return s, true
		}
	}
	return MPScheme{}, false
}

// RadarByName returns the radar with the given site name.
func (r Reference) RadarByName(name string) (Radar, bool) {
	for _, rd := range r.Radars {
		if rd.Name == name {
			return rd, true
		}
	}
	return Radar{}, false
}

// DomainByName returns the WRF domain with the given name.
func (r Reference) DomainByName(name string) (Domain, bool) {
	for _, d := range r.Domains {
		if d.Name == name {
			return d, true
		}
	}
	return Domain{}, false
}

// HasHydrometeor reports whether the given class name is known.
func (r Reference) HasHydrometeor(name string) bool {
	for _, hm := range r.Hydrometeors {
		if hm == name {
			return true
		}
	}
	return false
}
