package domain

// Region is one administrative district: the unit of upstream querying and batching.
type Region struct {
	ID       string `json:"id" yaml:"id"`
	Name     string `json:"name" yaml:"name"`   // upstream district name, e.g. 松山區
	Label    string `json:"label" yaml:"label"` // romanised name for logs, e.g. Songshan
	City     string `json:"city" yaml:"-"`      // city key: taipei | newtaipei
	CityName string `json:"city_name" yaml:"-"` // upstream city name, e.g. 台北市
}

// RegionRef is the short {id,name} pair listed back to callers of the trigger endpoint.
type RegionRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (r Region) Ref() RegionRef { return RegionRef{ID: r.ID, Name: r.Name} }
