package domain

import "github.com/invopop/jsonschema"

// Descriptor names one entity type across the REST API, the alert headers
// and the UI routes.
type Descriptor struct {
	// Name is used in alert headers and validation errors.
	Name string
	// APIPath is the collection segment under /api.
	APIPath string
	// Route is the UI path segment.
	Route string
	// Paginated is false for collections that are listed and searched whole.
	Paginated bool
}

var (
	PointsDescriptor        = Descriptor{Name: "points", APIPath: "points", Route: "points", Paginated: true}
	WeightDescriptor        = Descriptor{Name: "weight", APIPath: "weights", Route: "weight", Paginated: true}
	BloodPressureDescriptor = Descriptor{Name: "bloodPressure", APIPath: "blood-pressures", Route: "blood-pressure", Paginated: true}
	PreferencesDescriptor   = Descriptor{Name: "preferences", APIPath: "preferences", Route: "preferences", Paginated: false}
)

func Descriptors() []Descriptor {
	return []Descriptor{PointsDescriptor, WeightDescriptor, BloodPressureDescriptor, PreferencesDescriptor}
}

// LookupDescriptor finds a descriptor by UI route or API path.
func LookupDescriptor(name string) (Descriptor, bool) {
	for _, d := range Descriptors() {
		if d.Route == name || d.APIPath == name || d.Name == name {
			return d, true
		}
	}
	return Descriptor{}, false
}

// Schema reflects the JSON Schema of an entity type.
func Schema[T any]() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	return reflector.Reflect(v)
}
