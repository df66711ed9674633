package domain

type Units string

const (
	UnitsKG Units = "KG"
	UnitsLB Units = "LB"
)

// Preferences holds a user's weekly points goal and preferred weight unit.
type Preferences struct {
	ID          *int64   `json:"id,omitempty"`
	WeeklyGoal  *int     `json:"weeklyGoal" validate:"required,min=10,max=21" jsonschema:"minimum=10,maximum=21"`
	WeightUnits *Units   `json:"weightUnits" validate:"required,oneof=KG LB" jsonschema:"enum=KG,enum=LB"`
	User        *UserRef `json:"user,omitempty"`
}

func (p *Preferences) GetID() *int64      { return p.ID }
func (p *Preferences) SetID(id int64)     { p.ID = &id }
func (p *Preferences) GetUser() *UserRef  { return p.User }
func (p *Preferences) SetUser(u *UserRef) { p.User = u }

func (p *Preferences) Merge(o *Preferences) {
	if o.WeeklyGoal != nil {
		p.WeeklyGoal = o.WeeklyGoal
	}
	if o.WeightUnits != nil {
		p.WeightUnits = o.WeightUnits
	}
}

func (p *Preferences) Clone() *Preferences {
	return &Preferences{
		ID:          clonePtr(p.ID),
		WeeklyGoal:  clonePtr(p.WeeklyGoal),
		WeightUnits: clonePtr(p.WeightUnits),
		User:        clonePtr(p.User),
	}
}
