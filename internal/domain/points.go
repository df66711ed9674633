package domain

// Points is one day of the programme: up to one point each for exercise,
// clean meals and no alcohol.
type Points struct {
	ID       *int64     `json:"id,omitempty"`
	Date     *LocalDate `json:"date" validate:"required"`
	Exercise *int       `json:"exercise,omitempty"`
	Meals    *int       `json:"meals,omitempty"`
	Alcohol  *int       `json:"alcohol,omitempty"`
	Notes    *string    `json:"notes,omitempty" validate:"omitempty,max=140" jsonschema:"maxLength=140"`
	User     *UserRef   `json:"user,omitempty"`
}

func (p *Points) GetID() *int64      { return p.ID }
func (p *Points) SetID(id int64)     { p.ID = &id }
func (p *Points) GetUser() *UserRef  { return p.User }
func (p *Points) SetUser(u *UserRef) { p.User = u }

func (p *Points) Merge(o *Points) {
	if o.Date != nil {
		p.Date = o.Date
	}
	if o.Exercise != nil {
		p.Exercise = o.Exercise
	}
	if o.Meals != nil {
		p.Meals = o.Meals
	}
	if o.Alcohol != nil {
		p.Alcohol = o.Alcohol
	}
	if o.Notes != nil {
		p.Notes = o.Notes
	}
}

func (p *Points) Clone() *Points {
	return &Points{
		ID:       clonePtr(p.ID),
		Date:     clonePtr(p.Date),
		Exercise: clonePtr(p.Exercise),
		Meals:    clonePtr(p.Meals),
		Alcohol:  clonePtr(p.Alcohol),
		Notes:    clonePtr(p.Notes),
		User:     clonePtr(p.User),
	}
}
