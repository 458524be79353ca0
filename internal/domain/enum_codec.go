package domain

// UnmarshalYAML lets a Gender field accept the wire forms from spec §6
// ("M"/"Female"/"0"/...) directly in policy roster files.
func (g *Gender) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := ParseGender(s)
	if err != nil {
		return err
	}
	*g = parsed
	return nil
}

// MarshalYAML renders a Gender back to its canonical name.
func (g Gender) MarshalYAML() (interface{}, error) {
	return g.String(), nil
}

// UnmarshalYAML lets a ProductType field accept its name or ordinal.
func (p *ProductType) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := ParseProductType(s)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// MarshalYAML renders a ProductType back to its canonical name.
func (p ProductType) MarshalYAML() (interface{}, error) {
	return p.String(), nil
}

// UnmarshalYAML lets an UnderwritingClass field accept its name or ordinal.
func (u *UnderwritingClass) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := ParseUnderwritingClass(s)
	if err != nil {
		return err
	}
	*u = parsed
	return nil
}

// MarshalYAML renders an UnderwritingClass back to its canonical name.
func (u UnderwritingClass) MarshalYAML() (interface{}, error) {
	return u.String(), nil
}
