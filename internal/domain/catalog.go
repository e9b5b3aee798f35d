package domain

// ModelPart is one part of a product model's bill of materials.
type ModelPart struct {
	ID        string
	Name      string
	ModelCode string
}

// MSPartRow is one machine-shop routing row for a part: the material
// it is cut from, the routing descriptor, and the quantity needed per
// unit of the model.
type MSPartRow struct {
	PartID      string
	PartName    string
	Material    string
	PostProcess string
	QtyPerUnit  float64
}

// ProductionConfig carries the tunable limits read from the
// configuration table. Zero values fall back to defaults. The
// reminder flag is tri-state: nil means the row or field is absent
// and reminders run, only an explicit false disables them.
type ProductionConfig struct {
	MinQuantity           int
	MaxQuantity           int
	ReminderEnabled       *bool
	ReminderThresholdDays int
}

// Default quantity limits used when no configuration row exists.
const (
	DefaultMinQuantity           = 1
	DefaultMaxQuantity           = 999999
	DefaultReminderThresholdDays = 2
)

// EffectiveMinQuantity returns the configured minimum or the default.
func (c ProductionConfig) EffectiveMinQuantity() int {
	if c.MinQuantity > 0 {
		return c.MinQuantity
	}
	return DefaultMinQuantity
}

// EffectiveMaxQuantity returns the configured maximum or the default.
func (c ProductionConfig) EffectiveMaxQuantity() int {
	if c.MaxQuantity > 0 {
		return c.MaxQuantity
	}
	return DefaultMaxQuantity
}

// EffectiveReminderEnabled reports whether the reminder sweep should
// run. Reminders are enabled unless explicitly switched off.
func (c ProductionConfig) EffectiveReminderEnabled() bool {
	if c.ReminderEnabled != nil {
		return *c.ReminderEnabled
	}
	return true
}

// EffectiveReminderThresholdDays returns the configured reminder age
// threshold or the default.
func (c ProductionConfig) EffectiveReminderThresholdDays() int {
	if c.ReminderThresholdDays > 0 {
		return c.ReminderThresholdDays
	}
	return DefaultReminderThresholdDays
}
