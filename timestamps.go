package entity

import "time"

// TimestampPolicy stamps the created/updated columns of a model
type TimestampPolicy struct {
	Enabled   bool
	CreatedAt string
	UpdatedAt string
	NowFunc   func() time.Time
}

func newTimestampPolicy(d *Definition, db *DB) TimestampPolicy {
	policy := TimestampPolicy{
		Enabled:   d.Timestamps,
		CreatedAt: d.CreatedAtColumn(),
		UpdatedAt: d.UpdatedAtColumn(),
		NowFunc:   time.Now,
	}
	if db != nil && db.NowFunc != nil {
		policy.NowFunc = db.NowFunc
	}
	return policy
}

// FreshTimestamp current time
func (p TimestampPolicy) FreshTimestamp() time.Time {
	return p.NowFunc()
}

// UsesTimestamps reports whether m maintains its timestamp columns
func (m *Model) UsesTimestamps() bool {
	return m.timestamps.Enabled
}

// FreshTimestampString current time in the storage date format
func (m *Model) FreshTimestampString() string {
	return m.attributes.SerializeDate(m.timestamps.FreshTimestamp())
}

// Touch stamps the updated column and saves the model, models without timestamps report false
func (m *Model) Touch() (bool, error) {
	if !m.UsesTimestamps() {
		return false, nil
	}

	if err := m.updateTimestamps(); err != nil {
		return false, err
	}
	return m.Save()
}

// updateTimestamps stamps the updated column unless it was changed by hand, new models also get the created column
func (m *Model) updateTimestamps() error {
	now := Value{KindTime, m.timestamps.FreshTimestamp()}

	if column := m.timestamps.UpdatedAt; column != "" && !m.attributes.IsDirty(column) {
		if err := m.setTimestamp(column, now); err != nil {
			return err
		}
	}

	if column := m.timestamps.CreatedAt; !m.exists && column != "" && !m.attributes.IsDirty(column) {
		if err := m.setTimestamp(column, now); err != nil {
			return err
		}
	}

	return nil
}

func (m *Model) setTimestamp(column string, now Value) error {
	value, err := m.attributes.FromDateTime(now)
	if err != nil {
		return err
	}
	m.attributes.SetRaw(column, value)
	return nil
}
