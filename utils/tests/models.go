package tests

import (
	"golang.org/x/crypto/bcrypt"

	"github.com/go-entity/entity"
)

// Users has one `profile` (UserProfiles), many `sentMessages` and many `receivedMessages` (Messages).
// Saving a user with a plain password stores its bcrypt hash, setting `reset` bumps resetCount
var Users = entity.MustDefine(entity.Definition{
	Name:   "User",
	Casts:  map[string]string{"params": "array"},
	Dates:  []string{"registerDate", "lastvisitDate", "lastResetTime"},
	Hidden: []string{"password"},
	With:   []string{"sentMessages:message_id,subject,user_id_from"},
	Getters: map[string]entity.GetMutator{
		"newAccount": func(m *entity.Model, _ entity.Value) (entity.Value, error) {
			registered, _ := m.GetRaw("registerDate")
			visited, _ := m.GetRaw("lastvisitDate")
			return entity.ValueOf(registered.Equal(visited)), nil
		},
	},
	Setters: map[string]entity.SetMutator{
		"reset": func(m *entity.Model, value entity.Value) error {
			if err := m.Set("resetCount", value); err != nil {
				return err
			}
			return m.Set("lastResetTime", "0000-00-00 00:00:01")
		},
		"password": func(m *entity.Model, value entity.Value) error {
			hash, err := bcrypt.GenerateFromPassword([]byte(value.String()), bcrypt.MinCost)
			if err != nil {
				return err
			}
			m.SetRaw("password", string(hash))
			return nil
		},
	},
})

// UserProfiles belongs to a user through its primary key
var UserProfiles = entity.MustDefine(entity.Definition{
	Name:       "UserProfile",
	PrimaryKey: "user_id",
})

// Messages belong to a `sender` and a `recipient` (Users)
var Messages = entity.MustDefine(entity.Definition{
	Name:       "Message",
	PrimaryKey: "message_id",
	Dates:      []string{"date_time"},
})

// Banners keep their timestamps in `created` and `modified`
var Banners = entity.MustDefine(entity.Definition{
	Name:       "Banner",
	Timestamps: true,
	Casts:      map[string]string{"params": "array"},
	Dates:      []string{"checked_out_time", "publish_up", "publish_down", "reset", "created", "modified"},
	ColumnAlias: map[string]string{
		"createdAt": "created",
		"updatedAt": "modified",
	},
})

func init() {
	Users.HasOne("profile", UserProfiles, "", "")
	Users.HasMany("sentMessages", Messages, "user_id_from", "")
	Users.HasMany("receivedMessages", Messages, "user_id_to", "")

	Messages.BelongsTo("sender", Users, "user_id_from", "")
	Messages.BelongsTo("recipient", Users, "user_id_to", "")
}

// CheckPassword reports whether password matches the hash stored on user
func CheckPassword(user *entity.Model, password string) bool {
	hash, _ := user.GetRaw("password")
	return bcrypt.CompareHashAndPassword([]byte(hash.String()), []byte(password)) == nil
}
