package auth

import (
	"encoding/json"
	"errors"
	"time"

	"myblog/client/internal/storage"
)

// ProfileKey is the storage key of the last profile fetched from the server.
const ProfileKey = "myblog-profile"

// Profile is what the server last told us about the logged-in user. It lets
// whoami show a username while the API is unreachable.
type Profile struct {
	UserID    int64     `json:"user_id"`
	Username  string    `json:"username"`
	Email     string    `json:"email,omitempty"`
	FetchedAt time.Time `json:"fetched_at"`
}

// loadProfile reads the cached profile. A missing profile yields (nil, nil).
func loadProfile(st storage.Store) (*Profile, error) {
	raw, err := st.Get(ProfileKey)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var p Profile
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func saveProfile(st storage.Store, p Profile) error {
	b, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return st.Set(ProfileKey, string(b))
}

func clearProfile(st storage.Store) error {
	return st.Delete(ProfileKey)
}
