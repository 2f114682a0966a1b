package syncer

import (
	"context"

	"clementus360/mindset/supabase"
	"clementus360/mindset/types"
)

// GetProfile returns the user's profile, or an empty one keyed by the user id.
func (e *Engine) GetProfile(ctx context.Context) types.Profile {
	e.mu.Lock()
	defer e.mu.Unlock()

	var p types.Profile
	if e.read(KeyProfile, &p) {
		return p
	}
	uid := e.userID()
	var rows []types.Profile
	if e.fetch(ctx, supabase.TableProfiles, map[string]string{"id": uid}, &rows) && len(rows) > 0 {
		_ = e.write(KeyProfile, rows[0])
		return rows[0]
	}
	return types.Profile{ID: uid}
}

// SaveProfile stores the profile, upserts it on the user id and notifies subscribers.
func (e *Engine) SaveProfile(p types.Profile) (types.Profile, error) {
	if uid := e.userID(); uid != "" {
		p.ID = uid
	}
	now := e.now()
	p.UpdatedAt = &now

	e.mu.Lock()
	err := e.write(KeyProfile, p)
	e.mu.Unlock()
	if err != nil {
		return types.Profile{}, err
	}

	saved := p
	e.push(supabase.TableProfiles, "upsert", func(ctx context.Context, r Remote, uid string) error {
		return r.Upsert(ctx, supabase.TableProfiles, profileRowOf(saved, uid), "id")
	})
	e.profile.Publish(p)
	return p, nil
}

// ProfileUpdates is published to on every successful SaveProfile.
func (e *Engine) ProfileUpdates() *Subject[types.Profile] {
	return e.profile
}
