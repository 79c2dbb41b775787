package service

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"sync"
	"time"

	"ajnabi/internal/domain"
	"ajnabi/internal/session"
)

var ErrNoPartnerAvailable = errors.New("no partner available for this preference")

// StubMatchmaker serves partners from a fixed pool, filtered by preference.
// It stands in for the real matchmaking backend and keeps its contract:
// fallible, slow, and called off the event path.
type StubMatchmaker struct {
	mu    sync.Mutex
	rng   *rand.Rand
	delay time.Duration
	pool  []session.PartnerProfile
}

func NewStubMatchmaker(delay time.Duration) *StubMatchmaker {
	return &StubMatchmaker{
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
		delay: delay,
		pool:  defaultPartnerPool(),
	}
}

func (m *StubMatchmaker) FindPartner(ctx context.Context, preference string) (session.PartnerProfile, error) {
	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return session.PartnerProfile{}, ctx.Err()
		}
	}
	candidates := m.filter(strings.ToUpper(preference))
	if len(candidates) == 0 {
		return session.PartnerProfile{}, ErrNoPartnerAvailable
	}
	m.mu.Lock()
	pick := candidates[m.rng.Intn(len(candidates))]
	m.mu.Unlock()
	return pick, nil
}

func (m *StubMatchmaker) filter(preference string) []session.PartnerProfile {
	if preference == "" || preference == domain.PrefAnyone {
		return m.pool
	}
	want := "Woman"
	if preference == domain.PrefMen {
		want = "Man"
	}
	var out []session.PartnerProfile
	for _, p := range m.pool {
		if p.AboutMe["gender"] == want {
			out = append(out, p)
		}
	}
	return out
}

func defaultPartnerPool() []session.PartnerProfile {
	return []session.PartnerProfile{
		{
			Username: "Shafa Asadel",
			Age:      20,
			Photos: []string{
				"https://images.pexels.com/photos/1239291/pexels-photo-1239291.jpeg",
				"https://images.pexels.com/photos/774909/pexels-photo-774909.jpeg",
				"https://images.pexels.com/photos/1130626/pexels-photo-1130626.jpeg",
			},
			Bio:             "Music enthusiast, always on the lookout for new tunes and ready to share playlists. Let's discover new sounds and enjoy the rhythm of life! ❤️",
			Distance:        "2 km away",
			CommonInterests: 4,
			AboutMe: map[string]string{
				"gender":   "Woman",
				"religion": "Muslims",
				"drinking": "Sometimes",
				"smoking":  "Never",
			},
			Interests: []string{"🎵 Pop Punk", "☕ Coffee", "🥊 Boxing", "🎮 Fifa Mobile", "⚽ Real Madrid"},
		},
		{
			Username:        "Daniel Okoye",
			Age:             24,
			Photos:          []string{"https://images.pexels.com/photos/2379004/pexels-photo-2379004.jpeg"},
			Bio:             "Gym in the morning, FIFA at night. Always up for a good conversation.",
			Distance:        "5 km away",
			CommonInterests: 2,
			AboutMe: map[string]string{
				"gender":   "Man",
				"drinking": "Never",
				"smoking":  "Never",
			},
			Interests: []string{"🏋️ Fitness", "🎮 Fifa Mobile", "🍜 Street Food"},
		},
		{
			Username:        "Mira Tan",
			Age:             22,
			Photos:          []string{"https://images.pexels.com/photos/712513/pexels-photo-712513.jpeg"},
			Bio:             "Coffee-fueled designer. Show me your favourite playlist and I'll show you mine.",
			Distance:        "8 km away",
			CommonInterests: 3,
			AboutMe: map[string]string{
				"gender":   "Woman",
				"drinking": "Sometimes",
				"smoking":  "Never",
			},
			Interests: []string{"🎨 Design", "☕ Coffee", "🎵 Indie"},
		},
	}
}
