package projectile

import (
	"github.com/mcoot/arenagame-go/internal/dependencies/idgen"
	"github.com/mcoot/arenagame-go/internal/model"
	"github.com/mcoot/arenagame-go/internal/physics"
)

// Outcome classifies what happened to a projectile after a step
type Outcome int

const (
	NoHit Outcome = iota
	WallHit
	PlayerHit
)

func (o Outcome) String() string {
	switch o {
	case WallHit:
		return "wall"
	case PlayerHit:
		return "player"
	default:
		return "none"
	}
}

// Resolution is the result of testing one projectile
type Resolution struct {
	Outcome Outcome
	Target  model.PlayerID // set for PlayerHit
}

// Service creates and moves projectiles
type Service struct {
	ids    idgen.Generator
	cfg    model.GameConfig
	bounds physics.Bounds
}

// New creates a projectile Service
func New(ids idgen.Generator, cfg model.GameConfig) *Service {
	return &Service{
		ids:    ids,
		cfg:    cfg,
		bounds: cfg.Bounds(),
	}
}

// Create fires a projectile from origin in the direction of angle
func (s *Service) Create(origin physics.Vector2D, angle float64, owner model.PlayerID) model.Projectile {
	return model.Projectile{
		ID:       model.ProjectileID(s.ids.NewID()),
		Position: origin,
		Velocity: physics.FromAngle(angle).Scale(s.cfg.ProjectileSpeed),
		OwnerID:  owner,
	}
}

// Advance moves p by one step of dt seconds. There is no sub-stepping,
// so a fast enough projectile can pass through a thin target.
func Advance(p model.Projectile, dt float64) model.Projectile {
	p.Position = p.Position.Add(p.Velocity.Scale(dt))
	return p
}

// Resolve tests p against the living players, in the order given, and
// then against the walls. The first overlapping player other than the
// owner is hit.
func (s *Service) Resolve(p model.Projectile, players []model.Player) Resolution {
	for _, pl := range players {
		if pl.ID == p.OwnerID || !pl.Alive() {
			continue
		}
		if physics.CirclesOverlap(p.Position, s.cfg.ProjectileRadius, pl.Position, s.cfg.PlayerRadius) {
			return Resolution{Outcome: PlayerHit, Target: pl.ID}
		}
	}
	if s.bounds.Outside(p.Position, s.cfg.ProjectileRadius) {
		return Resolution{Outcome: WallHit}
	}
	return Resolution{Outcome: NoHit}
}
